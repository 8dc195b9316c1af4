package cli

import (
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/graph"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/llm"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/orchestrator"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/store"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/validator"
)

// FixOptions holds flags for the fix command.
type FixOptions struct {
	OutFile  string
	NoRecord bool
}

// NewFixCommand creates the fix command.
func NewFixCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FixOptions{}
	cmd := &cobra.Command{
		Use:   "fix <graph.json>",
		Short: "Repair a graph's blocking diagnostics",
		Long: `Fix validates the graph, then asks the model to change only what is
necessary to resolve the error diagnostics while preserving intent. If the
model is unavailable, a deterministic best-effort repair injects placeholder
values for missing required parameters. The result is re-validated either
way; re-run fix if errors remain.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFix(rootOpts, opts, args[0], cmd)
		},
	}
	cmd.Flags().StringVarP(&opts.OutFile, "out", "o", "", "write the repaired graph JSON to this file (default: overwrite input)")
	cmd.Flags().BoolVar(&opts.NoRecord, "no-record", false, "do not record this run in the session log")
	return cmd
}

func runFix(rootOpts *RootOptions, opts *FixOptions, graphPath string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)
	ctx := cmd.Context()

	cfg, log, err := loadConfig(rootOpts)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading configuration", err)
	}
	defer log.Sync() //nolint:errcheck

	cat, err := loadCatalog(cfg, formatter)
	if err != nil {
		return err
	}
	g, err := loadGraphFile(graphPath)
	if err != nil {
		return err
	}

	errs := graph.Errors(validator.Validate(g, cat))
	if len(errs) == 0 {
		return formatter.Success("graph is already valid, nothing to fix")
	}
	formatter.VerboseLog("fixing %d blocking diagnostics", len(errs))

	gen := llm.NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.RequestTimeout)
	orch := orchestrator.New(gen, cat, log,
		orchestrator.WithTemperature(cfg.Temperature),
		orchestrator.WithMaxTokens(cfg.MaxTokens),
	)

	result, err := orch.Fix(ctx, orchestrator.FixRequest{Graph: g, Errors: errs})
	if err != nil {
		return WrapExitError(ExitFailure, "fix failed", err)
	}

	recorder := openRecorder(ctx, cfg.SessionDB, opts.NoRecord, formatter)
	defer recorder.Close()
	hash, err := result.Graph.Hash()
	if err != nil {
		return WrapExitError(ExitFailure, "hashing repaired graph", err)
	}
	recorder.Record(ctx, store.Attempt{
		RequestID:  uuid.Must(uuid.NewV7()).String(),
		Phase:      "fix",
		GraphHash:  hash,
		ErrorCount: len(graph.Errors(result.Diagnostics)),
		WarnCount:  len(result.Diagnostics) - len(graph.Errors(result.Diagnostics)),
		Fallback:   result.Fallback,
	})

	out := opts.OutFile
	if out == "" {
		out = graphPath
	}
	data, err := result.Graph.Encode()
	if err != nil {
		return WrapExitError(ExitFailure, "encoding graph", err)
	}
	if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
		return WrapExitError(ExitCommandError, "writing graph file", err)
	}

	remaining := graph.Errors(result.Diagnostics)
	payload := struct {
		*orchestrator.FixResult
		OutFile string `json:"outFile"`
	}{result, out}
	if formatter.Format == "json" {
		if err := formatter.Success(payload); err != nil {
			return err
		}
	} else {
		text := "repaired graph written to " + out + "\n"
		if len(result.Diagnostics) > 0 {
			text += renderDiagnostics(result.Diagnostics)
		}
		if err := formatter.SuccessText(text, payload); err != nil {
			return err
		}
	}
	if len(remaining) > 0 {
		return NewExitError(ExitFailure, "blocking diagnostics remain after fix")
	}
	return nil
}
