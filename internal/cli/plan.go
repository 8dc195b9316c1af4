package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/graph"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/llm"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/orchestrator"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/store"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/validator"
)

// PlanOptions holds flags for the plan command.
type PlanOptions struct {
	Answers     []string // id=value pairs
	SkipClarify bool
	OutFile     string
	NoRecord    bool
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlanOptions{}
	cmd := &cobra.Command{
		Use:   "plan <prompt>",
		Short: "Plan a workflow graph from a natural-language request",
		Long: `Plan runs the clarify and plan phases: the model is asked whether the
request carries enough detail, then builds a workflow graph against the node
catalog. The graph is validated and automatically repaired once before being
returned.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(rootOpts, opts, args[0], cmd)
		},
	}
	cmd.Flags().StringArrayVar(&opts.Answers, "answer", nil, "clarification answer as id=value (repeatable)")
	cmd.Flags().BoolVar(&opts.SkipClarify, "skip-clarify", false, "go straight to planning")
	cmd.Flags().StringVarP(&opts.OutFile, "out", "o", "", "write the planned graph JSON to this file")
	cmd.Flags().BoolVar(&opts.NoRecord, "no-record", false, "do not record this run in the session log")
	return cmd
}

func runPlan(rootOpts *RootOptions, opts *PlanOptions, prompt string, cmd *cobra.Command) error {
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

	gen := llm.NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.RequestTimeout)
	if cfg.APIKey == "" {
		log.Warn("no API key configured; planning will use the deterministic fallback")
	}
	orch := orchestrator.New(gen, cat, log,
		orchestrator.WithTemperature(cfg.Temperature),
		orchestrator.WithMaxTokens(cfg.MaxTokens),
	)

	requestID := uuid.Must(uuid.NewV7()).String()
	recorder := openRecorder(ctx, cfg.SessionDB, opts.NoRecord, formatter)
	defer recorder.Close()

	answers, err := parseAnswers(opts.Answers)
	if err != nil {
		return WrapExitError(ExitCommandError, "parsing answers", err)
	}

	if !opts.SkipClarify && len(answers) == 0 {
		clarify, err := orch.Clarify(ctx, prompt)
		if err != nil {
			recorder.Record(ctx, store.Attempt{RequestID: requestID, Phase: "clarify", Prompt: prompt, ErrorCount: 1})
			return WrapExitError(ExitFailure, "clarification failed", err)
		}
		recorder.Record(ctx, store.Attempt{RequestID: requestID, Phase: "clarify", Prompt: prompt})
		if clarify.NeedsMoreInfo {
			return outputQuestions(formatter, clarify)
		}
		formatter.VerboseLog("clarified intent: %s (confidence %.2f)", clarify.Summary, clarify.Confidence)
	}

	result, err := orch.Plan(ctx, orchestrator.PlanRequest{Prompt: prompt, Answers: answers})
	if err != nil {
		recorder.Record(ctx, store.Attempt{RequestID: requestID, Phase: "plan", Prompt: prompt, ErrorCount: 1})
		return WrapExitError(ExitFailure, "planning failed", err)
	}

	hash, err := result.Graph.Hash()
	if err != nil {
		return WrapExitError(ExitFailure, "hashing planned graph", err)
	}
	recorder.Record(ctx, store.Attempt{
		RequestID:  requestID,
		Phase:      "plan",
		Prompt:     prompt,
		GraphHash:  hash,
		ErrorCount: len(graph.Errors(result.Diagnostics)),
		WarnCount:  len(result.Diagnostics) - len(graph.Errors(result.Diagnostics)),
		Fallback:   result.Fallback,
	})

	advisories := validator.Guardrails(result.Graph, cat, validator.DefaultPolicies()...)

	if opts.OutFile != "" {
		data, err := result.Graph.Encode()
		if err != nil {
			return WrapExitError(ExitFailure, "encoding graph", err)
		}
		if err := os.WriteFile(opts.OutFile, append(data, '\n'), 0o644); err != nil {
			return WrapExitError(ExitCommandError, "writing graph file", err)
		}
		formatter.VerboseLog("wrote graph to %s", opts.OutFile)
	}

	return outputPlanResult(formatter, result, advisories)
}

func parseAnswers(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		id, value, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("answer %q is not id=value", p)
		}
		out[id] = value
	}
	return out, nil
}

func outputQuestions(formatter *OutputFormatter, clarify *orchestrator.ClarifyResult) error {
	if formatter.Format == "json" {
		if err := formatter.Success(clarify); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "clarification needed")
	}
	var sb strings.Builder
	sb.WriteString("The request needs clarification:\n")
	for _, q := range clarify.Questions {
		fmt.Fprintf(&sb, "  [%s] %s\n", q.ID, q.Text)
	}
	sb.WriteString("\nRe-run with --answer <id>=<value> for each question.\n")
	if err := formatter.SuccessText(sb.String(), clarify); err != nil {
		return err
	}
	return NewExitError(ExitFailure, "clarification needed")
}

func outputPlanResult(formatter *OutputFormatter, result *orchestrator.PlanResult, advisories []graph.Diagnostic) error {
	payload := struct {
		*orchestrator.PlanResult
		Advisories []graph.Diagnostic `json:"advisories,omitempty"`
	}{result, advisories}

	errs := graph.Errors(result.Diagnostics)
	if formatter.Format == "json" {
		if err := formatter.Success(payload); err != nil {
			return err
		}
		if len(errs) > 0 {
			return NewExitError(ExitFailure, "planned graph has blocking diagnostics")
		}
		return nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Planned %q: %d nodes, %d edges\n",
		result.Graph.Name, len(result.Graph.Nodes), len(result.Graph.Edges))
	if result.Rationale != "" {
		fmt.Fprintf(&sb, "Rationale: %s\n", result.Rationale)
	}
	if result.Fallback {
		sb.WriteString("Note: deterministic fallback graph (model unavailable)\n")
	}
	if len(result.Diagnostics) > 0 {
		sb.WriteString("Diagnostics:\n")
		sb.WriteString(renderDiagnostics(result.Diagnostics))
	}
	if len(advisories) > 0 {
		sb.WriteString("Advisories:\n")
		sb.WriteString(renderDiagnostics(advisories))
	}
	if err := formatter.SuccessText(sb.String(), payload); err != nil {
		return err
	}
	if len(errs) > 0 {
		return NewExitError(ExitFailure, "planned graph has blocking diagnostics")
	}
	return nil
}
