package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/compiler"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/graph"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/validator"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	OutDir string
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{}
	cmd := &cobra.Command{
		Use:   "compile <graph.json>",
		Short: "Compile a validated graph into a deployable bundle",
		Long: `Compile emits the source bundle for a workflow graph: entry points per
trigger discipline, the shared node functions in dependency order, and a
manifest declaring scopes and secret placeholders. The graph is validated
first; compilation refuses graphs with blocking diagnostics.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(rootOpts, opts, args[0], cmd)
		},
	}
	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", "", "write bundle files into this directory")
	return cmd
}

func runCompile(rootOpts *RootOptions, opts *CompileOptions, graphPath string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

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

	// The compiler itself assumes a pre-validated graph; the CLI is the
	// caller, so the precondition is enforced here.
	diags := validator.Validate(g, cat)
	if graph.HasErrors(diags) {
		if err := formatter.Error("INVALID_GRAPH", "graph has blocking diagnostics; run validate or fix first",
			graph.Errors(diags)); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "graph has blocking diagnostics")
	}

	bundle, err := compiler.Compile(g, cat)
	if err != nil {
		return WrapExitError(ExitFailure, "compilation failed", err)
	}

	if opts.OutDir != "" {
		if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
			return WrapExitError(ExitCommandError, "creating output directory", err)
		}
		for _, f := range bundle.Files {
			path := filepath.Join(opts.OutDir, f.Name)
			if err := os.WriteFile(path, []byte(f.Content), 0o644); err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("writing %s", path), err)
			}
		}
		formatter.VerboseLog("wrote %d files to %s", len(bundle.Files), opts.OutDir)
	}

	if formatter.Format == "json" {
		return formatter.Success(bundle)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "compiled %q: %d files, %d lines (entry %s)\n",
		g.Name, bundle.Stats.FileCount, bundle.Stats.TotalLines, bundle.Entry)
	fmt.Fprintf(&sb, "  webhook entry: %v\n", bundle.Stats.HasWebhook)
	fmt.Fprintf(&sb, "  scheduled entry: %v\n", bundle.Stats.HasScheduled)
	for _, f := range bundle.Files {
		fmt.Fprintf(&sb, "  %s (%d lines)\n", f.Name, strings.Count(f.Content, "\n"))
	}
	return formatter.SuccessText(sb.String(), bundle)
}
