package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/graph"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/validator"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool               `json:"valid"`
	Diagnostics []graph.Diagnostic `json:"diagnostics,omitempty"`
	Advisories  []graph.Diagnostic `json:"advisories,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var withGuardrails bool
	cmd := &cobra.Command{
		Use:   "validate <graph.json>",
		Short: "Validate a workflow graph against the catalog",
		Long: `Validate runs the structural passes (shape, id uniqueness, acyclicity,
type existence, parameters, scope coverage, edge integrity) and reports every
finding. A graph passes iff no finding has error severity; warnings never
block compilation.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidateCmd(rootOpts, args[0], withGuardrails, cmd)
		},
	}
	cmd.Flags().BoolVar(&withGuardrails, "guardrails", true, "run the advisory safety pass as well")
	return cmd
}

func runValidateCmd(rootOpts *RootOptions, graphPath string, withGuardrails bool, cmd *cobra.Command) error {
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

	diags := validator.Validate(g, cat)
	result := ValidationResult{
		Valid:       !graph.HasErrors(diags),
		Diagnostics: diags,
	}
	if withGuardrails {
		result.Advisories = validator.Guardrails(g, cat, validator.DefaultPolicies()...)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		var sb strings.Builder
		if result.Valid {
			fmt.Fprintf(&sb, "graph %q is valid (%d diagnostics)\n", g.Name, len(diags))
		} else {
			fmt.Fprintf(&sb, "graph %q has blocking diagnostics\n", g.Name)
		}
		if len(diags) > 0 {
			sb.WriteString(renderDiagnostics(diags))
		}
		if len(result.Advisories) > 0 {
			sb.WriteString("Advisories:\n")
			sb.WriteString(renderDiagnostics(result.Advisories))
		}
		if err := formatter.SuccessText(sb.String(), result); err != nil {
			return err
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "validation failed")
	}
	return nil
}
