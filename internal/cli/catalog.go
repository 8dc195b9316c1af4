package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/catalog"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/graph"
)

// NewCatalogCommand creates the catalog command group.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the node-type catalog",
	}
	cmd.AddCommand(newCatalogListCommand(rootOpts))
	cmd.AddCommand(newCatalogSearchCommand(rootOpts))
	cmd.AddCommand(newCatalogAppCommand(rootOpts))
	return cmd
}

func newCatalogListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List every node type",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			cat, err := catalogFor(rootOpts, formatter)
			if err != nil {
				return err
			}
			entries := cat.Entries()
			if formatter.Format == "json" {
				return formatter.Success(entries)
			}
			var sb strings.Builder
			for _, kind := range []graph.Kind{graph.KindTrigger, graph.KindTransform, graph.KindAction} {
				for _, e := range cat.ByKind(kind) {
					fmt.Fprintf(&sb, "%-40s %s\n", e.ID, e.Description)
				}
			}
			fmt.Fprintf(&sb, "%d node types\n", len(entries))
			return formatter.SuccessText(sb.String(), entries)
		},
	}
}

func newCatalogSearchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "search <query>",
		Short:         "Search applications by name or capability",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			cat, err := catalogFor(rootOpts, formatter)
			if err != nil {
				return err
			}
			apps := cat.SearchApps(args[0])
			if formatter.Format == "json" {
				return formatter.Success(apps)
			}
			var sb strings.Builder
			for _, a := range apps {
				fmt.Fprintf(&sb, "%-20s %d triggers, %d actions, %d transforms\n",
					a.Name, a.Triggers, a.Actions, a.Transform)
			}
			if len(apps) == 0 {
				sb.WriteString("no matching apps\n")
			}
			return formatter.SuccessText(sb.String(), apps)
		},
	}
}

func newCatalogAppCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "app <name>",
		Short:         "Show the triggers and actions one app offers",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			cat, err := catalogFor(rootOpts, formatter)
			if err != nil {
				return err
			}
			fns := cat.AppFunctions(args[0])
			if formatter.Format == "json" {
				return formatter.Success(fns)
			}
			var sb strings.Builder
			fmt.Fprintf(&sb, "%s: %d triggers, %d actions\n", fns.App, len(fns.Triggers), len(fns.Actions))
			for _, e := range fns.Triggers {
				fmt.Fprintf(&sb, "  trigger %-30s %s\n", e.Function, e.Description)
			}
			for _, e := range fns.Actions {
				fmt.Fprintf(&sb, "  action  %-30s %s\n", e.Function, e.Description)
			}
			return formatter.SuccessText(sb.String(), fns)
		},
	}
}

func catalogFor(rootOpts *RootOptions, formatter *OutputFormatter) (*catalog.Catalog, error) {
	cfg, log, err := loadConfig(rootOpts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "loading configuration", err)
	}
	defer log.Sync() //nolint:errcheck
	return loadCatalog(cfg, formatter)
}
