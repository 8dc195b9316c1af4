package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/catalog"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/config"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/graph"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/logging"
)

// newFormatter builds the OutputFormatter for a command invocation.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// loadConfig resolves config plus a logger matching it.
func loadConfig(opts *RootOptions) (*config.Config, *zap.SugaredLogger, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, nil, err
	}
	debug := cfg.Debug || opts.Verbose
	log, err := logging.New(cfg.LogFormat, debug)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// loadCatalog loads the catalog from the configured directory, falling back
// to the builtin generic types when no directory exists yet.
func loadCatalog(cfg *config.Config, formatter *OutputFormatter) (*catalog.Catalog, error) {
	if _, err := os.Stat(cfg.CatalogDir); os.IsNotExist(err) {
		formatter.VerboseLog("catalog dir %s not found, using builtin node types only", cfg.CatalogDir)
		return catalog.New(catalog.Builtin())
	}
	cat, err := catalog.LoadDir(cfg.CatalogDir)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "loading catalog", err)
	}
	return cat, nil
}

// loadGraphFile reads and decodes a graph JSON file.
func loadGraphFile(path string) (*graph.NodeGraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("reading graph file %s", path), err)
	}
	g, err := graph.Decode(data)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("decoding graph file %s", path), err)
	}
	return g, nil
}
