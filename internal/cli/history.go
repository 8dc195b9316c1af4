package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	RequestID string
	Limit     int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{}
	cmd := &cobra.Command{
		Use:           "history",
		Short:         "Show recent plan/fix/compile activity from the session log",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(rootOpts, opts, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.RequestID, "request", "", "show all attempts for one request id")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "number of attempts to show")
	return cmd
}

func runHistory(rootOpts *RootOptions, opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)
	ctx := cmd.Context()

	cfg, log, err := loadConfig(rootOpts)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading configuration", err)
	}
	defer log.Sync() //nolint:errcheck

	st, err := store.Open(cfg.SessionDB)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening session log", err)
	}
	defer st.Close()

	var attempts []store.Attempt
	if opts.RequestID != "" {
		attempts, err = st.ByRequest(ctx, opts.RequestID)
	} else {
		attempts, err = st.List(ctx, opts.Limit)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "reading session log", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(attempts)
	}
	var sb strings.Builder
	for _, a := range attempts {
		note := ""
		if a.Fallback {
			note = " [fallback]"
		}
		fmt.Fprintf(&sb, "%s  %-8s errors=%d warns=%d%s  %s\n",
			a.CreatedAt.Format("2006-01-02 15:04:05"), a.Phase, a.ErrorCount, a.WarnCount, note, a.RequestID)
	}
	if len(attempts) == 0 {
		sb.WriteString("no recorded attempts\n")
	}
	return formatter.SuccessText(sb.String(), attempts)
}
