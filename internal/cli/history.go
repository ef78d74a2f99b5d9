package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MichalZajkowski/jira-build-health-action/internal/domain"
	"github.com/MichalZajkowski/jira-build-health-action/internal/infra/history"
)

func historyCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "history",
		Short: "Maintain the per-test history used for flaky detection",
	}

	c.AddCommand(historyPruneCmd(a))
	return c
}

func historyPruneCmd(a *app) *cobra.Command {
	var dbFlag string
	var keep int

	c := &cobra.Command{
		Use:   "prune",
		Short: "Drop all but the newest runs from the history database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := a.workspaceCtx()
			if err != nil {
				return err
			}

			path, err := ws.historyPath(dbFlag, false)
			if err != nil {
				return err
			}
			if path == "" {
				return &domain.OpError{
					Op:   "cli.history",
					Kind: domain.KindInvalidConfig,
					Err:  fmt.Errorf("no history database (use --history-db or run inside a workspace): %w", domain.ErrInvalidConfig),
				}
			}

			h, err := history.Open(path)
			if err != nil {
				return err
			}
			defer func() { _ = h.Close() }()

			removed, err := h.Prune(cmd.Context(), keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d run(s) from %s\n", removed, path)
			return nil
		},
	}

	c.Flags().StringVar(&dbFlag, "history-db", "", "SQLite history database (default from workspace config)")
	c.Flags().IntVar(&keep, "keep", domain.DefaultConfig().Defaults.HistoryRuns, "Number of newest runs to keep")
	return c
}
