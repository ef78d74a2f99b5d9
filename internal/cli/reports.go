package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MichalZajkowski/jira-build-health-action/internal/infra/logger"
	"github.com/MichalZajkowski/jira-build-health-action/internal/ui/tui"
)

func reportsCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "reports",
		Short: "Inspect reports saved by previous analyses",
	}

	c.AddCommand(reportsListCmd(a), reportsShowCmd(a))
	return c
}

func reportsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := a.workspaceCtx()
			if err != nil {
				return err
			}

			refs, err := ws.store.ListReports()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(refs) == 0 {
				fmt.Fprintln(out, "(no reports found)")
				return nil
			}

			fmt.Fprintf(out, "Workspace: %s\n\n", ws.root)
			for _, r := range refs {
				issue := r.IssueKey
				if issue == "" {
					issue = "-"
				}
				fmt.Fprintf(out, "- %s  %-10s score %3d  %s  (%s)\n",
					r.ID, issue, r.Score, r.Status, r.StartedAt.Local().Format(time.DateTime))
			}
			return nil
		},
	}
}

func reportsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one saved report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspaceCtx()
			if err != nil {
				return err
			}

			artifact, err := ws.store.LoadReport(args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(artifact)
		},
	}
}

func browseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse saved reports in a terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ws, err := a.workspaceCtx()
			if err != nil {
				return err
			}

			return tui.Run(tui.Deps{
				Store:  ws.store,
				Root:   ws.root,
				Logger: logger.L(),
				Debug:  a.debug,
			})
		},
	}
}
