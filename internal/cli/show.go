package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MichalZajkowski/jira-build-health-action/internal/usecase"
)

func showCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "show",
		Short: "Print the build health property stored on a Jira issue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := a.workspaceCtx()
			if err != nil {
				return err
			}

			settings := readJiraSettings(a.vip, ws.cfg)
			if err := settings.validate(); err != nil {
				return err
			}

			client, err := settings.client()
			if err != nil {
				return err
			}

			out, err := usecase.NewShowProperty(client).Execute(cmd.Context(), settings.Issue, a.vip.GetString("query"))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	addJiraFlags(c)
	c.Flags().StringP("query", "q", "", "JSONPath expression selecting part of the property (e.g., $.summary.score)")
	return c
}
