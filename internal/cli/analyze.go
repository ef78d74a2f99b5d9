package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MichalZajkowski/jira-build-health-action/internal/domain"
	"github.com/MichalZajkowski/jira-build-health-action/internal/infra/history"
	"github.com/MichalZajkowski/jira-build-health-action/internal/infra/junitxml"
	"github.com/MichalZajkowski/jira-build-health-action/internal/infra/logger"
	"github.com/MichalZajkowski/jira-build-health-action/internal/ports"
	"github.com/MichalZajkowski/jira-build-health-action/internal/usecase"
)

func analyzeCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "analyze <junit-xml>...",
		Short: "Score JUnit XML results and store the health report on a Jira issue",
		Long: "Parses one or more JUnit XML files (globs allowed), scores the build, detects flaky tests\n" +
			"and uploads the resulting JSON to the issue property. Settings may also come from\n" +
			"BUILDHEALTH_* environment variables or --config.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspaceCtx()
			if err != nil {
				return err
			}

			vip := a.vip
			format := vip.GetString("format")
			if format != "pretty" && format != "json" && format != "" {
				return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
			}

			dryRun := vip.GetBool("dry-run")
			settings := readJiraSettings(vip, ws.cfg)
			if !dryRun {
				if err := settings.validate(); err != nil {
					return err
				}
			}

			scoring := ws.cfg.Scoring
			if vip.IsSet("penalty") {
				scoring.FailurePenalty = vip.GetInt("penalty")
			}
			if scoring.FailurePenalty < 0 {
				return &domain.OpError{
					Op:   "cli.analyze",
					Kind: domain.KindInvalidConfig,
					Err:  fmt.Errorf("penalty must be >= 0: %w", domain.ErrInvalidConfig),
				}
			}

			out := cmd.OutOrStdout()
			opts := []usecase.AnalyzeOption{
				usecase.WithExpander(junitxml.Expand),
				usecase.WithScoring(scoring),
				usecase.WithLogger(logger.L()),
			}
			if format != "json" {
				opts = append(opts, usecase.WithObserver(&prettyProgress{w: out}))
			}
			if store := ws.reportStore(vip.GetBool("no-save")); store != nil {
				opts = append(opts, usecase.WithArtifactStore(store))
			}

			dbPath, err := ws.historyPath(vip.GetString("history-db"), vip.GetBool("no-history"))
			if err != nil {
				return err
			}
			if dbPath != "" {
				h, err := history.Open(dbPath)
				if err != nil {
					logger.L().Warn("history.open_failed", "path", dbPath, "error", err)
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: flaky history disabled: %v\n", err)
				} else {
					defer func() { _ = h.Close() }()
					opts = append(opts, usecase.WithHistory(h, ws.cfg.Defaults.HistoryRuns))
				}
			}

			var publisher ports.ReportPublisher
			if !dryRun {
				client, err := settings.client()
				if err != nil {
					return err
				}
				publisher = client
			}

			uc := usecase.NewAnalyzeBuilds(ws.loader, publisher, opts...)
			res, execErr := uc.Execute(cmd.Context(), usecase.AnalyzeInput{
				Files:    args,
				IssueKey: settings.Issue,
				DryRun:   dryRun,
			})

			if format == "json" {
				if err := printAnalysisJSON(out, res, dryRun); err != nil {
					return err
				}
			} else {
				printAnalysisOutcome(out, res, dryRun, execErr)
			}
			return execErr
		},
	}

	addJiraFlags(c)
	c.Flags().Int("penalty", domain.DefaultFailurePenalty, "Points lost per failing test (default from workspace config)")
	c.Flags().Bool("dry-run", false, "Score and print the report without uploading it")
	c.Flags().Bool("no-save", false, "Do not save the report artifact under reports/")
	c.Flags().String("history-db", "", "SQLite database with per-test history across runs (enables cross-run flaky detection)")
	c.Flags().Bool("no-history", false, "Do not read or write the test history database")
	c.Flags().String("format", "pretty", "Output format: pretty|json")
	return c
}

// prettyProgress prints progress the way CI logs read best: one line per step.
type prettyProgress struct {
	w io.Writer
}

func (p *prettyProgress) Started(files []string) {
	fmt.Fprintf(p.w, "Processing %d XML file(s)...\n", len(files))
}

func (p *prettyProgress) FileSkipped(problem domain.FileProblem) {
	if problem.Kind == domain.KindNotFound {
		fmt.Fprintf(p.w, "Error: XML file not found at %s\n", problem.Path)
		return
	}
	fmt.Fprintf(p.w, "Error parsing XML file %s: %s\n", problem.Path, problem.Message)
}

func (p *prettyProgress) Scored(report domain.HealthReport) {
	fmt.Fprintln(p.w, "Finished processing build files.")
	fmt.Fprintln(p.w, "Generated JSON Payload:")
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		fmt.Fprintf(p.w, "(could not render payload: %v)\n", err)
		return
	}
	fmt.Fprintln(p.w, string(b))
}

func (p *prettyProgress) Publishing(issueKey string) {
	fmt.Fprintf(p.w, "Uploading data to Jira issue %s...\n", issueKey)
}

func printAnalysisOutcome(out io.Writer, res usecase.AnalyzeResult, dryRun bool, err error) {
	switch {
	case res.Published:
		fmt.Fprintln(out, "Successfully uploaded build health data to Jira.")
		fmt.Fprintf(out, "Status Code: %d\n", res.StatusCode)
	case dryRun && err == nil:
		fmt.Fprintln(out, "Dry run: upload skipped.")
	}

	if res.ReportID != "" {
		fmt.Fprintf(out, "Report saved: %s\n", res.ReportID)
	}

	if err == nil {
		return
	}
	var ue *domain.UploadError
	if errors.As(err, &ue) {
		fmt.Fprintf(out, "Error uploading to Jira: %s\n", ue.Error())
		if ue.StatusCode != 0 {
			fmt.Fprintf(out, "Response Status: %d\n", ue.StatusCode)
			fmt.Fprintf(out, "Response Body: %s\n", ue.Body)
		}
	}
}

type analysisJSON struct {
	RunID      string               `json:"run_id"`
	ReportID   string               `json:"report_id,omitempty"`
	Files      []string             `json:"files"`
	Problems   []domain.FileProblem `json:"problems"`
	DryRun     bool                 `json:"dry_run"`
	Published  bool                 `json:"published"`
	StatusCode int                  `json:"status_code,omitempty"`
	Payload    domain.HealthReport  `json:"payload"`
}

func printAnalysisJSON(w io.Writer, res usecase.AnalyzeResult, dryRun bool) error {
	files := res.Files
	if files == nil {
		files = []string{}
	}
	problems := res.Problems
	if problems == nil {
		problems = []domain.FileProblem{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(analysisJSON{
		RunID:      res.RunID,
		ReportID:   res.ReportID,
		Files:      files,
		Problems:   problems,
		DryRun:     dryRun,
		Published:  res.Published,
		StatusCode: res.StatusCode,
		Payload:    res.Report,
	})
}
