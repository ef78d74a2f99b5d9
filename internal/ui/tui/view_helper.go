package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MichalZajkowski/jira-build-health-action/internal/domain"
)

func clampString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))

	n := 0
	for _, r := range s {
		if n >= maxLen {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String() + "…"
}

// firstLine keeps assertion messages that embed stack traces readable.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i]) + " …"
	}
	return s
}

func renderReportDetails(t Theme, a domain.ReportArtifact, width int) string {
	var b strings.Builder
	r := a.Report

	issue := a.IssueKey
	if issue == "" {
		issue = "(none)"
	}
	published := "no"
	if a.Published {
		published = "yes"
	}

	fmt.Fprintf(&b, "Issue:     %s\n", issue)
	fmt.Fprintf(&b, "Run ID:    %s\n", a.RunID)
	fmt.Fprintf(&b, "Started:   %s\n", a.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Published: %s\n\n", published)

	fmt.Fprintf(&b, "Score:     %d\n", r.Summary.Score)
	fmt.Fprintf(&b, "Status:    %s\n", t.status(string(r.Summary.Status)))
	fmt.Fprintf(&b, "Duration:  %.4fs\n\n", r.Summary.TotalDuration)

	msgWidth := width - 8
	if msgWidth < 20 {
		msgWidth = 60
	}

	b.WriteString(fmt.Sprintf("Current failures (%d):\n", len(r.CurrentFailures)))
	if len(r.CurrentFailures) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, f := range r.CurrentFailures {
		b.WriteString("  ✗ ")
		b.WriteString(f.Test)
		b.WriteString("\n    ")
		b.WriteString(clampString(firstLine(f.Error), msgWidth))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("Flaky tests (%d):\n", len(r.FlakyTests)))
	if len(r.FlakyTests) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, name := range r.FlakyTests {
		b.WriteString("  ")
		b.WriteString(t.Flaky.Render("~ " + name))
		b.WriteString("\n")
	}

	if len(a.Files) > 0 {
		b.WriteString("\nFiles:\n")
		for _, f := range a.Files {
			b.WriteString("  - ")
			b.WriteString(f)
			b.WriteString("\n")
		}
	}

	if len(a.Problems) > 0 {
		b.WriteString("\nSkipped files:\n")
		for _, p := range a.Problems {
			b.WriteString("  - ")
			b.WriteString(p.Path)
			b.WriteString(" [")
			b.WriteString(string(p.Kind))
			b.WriteString("] ")
			b.WriteString(clampString(p.Message, msgWidth))
			b.WriteString("\n")
		}
	}

	return b.String()
}
