package tui

import "github.com/MichalZajkowski/jira-build-health-action/internal/domain"

type reportsLoadedMsg struct {
	refs []domain.ReportRef
	err  error
}

type reportLoadedMsg struct {
	id       string
	artifact domain.ReportArtifact
	err      error
}
