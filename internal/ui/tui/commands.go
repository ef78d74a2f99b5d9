package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MichalZajkowski/jira-build-health-action/internal/ports"
)

func cmdLoadReports(store ports.ArtifactStore) tea.Cmd {
	return func() tea.Msg {
		if store == nil {
			return reportsLoadedMsg{err: errors.New("report store is nil")}
		}
		refs, err := store.ListReports()
		return reportsLoadedMsg{refs: refs, err: err}
	}
}

func cmdLoadReport(store ports.ArtifactStore, id string) tea.Cmd {
	return func() tea.Msg {
		if store == nil {
			return reportLoadedMsg{id: id, err: errors.New("report store is nil")}
		}
		a, err := store.LoadReport(id)
		return reportLoadedMsg{id: id, artifact: a, err: err}
	}
}
