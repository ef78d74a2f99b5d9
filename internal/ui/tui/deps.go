package tui

import (
	"log/slog"

	"github.com/MichalZajkowski/jira-build-health-action/internal/ports"
)

type Deps struct {
	Store ports.ArtifactStore
	Root  string

	Logger *slog.Logger
	Debug  bool
}
