package ports

import "github.com/MichalZajkowski/jira-build-health-action/internal/domain"

// ArtifactStore persists report artifacts for later inspection.
type ArtifactStore interface {
	SaveReport(artifact domain.ReportArtifact) (id string, err error)
	ListReports() ([]domain.ReportRef, error)
	LoadReport(id string) (domain.ReportArtifact, error)
}
