package ports

import "github.com/MichalZajkowski/jira-build-health-action/internal/domain"

// SuiteLoader loads test suites from a source (e.g., JUnit XML files on disk).
type SuiteLoader interface {
	LoadSuite(path string) (domain.Suite, error)
}
