package ports

import (
	"context"

	"github.com/MichalZajkowski/jira-build-health-action/internal/domain"
)

// ReportPublisher stores a health report on an issue in an external tracker.
type ReportPublisher interface {
	Publish(ctx context.Context, issueKey string, report domain.HealthReport) (statusCode int, err error)
}

// PropertyFetcher reads back the stored report document.
type PropertyFetcher interface {
	Fetch(ctx context.Context, issueKey string) ([]byte, error)
}
