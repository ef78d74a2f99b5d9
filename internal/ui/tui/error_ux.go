package tui

import (
	"errors"
	"strings"

	"github.com/MichalZajkowski/jira-build-health-action/internal/domain"
)

func userMessage(err error) string {
	if err == nil {
		return ""
	}

	var oe *domain.OpError
	if errors.As(err, &oe) {
		switch oe.Kind {
		case domain.KindNotFound:
			if strings.Contains(oe.Op, "runstore") {
				return "Report not found"
			}
			return "Not found"

		case domain.KindInvalidInput:
			return "Report file is corrupted"

		case domain.KindInvalidConfig:
			if looksLikeYAMLProblem(err.Error()) {
				return "Invalid .buildhealth.yaml"
			}
			return "Invalid config"

		default:
			return "Unexpected error (see logs)"
		}
	}

	if errors.Is(err, domain.ErrNotFound) {
		return "Not found"
	}
	return "Unexpected error (see logs)"
}

func looksLikeYAMLProblem(s string) bool {
	ls := strings.ToLower(s)
	return strings.Contains(ls, "yaml:") || strings.Contains(ls, "did not find expected") || strings.Contains(ls, "cannot unmarshal")
}
