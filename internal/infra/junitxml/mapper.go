package junitxml

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MichalZajkowski/jira-build-health-action/internal/domain"
)

const (
	rootSuite  = "testsuite"
	rootSuites = "testsuites"
)

// mapDocument converts a decoded JUnit document into a domain Suite.
func mapDocument(path string, doc xmlDocument) (domain.Suite, error) {
	suite := domain.Suite{
		Path: path,
		Name: doc.Name,
	}

	switch doc.XMLName.Local {
	case rootSuite:
		suite.Duration = parseSeconds(doc.Time)
		suite.Cases = mapCases(doc.Cases)

	case rootSuites:
		var sum float64
		for _, s := range doc.Suites {
			sum += parseSeconds(s.Time)
			suite.Cases = append(suite.Cases, mapCases(s.Cases)...)
		}
		if doc.Time != nil {
			suite.Duration = parseSeconds(doc.Time)
		} else {
			suite.Duration = sum
		}

	default:
		return domain.Suite{}, &domain.OpError{
			Op:   "junit.map",
			Kind: domain.KindInvalidInput,
			Path: path,
			Err:  fmt.Errorf("unexpected root element <%s>: %w", doc.XMLName.Local, domain.ErrInvalidInput),
		}
	}

	if suite.Cases == nil {
		suite.Cases = []domain.TestCase{}
	}
	return suite, nil
}

func mapCases(in []xmlCase) []domain.TestCase {
	out := make([]domain.TestCase, 0, len(in))
	for _, c := range in {
		tc := domain.TestCase{
			Name:      c.Name,
			ClassName: c.ClassName,
			Duration:  parseSeconds(c.Time),
		}
		if c.Failure != nil {
			tc.Failed = true
			tc.FailureMessage = messageOrDefault(c.Failure.Message)
		}
		if c.Error != nil {
			tc.Errored = true
			tc.ErrorMessage = messageOrDefault(c.Error.Message)
		}
		if c.Skipped != nil {
			tc.Skipped = true
		}
		out = append(out, tc)
	}
	return out
}

// messageOrDefault keeps an explicitly empty message; only a missing attribute
// falls back to domain.NoMessage.
func messageOrDefault(m *string) string {
	if m == nil {
		return domain.NoMessage
	}
	return *m
}

// parseSeconds returns 0 for missing or malformed values. A lone comma is read
// as a decimal separator ("1,5" is 1.5s); any other comma makes the value malformed.
func parseSeconds(v *string) float64 {
	if v == nil {
		return 0
	}
	s := strings.TrimSpace(*v)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
