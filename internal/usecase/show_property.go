package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MichalZajkowski/jira-build-health-action/internal/domain"
	"github.com/MichalZajkowski/jira-build-health-action/internal/ports"
	"github.com/MichalZajkowski/jira-build-health-action/internal/usecase/query"
)

type ShowProperty struct {
	fetcher ports.PropertyFetcher
}

func NewShowProperty(fetcher ports.PropertyFetcher) *ShowProperty {
	return &ShowProperty{fetcher: fetcher}
}

// Execute reads the stored report of an issue. Without expr the whole
// document is returned indented; with expr only the selected value.
func (uc *ShowProperty) Execute(ctx context.Context, issueKey, expr string) (string, error) {
	if strings.TrimSpace(issueKey) == "" {
		return "", &domain.OpError{
			Op:   "show.execute",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("issue key is required: %w", domain.ErrInvalidConfig),
		}
	}

	raw, err := uc.fetcher.Fetch(ctx, issueKey)
	if err != nil {
		return "", err
	}

	doc, err := propertyValue(raw)
	if err != nil {
		return "", &domain.OpError{Op: "show.decode", Kind: domain.KindInvalidInput, Err: err}
	}

	if strings.TrimSpace(expr) == "" {
		var out bytes.Buffer
		if err := json.Indent(&out, doc, "", "  "); err != nil {
			return "", &domain.OpError{Op: "show.decode", Kind: domain.KindInvalidInput, Err: err}
		}
		return out.String(), nil
	}

	v, err := query.Select(doc, expr)
	if err != nil {
		return "", &domain.OpError{Op: "show.query", Kind: domain.KindInvalidInput, Err: err}
	}
	return v, nil
}

// Jira wraps entity properties as {"key": ..., "value": ...}.
func propertyValue(raw []byte) ([]byte, error) {
	var envelope struct {
		Key   string          `json:"key"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("property is not valid JSON: %w", err)
	}
	if envelope.Key != "" && len(envelope.Value) > 0 {
		return envelope.Value, nil
	}
	return raw, nil
}
