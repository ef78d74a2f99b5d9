package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/MichalZajkowski/jira-build-health-action/internal/domain"
)

// BasicAuth holds credentials sent with every request built by BuildJSONRequest.
type BasicAuth struct {
	Username string
	Password string
}

func (a BasicAuth) empty() bool {
	return a.Username == "" && a.Password == ""
}

// RequestSpec describes a JSON API call.
type RequestSpec struct {
	Method  string
	URL     string
	Headers map[string]string
	Auth    BasicAuth

	// Body is marshalled as JSON when non-nil.
	Body any
}

// BuildJSONRequest builds an HTTP request that sends and accepts JSON.
func BuildJSONRequest(ctx context.Context, spec RequestSpec) (*http.Request, error) {
	if strings.TrimSpace(spec.URL) == "" {
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindInvalidConfig,
			Err:  domain.ErrInvalidConfig,
		}
	}

	method := strings.ToUpper(strings.TrimSpace(spec.Method))
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader = http.NoBody
	if spec.Body != nil {
		payload, err := json.Marshal(spec.Body)
		if err != nil {
			return nil, &domain.OpError{
				Op:   "httpclient.build",
				Kind: domain.KindInvalidInput,
				Err:  err,
			}
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, spec.URL, body)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindInvalidConfig,
			Path: spec.URL,
			Err:  err,
		}
	}

	req.Header.Set("Accept", "application/json")
	if spec.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range spec.Headers {
		req.Header.Set(k, v)
	}

	if !spec.Auth.empty() {
		req.SetBasicAuth(spec.Auth.Username, spec.Auth.Password)
	}

	return req, nil
}
