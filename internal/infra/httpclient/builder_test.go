package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MichalZajkowski/jira-build-health-action/internal/domain"
)

func TestBuildJSONRequestPut(t *testing.T) {
	payload := map[string]any{"score": 90}
	check := func(r *http.Request, body []byte) {
		if r.Method != http.MethodPut {
			t.Errorf("expected method PUT, got %s", r.Method)
		}
		if r.URL.Path != "/property" {
			t.Errorf("expected path /property, got %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected content-type json, got %s", ct)
		}
		if acc := r.Header.Get("Accept"); acc != "application/json" {
			t.Errorf("expected accept json, got %s", acc)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "dev@example.com" || pass != "secret" {
			t.Errorf("expected basic auth, got %q/%q ok=%v", user, pass, ok)
		}
		var decoded map[string]any
		if err := json.Unmarshal(body, &decoded); err != nil {
			t.Errorf("expected valid json body: %v", err)
		}
		if decoded["score"] != float64(90) {
			t.Errorf("expected json payload, got %v", decoded)
		}
	}

	runRequest(t, RequestSpec{
		Method: "put",
		Auth:   BasicAuth{Username: "dev@example.com", Password: "secret"},
		Body:   payload,
	}, "/property", check)
}

func TestBuildJSONRequestGetHasNoBody(t *testing.T) {
	check := func(r *http.Request, body []byte) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if len(body) != 0 {
			t.Errorf("expected empty body, got %q", body)
		}
		if r.Header.Get("Content-Type") != "" {
			t.Errorf("expected no content-type")
		}
		if _, _, ok := r.BasicAuth(); ok {
			t.Errorf("expected no auth")
		}
		if r.Header.Get("X-Test") != "yes" {
			t.Errorf("expected header X-Test")
		}
	}

	runRequest(t, RequestSpec{Headers: map[string]string{"X-Test": "yes"}}, "/get", check)
}

func TestBuildJSONRequestEmptyURL(t *testing.T) {
	_, err := BuildJSONRequest(context.Background(), RequestSpec{Method: http.MethodGet})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid config, got %v", err)
	}
}

func TestBuildJSONRequestUnmarshalableBody(t *testing.T) {
	_, err := BuildJSONRequest(context.Background(), RequestSpec{
		Method: http.MethodPut,
		URL:    "http://example.invalid",
		Body:   map[string]any{"ch": make(chan int)},
	})
	if !domain.IsKind(err, domain.KindInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func runRequest(t *testing.T, spec RequestSpec, path string, check func(*http.Request, []byte)) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("failed reading body: %v", err)
		}
		check(r, body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	spec.URL = server.URL + path

	req, err := BuildJSONRequest(context.Background(), spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("failed request: %v", err)
	}
	resp.Body.Close()
}
