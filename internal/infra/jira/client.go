package jira

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/MichalZajkowski/jira-build-health-action/internal/domain"
	"github.com/MichalZajkowski/jira-build-health-action/internal/infra/httpclient"
	"github.com/MichalZajkowski/jira-build-health-action/internal/ports"
)

const issuePropertyPath = "/rest/api/3/issue/%s/properties/%s"

// Credentials authenticate against Jira Cloud with an account email and API token.
type Credentials struct {
	Email string
	Token string
}

// Client stores and reads issue entity properties.
type Client struct {
	baseURL     string
	creds       Credentials
	propertyKey string
	exec        *httpclient.Executor
	log         *slog.Logger
}

type Option func(*Client)

func WithPropertyKey(key string) Option {
	return func(c *Client) {
		if strings.TrimSpace(key) != "" {
			c.propertyKey = strings.TrimSpace(key)
		}
	}
}

func WithExecutor(e *httpclient.Executor) Option {
	return func(c *Client) { c.exec = e }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New builds a client for a Jira site. site is a bare host
// ("your-domain.atlassian.net") or a full base URL.
func New(site string, creds Credentials, opts ...Option) (*Client, error) {
	base, err := BaseURL(site)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:     base,
		creds:       creds,
		propertyKey: domain.DefaultPropertyKey,
		exec:        httpclient.NewExecutor(),
		log:         slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var (
	_ ports.ReportPublisher = (*Client)(nil)
	_ ports.PropertyFetcher = (*Client)(nil)
)

// BaseURL normalizes a Jira site into a scheme://host[/prefix] URL without trailing slash.
func BaseURL(site string) (string, error) {
	s := strings.TrimSpace(site)
	if s == "" {
		return "", &domain.OpError{
			Op:   "jira.base_url",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("jira domain is required: %w", domain.ErrInvalidConfig),
		}
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		if err == nil {
			err = domain.ErrInvalidConfig
		}
		return "", &domain.OpError{
			Op:   "jira.base_url",
			Kind: domain.KindInvalidConfig,
			Path: site,
			Err:  err,
		}
	}
	return strings.TrimRight(u.Scheme+"://"+u.Host+u.Path, "/"), nil
}

// PropertyURL is the entity property endpoint for an issue.
func (c *Client) PropertyURL(issueKey string) string {
	return c.baseURL + fmt.Sprintf(issuePropertyPath, url.PathEscape(issueKey), url.PathEscape(c.propertyKey))
}

// Publish stores report as the issue's entity property and returns the HTTP status.
func (c *Client) Publish(ctx context.Context, issueKey string, report domain.HealthReport) (int, error) {
	if strings.TrimSpace(issueKey) == "" {
		return 0, &domain.OpError{
			Op:   "jira.publish",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("issue key is required: %w", domain.ErrInvalidConfig),
		}
	}

	resp, err := c.do(ctx, "jira.publish", http.MethodPut, issueKey, report)
	if err != nil {
		return resp.Status, err
	}

	c.log.Info("jira.upload.ok", "issue", issueKey, "status", resp.Status, "duration_ms", resp.Duration.Milliseconds())
	return resp.Status, nil
}

// Fetch returns the raw JSON of the issue's entity property.
func (c *Client) Fetch(ctx context.Context, issueKey string) ([]byte, error) {
	resp, err := c.do(ctx, "jira.fetch", http.MethodGet, issueKey, nil)
	if err != nil {
		return nil, err
	}
	return resp.BodyBytes, nil
}

func (c *Client) do(ctx context.Context, op, method, issueKey string, body any) (httpclient.ResponseData, error) {
	target := c.PropertyURL(issueKey)

	spec := httpclient.RequestSpec{
		Method: method,
		URL:    target,
		Auth:   httpclient.BasicAuth{Username: c.creds.Email, Password: c.creds.Token},
	}
	if body != nil {
		spec.Body = body
	}

	req, err := httpclient.BuildJSONRequest(ctx, spec)
	if err != nil {
		return httpclient.ResponseData{}, err
	}

	c.log.Debug(op+".request", "method", method, "url", target)

	resp, err := c.exec.Do(ctx, req)
	if err != nil {
		ue := domain.NewUploadError(err)
		if resp.Status != 0 {
			ue.StatusCode = resp.Status
		}
		c.log.Error(op+".failed", "url", target, "kind", ue.Kind, "error", err)
		return resp, &domain.OpError{Op: op, Kind: domain.KindUpload, Path: target, Err: ue}
	}

	if resp.Status < 200 || resp.Status > 299 {
		ue := &domain.UploadError{
			Kind:       domain.UploadErrorHTTP,
			StatusCode: resp.Status,
			Body:       string(resp.BodyBytes),
			Message:    http.StatusText(resp.Status),
		}
		c.log.Error(op+".failed", "url", target, "status", resp.Status, "body", ue.Body)
		return resp, &domain.OpError{Op: op, Kind: domain.KindUpload, Path: target, Err: ue}
	}

	return resp, nil
}
