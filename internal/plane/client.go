// Package plane implements the client for the Plane project-management
// REST API: the authenticated transport, the retry/backoff policy, the
// status-code-to-outcome mapping, and the entity operations built on top.
package plane

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/andywolf/planesync/internal/version"
)

const (
	// apiPrefix is the fixed API version prefix for all endpoints.
	apiPrefix = "/api/v1"

	// MinAPIKeyLength is the minimum plausible length of an API key.
	MinAPIKeyLength = 32

	defaultHost       = "https://api.plane.so"
	defaultMaxRetries = 3
	defaultRetryDelay = 5 * time.Second
)

// Config holds the credentials and retry policy for a Client. It is fixed
// at construction; every operation the client performs is attributed to
// the configured (workspace, project) pair.
type Config struct {
	APIKey        string
	WorkspaceSlug string
	ProjectID     string
	Host          string

	MaxRetries int           // attempts per request, defaults to 3
	RetryDelay time.Duration // wait between transport retries, defaults to 5s
}

// Client talks to the Plane API. One request is in flight at a time; the
// caller blocks during network I/O and backoff waits.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *log.Logger

	// sleep waits for the given duration or until the context is done.
	// Overridable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger the client reports retries, rate-limit waits
// and per-item warnings to.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// withSleep replaces the backoff wait, for tests.
func withSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		c.sleep = fn
	}
}

// New validates the configuration, probes the API to confirm the token is
// accepted, and returns a ready client. Shape validation happens before
// any network call; a 401 from the probe is returned as *AuthError.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" || len(cfg.APIKey) < MinAPIKeyLength {
		return nil, fmt.Errorf("invalid API key: must be at least %d characters", MinAPIKeyLength)
	}
	if cfg.WorkspaceSlug == "" {
		return nil, fmt.Errorf("workspace slug is required")
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("project ID is required")
	}
	if cfg.Host == "" {
		cfg.Host = defaultHost
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     log.Default(),
		sleep:      sleepCtx,
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.probe(ctx); err != nil {
		return nil, err
	}

	c.logger.Printf("plane: client initialized for workspace %s project %s", cfg.WorkspaceSlug, cfg.ProjectID)
	return c, nil
}

// probe reads the project details once to confirm the token is accepted.
// It bypasses the retry loop: an invalid token should fail fast.
func (c *Client) probe(ctx context.Context) error {
	url := c.cfg.Host + apiPrefix + c.projectPath("")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create probe request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("API connection validation failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return &AuthError{StatusCode: resp.StatusCode}
	}
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("API connection validation failed: %w",
			&HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(body)})
	}

	return nil
}

// projectPath builds an endpoint path under the configured workspace and
// project. The API requires trailing slashes.
func (c *Client) projectPath(suffix string) string {
	return fmt.Sprintf("/workspaces/%s/projects/%s/%s", c.cfg.WorkspaceSlug, c.cfg.ProjectID, suffix)
}

// setHeaders attaches the standard headers to a request. Every attempt
// gets a fresh request ID for log correlation.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.cfg.APIKey)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("X-Request-ID", uuid.NewString())
}

// do executes one logical request against the API and normalizes the
// outcome. Retries are strictly sequential; a request either returns a
// result or an error, never neither.
//
// Outcome mapping:
//   - 429: wait for the server-suggested Retry-After (RetryDelay when
//     absent) and re-issue, consuming one attempt.
//   - 400/403: *APIError, not retried. A 400 whose body reports that the
//     module already exists is converted to a success carrying the
//     existing module's ID.
//   - other non-2xx: *HTTPError, not retried.
//   - transport failure: fixed-delay retry while attempts remain, then
//     *RetryError wrapping the last failure.
func (c *Client) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	url := c.cfg.Host + apiPrefix + path

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		c.setHeaders(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if attempt < c.cfg.MaxRetries-1 {
				c.logger.Printf("Warning: %s %s failed, retrying in %s: %v", method, path, c.cfg.RetryDelay, err)
				if err := c.sleep(ctx, c.cfg.RetryDelay); err != nil {
					return nil, err
				}
				continue
			}
			return nil, &RetryError{Attempts: c.cfg.MaxRetries, Err: lastErr}
		}

		respBody, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			// A truncated response is a transport failure like any other.
			lastErr = readErr
			if attempt < c.cfg.MaxRetries-1 {
				c.logger.Printf("Warning: %s %s response read failed, retrying in %s: %v", method, path, c.cfg.RetryDelay, readErr)
				if err := c.sleep(ctx, c.cfg.RetryDelay); err != nil {
					return nil, err
				}
				continue
			}
			return nil, &RetryError{Attempts: c.cfg.MaxRetries, Err: lastErr}
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			delay := retryAfter(resp.Header, c.cfg.RetryDelay)
			c.logger.Printf("Warning: rate limited on %s %s, waiting %s before retry", method, path, delay)
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
			continue

		case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusForbidden:
			if resp.StatusCode == http.StatusBadRequest {
				if id, ok := existingModuleID(respBody); ok {
					c.logger.Printf("plane: module already exists, returning existing ID")
					return json.RawMessage(fmt.Sprintf(`{"id":%q}`, id)), nil
				}
			}
			c.logger.Printf("Error: API error %d on %s %s: %s", resp.StatusCode, method, path, respBody)
			return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}

		case resp.StatusCode >= 300:
			return nil, &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(respBody)}
		}

		// DELETE and empty bodies carry no result.
		if method == http.MethodDelete || len(respBody) == 0 {
			return nil, nil
		}
		return respBody, nil
	}

	return nil, &MaxRetriesError{Attempts: c.cfg.MaxRetries}
}

// list executes a GET against a paginated list endpoint and unwraps the
// "results" envelope. Only the first page is surfaced.
func (c *Client) list(ctx context.Context, path string, results any) error {
	raw, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if raw == nil {
		return nil
	}

	var envelope listEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode list envelope: %w", err)
	}
	if len(envelope.Results) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Results, results); err != nil {
		return fmt.Errorf("decode list results: %w", err)
	}
	return nil
}

// existingModuleID extracts the existing module's ID from an
// "already exists" error body. ok is false for any other 400 body.
func existingModuleID(body []byte) (string, bool) {
	if !bytes.Contains(bytes.ToLower(body), []byte("already exists")) {
		return "", false
	}
	var payload struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.ID == "" {
		return "", false
	}
	return payload.ID, true
}

// retryAfter reads the server-suggested wait from a 429 response,
// falling back to the configured delay.
func retryAfter(h http.Header, fallback time.Duration) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return fallback
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
