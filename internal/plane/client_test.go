package plane

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func validTestConfig(host string) Config {
	return Config{
		APIKey:        strings.Repeat("k", 40),
		WorkspaceSlug: "acme",
		ProjectID:     "proj-1",
		Host:          host,
		MaxRetries:    3,
		RetryDelay:    time.Millisecond,
	}
}

// testClient builds a client wired to a test server, bypassing the
// construction probe and replacing backoff waits with a recorder.
func testClient(host string, logger *log.Logger) (*Client, *[]time.Duration) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	var waits []time.Duration
	c := &Client{
		cfg:        validTestConfig(host),
		httpClient: &http.Client{},
		logger:     logger,
		sleep: func(ctx context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		},
	}
	return c, &waits
}

// countingTransport fails the first n requests at the transport level.
type countingTransport struct {
	failures int
	calls    int
	base     http.RoundTripper
}

func (t *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.calls++
	if t.calls <= t.failures {
		return nil, errors.New("connection refused")
	}
	if t.base == nil {
		return nil, errors.New("connection refused")
	}
	return t.base.RoundTrip(req)
}

func TestNew_ShortKeyFailsBeforeNetwork(t *testing.T) {
	transport := &countingTransport{}
	cfg := validTestConfig("http://127.0.0.1:0")
	cfg.APIKey = "short"

	_, err := New(context.Background(), cfg, WithHTTPClient(&http.Client{Transport: transport}))
	if err == nil {
		t.Fatal("expected error for short API key")
	}
	if transport.calls != 0 {
		t.Errorf("expected no network calls, got %d", transport.calls)
	}
}

func TestNew_MissingIdentifiers(t *testing.T) {
	cfg := validTestConfig("http://127.0.0.1:0")
	cfg.WorkspaceSlug = ""
	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("expected error for missing workspace slug")
	}

	cfg = validTestConfig("http://127.0.0.1:0")
	cfg.ProjectID = ""
	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("expected error for missing project ID")
	}
}

func TestNew_ProbeRejectsBadToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := New(context.Background(), validTestConfig(server.URL),
		WithLogger(log.New(io.Discard, "", 0)))
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthError, got %v", err)
	}
}

func TestNew_ProbeAcceptsToken(t *testing.T) {
	var probed string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probed = r.URL.Path
		if got := r.Header.Get("X-API-Key"); got != strings.Repeat("k", 40) {
			t.Errorf("missing API key header, got %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing request ID header")
		}
		w.Write([]byte(`{"id":"proj-1","name":"Project"}`))
	}))
	defer server.Close()

	c, err := New(context.Background(), validTestConfig(server.URL),
		WithLogger(log.New(io.Discard, "", 0)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c == nil {
		t.Fatal("expected client")
	}
	if probed != "/api/v1/workspaces/acme/projects/proj-1/" {
		t.Errorf("probe path = %q", probed)
	}
}

func TestDo_RetriesTransportFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"m-1"}`))
	}))
	defer server.Close()

	c, waits := testClient(server.URL, nil)
	transport := &countingTransport{failures: 2, base: http.DefaultTransport}
	c.httpClient = &http.Client{Transport: transport}

	raw, err := c.do(context.Background(), http.MethodGet, c.projectPath("modules/"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Contains(raw, []byte("m-1")) {
		t.Errorf("unexpected body: %s", raw)
	}
	if transport.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", transport.calls)
	}
	if len(*waits) != 2 {
		t.Errorf("expected 2 backoff waits, got %d", len(*waits))
	}
}

func TestDo_RetryExhaustion(t *testing.T) {
	c, _ := testClient("http://example.invalid", nil)
	transport := &countingTransport{failures: 100}
	c.httpClient = &http.Client{Transport: transport}

	_, err := c.do(context.Background(), http.MethodGet, c.projectPath("modules/"), nil)
	var retryErr *RetryError
	if !errors.As(err, &retryErr) {
		t.Fatalf("expected *RetryError, got %v", err)
	}
	if retryErr.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", retryErr.Attempts)
	}
	if transport.calls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", transport.calls)
	}
}

func TestDo_RateLimitHonorsRetryAfter(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"id":"m-1","name":"Backend"}`))
	}))
	defer server.Close()

	c, waits := testClient(server.URL, nil)

	raw, err := c.do(context.Background(), http.MethodGet, c.projectPath("modules/"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Contains(raw, []byte("Backend")) {
		t.Errorf("unexpected body after rate limit: %s", raw)
	}
	if len(*waits) != 1 || (*waits)[0] != 2*time.Second {
		t.Errorf("waits = %v, want [2s]", *waits)
	}
	if calls != 2 {
		t.Errorf("expected request re-issued once, got %d calls", calls)
	}
}

func TestDo_RateLimitDefaultDelay(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c, waits := testClient(server.URL, nil)
	c.cfg.RetryDelay = 5 * time.Second

	if _, err := c.do(context.Background(), http.MethodGet, c.projectPath("modules/"), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*waits) != 1 || (*waits)[0] != 5*time.Second {
		t.Errorf("waits = %v, want [5s]", *waits)
	}
}

func TestDo_SustainedRateLimitExhaustsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c, _ := testClient(server.URL, nil)

	_, err := c.do(context.Background(), http.MethodGet, c.projectPath("modules/"), nil)
	var maxErr *MaxRetriesError
	if !errors.As(err, &maxErr) {
		t.Fatalf("expected *MaxRetriesError, got %v", err)
	}
	if maxErr.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", maxErr.Attempts)
	}
}

func TestDo_ClientErrorNotRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"detail":"not allowed"}`))
	}))
	defer server.Close()

	c, _ := testClient(server.URL, nil)

	_, err := c.do(context.Background(), http.MethodGet, c.projectPath("issues/"), nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
	if calls != 1 {
		t.Errorf("403 retried: %d calls", calls)
	}
}

func TestDo_ServerErrorNotRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c, _ := testClient(server.URL, nil)

	_, err := c.do(context.Background(), http.MethodGet, c.projectPath("issues/"), nil)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if calls != 1 {
		t.Errorf("502 retried: %d calls", calls)
	}
}

func TestDo_DeleteReturnsNoResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ignored":"body"}`))
	}))
	defer server.Close()

	c, _ := testClient(server.URL, nil)

	raw, err := c.do(context.Background(), http.MethodDelete, c.projectPath("issues/i-1/"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw != nil {
		t.Errorf("expected nil result for DELETE, got %s", raw)
	}
}

func TestExistingModuleID(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		wantID string
		wantOK bool
	}{
		{
			name:   "module exists with ID",
			body:   `{"error":"Module with this name already exists","id":"m-42"}`,
			wantID: "m-42",
			wantOK: true,
		},
		{
			name:   "other validation error",
			body:   `{"name":["This field is required."]}`,
			wantOK: false,
		},
		{
			name:   "exists text without ID",
			body:   `{"error":"Module with this name already exists"}`,
			wantOK: false,
		},
		{
			name:   "not JSON",
			body:   `module already exists`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := existingModuleID([]byte(tt.body))
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if id != tt.wantID {
				t.Errorf("id = %q, want %q", id, tt.wantID)
			}
		})
	}
}

func TestRetryAfter(t *testing.T) {
	h := http.Header{}
	if got := retryAfter(h, 5*time.Second); got != 5*time.Second {
		t.Errorf("absent header: %v", got)
	}

	h.Set("Retry-After", "7")
	if got := retryAfter(h, 5*time.Second); got != 7*time.Second {
		t.Errorf("numeric header: %v", got)
	}

	h.Set("Retry-After", "later")
	if got := retryAfter(h, 5*time.Second); got != 5*time.Second {
		t.Errorf("invalid header: %v", got)
	}
}
