package plane

import (
	"errors"
	"fmt"
	"strings"
)

// AuthError indicates the API rejected the configured token during the
// startup probe. It is fatal: no entity operation should be attempted
// with a token known to be invalid.
type AuthError struct {
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (status %d): check the API key", e.StatusCode)
}

// APIError is a client or permission error (status 400 or 403) reported by
// the API. These are never retried.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Body)
}

// HTTPError is any other unexpected HTTP status. These are never retried.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status %s: %s", e.Status, e.Body)
}

// RetryError reports that a request kept failing at the transport level
// and the retry budget was exhausted. It wraps the last underlying failure.
type RetryError struct {
	Attempts int
	Err      error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("request failed after %d retries: %v", e.Attempts, e.Err)
}

func (e *RetryError) Unwrap() error { return e.Err }

// MaxRetriesError reports that the request loop ran out of attempts without
// a terminal outcome (sustained rate limiting).
type MaxRetriesError struct {
	Attempts int
}

func (e *MaxRetriesError) Error() string {
	return fmt.Sprintf("maximum retries (%d) exceeded", e.Attempts)
}

// isPaymentRequired reports whether err is the API's plan-restriction
// response for endpoints gated behind a paid plan.
func isPaymentRequired(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return strings.Contains(apiErr.Body, "Payment required")
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == 402 || strings.Contains(httpErr.Body, "Payment required")
	}
	return false
}
