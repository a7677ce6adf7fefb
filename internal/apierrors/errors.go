// Package apierrors defines the error kinds the gateway surfaces to
// clients, each carrying the HTTP status it maps to.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is implemented by every error kind the HTTP layer knows how
// to map without a type-switch per handler.
type HTTPError interface {
	error
	HTTPStatus() int
}

// ValidationError — bad or missing request parameter. 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}
func (e *ValidationError) HTTPStatus() int { return http.StatusBadRequest }

// AuthError — appid mismatch. 401.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string  { return "auth error: " + e.Message }
func (e *AuthError) HTTPStatus() int { return http.StatusUnauthorized }

// NoCredentialsAvailable — Selector returned an empty list. 429.
type NoCredentialsAvailable struct {
	// RetryAfterSeconds is the time until the next local midnight.
	RetryAfterSeconds int
}

func (e *NoCredentialsAvailable) Error() string {
	return "no credentials available for this calendar day"
}
func (e *NoCredentialsAvailable) HTTPStatus() int { return http.StatusTooManyRequests }

// UpstreamHTTPError — upstream returned a non-2xx response. Propagated
// with the original status and body, transparently.
type UpstreamHTTPError struct {
	Status int
	Body   []byte
}

func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Status)
}
func (e *UpstreamHTTPError) HTTPStatus() int { return e.Status }

// UpstreamTransportError — network/timeout error talking to upstream.
// Surfaced as 503 after retry exhaustion.
type UpstreamTransportError struct {
	Cause error
}

func (e *UpstreamTransportError) Error() string {
	return fmt.Sprintf("upstream transport error: %v", e.Cause)
}
func (e *UpstreamTransportError) Unwrap() error   { return e.Cause }
func (e *UpstreamTransportError) HTTPStatus() int { return http.StatusServiceUnavailable }

// LedgerUnavailable — ledger backend unreachable on a path that
// requires it (the Selector). 503.
type LedgerUnavailable struct {
	Cause error
}

func (e *LedgerUnavailable) Error() string {
	return fmt.Sprintf("ledger unavailable: %v", e.Cause)
}
func (e *LedgerUnavailable) Unwrap() error   { return e.Cause }
func (e *LedgerUnavailable) HTTPStatus() int { return http.StatusServiceUnavailable }

// Envelope is the JSON body written for any non-2xx client response.
type Envelope struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"requestId"`
}

// StatusFor returns the HTTP status for any error, classifying unknown
// errors as 500 — LedgerSoftError never reaches here because it is
// logged and swallowed at the Ledger boundary, not returned to callers.
func StatusFor(err error) int {
	var he HTTPError
	if errors.As(err, &he) {
		return he.HTTPStatus()
	}
	return http.StatusInternalServerError
}
