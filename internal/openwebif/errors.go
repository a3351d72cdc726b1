package openwebif

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrNotFound            = errors.New("upstream: resource not found")
	ErrForbidden           = errors.New("upstream: access forbidden")
	ErrConflict            = errors.New("upstream: timer conflict")
	ErrUpstreamUnavailable = errors.New("upstream: host unreachable or transport failure")
	ErrUpstreamError       = errors.New("upstream: internal error (5xx)")
	ErrUpstreamBadResponse = errors.New("upstream: invalid response format or malformed data")
	ErrTimeout             = errors.New("upstream: request timed out")
)

// OWIError is a rich error type that wraps the sentinel errors with context.
type OWIError struct {
	Sentinel  error
	Operation string
	Status    int
	Body      string
	Err       error // Nested lower-level error (e.g. net.Error)
}

func (e *OWIError) Error() string {
	msg := fmt.Sprintf("openwebif: %s: %v", e.Operation, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OWIError) Unwrap() error {
	return e.Sentinel
}

// statusError maps a non-2xx response to a sentinel.
func statusError(operation string, status int, body string) error {
	sentinel := ErrUpstreamBadResponse
	switch {
	case status == http.StatusNotFound:
		sentinel = ErrNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		sentinel = ErrForbidden
	case status == http.StatusConflict:
		sentinel = ErrConflict
	case status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout:
		sentinel = ErrTimeout
	case status >= 500:
		sentinel = ErrUpstreamError
	}
	return &OWIError{Sentinel: sentinel, Operation: operation, Status: status, Body: body}
}

// transportError wraps a failed round trip.
func transportError(operation string, err error) error {
	sentinel := ErrUpstreamUnavailable
	if errors.Is(err, context.DeadlineExceeded) {
		sentinel = ErrTimeout
	}
	return &OWIError{Sentinel: sentinel, Operation: operation, Err: err}
}

// countsAsFailure reports whether the breaker should count err as a host failure.
// Client-side rejections such as conflicts or missing timers do not.
func countsAsFailure(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable) ||
		errors.Is(err, ErrUpstreamError) ||
		errors.Is(err, ErrTimeout)
}

// Receivers answer timer writes with {"result": false, "message": ...} and a
// 200 status. The message is the only hint, in English or German.
var timerMessageKinds = []struct {
	sentinel error
	status   int
	tokens   []string
}{
	{ErrConflict, http.StatusConflict, []string{"conflict", "overlap", "konflikt", "überschneidung", "ueberschneidung"}},
	{ErrNotFound, http.StatusNotFound, []string{"not found", "nicht gefunden", "404"}},
}

func timerOperationError(operation, message string) error {
	message = strings.TrimSpace(message)
	lower := strings.ToLower(message)
	e := &OWIError{Sentinel: ErrUpstreamBadResponse, Operation: operation, Status: http.StatusBadRequest, Body: message}
	for _, kind := range timerMessageKinds {
		for _, token := range kind.tokens {
			if strings.Contains(lower, token) {
				e.Sentinel, e.Status = kind.sentinel, kind.status
				return e
			}
		}
	}
	return e
}

// IsTimerConflict reports whether the receiver refused a timer because it
// overlaps another one.
func IsTimerConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsTimerNotFound reports whether the receiver no longer knows the timer.
func IsTimerNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
