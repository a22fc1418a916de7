// Package errs defines the typed error taxonomy shared by every layer of
// aero-scope. Callers classify failures with errors.As and the helpers here
// rather than matching on message strings.
package errs

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// NetworkError represents a failed HTTP exchange: a transport-level failure
// or a non-success status code from the upstream API.
type NetworkError struct {
	// StatusCode is the HTTP status, or 0 for transport failures
	StatusCode int

	// URL is the request target
	URL string

	Err error
}

func (e *NetworkError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("network error: status %d from %s", e.StatusCode, e.URL)
	}
	if e.Err != nil {
		return fmt.Sprintf("network error: %v", e.Err)
	}
	return "network error"
}

func (e *NetworkError) Unwrap() error { return e.Err }

// TimeoutError is raised when the client-side request deadline fires and the
// in-flight request is aborted.
type TimeoutError struct {
	// URL is the request target
	URL string

	// Timeout is the deadline that fired
	Timeout time.Duration

	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out after %v: %s", e.Timeout, e.URL)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// RateLimitError represents an HTTP 429 response. RetryAfter carries the
// server-supplied hint when one was present, otherwise zero.
type RateLimitError struct {
	StatusCode int
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "rate limit exceeded"
	}
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %v)", msg, e.RetryAfter)
	}
	return msg
}

// ValidationError reports malformed input to a domain operation, e.g. an
// inverted bounding box. Never retryable.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return "validation failed: " + e.Message
}

// ParsingError reports a malformed state-vector record or an unparseable
// response body. Never retryable.
type ParsingError struct {
	Message string
	Err     error
}

func (e *ParsingError) Error() string { return "parsing error: " + e.Message }

func (e *ParsingError) Unwrap() error { return e.Err }

// CacheError reports a storage read/write failure inside the cache store.
// It is absorbed by the store itself (logged, treated as a miss) and never
// reaches callers; the type exists so the store can log it uniformly.
type CacheError struct {
	Op  string
	Key string
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }

// NotFoundError reports an absent entity, such as an unknown ICAO24 address.
type NotFoundError struct {
	Resource   string
	Identifier string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Identifier)
}

// UnknownError wraps an unclassified failure at a layer boundary so nothing
// escapes untyped.
type UnknownError struct {
	Err error
}

func (e *UnknownError) Error() string {
	if e.Err != nil {
		return "unknown error: " + e.Err.Error()
	}
	return "unknown error"
}

func (e *UnknownError) Unwrap() error { return e.Err }

// Kind returns a stable identifier for an error's position in the taxonomy,
// suitable for API payloads and log fields.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case Is[*TimeoutError](err):
		return "timeout"
	case Is[*RateLimitError](err):
		return "rate_limit"
	case Is[*NetworkError](err):
		return "network"
	case Is[*ValidationError](err):
		return "validation"
	case Is[*ParsingError](err):
		return "parsing"
	case Is[*CacheError](err):
		return "cache"
	case Is[*NotFoundError](err):
		return "not_found"
	default:
		return "unknown"
	}
}

// Retryable reports whether a failure of this kind may succeed on a later
// attempt. Validation, parsing and not-found failures never do.
func Retryable(err error) bool {
	switch Kind(err) {
	case "validation", "parsing", "not_found":
		return false
	default:
		return err != nil
	}
}

// Is reports whether err matches the typed error T anywhere in its chain.
func Is[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

// AsRateLimit extracts a RateLimitError from err's chain, if present.
func AsRateLimit(err error) (*RateLimitError, bool) {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle, true
	}
	return nil, false
}

// Wrap returns err unchanged when it is already part of the taxonomy, and
// wraps anything else in an UnknownError. Context cancellation is passed
// through so callers can distinguish a cancelled operation from a failed one.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if Kind(err) != "unknown" {
		return err
	}
	var unk *UnknownError
	if errors.As(err, &unk) {
		return err
	}
	return &UnknownError{Err: err}
}
