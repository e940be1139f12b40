package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrCancelled matches any request abandoned because its context was
// cancelled or its deadline expired.
var ErrCancelled = errors.New("request cancelled")

// NetworkError is a transport-level failure: no response was received.
// It is always safe for the caller to retry; the client never retries itself.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UserMessage is the text shown to users in place of the raw error.
func (e *NetworkError) UserMessage() string {
	return "Unable to reach the server. Check your connection and try again."
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

func (e *APIError) UserMessage() string { return e.Message }

// DecodeError is a success response whose body could not be decoded.
type DecodeError struct {
	StatusCode int
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response (status %d): %v", e.StatusCode, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) UserMessage() string {
	return "The server returned a response that could not be read."
}

// StreamProtocolError is a fatal streaming failure, such as a non-2xx status
// before any event was read. Malformed individual events are not errors.
type StreamProtocolError struct {
	StatusCode int
	Message    string
}

func (e *StreamProtocolError) Error() string {
	return fmt.Sprintf("stream error (%d): %s", e.StatusCode, e.Message)
}

func (e *StreamProtocolError) UserMessage() string { return e.Message }

// CancelledError wraps the context error of an abandoned request.
// errors.Is reports true for both ErrCancelled and the context error.
type CancelledError struct {
	Err error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("%s: %v", ErrCancelled.Error(), e.Err)
}

func (e *CancelledError) Unwrap() error { return e.Err }

func (e *CancelledError) Is(target error) bool { return target == ErrCancelled }

func (e *CancelledError) UserMessage() string { return "The request was cancelled." }

// Cancelled returns a CancelledError for ctx, or nil if ctx is still live.
func Cancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &CancelledError{Err: err}
	}
	return nil
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	var streamErr *StreamProtocolError
	if errors.As(err, &streamErr) {
		return streamErr.StatusCode
	}
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return decodeErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether err means the session is invalid (401 or 403).
func IsUnauthorized(err error) bool {
	code := StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
