package chatstream

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
// These can be checked with errors.Is().
var (
	// ErrRateLimited indicates the backend rejected the request with HTTP 429.
	ErrRateLimited = errors.New("chatstream: rate limit exceeded")

	// ErrSendFailed indicates the request could not be delivered or was
	// rejected with a non-success status other than 429.
	ErrSendFailed = errors.New("chatstream: message send failed")

	// ErrEmptyResponse indicates the backend answered without a readable body.
	ErrEmptyResponse = errors.New("chatstream: response has no readable body")

	// ErrConnection indicates the transport failed mid-stream
	// (connection dropped, DNS/TLS failure, read error).
	ErrConnection = errors.New("chatstream: connection failed")

	// ErrStream indicates the server reported an error event on the stream.
	ErrStream = errors.New("chatstream: server reported stream error")
)

// Error codes carried on StreamError.Code. Stable strings so hosts can
// switch on them without importing sentinel identities.
const (
	CodeRateLimited   = "rate_limited"
	CodeSendFailed    = "send_failed"
	CodeEmptyResponse = "empty_response"
	CodeConnection    = "connection_error"
	CodeStreamError   = "stream_error"
)

// StreamError is the single normalized error shape delivered through
// OnError. Every failure path (transport, HTTP status, server-reported
// event) is converted to this type before reaching the consumer.
// Intentional cancellation is never reported as a StreamError.
type StreamError struct {
	Code    string                 // One of the Code* constants
	Message string                 // Human-readable description
	Status  int                    // HTTP status code, if applicable (0 otherwise)
	Details map[string]interface{} // Auxiliary detail, e.g. server error codes
	Err     error                  // Wrapped sentinel (ErrRateLimited, ErrSendFailed, ...)
}

func (e *StreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("stream error [%s] (status %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("stream error [%s]: %s", e.Code, e.Message)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// IsRateLimited checks if an error was caused by backend rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsRetryable checks if an error is potentially retryable by a higher-level
// connection manager. Rate limits and transport failures are retryable;
// rejected sends and empty responses are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrRateLimited) {
		return true
	}

	if errors.Is(err, ErrConnection) {
		return true
	}

	return false
}

// newStreamError builds a StreamError around a sentinel.
func newStreamError(code string, sentinel error, message string) *StreamError {
	return &StreamError{
		Code:    code,
		Message: message,
		Err:     sentinel,
	}
}
