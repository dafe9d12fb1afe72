package model

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ProviderError is a failed provider call, normalized across SDKs.
type ProviderError struct {
	// Provider names the adapter ("openai", "anthropic", "google").
	Provider string

	// StatusCode is the HTTP status when known, else 0.
	StatusCode int

	// Retryable reports whether repeating the call may succeed
	// (rate limits, 5xx, transport failures).
	Retryable bool

	Err error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("provider returned no text")

// RetryableStatus reports whether an HTTP status is worth retrying.
func RetryableStatus(code int) bool {
	return code == 408 || code == 429 || code >= 500
}

// IsRetryable is the default RetryPolicy predicate.
//
// Provider errors decide for themselves; network timeouts are retried;
// context cancellation never is.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return false
}
