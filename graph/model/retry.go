package model

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// ErrInvalidRetryPolicy is returned for a RetryPolicy that cannot run.
var ErrInvalidRetryPolicy = errors.New("invalid retry policy")

// RetryPolicy configures automatic retries of provider calls.
//
// Retries live at the client layer: the workflow engine never retries a
// node, so a ChatModel wrapped with WithRetry is the one place a flaky
// provider gets a second chance.
type RetryPolicy struct {
	// MaxAttempts is the total number of calls including the first (>= 1).
	MaxAttempts int

	// BaseDelay is the initial backoff, doubled on every attempt.
	BaseDelay time.Duration

	// MaxDelay caps the exponential component.
	MaxDelay time.Duration

	// Retryable decides whether an error is worth another attempt.
	// Nil selects IsRetryable.
	Retryable func(error) bool
}

// Validate checks the policy.
func (rp RetryPolicy) Validate() error {
	if rp.MaxAttempts < 1 {
		return ErrInvalidRetryPolicy
	}
	if rp.MaxDelay > 0 && rp.BaseDelay > 0 && rp.MaxDelay < rp.BaseDelay {
		return ErrInvalidRetryPolicy
	}
	return nil
}

// computeBackoff returns base*2^attempt capped at maxDelay, plus up to base
// of random jitter.
func computeBackoff(attempt int, base, maxDelay time.Duration, rng *rand.Rand) time.Duration {
	if base <= 0 {
		return 0
	}
	delay := base * (1 << attempt)
	if maxDelay > 0 && (delay > maxDelay || delay <= 0) {
		delay = maxDelay
	}

	var jitter time.Duration
	if rng != nil {
		jitter = time.Duration(rng.Int63n(int64(base)))
	} else {
		jitter = time.Duration(rand.Int63n(int64(base))) // #nosec G404 -- jitter for retry timing, not security
	}
	return delay + jitter
}

// RetryingModel decorates a ChatModel with a RetryPolicy.
type RetryingModel struct {
	next   ChatModel
	policy RetryPolicy

	// OnRetry, if set, observes each failed attempt that will be retried.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// WithRetry wraps next with policy.
func WithRetry(next ChatModel, policy RetryPolicy) (*RetryingModel, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if policy.Retryable == nil {
		policy.Retryable = IsRetryable
	}
	return &RetryingModel{next: next, policy: policy}, nil
}

// Chat implements ChatModel.
func (r *RetryingModel) Chat(ctx context.Context, messages []Message) (ChatOut, error) {
	var lastErr error
	for attempt := 0; attempt < r.policy.MaxAttempts; attempt++ {
		out, err := r.next.Chat(ctx, messages)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if attempt == r.policy.MaxAttempts-1 || !r.policy.Retryable(err) {
			break
		}

		delay := computeBackoff(attempt, r.policy.BaseDelay, r.policy.MaxDelay, nil)
		if r.OnRetry != nil {
			r.OnRetry(attempt+1, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ChatOut{}, ctx.Err()
		case <-timer.C:
		}
	}
	return ChatOut{}, lastErr
}
