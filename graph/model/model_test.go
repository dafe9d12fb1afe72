package model

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"
)

func TestSplitSystem(t *testing.T) {
	system, rest := SplitSystem([]Message{
		{Role: RoleSystem, Content: "You are Pelé."},
		{Role: RoleUser, Content: "Hi"},
		{Role: RoleSystem, Content: "Be brief."},
		{Role: RoleAssistant, Content: "Olá"},
	})

	if system != "You are Pelé.\n\nBe brief." {
		t.Errorf("system = %q", system)
	}
	if len(rest) != 2 || rest[0].Role != RoleUser || rest[1].Role != RoleAssistant {
		t.Errorf("rest = %+v", rest)
	}
}

func TestMockChatModel_Script(t *testing.T) {
	m := &MockChatModel{Responses: []ChatOut{{Text: "one"}, {Text: "two"}}}
	ctx := context.Background()

	for _, want := range []string{"one", "two", "two"} {
		out, err := m.Chat(ctx, []Message{{Role: RoleUser, Content: "q"}})
		if err != nil {
			t.Fatalf("Chat: %v", err)
		}
		if out.Text != want {
			t.Errorf("Text = %q, want %q", out.Text, want)
		}
	}
	if m.CallCount() != 3 {
		t.Errorf("CallCount = %d, want 3", m.CallCount())
	}

	m.Reset()
	if m.CallCount() != 0 {
		t.Error("Reset did not clear calls")
	}
}

func TestMockChatModel_CancelledContext(t *testing.T) {
	m := &MockChatModel{Responses: []ChatOut{{Text: "x"}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.Chat(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if m.CallCount() != 0 {
		t.Error("cancelled call should not be recorded")
	}
}

func TestMockChatModel_RecordsCopy(t *testing.T) {
	m := &MockChatModel{}
	msgs := []Message{{Role: RoleUser, Content: "original"}}
	_, _ = m.Chat(context.Background(), msgs)
	msgs[0].Content = "changed"

	if m.Calls[0].Messages[0].Content != "original" {
		t.Error("recorded call aliases caller's slice")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "rate limited", err: &ProviderError{Provider: "openai", StatusCode: 429, Retryable: true}, want: true},
		{name: "bad request", err: &ProviderError{Provider: "openai", StatusCode: 400}, want: false},
		{name: "cancelled", err: context.Canceled, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetryableStatus(t *testing.T) {
	for code, want := range map[int]bool{200: false, 400: false, 401: false, 408: true, 429: true, 500: true, 503: true} {
		if got := RetryableStatus(code); got != want {
			t.Errorf("RetryableStatus(%d) = %v, want %v", code, got, want)
		}
	}
}

func TestComputeBackoff(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	base := 10 * time.Millisecond
	maxDelay := 50 * time.Millisecond

	for attempt := 0; attempt < 6; attempt++ {
		d := computeBackoff(attempt, base, maxDelay, rng)
		exp := base * (1 << attempt)
		if exp > maxDelay {
			exp = maxDelay
		}
		if d < exp || d >= exp+base {
			t.Errorf("attempt %d: delay %v outside [%v, %v)", attempt, d, exp, exp+base)
		}
	}

	if d := computeBackoff(3, 0, time.Second, rng); d != 0 {
		t.Errorf("zero base delay should yield 0, got %v", d)
	}
}

func TestRetryPolicy_Validate(t *testing.T) {
	if err := (RetryPolicy{}).Validate(); !errors.Is(err, ErrInvalidRetryPolicy) {
		t.Errorf("expected ErrInvalidRetryPolicy for zero attempts, got %v", err)
	}
	if err := (RetryPolicy{MaxAttempts: 2, BaseDelay: time.Second, MaxDelay: time.Millisecond}).Validate(); err == nil {
		t.Error("expected error when MaxDelay < BaseDelay")
	}
	if _, err := WithRetry(&MockChatModel{}, RetryPolicy{}); err == nil {
		t.Error("WithRetry should reject an invalid policy")
	}
}

func TestRetryingModel(t *testing.T) {
	transient := &ProviderError{Provider: "openai", StatusCode: 503, Retryable: true}

	t.Run("retries transient errors then succeeds", func(t *testing.T) {
		calls := 0
		inner := &MockChatModel{Handler: func([]Message) (ChatOut, error) {
			calls++
			if calls < 3 {
				return ChatOut{}, transient
			}
			return ChatOut{Text: "ok"}, nil
		}}

		var retries []int
		m, err := WithRetry(inner, RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond})
		if err != nil {
			t.Fatalf("WithRetry: %v", err)
		}
		m.OnRetry = func(attempt int, _ error, _ time.Duration) { retries = append(retries, attempt) }

		out, err := m.Chat(context.Background(), nil)
		if err != nil {
			t.Fatalf("Chat: %v", err)
		}
		if out.Text != "ok" || calls != 3 {
			t.Errorf("got %q after %d calls", out.Text, calls)
		}
		if len(retries) != 2 {
			t.Errorf("expected 2 retry callbacks, got %v", retries)
		}
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		inner := &MockChatModel{Err: transient}
		m, _ := WithRetry(inner, RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond})

		_, err := m.Chat(context.Background(), nil)
		if !errors.Is(err, transient) {
			t.Errorf("expected last error, got %v", err)
		}
		if inner.CallCount() != 2 {
			t.Errorf("CallCount = %d, want 2", inner.CallCount())
		}
	})

	t.Run("does not retry permanent errors", func(t *testing.T) {
		inner := &MockChatModel{Err: &ProviderError{Provider: "openai", StatusCode: 401}}
		m, _ := WithRetry(inner, RetryPolicy{MaxAttempts: 5, BaseDelay: time.Millisecond})

		_, _ = m.Chat(context.Background(), nil)
		if inner.CallCount() != 1 {
			t.Errorf("CallCount = %d, want 1", inner.CallCount())
		}
	})

	t.Run("stops waiting when context is cancelled", func(t *testing.T) {
		inner := &MockChatModel{Err: transient}
		m, _ := WithRetry(inner, RetryPolicy{MaxAttempts: 3, BaseDelay: time.Hour, MaxDelay: time.Hour})

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		if _, err := m.Chat(ctx, nil); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded, got %v", err)
		}
	})
}

func TestUsageTotal(t *testing.T) {
	if got := (Usage{InputTokens: 12, OutputTokens: 30}).Total(); got != 42 {
		t.Errorf("Total = %d, want 42", got)
	}
}
