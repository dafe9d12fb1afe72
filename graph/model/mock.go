package model

import (
	"context"
	"sync"
)

// MockChatModel is a scripted ChatModel for tests and offline demos.
//
// Responses are returned in order; once exhausted the last one repeats.
// Err, when set, fails every call. Handler, when set, takes precedence
// over both and computes the reply from the request.
type MockChatModel struct {
	Responses []ChatOut
	Err       error
	Handler   func(messages []Message) (ChatOut, error)

	// Calls records every request in order.
	Calls []MockChatCall

	mu        sync.Mutex
	callIndex int
}

// MockChatCall is one recorded request.
type MockChatCall struct {
	Messages []Message
}

// Chat implements ChatModel.
func (m *MockChatModel) Chat(ctx context.Context, messages []Message) (ChatOut, error) {
	if ctx.Err() != nil {
		return ChatOut{}, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	recorded := make([]Message, len(messages))
	copy(recorded, messages)
	m.Calls = append(m.Calls, MockChatCall{Messages: recorded})

	if m.Handler != nil {
		return m.Handler(recorded)
	}
	if m.Err != nil {
		return ChatOut{}, m.Err
	}
	if len(m.Responses) == 0 {
		return ChatOut{}, nil
	}

	idx := m.callIndex
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	} else {
		m.callIndex++
	}
	return m.Responses[idx], nil
}

// Reset clears recorded calls and rewinds the script.
func (m *MockChatModel) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
	m.callIndex = 0
}

// CallCount returns the number of Chat calls so far.
func (m *MockChatModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
