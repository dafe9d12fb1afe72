// Package model defines the provider-neutral chat completion interface the
// conversation workflow generates text through, plus adapters for OpenAI
// compatible endpoints (Groq), Anthropic and Google Gemini.
package model

import "context"

// ChatModel is a single-turn chat completion call.
//
// Implementations must be safe for concurrent use and must not mutate
// the messages slice they receive.
type ChatModel interface {
	// Chat sends the conversation and returns the model's reply.
	Chat(ctx context.Context, messages []Message) (ChatOut, error)
}

// Message is one entry of a chat transcript sent to a provider.
type Message struct {
	// Role is one of RoleSystem, RoleUser or RoleAssistant.
	Role string

	// Content is the message text.
	Content string
}

// Message roles understood by every adapter.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatOut is a provider reply.
type ChatOut struct {
	// Text is the generated assistant text.
	Text string

	// Usage reports token consumption when the provider returns it.
	Usage Usage
}

// Usage counts tokens for one call.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Total returns input plus output tokens.
func (u Usage) Total() int64 {
	return u.InputTokens + u.OutputTokens
}

// SplitSystem separates leading-or-interleaved system messages from the
// rest of the conversation. Providers with a dedicated system field
// (Anthropic, Gemini) use it; system texts are joined with blank lines.
func SplitSystem(messages []Message) (string, []Message) {
	var system string
	rest := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}
