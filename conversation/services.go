package conversation

import (
	"context"
	"time"
)

// ResponseRequest carries everything the generator needs to answer in
// character. Implementations must not mutate it.
type ResponseRequest struct {
	Character    Profile
	Context      string
	Summary      string
	Messages     []Message
	SystemPrompt string
}

// SummaryRequest is a single summarization prompt.
type SummaryRequest struct {
	Prompt string
}

// Generator produces text. Failures are reported as GenerationError.
type Generator interface {
	GenerateResponse(ctx context.Context, req ResponseRequest) (string, error)
	Summarize(ctx context.Context, req SummaryRequest) (string, error)
}

// Retriever returns ranked knowledge snippets for a query. An empty
// result is valid. Failures are reported as RetrievalError.
type Retriever interface {
	RetrieveContext(ctx context.Context, query string) ([]string, error)
}

// CharacterLookup resolves character IDs. Unknown IDs yield NotFound.
type CharacterLookup interface {
	GetCharacter(ctx context.Context, id string) (Profile, error)
}

// Store persists the durable part of a conversation.
type Store interface {
	// LoadState returns found=false for unknown or inactive conversations.
	LoadState(ctx context.Context, conversationID string) (messages []Message, summary string, found bool, err error)

	SaveState(ctx context.Context, conversationID, characterID string, messages []Message, summary string) error

	// IncrementUsage bumps the conversation counter of a character.
	IncrementUsage(ctx context.Context, characterID string) error
}

// Record is a stored conversation.
type Record struct {
	ID          string    `json:"conversation_id"`
	CharacterID string    `json:"character_id"`
	Messages    []Message `json:"messages"`
	Summary     string    `json:"summary"`
	Active      bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ChatLog is an audit entry for one answered turn.
type ChatLog struct {
	ConversationID string    `json:"conversation_id"`
	CharacterID    string    `json:"character_id"`
	UserMessage    string    `json:"user_message"`
	Response       string    `json:"response"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	RunID          string    `json:"run_id"`
	Timestamp      time.Time `json:"timestamp"`
}

// Repository is a Store that also serves conversation management.
type Repository interface {
	Store

	// Get returns the conversation, active or not, or NotFound.
	Get(ctx context.Context, conversationID string) (Record, error)

	// Deactivate soft-deletes an active conversation, or returns NotFound.
	Deactivate(ctx context.Context, conversationID string) error

	// Usage returns the number of conversations started with a character.
	Usage(ctx context.Context, characterID string) (int64, error)

	AppendChatLog(ctx context.Context, log ChatLog) error
}

// Catalog is a CharacterLookup that can also enumerate its characters.
type Catalog interface {
	CharacterLookup
	IDs() []string
}
