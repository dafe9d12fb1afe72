// Package eventstream publishes conversation turn events to downstream
// consumers (analytics, moderation, fan-engagement dashboards).
package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeTurnCompleted is emitted after a turn has been persisted.
	EventTypeTurnCompleted = "turn.completed"
)

// TurnEvent is a transport-neutral payload describing one completed turn.
type TurnEvent struct {
	SchemaVersion  int       `json:"schema_version"`
	EventType      string    `json:"event_type"`
	EventID        string    `json:"event_id"`
	EmittedAt      time.Time `json:"emitted_at"`
	ConversationID string    `json:"conversation_id"`
	CharacterID    string    `json:"character_id"`
	RunID          string    `json:"run_id"`
	UserMessage    string    `json:"user_message"`
	Response       string    `json:"response"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	MessageCount   int       `json:"message_count"`
	Summarized     bool      `json:"summarized"`
}

// NewTurnEvent returns a v1 turn.completed event with a fresh ID.
func NewTurnEvent(conversationID, characterID, runID string) *TurnEvent {
	return &TurnEvent{
		SchemaVersion:  SchemaVersionV1,
		EventType:      EventTypeTurnCompleted,
		EventID:        uuid.NewString(),
		EmittedAt:      time.Now().UTC(),
		ConversationID: conversationID,
		CharacterID:    characterID,
		RunID:          runID,
	}
}
