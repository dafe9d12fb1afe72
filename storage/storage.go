// Package storage defines the durable conversation store and its backends.
//
// Every backend keeps three things: the conversation record (messages as
// JSON, summary, active flag), a per-character conversation counter, and an
// append-only chat log. Deleting a conversation only clears its active
// flag; LoadState then reports it as missing while Get still returns it.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/amoghd24/footagents-ai-game/conversation"
)

// Conversation is a stored conversation record.
type Conversation = conversation.Record

// Store is a conversation.Repository with chat log reads and a lifecycle.
type Store interface {
	conversation.Repository

	// ChatLogs returns the log entries of a conversation, oldest first.
	ChatLogs(ctx context.Context, conversationID string) ([]conversation.ChatLog, error)

	Close() error
}

// NotFound returns the error backends report for a missing or inactive
// conversation.
func NotFound(op, conversationID string) error {
	return conversation.E(conversation.KindNotFound, op, fmt.Sprintf("conversation %s not found", conversationID))
}

// EncodeMessages serializes messages for storage. A nil slice encodes as
// an empty JSON array.
func EncodeMessages(msgs []conversation.Message) ([]byte, error) {
	if msgs == nil {
		msgs = []conversation.Message{}
	}
	b, err := json.Marshal(msgs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal messages: %w", err)
	}
	return b, nil
}

// DecodeMessages is the inverse of EncodeMessages.
func DecodeMessages(b []byte) ([]conversation.Message, error) {
	var msgs []conversation.Message
	if len(b) == 0 {
		return msgs, nil
	}
	if err := json.Unmarshal(b, &msgs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal messages: %w", err)
	}
	return msgs, nil
}
