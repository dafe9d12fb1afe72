package conversation

import (
	"strings"

	"github.com/google/uuid"
)

// Profile describes the football legend a conversation is held with.
// It is read-only for the lifetime of a run.
type Profile struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Position         string `json:"position"`
	Era              string `json:"era"`
	Perspective      string `json:"perspective"`
	Style            string `json:"style"`
	CareerHighlights string `json:"career_highlights,omitempty"`
}

// State is the data threaded through the conversation workflow.
//
// Only Messages and Summary are persisted between turns. RetrievedContext
// and SystemContext are recomputed on every run.
type State struct {
	Messages         []Message `json:"messages"`
	Character        Profile   `json:"character"`
	RetrievedContext string    `json:"retrieved_context"`
	Summary          string    `json:"summary"`
	SystemContext    string    `json:"system_context"`
}

// Clone returns a copy of s that shares no mutable memory with it.
func (s State) Clone() State {
	out := s
	out.Messages = append([]Message(nil), s.Messages...)
	return out
}

// LastMessage returns the most recent message, if any.
func (s State) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// LastAssistant returns the most recent assistant message, if any.
func (s State) LastAssistant() (Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleAssistant {
			return s.Messages[i], true
		}
	}
	return Message{}, false
}

// Update is the partial state change a node returns.
//
// Nil pointer fields leave the corresponding value unchanged; a pointer to
// "" clears it. Remove lists message IDs to drop and is applied before
// Append. The zero Update changes nothing.
type Update struct {
	Context       *string   `json:"retrieved_context,omitempty"`
	Summary       *string   `json:"summary,omitempty"`
	SystemContext *string   `json:"system_context,omitempty"`
	Append        []Message `json:"append,omitempty"`
	Remove        []string  `json:"remove,omitempty"`
}

// IsZero reports whether u changes nothing.
func (u Update) IsZero() bool {
	return u.Context == nil && u.Summary == nil && u.SystemContext == nil &&
		len(u.Append) == 0 && len(u.Remove) == 0
}

// Reduce merges u into prev and returns the new state. prev is not
// modified. The character profile is never touched.
func Reduce(prev State, u Update) State {
	next := prev

	if len(u.Remove) > 0 || len(u.Append) > 0 {
		drop := make(map[string]struct{}, len(u.Remove))
		for _, id := range u.Remove {
			drop[id] = struct{}{}
		}
		msgs := make([]Message, 0, len(prev.Messages)+len(u.Append))
		for _, m := range prev.Messages {
			if _, ok := drop[m.ID]; ok {
				continue
			}
			msgs = append(msgs, m)
		}
		next.Messages = append(msgs, u.Append...)
	}

	if u.Context != nil {
		next.RetrievedContext = *u.Context
	}
	if u.Summary != nil {
		next.Summary = *u.Summary
	}
	if u.SystemContext != nil {
		next.SystemContext = *u.SystemContext
	}
	return next
}

// NewState builds the initial state of a turn from the persisted history
// and summary plus the incoming user text. An empty userText adds no
// message.
func NewState(profile Profile, history []Message, summary, userText string) (State, error) {
	const op = "conversation.NewState"

	if strings.TrimSpace(profile.Name) == "" {
		return State{}, E(KindInvalidState, op, "character name is required")
	}

	msgs := make([]Message, 0, len(history)+1)
	for _, m := range history {
		if !m.Role.Valid() {
			return State{}, E(KindInvalidState, op, "message "+m.ID+" has unknown role "+string(m.Role))
		}
		msgs = append(msgs, m)
	}
	if strings.TrimSpace(userText) != "" {
		msgs = append(msgs, UserMessage(userText))
	}

	// Compaction removes by ID, so every ID in the transcript must be unique.
	seen := make(map[string]struct{}, len(msgs))
	for i := range msgs {
		if _, dup := seen[msgs[i].ID]; dup || msgs[i].ID == "" {
			msgs[i].ID = uuid.NewString()
		}
		seen[msgs[i].ID] = struct{}{}
	}
	if len(msgs) == 0 {
		return State{}, E(KindInvalidState, op, "conversation has no messages")
	}

	return State{
		Messages:  msgs,
		Character: profile,
		Summary:   summary,
	}, nil
}

func ptr(s string) *string {
	return &s
}
