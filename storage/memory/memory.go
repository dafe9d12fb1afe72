// Package memory is an in-process storage.Store.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/amoghd24/footagents-ai-game/conversation"
	"github.com/amoghd24/footagents-ai-game/storage"
)

// Store keeps conversations in maps guarded by a mutex. Records are copied
// in and out so callers never share slices with the store.
type Store struct {
	mu    sync.RWMutex
	convs map[string]storage.Conversation
	usage map[string]int64
	logs  map[string][]conversation.ChatLog
	now   func() time.Time
}

var _ storage.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		convs: make(map[string]storage.Conversation),
		usage: make(map[string]int64),
		logs:  make(map[string][]conversation.ChatLog),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// LoadState implements conversation.Store.
func (s *Store) LoadState(_ context.Context, id string) ([]conversation.Message, string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.convs[id]
	if !ok || !rec.Active {
		return nil, "", false, nil
	}
	return copyMessages(rec.Messages), rec.Summary, true, nil
}

// SaveState implements conversation.Store.
func (s *Store) SaveState(_ context.Context, id, characterID string, msgs []conversation.Message, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec, ok := s.convs[id]
	if !ok {
		rec = storage.Conversation{ID: id, CharacterID: characterID, Active: true, CreatedAt: now}
	}
	rec.Messages = copyMessages(msgs)
	rec.Summary = summary
	rec.UpdatedAt = now
	s.convs[id] = rec
	return nil
}

// IncrementUsage implements conversation.Store.
func (s *Store) IncrementUsage(_ context.Context, characterID string) error {
	s.mu.Lock()
	s.usage[characterID]++
	s.mu.Unlock()
	return nil
}

// Get implements conversation.Repository.
func (s *Store) Get(_ context.Context, id string) (storage.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.convs[id]
	if !ok {
		return storage.Conversation{}, storage.NotFound("memory.Get", id)
	}
	rec.Messages = copyMessages(rec.Messages)
	return rec, nil
}

// Deactivate implements conversation.Repository.
func (s *Store) Deactivate(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.convs[id]
	if !ok || !rec.Active {
		return storage.NotFound("memory.Deactivate", id)
	}
	rec.Active = false
	rec.UpdatedAt = s.now()
	s.convs[id] = rec
	return nil
}

// Usage implements conversation.Repository.
func (s *Store) Usage(_ context.Context, characterID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usage[characterID], nil
}

// AppendChatLog implements conversation.Repository.
func (s *Store) AppendChatLog(_ context.Context, log conversation.ChatLog) error {
	s.mu.Lock()
	s.logs[log.ConversationID] = append(s.logs[log.ConversationID], log)
	s.mu.Unlock()
	return nil
}

// ChatLogs implements storage.Store.
func (s *Store) ChatLogs(_ context.Context, id string) ([]conversation.ChatLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]conversation.ChatLog(nil), s.logs[id]...), nil
}

// Close implements storage.Store.
func (s *Store) Close() error {
	return nil
}

func copyMessages(msgs []conversation.Message) []conversation.Message {
	if msgs == nil {
		return nil
	}
	return append([]conversation.Message(nil), msgs...)
}
