// Package redis is a storage.Store on Redis.
//
// Keys, under a configurable prefix:
//
//	<prefix>conversation:<id>   JSON conversation record
//	<prefix>chatlog:<id>        list of JSON chat log entries
//	<prefix>usage               hash of character id to conversation count
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/amoghd24/footagents-ai-game/conversation"
	"github.com/amoghd24/footagents-ai-game/storage"
)

// DefaultPrefix namespaces every key the store writes.
const DefaultPrefix = "footagents:"

const maxTxAttempts = 5

// Store is a storage.Store backed by Redis.
type Store struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

var _ storage.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithTTL expires conversations and their logs after ttl without writes.
// Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// New connects to the Redis server at addr.
func New(addr, password string, db int, opts ...Option) *Store {
	return NewFromClient(goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewFromClient wraps an existing client. Close closes it.
func NewFromClient(client *goredis.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: DefaultPrefix,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) convKey(id string) string { return s.prefix + "conversation:" + id }
func (s *Store) logKey(id string) string  { return s.prefix + "chatlog:" + id }
func (s *Store) usageKey() string         { return s.prefix + "usage" }

func (s *Store) read(ctx context.Context, c goredis.Cmdable, id string) (storage.Conversation, bool, error) {
	raw, err := c.Get(ctx, s.convKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return storage.Conversation{}, false, nil
	}
	if err != nil {
		return storage.Conversation{}, false, fmt.Errorf("failed to read conversation: %w", err)
	}
	var rec storage.Conversation
	if err := json.Unmarshal(raw, &rec); err != nil {
		return storage.Conversation{}, false, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}
	return rec, true, nil
}

// update applies fn to the stored record inside an optimistic transaction.
func (s *Store) update(ctx context.Context, id string, fn func(rec storage.Conversation, exists bool) (storage.Conversation, error)) error {
	key := s.convKey(id)
	txf := func(tx *goredis.Tx) error {
		rec, exists, err := s.read(ctx, tx, id)
		if err != nil {
			return err
		}
		rec, err = fn(rec, exists)
		if err != nil {
			return err
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal conversation: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxAttempts; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("conversation %s: too much write contention", id)
}

// LoadState implements conversation.Store.
func (s *Store) LoadState(ctx context.Context, id string) ([]conversation.Message, string, bool, error) {
	rec, ok, err := s.read(ctx, s.client, id)
	if err != nil || !ok || !rec.Active {
		return nil, "", false, err
	}
	return rec.Messages, rec.Summary, true, nil
}

// SaveState implements conversation.Store.
func (s *Store) SaveState(ctx context.Context, id, characterID string, msgs []conversation.Message, summary string) error {
	if msgs == nil {
		msgs = []conversation.Message{}
	}
	return s.update(ctx, id, func(rec storage.Conversation, exists bool) (storage.Conversation, error) {
		now := s.now()
		if !exists {
			rec = storage.Conversation{ID: id, CharacterID: characterID, Active: true, CreatedAt: now}
		}
		rec.Messages = msgs
		rec.Summary = summary
		rec.UpdatedAt = now
		return rec, nil
	})
}

// IncrementUsage implements conversation.Store.
func (s *Store) IncrementUsage(ctx context.Context, characterID string) error {
	if err := s.client.HIncrBy(ctx, s.usageKey(), characterID, 1).Err(); err != nil {
		return fmt.Errorf("failed to increment usage: %w", err)
	}
	return nil
}

// Get implements conversation.Repository.
func (s *Store) Get(ctx context.Context, id string) (storage.Conversation, error) {
	rec, ok, err := s.read(ctx, s.client, id)
	if err != nil {
		return storage.Conversation{}, err
	}
	if !ok {
		return storage.Conversation{}, storage.NotFound("redis.Get", id)
	}
	return rec, nil
}

// Deactivate implements conversation.Repository.
func (s *Store) Deactivate(ctx context.Context, id string) error {
	return s.update(ctx, id, func(rec storage.Conversation, exists bool) (storage.Conversation, error) {
		if !exists || !rec.Active {
			return rec, storage.NotFound("redis.Deactivate", id)
		}
		rec.Active = false
		rec.UpdatedAt = s.now()
		return rec, nil
	})
}

// Usage implements conversation.Repository.
func (s *Store) Usage(ctx context.Context, characterID string) (int64, error) {
	n, err := s.client.HGet(ctx, s.usageKey(), characterID).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read usage: %w", err)
	}
	return n, nil
}

// AppendChatLog implements conversation.Repository.
func (s *Store) AppendChatLog(ctx context.Context, log conversation.ChatLog) error {
	if log.Timestamp.IsZero() {
		log.Timestamp = s.now()
	}
	data, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("failed to marshal chat log: %w", err)
	}

	key := s.logKey(log.ConversationID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append chat log: %w", err)
	}
	return nil
}

// ChatLogs implements storage.Store.
func (s *Store) ChatLogs(ctx context.Context, id string) ([]conversation.ChatLog, error) {
	items, err := s.client.LRange(ctx, s.logKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read chat logs: %w", err)
	}
	out := make([]conversation.ChatLog, 0, len(items))
	for _, item := range items {
		var l conversation.ChatLog
		if err := json.Unmarshal([]byte(item), &l); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chat log: %w", err)
		}
		out = append(out, l)
	}
	return out, nil
}

// Close implements storage.Store.
func (s *Store) Close() error {
	return s.client.Close()
}
