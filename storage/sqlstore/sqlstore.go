// Package sqlstore implements storage.Store on database/sql. The sqlite
// and mysql packages supply a Dialect and an opened *sql.DB.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/amoghd24/footagents-ai-game/conversation"
	"github.com/amoghd24/footagents-ai-game/storage"
)

// Dialect holds the statements that differ between databases. All
// statements use ? placeholders.
type Dialect struct {
	Name string

	// Schema is executed in order when the store opens.
	Schema []string

	// UpsertConversation takes id, character_id, messages, summary,
	// created_at, updated_at. It must not change character_id, is_active
	// or created_at of an existing row.
	UpsertConversation string

	// IncrementUsage takes character_id and adds one to its counter.
	IncrementUsage string
}

// Store is a storage.Store over a *sql.DB. Timestamps are stored as Unix
// milliseconds so every dialect scans them the same way.
type Store struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time

	mu     sync.RWMutex
	closed bool
}

var _ storage.Store = (*Store)(nil)

// New creates the schema and returns a Store that owns db.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Store, error) {
	for _, stmt := range dialect.Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to create %s schema: %w", dialect.Name, err)
		}
	}
	return &Store{
		db:      db,
		dialect: dialect,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *Store) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("%s store is closed", s.dialect.Name)
	}
	return nil
}

// LoadState implements conversation.Store.
func (s *Store) LoadState(ctx context.Context, id string) ([]conversation.Message, string, bool, error) {
	if err := s.checkOpen(); err != nil {
		return nil, "", false, err
	}

	var (
		raw     []byte
		summary string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT messages, summary FROM conversations WHERE id = ? AND is_active = 1`, id,
	).Scan(&raw, &summary)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", false, nil
	}
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to load conversation: %w", err)
	}

	msgs, err := storage.DecodeMessages(raw)
	if err != nil {
		return nil, "", false, err
	}
	return msgs, summary, true, nil
}

// SaveState implements conversation.Store.
func (s *Store) SaveState(ctx context.Context, id, characterID string, msgs []conversation.Message, summary string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	raw, err := storage.EncodeMessages(msgs)
	if err != nil {
		return err
	}
	now := s.now().UnixMilli()
	if _, err := s.db.ExecContext(ctx, s.dialect.UpsertConversation,
		id, characterID, string(raw), summary, now, now,
	); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

// IncrementUsage implements conversation.Store.
func (s *Store) IncrementUsage(ctx context.Context, characterID string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.IncrementUsage, characterID); err != nil {
		return fmt.Errorf("failed to increment usage: %w", err)
	}
	return nil
}

// Get implements conversation.Repository.
func (s *Store) Get(ctx context.Context, id string) (storage.Conversation, error) {
	if err := s.checkOpen(); err != nil {
		return storage.Conversation{}, err
	}

	var (
		rec              storage.Conversation
		raw              []byte
		created, updated int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, character_id, messages, summary, is_active, created_at, updated_at
		FROM conversations
		WHERE id = ?
	`, id).Scan(&rec.ID, &rec.CharacterID, &raw, &rec.Summary, &rec.Active, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Conversation{}, storage.NotFound(s.dialect.Name+".Get", id)
	}
	if err != nil {
		return storage.Conversation{}, fmt.Errorf("failed to get conversation: %w", err)
	}

	if rec.Messages, err = storage.DecodeMessages(raw); err != nil {
		return storage.Conversation{}, err
	}
	rec.CreatedAt = time.UnixMilli(created).UTC()
	rec.UpdatedAt = time.UnixMilli(updated).UTC()
	return rec, nil
}

// Deactivate implements conversation.Repository.
func (s *Store) Deactivate(ctx context.Context, id string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET is_active = 0, updated_at = ? WHERE id = ? AND is_active = 1`,
		s.now().UnixMilli(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate conversation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to deactivate conversation: %w", err)
	}
	if n == 0 {
		return storage.NotFound(s.dialect.Name+".Deactivate", id)
	}
	return nil
}

// Usage implements conversation.Repository.
func (s *Store) Usage(ctx context.Context, characterID string) (int64, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}

	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT conversation_count FROM character_usage WHERE character_id = ?`, characterID,
	).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read usage: %w", err)
	}
	return n, nil
}

// AppendChatLog implements conversation.Repository.
func (s *Store) AppendChatLog(ctx context.Context, log conversation.ChatLog) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	ts := log.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_logs (conversation_id, character_id, user_message, response, response_time_ms, run_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, log.ConversationID, log.CharacterID, log.UserMessage, log.Response, log.ResponseTimeMs, log.RunID, ts.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to append chat log: %w", err)
	}
	return nil
}

// ChatLogs implements storage.Store.
func (s *Store) ChatLogs(ctx context.Context, id string) ([]conversation.ChatLog, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT conversation_id, character_id, user_message, response, response_time_ms, run_id, created_at
		FROM chat_logs
		WHERE conversation_id = ?
		ORDER BY id ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat logs: %w", err)
	}
	defer rows.Close()

	var out []conversation.ChatLog
	for rows.Next() {
		var (
			l  conversation.ChatLog
			ts int64
		)
		if err := rows.Scan(&l.ConversationID, &l.CharacterID, &l.UserMessage, &l.Response, &l.ResponseTimeMs, &l.RunID, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan chat log: %w", err)
		}
		l.Timestamp = time.UnixMilli(ts).UTC()
		out = append(out, l)
	}
	return out, rows.Err()
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close releases the database. Further calls fail.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
