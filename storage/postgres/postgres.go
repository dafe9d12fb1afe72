// Package postgres is a storage.Store on a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amoghd24/footagents-ai-game/conversation"
	"github.com/amoghd24/footagents-ai-game/storage"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS conversations (
		id           TEXT        PRIMARY KEY,
		character_id TEXT        NOT NULL,
		messages     JSONB       NOT NULL,
		summary      TEXT        NOT NULL DEFAULT '',
		is_active    BOOLEAN     NOT NULL DEFAULT TRUE,
		created_at   TIMESTAMPTZ NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_conversations_character ON conversations (character_id)`,
	`CREATE TABLE IF NOT EXISTS character_usage (
		character_id       TEXT   PRIMARY KEY,
		conversation_count BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS chat_logs (
		id               BIGSERIAL   PRIMARY KEY,
		conversation_id  TEXT        NOT NULL,
		character_id     TEXT        NOT NULL,
		user_message     TEXT        NOT NULL,
		response         TEXT        NOT NULL,
		response_time_ms BIGINT      NOT NULL,
		run_id           TEXT        NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_logs_conversation ON chat_logs (conversation_id)`,
}

// Store is a storage.Store backed by PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

var _ storage.Store = (*Store)(nil)

// Open connects with a libpq-style or URL connection string and creates
// the schema.
func Open(ctx context.Context, connString string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	cfg.MaxConnIdleTime = 10 * time.Minute
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping Postgres: %w", err)
	}

	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to create postgres schema: %w", err)
		}
	}

	return &Store{pool: pool, now: func() time.Time { return time.Now().UTC() }}, nil
}

// LoadState implements conversation.Store.
func (s *Store) LoadState(ctx context.Context, id string) ([]conversation.Message, string, bool, error) {
	var (
		raw     []byte
		summary string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT messages, summary FROM conversations WHERE id = $1 AND is_active`, id,
	).Scan(&raw, &summary)
	if errors.Is(err, pgx.ErrNoRows) {
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
	raw, err := storage.EncodeMessages(msgs)
	if err != nil {
		return err
	}
	now := s.now()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO conversations (id, character_id, messages, summary, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, TRUE, $5, $5)
		ON CONFLICT (id) DO UPDATE SET
			messages = EXCLUDED.messages,
			summary = EXCLUDED.summary,
			updated_at = EXCLUDED.updated_at
	`, id, characterID, string(raw), summary, now)
	if err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

// IncrementUsage implements conversation.Store.
func (s *Store) IncrementUsage(ctx context.Context, characterID string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO character_usage (character_id, conversation_count)
		VALUES ($1, 1)
		ON CONFLICT (character_id) DO UPDATE SET
			conversation_count = character_usage.conversation_count + 1
	`, characterID)
	if err != nil {
		return fmt.Errorf("failed to increment usage: %w", err)
	}
	return nil
}

// Get implements conversation.Repository.
func (s *Store) Get(ctx context.Context, id string) (storage.Conversation, error) {
	var (
		rec storage.Conversation
		raw []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, character_id, messages, summary, is_active, created_at, updated_at
		FROM conversations
		WHERE id = $1
	`, id).Scan(&rec.ID, &rec.CharacterID, &raw, &rec.Summary, &rec.Active, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.Conversation{}, storage.NotFound("postgres.Get", id)
	}
	if err != nil {
		return storage.Conversation{}, fmt.Errorf("failed to get conversation: %w", err)
	}

	if rec.Messages, err = storage.DecodeMessages(raw); err != nil {
		return storage.Conversation{}, err
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}

// Deactivate implements conversation.Repository.
func (s *Store) Deactivate(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE conversations SET is_active = FALSE, updated_at = $1 WHERE id = $2 AND is_active`,
		s.now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.NotFound("postgres.Deactivate", id)
	}
	return nil
}

// Usage implements conversation.Repository.
func (s *Store) Usage(ctx context.Context, characterID string) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT conversation_count FROM character_usage WHERE character_id = $1`, characterID,
	).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read usage: %w", err)
	}
	return n, nil
}

// AppendChatLog implements conversation.Repository.
func (s *Store) AppendChatLog(ctx context.Context, log conversation.ChatLog) error {
	ts := log.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO chat_logs (conversation_id, character_id, user_message, response, response_time_ms, run_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, log.ConversationID, log.CharacterID, log.UserMessage, log.Response, log.ResponseTimeMs, log.RunID, ts)
	if err != nil {
		return fmt.Errorf("failed to append chat log: %w", err)
	}
	return nil
}

// ChatLogs implements storage.Store.
func (s *Store) ChatLogs(ctx context.Context, id string) ([]conversation.ChatLog, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT conversation_id, character_id, user_message, response, response_time_ms, run_id, created_at
		FROM chat_logs
		WHERE conversation_id = $1
		ORDER BY id ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat logs: %w", err)
	}
	defer rows.Close()

	var out []conversation.ChatLog
	for rows.Next() {
		var l conversation.ChatLog
		if err := rows.Scan(&l.ConversationID, &l.CharacterID, &l.UserMessage, &l.Response, &l.ResponseTimeMs, &l.RunID, &l.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan chat log: %w", err)
		}
		l.Timestamp = l.Timestamp.UTC()
		out = append(out, l)
	}
	return out, rows.Err()
}

// Pool returns the underlying connection pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Close implements storage.Store.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
