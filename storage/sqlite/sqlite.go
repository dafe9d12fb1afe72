// Package sqlite is a single-file storage.Store on the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/amoghd24/footagents-ai-game/storage/sqlstore"
)

// Dialect is the SQLite schema and upserts.
var Dialect = sqlstore.Dialect{
	Name: "sqlite",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS conversations (
			id           TEXT    PRIMARY KEY,
			character_id TEXT    NOT NULL,
			messages     TEXT    NOT NULL,
			summary      TEXT    NOT NULL DEFAULT '',
			is_active    INTEGER NOT NULL DEFAULT 1,
			created_at   INTEGER NOT NULL,
			updated_at   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_character ON conversations (character_id)`,
		`CREATE TABLE IF NOT EXISTS character_usage (
			character_id       TEXT    PRIMARY KEY,
			conversation_count INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS chat_logs (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			conversation_id  TEXT    NOT NULL,
			character_id     TEXT    NOT NULL,
			user_message     TEXT    NOT NULL,
			response         TEXT    NOT NULL,
			response_time_ms INTEGER NOT NULL,
			run_id           TEXT    NOT NULL,
			created_at       INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_logs_conversation ON chat_logs (conversation_id)`,
	},
	UpsertConversation: `
		INSERT INTO conversations (id, character_id, messages, summary, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			messages = excluded.messages,
			summary = excluded.summary,
			updated_at = excluded.updated_at
	`,
	IncrementUsage: `
		INSERT INTO character_usage (character_id, conversation_count)
		VALUES (?, 1)
		ON CONFLICT(character_id) DO UPDATE SET
			conversation_count = conversation_count + 1
	`,
}

// Open opens (creating if needed) the database at path in WAL mode.
// ":memory:" gives a throwaway database.
func Open(ctx context.Context, path string) (*sqlstore.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	s, err := sqlstore.New(ctx, db, Dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}
