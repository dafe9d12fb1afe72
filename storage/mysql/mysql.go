// Package mysql is a storage.Store for MySQL and MariaDB.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/amoghd24/footagents-ai-game/storage/sqlstore"
)

// Dialect is the MySQL schema and upserts.
var Dialect = sqlstore.Dialect{
	Name: "mysql",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS conversations (
			id           VARCHAR(191) NOT NULL PRIMARY KEY,
			character_id VARCHAR(191) NOT NULL,
			messages     LONGTEXT     NOT NULL,
			summary      TEXT         NOT NULL,
			is_active    TINYINT(1)   NOT NULL DEFAULT 1,
			created_at   BIGINT       NOT NULL,
			updated_at   BIGINT       NOT NULL,
			INDEX idx_conversations_character (character_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
		`CREATE TABLE IF NOT EXISTS character_usage (
			character_id       VARCHAR(191) NOT NULL PRIMARY KEY,
			conversation_count BIGINT       NOT NULL DEFAULT 0
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
		`CREATE TABLE IF NOT EXISTS chat_logs (
			id               BIGINT AUTO_INCREMENT PRIMARY KEY,
			conversation_id  VARCHAR(191) NOT NULL,
			character_id     VARCHAR(191) NOT NULL,
			user_message     TEXT         NOT NULL,
			response         TEXT         NOT NULL,
			response_time_ms BIGINT       NOT NULL,
			run_id           VARCHAR(64)  NOT NULL,
			created_at       BIGINT       NOT NULL,
			INDEX idx_chat_logs_conversation (conversation_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	},
	UpsertConversation: `
		INSERT INTO conversations (id, character_id, messages, summary, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)
		ON DUPLICATE KEY UPDATE
			messages = VALUES(messages),
			summary = VALUES(summary),
			updated_at = VALUES(updated_at)
	`,
	IncrementUsage: `
		INSERT INTO character_usage (character_id, conversation_count)
		VALUES (?, 1)
		ON DUPLICATE KEY UPDATE conversation_count = conversation_count + 1
	`,
}

// Open connects to MySQL and creates the schema.
//
// The DSN format is:
//
//	[username[:password]@][protocol[(address)]]/dbname[?param=value]
//
// For example "footagents:secret@tcp(localhost:3306)/footagents".
func Open(ctx context.Context, dsn string) (*sqlstore.Store, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	s, err := sqlstore.New(ctx, db, Dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}
