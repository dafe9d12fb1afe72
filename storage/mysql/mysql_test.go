package mysql

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amoghd24/footagents-ai-game/storage"
	"github.com/amoghd24/footagents-ai-game/storage/storagetest"
)

// Set TEST_MYSQL_DSN, e.g. "user:pass@tcp(localhost:3306)/footagents_test",
// to run against a real server. Tables are truncated before each case.
func TestStore_Contract(t *testing.T) {
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("Skipping MySQL integration test: set TEST_MYSQL_DSN to run")
	}

	storagetest.RunContract(t, func(t *testing.T) storage.Store {
		ctx := context.Background()
		s, err := Open(ctx, dsn)
		require.NoError(t, err)
		for _, table := range []string{"conversations", "character_usage", "chat_logs"} {
			_, err := s.DB().ExecContext(ctx, "TRUNCATE TABLE "+table)
			require.NoError(t, err)
		}
		return s
	})
}

func TestOpen_BadDSN(t *testing.T) {
	_, err := Open(context.Background(), "not a dsn")
	require.Error(t, err)
}
