package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amoghd24/footagents-ai-game/conversation"
	"github.com/amoghd24/footagents-ai-game/storage"
	"github.com/amoghd24/footagents-ai-game/storage/storagetest"
)

func TestStore_Contract(t *testing.T) {
	storagetest.RunContract(t, func(*testing.T) storage.Store { return New() })
}

func TestStore_CopiesMessages(t *testing.T) {
	s := New()
	ctx := context.Background()
	msgs := []conversation.Message{{ID: "a", Role: conversation.RoleUser, Content: "original"}}
	require.NoError(t, s.SaveState(ctx, "c", "pele", msgs, ""))

	msgs[0].Content = "mutated"
	loaded, _, _, err := s.LoadState(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "original", loaded[0].Content)

	loaded[0].Content = "mutated again"
	rec, err := s.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "original", rec.Messages[0].Content)
}
