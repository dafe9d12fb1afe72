// Package storagetest holds the behaviour every storage.Store must share.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amoghd24/footagents-ai-game/conversation"
	"github.com/amoghd24/footagents-ai-game/storage"
)

// Factory returns a fresh, empty store. The contract closes it.
type Factory func(t *testing.T) storage.Store

// RunContract exercises a backend against the storage.Store contract.
func RunContract(t *testing.T, newStore Factory) {
	t.Helper()

	run := func(name string, fn func(t *testing.T, s storage.Store)) {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })
			fn(t, s)
		})
	}

	run("load unknown conversation", func(t *testing.T, s storage.Store) {
		msgs, summary, found, err := s.LoadState(context.Background(), "missing")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, msgs)
		assert.Empty(t, summary)
	})

	run("save then load", func(t *testing.T, s storage.Store) {
		ctx := context.Background()
		want := []conversation.Message{
			{ID: "m1", Role: conversation.RoleUser, Content: "Who was your toughest opponent?"},
			{ID: "m2", Role: conversation.RoleAssistant, Content: "Paolo Maldini, without a doubt."},
		}
		require.NoError(t, s.SaveState(ctx, "c1", "maradona", want, "Talked about defenders."))

		msgs, summary, found, err := s.LoadState(ctx, "c1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, want, msgs)
		assert.Equal(t, "Talked about defenders.", summary)
	})

	run("save overwrites", func(t *testing.T, s storage.Store) {
		ctx := context.Background()
		require.NoError(t, s.SaveState(ctx, "c1", "messi", []conversation.Message{{ID: "a", Role: conversation.RoleUser, Content: "hi"}}, ""))
		first, err := s.Get(ctx, "c1")
		require.NoError(t, err)

		compacted := []conversation.Message{{ID: "z", Role: conversation.RoleAssistant, Content: "bye"}}
		require.NoError(t, s.SaveState(ctx, "c1", "messi", compacted, "summary"))

		rec, err := s.Get(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, "c1", rec.ID)
		assert.Equal(t, "messi", rec.CharacterID)
		assert.Equal(t, compacted, rec.Messages)
		assert.Equal(t, "summary", rec.Summary)
		assert.True(t, rec.Active)
		assert.WithinDuration(t, first.CreatedAt, rec.CreatedAt, time.Millisecond)
		assert.False(t, rec.UpdatedAt.Before(rec.CreatedAt))
	})

	run("empty message list", func(t *testing.T, s storage.Store) {
		ctx := context.Background()
		require.NoError(t, s.SaveState(ctx, "c1", "pele", nil, ""))
		msgs, _, found, err := s.LoadState(ctx, "c1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Empty(t, msgs)
	})

	run("deactivate", func(t *testing.T, s storage.Store) {
		ctx := context.Background()
		require.NoError(t, s.SaveState(ctx, "c1", "kaka", []conversation.Message{{ID: "a", Role: conversation.RoleUser, Content: "hi"}}, ""))
		require.NoError(t, s.Deactivate(ctx, "c1"))

		_, _, found, err := s.LoadState(ctx, "c1")
		require.NoError(t, err)
		assert.False(t, found)

		rec, err := s.Get(ctx, "c1")
		require.NoError(t, err)
		assert.False(t, rec.Active)
		assert.Len(t, rec.Messages, 1)

		err = s.Deactivate(ctx, "c1")
		assert.True(t, errors.Is(err, conversation.ErrNotFound))

		err = s.Deactivate(ctx, "never-existed")
		assert.True(t, errors.Is(err, conversation.ErrNotFound))
	})

	run("get unknown", func(t *testing.T, s storage.Store) {
		_, err := s.Get(context.Background(), "missing")
		assert.True(t, errors.Is(err, conversation.ErrNotFound))
	})

	run("usage counter", func(t *testing.T, s storage.Store) {
		ctx := context.Background()
		n, err := s.Usage(ctx, "ronaldo")
		require.NoError(t, err)
		assert.Zero(t, n)

		require.NoError(t, s.IncrementUsage(ctx, "ronaldo"))
		require.NoError(t, s.IncrementUsage(ctx, "ronaldo"))
		require.NoError(t, s.IncrementUsage(ctx, "neymar"))

		n, err = s.Usage(ctx, "ronaldo")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	run("chat log", func(t *testing.T, s storage.Store) {
		ctx := context.Background()
		ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		for i, text := range []string{"first", "second"} {
			require.NoError(t, s.AppendChatLog(ctx, conversation.ChatLog{
				ConversationID: "c1",
				CharacterID:    "ancelotti",
				UserMessage:    text,
				Response:       "reply to " + text,
				ResponseTimeMs: int64(100 + i),
				RunID:          "run-" + text,
				Timestamp:      ts.Add(time.Duration(i) * time.Second),
			}))
		}

		logs, err := s.ChatLogs(ctx, "c1")
		require.NoError(t, err)
		require.Len(t, logs, 2)
		assert.Equal(t, "first", logs[0].UserMessage)
		assert.Equal(t, "reply to second", logs[1].Response)
		assert.Equal(t, int64(101), logs[1].ResponseTimeMs)
		assert.Equal(t, "run-second", logs[1].RunID)
		assert.True(t, logs[0].Timestamp.Equal(ts), "got %s", logs[0].Timestamp)

		other, err := s.ChatLogs(ctx, "c2")
		require.NoError(t, err)
		assert.Empty(t, other)
	})
}
