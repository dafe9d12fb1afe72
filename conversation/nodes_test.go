package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/amoghd24/footagents-ai-game/graph"
)

func stateWith(msgs []Message) State {
	return State{Messages: msgs, Character: messiProfile}
}

func TestRetrieveContextNode(t *testing.T) {
	ctx := context.Background()

	t.Run("joins snippets and queries by name plus latest message", func(t *testing.T) {
		r := &fakeRetriever{snippets: []string{"Messi joined Barcelona at 13.", "He won the 2022 World Cup."}}
		n := &RetrieveContextNode{Retriever: r}

		res := n.Run(ctx, stateWith([]Message{UserMessage("Tell me about Barcelona")}))
		require.NoError(t, res.Err)
		require.NotNil(t, res.Delta.Context)
		assert.Equal(t, "Messi joined Barcelona at 13.\nHe won the 2022 World Cup.", *res.Delta.Context)
		assert.Equal(t, []string{"Lionel Messi Tell me about Barcelona"}, r.queries)
	})

	t.Run("empty result sets empty context", func(t *testing.T) {
		n := &RetrieveContextNode{Retriever: &fakeRetriever{}}
		res := n.Run(ctx, stateWith(history(1)))
		require.NotNil(t, res.Delta.Context)
		assert.Empty(t, *res.Delta.Context)
	})

	t.Run("failures degrade to empty context with a warning", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		n := &RetrieveContextNode{
			Retriever: &fakeRetriever{err: Wrap(KindRetrieval, "test", errors.New("vector db down"))},
			Logger:    zap.New(core),
		}

		res := n.Run(ctx, stateWith(history(1)))
		require.NoError(t, res.Err)
		require.NotNil(t, res.Delta.Context)
		assert.Empty(t, *res.Delta.Context)
		assert.Equal(t, 1, logs.Len())
	})

	t.Run("first_turn policy skips later turns", func(t *testing.T) {
		r := &fakeRetriever{snippets: []string{"x"}}
		n := &RetrieveContextNode{Retriever: r, Policy: RetrieveFirstTurn}

		res := n.Run(ctx, stateWith(history(3)))
		require.NotNil(t, res.Delta.Context)
		assert.Empty(t, *res.Delta.Context)
		assert.Equal(t, 0, r.calls())

		res = n.Run(ctx, stateWith(history(1)))
		assert.Equal(t, "x", *res.Delta.Context)
		assert.Equal(t, 1, r.calls())
	})
}

func TestSummarizeContextNode(t *testing.T) {
	ctx := context.Background()

	t.Run("empty context makes no call", func(t *testing.T) {
		g := newFakeGenerator()
		res := (&SummarizeContextNode{Generator: g}).Run(ctx, stateWith(history(1)))

		require.NoError(t, res.Err)
		assert.True(t, res.Delta.IsZero())
		assert.Equal(t, 0, g.summaryCalls())
	})

	t.Run("replaces context with its summary", func(t *testing.T) {
		g := newFakeGenerator()
		g.summary = "Short version."
		s := stateWith(history(1))
		s.RetrievedContext = "A very long knowledge document."

		res := (&SummarizeContextNode{Generator: g}).Run(ctx, s)
		require.NoError(t, res.Err)
		assert.Equal(t, "Short version.", *res.Delta.Context)
		require.Len(t, g.summaries, 1)
		assert.Contains(t, g.summaries[0].Prompt, "under 50 words")
		assert.Contains(t, g.summaries[0].Prompt, "A very long knowledge document.")
	})

	t.Run("failure is a generation error", func(t *testing.T) {
		g := newFakeGenerator()
		g.sumErr = errors.New("rate limited")
		s := stateWith(history(1))
		s.RetrievedContext = "ctx"

		res := (&SummarizeContextNode{Generator: g}).Run(ctx, s)
		assert.True(t, errors.Is(res.Err, ErrGeneration))
	})
}

func TestGenerateResponseNode(t *testing.T) {
	ctx := context.Background()

	t.Run("appends one assistant message", func(t *testing.T) {
		g := newFakeGenerator()
		s := stateWith([]Message{UserMessage("Advice?")})
		s.RetrievedContext = "World Cup 2022"
		s.Summary = "Talked about Rosario."

		res := (&GenerateResponseNode{Generator: g}).Run(ctx, s)
		require.NoError(t, res.Err)
		require.Len(t, res.Delta.Append, 1)
		assert.Equal(t, RoleAssistant, res.Delta.Append[0].Role)
		assert.Equal(t, g.reply, res.Delta.Append[0].Content)

		req := g.responses[0]
		assert.Contains(t, req.SystemPrompt, "You are Lionel Messi")
		assert.Contains(t, req.SystemPrompt, "Recent football knowledge context: World Cup 2022")
		assert.Contains(t, req.SystemPrompt, "Previous conversation summary: Talked about Rosario.")
		assert.Len(t, req.Messages, 1)
	})

	t.Run("failure carries no delta", func(t *testing.T) {
		g := newFakeGenerator()
		g.respErr = errors.New("provider 503")

		res := (&GenerateResponseNode{Generator: g}).Run(ctx, stateWith(history(1)))
		assert.True(t, errors.Is(res.Err, ErrGeneration))
		assert.True(t, res.Delta.IsZero())
	})
}

func TestConnectorNode(t *testing.T) {
	s := stateWith(history(1))

	res := ConnectorNode{}.Run(context.Background(), s)
	assert.Equal(t, "You are Lionel Messi, a Right Winger / False 9 from the 2000s-2020s era.", *res.Delta.SystemContext)

	s.RetrievedContext = "Ballon d'Or record."
	res = ConnectorNode{}.Run(context.Background(), s)
	assert.True(t, strings.HasSuffix(*res.Delta.SystemContext, " Context: Ballon d'Or record."))

	// Applying the connector twice yields the same state.
	once := Reduce(s, res.Delta)
	twice := Reduce(once, ConnectorNode{}.Run(context.Background(), once).Delta)
	assert.Equal(t, once, twice)
}

func TestSummarizeConversationNode(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh summary keeps the last five messages", func(t *testing.T) {
		g := newFakeGenerator()
		s := stateWith(history(13))

		res := (&SummarizeConversationNode{Generator: g, KeepLast: 5}).Run(ctx, s)
		require.NoError(t, res.Err)
		require.Len(t, res.Delta.Remove, 8)
		for i, id := range res.Delta.Remove {
			assert.Equal(t, s.Messages[i].ID, id)
		}
		assert.Equal(t, g.summary, *res.Delta.Summary)

		prompt := g.summaries[0].Prompt
		assert.Contains(t, prompt, "Create a summary of the conversation between Lionel Messi and the user.")
		assert.Contains(t, prompt, "Conversation with Lionel Messi:\nuser: message 0\nassistant: message 1")

		next := Reduce(s, res.Delta)
		assert.Len(t, next.Messages, 5)
		assert.Equal(t, s.Messages[8:], next.Messages)
	})

	t.Run("existing summary is updated", func(t *testing.T) {
		g := newFakeGenerator()
		s := stateWith(history(12))
		s.Summary = "They discussed free kicks."

		res := (&SummarizeConversationNode{Generator: g, KeepLast: 5}).Run(ctx, s)
		require.NoError(t, res.Err)
		assert.Contains(t, g.summaries[0].Prompt, "Existing summary: They discussed free kicks.")
		assert.Contains(t, g.summaries[0].Prompt, "Provide an updated summary")
	})

	t.Run("short transcript removes nothing", func(t *testing.T) {
		res := (&SummarizeConversationNode{Generator: newFakeGenerator(), KeepLast: 5}).Run(ctx, stateWith(history(3)))
		require.NoError(t, res.Err)
		assert.Empty(t, res.Delta.Remove)
	})

	t.Run("empty summary is a generation error", func(t *testing.T) {
		g := newFakeGenerator()
		g.summary = "  "
		res := (&SummarizeConversationNode{Generator: g, KeepLast: 5}).Run(ctx, stateWith(history(12)))
		assert.True(t, errors.Is(res.Err, ErrGeneration))
	})
}

// TestSummarizeConversationNode_RepeatedHistoryIDs checks compaction keeps
// the tail even when persisted messages share IDs.
func TestSummarizeConversationNode_RepeatedHistoryIDs(t *testing.T) {
	stored := history(11)
	for i := range stored {
		stored[i].ID = fmt.Sprintf("m%d", i%6)
	}

	s, err := NewState(messiProfile, stored, "", "new")
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}

	res := (&SummarizeConversationNode{Generator: newFakeGenerator(), KeepLast: 5}).Run(context.Background(), s)
	if res.Err != nil {
		t.Fatalf("Run: %v", res.Err)
	}
	if len(res.Delta.Remove) != 7 {
		t.Fatalf("removed %d messages, want 7", len(res.Delta.Remove))
	}

	next := Reduce(s, res.Delta)
	if len(next.Messages) != 5 {
		t.Fatalf("kept %d messages, want 5", len(next.Messages))
	}
	for i, m := range next.Messages {
		if want := s.Messages[7+i].Content; m.Content != want {
			t.Errorf("kept[%d] = %q, want %q", i, m.Content, want)
		}
	}
	if last := next.Messages[4].Content; last != "new" {
		t.Errorf("last kept message = %q, want the new user message", last)
	}
}

func TestShouldSummarize(t *testing.T) {
	route := ShouldSummarize(10)

	assert.Equal(t, graph.END, route(stateWith(history(10))))
	assert.Equal(t, NodeSummarizeConversation, route(stateWith(history(11))))
	assert.Equal(t, graph.END, route(stateWith(nil)))
}

func TestParseRetrievalPolicy(t *testing.T) {
	for in, want := range map[string]RetrievalPolicy{
		"":           RetrieveEveryTurn,
		"every_turn": RetrieveEveryTurn,
		"FIRST_TURN": RetrieveFirstTurn,
	} {
		got, err := ParseRetrievalPolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseRetrievalPolicy("sometimes")
	assert.Error(t, err)
}
