package conversation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/amoghd24/footagents-ai-game/graph"
)

// Node names in the workflow table.
const (
	NodeRetrieveContext       = "retrieve_context"
	NodeSummarizeContext      = "summarize_context"
	NodeGenerateResponse      = "generate_response"
	NodeConnector             = "connector"
	NodeSummarizeConversation = "summarize_conversation"
)

// RetrievalPolicy selects on which turns context is retrieved.
type RetrievalPolicy string

const (
	// RetrieveEveryTurn retrieves context on every turn.
	RetrieveEveryTurn RetrievalPolicy = "every_turn"

	// RetrieveFirstTurn retrieves only when the conversation holds a
	// single message.
	RetrieveFirstTurn RetrievalPolicy = "first_turn"
)

// ParseRetrievalPolicy validates s. The empty string selects
// RetrieveEveryTurn.
func ParseRetrievalPolicy(s string) (RetrievalPolicy, error) {
	switch RetrievalPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", RetrieveEveryTurn:
		return RetrieveEveryTurn, nil
	case RetrieveFirstTurn:
		return RetrieveFirstTurn, nil
	}
	return "", fmt.Errorf("unknown retrieval policy %q", s)
}

type result = graph.NodeResult[Update]

// RetrieveContextNode looks up knowledge for the latest message.
// Retrieval failures are logged and degrade to an empty context.
type RetrieveContextNode struct {
	Retriever Retriever
	Policy    RetrievalPolicy
	Logger    *zap.Logger
}

// Run implements graph.Node.
func (n *RetrieveContextNode) Run(ctx context.Context, s State) result {
	if n.Policy == RetrieveFirstTurn && len(s.Messages) != 1 {
		return result{Delta: Update{Context: ptr("")}}
	}

	last, ok := s.LastMessage()
	if !ok {
		return result{Delta: Update{Context: ptr("")}}
	}

	query := s.Character.Name + " " + last.Content
	snippets, err := n.Retriever.RetrieveContext(ctx, query)
	if err != nil {
		logger(n.Logger).Warn("context retrieval failed, continuing without context",
			zap.String("character", s.Character.ID),
			zap.Error(err),
		)
		return result{Delta: Update{Context: ptr("")}}
	}

	return result{Delta: Update{Context: ptr(strings.Join(snippets, "\n"))}}
}

// SummarizeContextNode compresses retrieved context. It makes no call when
// there is nothing to compress.
type SummarizeContextNode struct {
	Generator Generator
}

// Run implements graph.Node.
func (n *SummarizeContextNode) Run(ctx context.Context, s State) result {
	if s.RetrievedContext == "" {
		return result{}
	}

	summary, err := n.Generator.Summarize(ctx, SummaryRequest{Prompt: ContextSummaryPrompt(s.RetrievedContext)})
	if err != nil {
		return result{Err: Wrap(KindGeneration, NodeSummarizeContext, err)}
	}
	return result{Delta: Update{Context: ptr(summary)}}
}

// GenerateResponseNode answers the latest message in character.
type GenerateResponseNode struct {
	Generator Generator
}

// Run implements graph.Node.
func (n *GenerateResponseNode) Run(ctx context.Context, s State) result {
	text, err := n.Generator.GenerateResponse(ctx, ResponseRequest{
		Character:    s.Character,
		Context:      s.RetrievedContext,
		Summary:      s.Summary,
		Messages:     s.Messages,
		SystemPrompt: BuildCharacterPrompt(s.Character, s.RetrievedContext, s.Summary),
	})
	if err != nil {
		return result{Err: Wrap(KindGeneration, NodeGenerateResponse, err)}
	}
	return result{Delta: Update{Append: []Message{AssistantMessage(text)}}}
}

// ConnectorNode records the system context line. It never fails.
type ConnectorNode struct{}

// Run implements graph.Node.
func (ConnectorNode) Run(_ context.Context, s State) result {
	return result{Delta: Update{SystemContext: ptr(SystemContext(s.Character, s.RetrievedContext))}}
}

// SummarizeConversationNode folds the transcript into the running summary
// and drops all but the last KeepLast messages.
type SummarizeConversationNode struct {
	Generator Generator
	KeepLast  int
}

// Run implements graph.Node.
func (n *SummarizeConversationNode) Run(ctx context.Context, s State) result {
	transcript := Transcript(s.Character.Name, s.Messages)

	prompt := ConversationSummaryPrompt(s.Character.Name, transcript)
	if s.Summary != "" {
		prompt = UpdateSummaryPrompt(s.Summary, transcript)
	}

	summary, err := n.Generator.Summarize(ctx, SummaryRequest{Prompt: prompt})
	if err != nil {
		return result{Err: Wrap(KindGeneration, NodeSummarizeConversation, err)}
	}
	if strings.TrimSpace(summary) == "" {
		return result{Err: E(KindGeneration, NodeSummarizeConversation, "empty conversation summary")}
	}

	var remove []string
	if cut := len(s.Messages) - n.KeepLast; cut > 0 {
		remove = make([]string, 0, cut)
		for _, m := range s.Messages[:cut] {
			remove = append(remove, m.ID)
		}
	}

	return result{Delta: Update{Summary: ptr(summary), Remove: remove}}
}

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
