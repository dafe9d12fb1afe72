package conversation

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/amoghd24/footagents-ai-game/graph/model"
)

// ModelGenerator implements Generator on top of two chat models: one
// answering in character, one producing summaries. The summary model is
// typically smaller and runs at a lower temperature.
type ModelGenerator struct {
	response model.ChatModel
	summary  model.ChatModel
	logger   *zap.Logger
}

// NewModelGenerator returns a Generator. A nil summary model reuses the
// response model.
func NewModelGenerator(response, summary model.ChatModel, logger *zap.Logger) *ModelGenerator {
	if summary == nil {
		summary = response
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelGenerator{response: response, summary: summary, logger: logger}
}

// GenerateResponse implements Generator. When req.SystemPrompt is empty the
// character prompt is built from the request.
func (g *ModelGenerator) GenerateResponse(ctx context.Context, req ResponseRequest) (string, error) {
	const op = "generate_response"

	system := req.SystemPrompt
	if system == "" {
		system = BuildCharacterPrompt(req.Character, req.Context, req.Summary)
	}

	msgs := make([]model.Message, 0, len(req.Messages)+1)
	msgs = append(msgs, model.Message{Role: model.RoleSystem, Content: system})
	for _, m := range req.Messages {
		msgs = append(msgs, model.Message{Role: string(m.Role), Content: m.Content})
	}

	return g.call(ctx, op, g.response, msgs)
}

// Summarize implements Generator.
func (g *ModelGenerator) Summarize(ctx context.Context, req SummaryRequest) (string, error) {
	msgs := []model.Message{{Role: model.RoleUser, Content: req.Prompt}}
	return g.call(ctx, "summarize", g.summary, msgs)
}

func (g *ModelGenerator) call(ctx context.Context, op string, m model.ChatModel, msgs []model.Message) (string, error) {
	out, err := m.Chat(ctx, msgs)
	if err != nil {
		return "", Wrap(KindGeneration, op, err)
	}

	text := strings.TrimSpace(out.Text)
	if text == "" {
		return "", E(KindGeneration, op, "model returned empty text")
	}

	g.logger.Debug("model call complete",
		zap.String("op", op),
		zap.Int64("input_tokens", out.Usage.InputTokens),
		zap.Int64("output_tokens", out.Usage.OutputTokens),
	)
	return text, nil
}
