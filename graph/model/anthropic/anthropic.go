// Package anthropic adapts the Claude Messages API to model.ChatModel.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/amoghd24/footagents-ai-game/graph/model"
)

// DefaultMaxTokens is used when Config.MaxTokens is unset. The Messages API
// requires an explicit limit.
const DefaultMaxTokens = 1024

// Config configures a ChatModel.
type Config struct {
	APIKey string
	Model  string

	// Temperature is passed through when non-negative.
	Temperature float64

	// MaxTokens bounds the reply; 0 selects DefaultMaxTokens.
	MaxTokens int64
}

// ChatModel implements model.ChatModel for Claude models.
//
// System messages are lifted into the request's system field; the
// remaining turns are sent in order.
type ChatModel struct {
	cfg    Config
	client messagesClient
}

type messagesClient interface {
	create(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error)
}

type sdkClient struct {
	client anthropic.Client
}

func (c *sdkClient) create(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	return c.client.Messages.New(ctx, params)
}

// NewChatModel creates a ChatModel from cfg.
func NewChatModel(cfg Config) (*ChatModel, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: API key cannot be empty")
	}
	if cfg.Model == "" {
		return nil, errors.New("anthropic: model cannot be empty")
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0))
	return &ChatModel{cfg: cfg, client: &sdkClient{client: client}}, nil
}

// Chat implements model.ChatModel.
func (m *ChatModel) Chat(ctx context.Context, messages []model.Message) (model.ChatOut, error) {
	if err := ctx.Err(); err != nil {
		return model.ChatOut{}, err
	}

	system, turns := model.SplitSystem(messages)
	if len(turns) == 0 {
		return model.ChatOut{}, errors.New("anthropic: at least one user or assistant message is required")
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(m.cfg.Model),
		MaxTokens: m.cfg.MaxTokens,
		Messages:  convertMessages(turns),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if m.cfg.Temperature >= 0 {
		params.Temperature = anthropic.Float(m.cfg.Temperature)
	}

	msg, err := m.client.create(ctx, params)
	if err != nil {
		return model.ChatOut{}, mapError(err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return model.ChatOut{}, &model.ProviderError{Provider: "anthropic", Err: model.ErrEmptyResponse}
	}

	return model.ChatOut{
		Text: text,
		Usage: model.Usage{
			InputTokens:  msg.Usage.InputTokens,
			OutputTokens: msg.Usage.OutputTokens,
		},
	}, nil
}

func convertMessages(turns []model.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(turns))
	for _, t := range turns {
		block := anthropic.NewTextBlock(t.Content)
		if t.Role == model.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(block))
			continue
		}
		out = append(out, anthropic.NewUserMessage(block))
	}
	return out
}

func mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &model.ProviderError{
			Provider:   "anthropic",
			StatusCode: apiErr.StatusCode,
			// 529 is Anthropic's "overloaded" status.
			Retryable: model.RetryableStatus(apiErr.StatusCode),
			Err:       err,
		}
	}

	return &model.ProviderError{
		Provider:  "anthropic",
		Retryable: true,
		Err:       fmt.Errorf("request failed: %w", err),
	}
}
