// Package openai adapts OpenAI-compatible chat completion endpoints to
// model.ChatModel. Groq, which hosts the Llama models the characters run
// on, speaks this protocol, so GroqBaseURL is provided as a convenience.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/amoghd24/footagents-ai-game/graph/model"
)

// GroqBaseURL is the OpenAI-compatible endpoint of Groq.
const GroqBaseURL = "https://api.groq.com/openai/v1/"

// Config configures a ChatModel.
type Config struct {
	// APIKey authenticates against the endpoint (required).
	APIKey string

	// BaseURL overrides the endpoint; empty selects the OpenAI default.
	BaseURL string

	// Model names the model, e.g. "llama-3.3-70b-versatile" (required).
	Model string

	// Temperature is passed through when non-negative.
	Temperature float64

	// MaxTokens bounds the reply length when positive.
	MaxTokens int64
}

// ChatModel implements model.ChatModel over the Chat Completions API.
//
// Example usage:
//
//	m, err := openai.NewChatModel(openai.Config{
//	    APIKey:      os.Getenv("GROQ_API_KEY"),
//	    BaseURL:     openai.GroqBaseURL,
//	    Model:       "llama-3.3-70b-versatile",
//	    Temperature: 0.7,
//	})
//	out, err := m.Chat(ctx, []model.Message{{Role: model.RoleUser, Content: "Hola"}})
type ChatModel struct {
	cfg    Config
	client completionClient
}

// completionClient is the slice of the SDK the adapter uses, so tests can
// substitute a fake.
type completionClient interface {
	complete(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

type sdkClient struct {
	client openai.Client
}

func (c *sdkClient) complete(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}

// NewChatModel creates a ChatModel from cfg.
func NewChatModel(cfg Config) (*ChatModel, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key cannot be empty")
	}
	if cfg.Model == "" {
		return nil, errors.New("openai: model cannot be empty")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	// Retries are owned by model.WithRetry.
	opts = append(opts, option.WithMaxRetries(0))

	return &ChatModel{
		cfg:    cfg,
		client: &sdkClient{client: openai.NewClient(opts...)},
	}, nil
}

// Chat implements model.ChatModel.
func (m *ChatModel) Chat(ctx context.Context, messages []model.Message) (model.ChatOut, error) {
	if err := ctx.Err(); err != nil {
		return model.ChatOut{}, err
	}

	completion, err := m.client.complete(ctx, m.params(messages))
	if err != nil {
		return model.ChatOut{}, mapError(err)
	}
	if len(completion.Choices) == 0 {
		return model.ChatOut{}, &model.ProviderError{Provider: "openai", Err: model.ErrEmptyResponse}
	}

	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return model.ChatOut{}, &model.ProviderError{Provider: "openai", Err: model.ErrEmptyResponse}
	}

	return model.ChatOut{
		Text: text,
		Usage: model.Usage{
			InputTokens:  completion.Usage.PromptTokens,
			OutputTokens: completion.Usage.CompletionTokens,
		},
	}, nil
}

func (m *ChatModel) params(messages []model.Message) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(m.cfg.Model),
		Messages: convertMessages(messages),
	}
	if m.cfg.Temperature >= 0 {
		params.Temperature = openai.Float(m.cfg.Temperature)
	}
	if m.cfg.MaxTokens > 0 {
		params.MaxTokens = openai.Int(m.cfg.MaxTokens)
	}
	return params
}

func convertMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case model.RoleAssistant:
			out = append(out, openai.AssistantMessage(msg.Content))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

// mapError converts SDK failures to model.ProviderError.
func mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &model.ProviderError{
			Provider:   "openai",
			StatusCode: apiErr.StatusCode,
			Retryable:  model.RetryableStatus(apiErr.StatusCode),
			Err:        err,
		}
	}

	// No HTTP status means the request never completed.
	return &model.ProviderError{
		Provider:  "openai",
		Retryable: true,
		Err:       fmt.Errorf("request failed: %w", err),
	}
}
