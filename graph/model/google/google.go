// Package google adapts Gemini models to model.ChatModel.
package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/amoghd24/footagents-ai-game/graph/model"
)

// Config configures a ChatModel.
type Config struct {
	APIKey string
	Model  string

	// Temperature is passed through when non-negative.
	Temperature float64

	// MaxTokens bounds the reply when positive.
	MaxTokens int32
}

// ChatModel implements model.ChatModel for Gemini.
//
// The final message is sent through a chat session whose history holds
// every earlier turn; system messages become the system instruction.
type ChatModel struct {
	cfg    Config
	client geminiClient
}

// chatRequest is the provider-neutral shape handed to geminiClient.
type chatRequest struct {
	System  string
	History []*genai.Content
	Prompt  string
}

type geminiClient interface {
	send(ctx context.Context, req chatRequest) (*genai.GenerateContentResponse, error)
	close() error
}

type sdkClient struct {
	client *genai.Client
	cfg    Config
}

func (c *sdkClient) send(ctx context.Context, req chatRequest) (*genai.GenerateContentResponse, error) {
	// GenerativeModel is cheap and carries per-request settings.
	gm := c.client.GenerativeModel(c.cfg.Model)
	if c.cfg.Temperature >= 0 {
		gm.SetTemperature(float32(c.cfg.Temperature))
	}
	if c.cfg.MaxTokens > 0 {
		gm.SetMaxOutputTokens(c.cfg.MaxTokens)
	}
	if req.System != "" {
		gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	cs := gm.StartChat()
	cs.History = req.History
	return cs.SendMessage(ctx, genai.Text(req.Prompt))
}

func (c *sdkClient) close() error {
	return c.client.Close()
}

// NewChatModel dials the Gemini API. Close releases the connection.
func NewChatModel(ctx context.Context, cfg Config) (*ChatModel, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("google: API key cannot be empty")
	}
	if cfg.Model == "" {
		return nil, errors.New("google: model cannot be empty")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("google: create client: %w", err)
	}
	return &ChatModel{cfg: cfg, client: &sdkClient{client: client, cfg: cfg}}, nil
}

// Close releases the underlying client.
func (m *ChatModel) Close() error {
	return m.client.close()
}

// Chat implements model.ChatModel.
func (m *ChatModel) Chat(ctx context.Context, messages []model.Message) (model.ChatOut, error) {
	if err := ctx.Err(); err != nil {
		return model.ChatOut{}, err
	}

	req, err := buildRequest(messages)
	if err != nil {
		return model.ChatOut{}, err
	}

	resp, err := m.client.send(ctx, req)
	if err != nil {
		return model.ChatOut{}, mapError(err)
	}

	text := extractText(resp)
	if text == "" {
		return model.ChatOut{}, &model.ProviderError{Provider: "google", Err: model.ErrEmptyResponse}
	}

	out := model.ChatOut{Text: text}
	if resp.UsageMetadata != nil {
		out.Usage = model.Usage{
			InputTokens:  int64(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int64(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return out, nil
}

func buildRequest(messages []model.Message) (chatRequest, error) {
	system, turns := model.SplitSystem(messages)
	if len(turns) == 0 {
		return chatRequest{}, errors.New("google: at least one user or assistant message is required")
	}

	last := turns[len(turns)-1]
	history := make([]*genai.Content, 0, len(turns)-1)
	for _, t := range turns[:len(turns)-1] {
		role := "user"
		if t.Role == model.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(t.Content)}})
	}

	return chatRequest{System: system, History: history, Prompt: last.Content}, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(sb.String())
}

func mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &model.ProviderError{
			Provider:   "google",
			StatusCode: apiErr.Code,
			Retryable:  model.RetryableStatus(apiErr.Code),
			Err:        err,
		}
	}

	return &model.ProviderError{
		Provider:  "google",
		Retryable: true,
		Err:       fmt.Errorf("request failed: %w", err),
	}
}
