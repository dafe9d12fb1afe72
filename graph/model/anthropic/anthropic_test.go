package anthropic

import (
	"context"
	"errors"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/amoghd24/footagents-ai-game/graph/model"
)

type fakeClient struct {
	reply  *anthropic.Message
	err    error
	params []anthropic.MessageNewParams
}

func (f *fakeClient) create(_ context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func TestNewChatModel_Defaults(t *testing.T) {
	if _, err := NewChatModel(Config{Model: "claude"}); err == nil {
		t.Error("expected error for missing API key")
	}
	if _, err := NewChatModel(Config{APIKey: "k"}); err == nil {
		t.Error("expected error for missing model")
	}

	m, err := NewChatModel(Config{APIKey: "k", Model: "claude"})
	if err != nil {
		t.Fatalf("NewChatModel: %v", err)
	}
	if m.cfg.MaxTokens != DefaultMaxTokens {
		t.Errorf("MaxTokens = %d, want %d", m.cfg.MaxTokens, DefaultMaxTokens)
	}
}

func TestChatModel_Chat(t *testing.T) {
	fake := &fakeClient{reply: &anthropic.Message{
		Content: []anthropic.ContentBlockUnion{
			{Type: "text", Text: "Believe in the process. "},
			{Type: "text", Text: "Always."},
		},
		Usage: anthropic.Usage{InputTokens: 30, OutputTokens: 8},
	}}
	m := &ChatModel{cfg: Config{Model: "claude", MaxTokens: 200, Temperature: 0.3}, client: fake}

	out, err := m.Chat(context.Background(), []model.Message{
		{Role: model.RoleSystem, Content: "You are Carlo Ancelotti."},
		{Role: model.RoleUser, Content: "How do you manage egos?"},
		{Role: model.RoleAssistant, Content: "Calmly."},
		{Role: model.RoleUser, Content: "Tell me more."},
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	if out.Text != "Believe in the process. Always." {
		t.Errorf("Text = %q", out.Text)
	}
	if out.Usage.InputTokens != 30 || out.Usage.OutputTokens != 8 {
		t.Errorf("Usage = %+v", out.Usage)
	}

	params := fake.params[0]
	if len(params.System) != 1 || params.System[0].Text != "You are Carlo Ancelotti." {
		t.Errorf("System = %+v", params.System)
	}
	if len(params.Messages) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(params.Messages))
	}
	if params.Messages[1].Role != anthropic.MessageParamRoleAssistant {
		t.Errorf("second turn role = %q, want assistant", params.Messages[1].Role)
	}
	if params.MaxTokens != 200 {
		t.Errorf("MaxTokens = %d", params.MaxTokens)
	}
}

func TestChatModel_RequiresTurns(t *testing.T) {
	m := &ChatModel{cfg: Config{Model: "claude", MaxTokens: 10}, client: &fakeClient{}}

	_, err := m.Chat(context.Background(), []model.Message{{Role: model.RoleSystem, Content: "only system"}})
	if err == nil {
		t.Error("expected error when only system messages are given")
	}
}

func TestChatModel_EmptyResponse(t *testing.T) {
	fake := &fakeClient{reply: &anthropic.Message{}}
	m := &ChatModel{cfg: Config{Model: "claude", MaxTokens: 10}, client: fake}

	_, err := m.Chat(context.Background(), []model.Message{{Role: model.RoleUser, Content: "hi"}})
	if !errors.Is(err, model.ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestChatModel_ErrorMapping(t *testing.T) {
	m := &ChatModel{cfg: Config{Model: "claude", MaxTokens: 10}, client: &fakeClient{err: errors.New("dial tcp: refused")}}

	_, err := m.Chat(context.Background(), []model.Message{{Role: model.RoleUser, Content: "hi"}})
	if !model.IsRetryable(err) {
		t.Errorf("transport failure should be retryable: %v", err)
	}

	m.client = &fakeClient{err: context.Canceled}
	_, err = m.Chat(context.Background(), []model.Message{{Role: model.RoleUser, Content: "hi"}})
	if !errors.Is(err, context.Canceled) || model.IsRetryable(err) {
		t.Errorf("cancellation should pass through unretryable: %v", err)
	}
}
