package google

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"

	"github.com/amoghd24/footagents-ai-game/graph/model"
)

type fakeClient struct {
	resp     *genai.GenerateContentResponse
	err      error
	requests []chatRequest
	closed   bool
}

func (f *fakeClient) send(_ context.Context, req chatRequest) (*genai.GenerateContentResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeClient) close() error {
	f.closed = true
	return nil
}

func replyWith(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Role: "model", Parts: parts}}},
		UsageMetadata: &genai.UsageMetadata{
			PromptTokenCount:     21,
			CandidatesTokenCount: 9,
		},
	}
}

func TestChatModel_Chat(t *testing.T) {
	fake := &fakeClient{resp: replyWith(genai.Text("Joga "), genai.Text("bonito."))}
	m := &ChatModel{cfg: Config{Model: "gemini-1.5-flash"}, client: fake}

	out, err := m.Chat(context.Background(), []model.Message{
		{Role: model.RoleSystem, Content: "You are Ronaldinho."},
		{Role: model.RoleUser, Content: "Hi!"},
		{Role: model.RoleAssistant, Content: "Olá!"},
		{Role: model.RoleUser, Content: "How do you dribble?"},
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if out.Text != "Joga bonito." {
		t.Errorf("Text = %q", out.Text)
	}
	if out.Usage.Total() != 30 {
		t.Errorf("Usage = %+v", out.Usage)
	}

	req := fake.requests[0]
	if req.System != "You are Ronaldinho." {
		t.Errorf("System = %q", req.System)
	}
	if req.Prompt != "How do you dribble?" {
		t.Errorf("Prompt = %q", req.Prompt)
	}
	if len(req.History) != 2 || req.History[0].Role != "user" || req.History[1].Role != "model" {
		t.Errorf("unexpected history: %+v", req.History)
	}
}

func TestChatModel_EmptyCandidates(t *testing.T) {
	m := &ChatModel{cfg: Config{Model: "g"}, client: &fakeClient{resp: &genai.GenerateContentResponse{}}}

	_, err := m.Chat(context.Background(), []model.Message{{Role: model.RoleUser, Content: "hi"}})
	if !errors.Is(err, model.ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestChatModel_NoTurns(t *testing.T) {
	m := &ChatModel{cfg: Config{Model: "g"}, client: &fakeClient{}}
	if _, err := m.Chat(context.Background(), nil); err == nil {
		t.Error("expected error for empty conversation")
	}
}

func TestChatModel_ErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
		status    int
	}{
		{name: "rate limited", err: &googleapi.Error{Code: 429, Message: "quota"}, retryable: true, status: 429},
		{name: "bad key", err: &googleapi.Error{Code: 403, Message: "forbidden"}, retryable: false, status: 403},
		{name: "server", err: &googleapi.Error{Code: 503, Message: "unavailable"}, retryable: true, status: 503},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &ChatModel{cfg: Config{Model: "g"}, client: &fakeClient{err: tt.err}}

			_, err := m.Chat(context.Background(), []model.Message{{Role: model.RoleUser, Content: "hi"}})

			var pe *model.ProviderError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ProviderError, got %v", err)
			}
			if pe.Retryable != tt.retryable || pe.StatusCode != tt.status {
				t.Errorf("got retryable=%v status=%d", pe.Retryable, pe.StatusCode)
			}
		})
	}
}

func TestChatModel_Close(t *testing.T) {
	fake := &fakeClient{}
	m := &ChatModel{client: fake}
	if err := m.Close(); err != nil || !fake.closed {
		t.Errorf("Close did not reach the client: %v", err)
	}
}
