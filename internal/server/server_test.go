package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amoghd24/footagents-ai-game/character"
	"github.com/amoghd24/footagents-ai-game/conversation"
	"github.com/amoghd24/footagents-ai-game/graph"
	"github.com/amoghd24/footagents-ai-game/graph/emit"
	"github.com/amoghd24/footagents-ai-game/graph/model"
	"github.com/amoghd24/footagents-ai-game/storage/memory"
)

type fixture struct {
	handler http.Handler
	llm     *model.MockChatModel
	events  *emit.BufferedEmitter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	llm := &model.MockChatModel{Handler: func(msgs []model.Message) (model.ChatOut, error) {
		if len(msgs) == 1 {
			return model.ChatOut{Text: "A short summary."}, nil
		}
		return model.ChatOut{Text: "Work hard and enjoy the game."}, nil
	}}
	events := emit.NewBufferedEmitter(10)
	registry := prometheus.NewRegistry()

	cfg := conversation.DefaultConfig()
	cfg.Pipeline = conversation.PipelineSimple
	wf, err := conversation.NewWorkflow(cfg, conversation.Deps{
		Generator: conversation.NewModelGenerator(llm, nil, nil),
		Emitter:   events,
		Metrics:   graph.NewPrometheusMetrics(registry),
	})
	require.NoError(t, err)

	svc, err := conversation.NewService(conversation.ServiceDeps{
		Characters: character.NewCatalog(),
		Repository: memory.New(),
		Workflow:   wf,
	})
	require.NoError(t, err)

	return &fixture{
		handler: New(Deps{Service: svc, Events: events, Metrics: registry}, Options{}),
		llm:     llm,
		events:  events,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestRootAndHealth(t *testing.T) {
	f := newFixture(t)

	rec, body := f.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "FootAgents API is running!", body["message"])

	rec, body = f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	ts, ok := body["timestamp"].(string)
	require.True(t, ok, "health carries a timestamp")
	_, err := time.Parse(time.RFC3339Nano, ts)
	assert.NoError(t, err)
}

func TestCharacters(t *testing.T) {
	f := newFixture(t)

	rec, body := f.do(t, http.MethodGet, "/characters", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ids := body["characters"].([]any)
	assert.Len(t, ids, 14)
	assert.Contains(t, ids, "messi")
	assert.Contains(t, ids, "sophia")

	rec, body = f.do(t, http.MethodGet, "/characters/messi", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Lionel Messi", body["name"])

	rec, body = f.do(t, http.MethodGet, "/characters/zidane", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Character zidane not found", body["detail"])
}

func TestChatFlow(t *testing.T) {
	f := newFixture(t)

	rec, body := f.do(t, http.MethodPost, "/chat", map[string]string{
		"message":      "What's your advice for young players?",
		"character_id": "messi",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Work hard and enjoy the game.", body["response"])
	assert.Equal(t, "messi", body["character_id"])
	convID := body["conversation_id"].(string)
	runID := body["run_id"].(string)
	assert.NotEmpty(t, convID)
	assert.NotEmpty(t, body["timestamp"])

	rec, body = f.do(t, http.MethodGet, "/conversations/"+convID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, convID, body["conversation_id"])
	assert.Equal(t, "messi", body["character_id"])
	assert.Equal(t, "Lionel Messi", body["character_name"])
	assert.Equal(t, true, body["is_active"])
	assert.Len(t, body["messages"], 2)

	rec, body = f.do(t, http.MethodGet, "/runs/"+runID+"/events", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, body["events"])

	rec, body = f.do(t, http.MethodGet, "/characters/messi/usage", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "messi", body["character_id"])
	assert.EqualValues(t, 1, body["conversation_count"])

	rec, body = f.do(t, http.MethodDelete, "/conversations/"+convID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Conversation deleted", body["message"])
	assert.Equal(t, convID, body["conversation_id"])

	rec, _ = f.do(t, http.MethodDelete, "/conversations/"+convID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body = f.do(t, http.MethodPost, "/chat", map[string]string{
		"message":         "Are you still there?",
		"character_id":    "messi",
		"conversation_id": convID,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NotFound", body["kind"])
}

func TestChatErrors(t *testing.T) {
	f := newFixture(t)

	rec, body := f.do(t, http.MethodPost, "/chat", map[string]string{"message": "Hola", "character_id": "zidane"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NotFound", body["kind"])
	assert.Equal(t, 0, f.llm.CallCount())

	rec, body = f.do(t, http.MethodPost, "/chat", map[string]string{"message": "", "character_id": "messi"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "InvalidState", body["kind"])

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("{not json"))
	raw := httptest.NewRecorder()
	f.handler.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)

	f.llm.Handler = func([]model.Message) (model.ChatOut, error) {
		return model.ChatOut{}, &model.ProviderError{Provider: "openai", StatusCode: 503, Err: errors.New("overloaded")}
	}
	rec, body = f.do(t, http.MethodPost, "/chat", map[string]string{"message": "Hi", "character_id": "messi"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "GenerationError", body["kind"])
}

func TestMissingResources(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.do(t, http.MethodGet, "/conversations/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/runs/nope/events", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/characters/nobody/usage", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetrics(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/chat", map[string]string{"message": "Hi", "character_id": "pele"})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "conversation_simple")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(conversation.Wrap(conversation.KindStore, "op", errors.New("down"))))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
	assert.Equal(t, http.StatusGatewayTimeout, statusFor(conversation.Wrap(conversation.KindGeneration, "op", context.DeadlineExceeded)))
	assert.Equal(t, http.StatusBadGateway, statusFor(conversation.Wrap(conversation.KindGeneration, "op", context.Canceled)))
}
