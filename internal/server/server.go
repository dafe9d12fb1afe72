// Package server exposes the conversation service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/amoghd24/footagents-ai-game/conversation"
	"github.com/amoghd24/footagents-ai-game/graph/emit"
)

// Service is the conversation API the handlers call.
type Service interface {
	Chat(ctx context.Context, req conversation.ChatRequest) (conversation.ChatResponse, error)
	Conversation(ctx context.Context, id string) (conversation.Record, error)
	DeleteConversation(ctx context.Context, id string) error
	Characters() []string
	Character(ctx context.Context, id string) (conversation.Profile, error)
	Usage(ctx context.Context, characterID string) (int64, error)
}

// EventHistory returns the buffered engine events of a run.
type EventHistory interface {
	GetHistory(runID string) []emit.Event
}

// Deps are the handler collaborators. Events and Metrics are optional; the
// matching routes answer 404 without them.
type Deps struct {
	Service Service
	Events  EventHistory
	Metrics prometheus.Gatherer
	Logger  *zap.Logger
}

// Options tune the HTTP layer.
type Options struct {
	// RequestTimeout bounds each request. Zero disables it.
	RequestTimeout time.Duration
}

type handler struct {
	svc    Service
	events EventHistory
	logger *zap.Logger
}

// New returns the API router.
func New(deps Deps, opts Options) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handler{svc: deps.Service, events: deps.Events, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}

	r.Get("/", h.root)
	r.Get("/health", h.health)
	r.Get("/characters", h.listCharacters)
	r.Get("/characters/{id}", h.getCharacter)
	r.Get("/characters/{id}/usage", h.usage)
	r.Post("/chat", h.chat)
	r.Get("/conversations/{id}", h.getConversation)
	r.Delete("/conversations/{id}", h.deleteConversation)
	if deps.Events != nil {
		r.Get("/runs/{runID}/events", h.runEvents)
	}
	if deps.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}
	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

type chatRequest struct {
	Message        string `json:"message"`
	CharacterID    string `json:"character_id"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type chatResponse struct {
	Response       string    `json:"response"`
	CharacterID    string    `json:"character_id"`
	ConversationID string    `json:"conversation_id"`
	RunID          string    `json:"run_id"`
	Timestamp      time.Time `json:"timestamp"`
}

type conversationResponse struct {
	conversation.Record
	CharacterName string `json:"character_name"`
}

type errorResponse struct {
	Detail string `json:"detail"`
	Kind   string `json:"kind,omitempty"`
}

type eventResponse struct {
	RunID  string         `json:"run_id"`
	Step   int            `json:"step"`
	NodeID string         `json:"node_id,omitempty"`
	Msg    string         `json:"msg"`
	Meta   map[string]any `json:"meta,omitempty"`
}

func (h *handler) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "FootAgents API is running!"})
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "timestamp": time.Now().UTC()})
}

func (h *handler) listCharacters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"characters": h.svc.Characters()})
}

func (h *handler) getCharacter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.svc.Character(r.Context(), id)
	if errors.Is(err, conversation.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: "Character " + id + " not found", Kind: string(conversation.KindNotFound)})
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) usage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	n, err := h.svc.Usage(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"character_id": strings.ToLower(strings.TrimSpace(id)), "conversation_count": n})
}

func (h *handler) chat(w http.ResponseWriter, r *http.Request) {
	var body chatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid request body", Kind: string(conversation.KindInvalidState)})
		return
	}

	resp, err := h.svc.Chat(r.Context(), conversation.ChatRequest{
		Message:        body.Message,
		CharacterID:    body.CharacterID,
		ConversationID: body.ConversationID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:       resp.Response,
		CharacterID:    resp.CharacterID,
		ConversationID: resp.ConversationID,
		RunID:          resp.RunID,
		Timestamp:      resp.Timestamp,
	})
}

func (h *handler) getConversation(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Conversation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if rec.Messages == nil {
		rec.Messages = []conversation.Message{}
	}
	out := conversationResponse{Record: rec}
	// A character dropped from the catalog leaves the name empty.
	if p, err := h.svc.Character(r.Context(), rec.CharacterID); err == nil {
		out.CharacterName = p.Name
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) deleteConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteConversation(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Conversation deleted", "conversation_id": id})
}

func (h *handler) runEvents(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	history := h.events.GetHistory(runID)
	if len(history) == 0 {
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: "Run " + runID + " not found", Kind: string(conversation.KindNotFound)})
		return
	}

	out := make([]eventResponse, 0, len(history))
	for _, e := range history {
		out = append(out, eventResponse{RunID: e.RunID, Step: e.Step, NodeID: e.NodeID, Msg: e.Msg, Meta: e.Meta})
	}
	writeJSON(w, http.StatusOK, map[string]any{"run_id": runID, "events": out})
}

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	switch conversation.KindOf(err) {
	case conversation.KindInvalidState:
		return http.StatusBadRequest
	case conversation.KindNotFound:
		return http.StatusNotFound
	case conversation.KindGeneration, conversation.KindRetrieval:
		return http.StatusBadGateway
	case conversation.KindStore:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
	}
	writeJSON(w, status, errorResponse{Detail: err.Error(), Kind: string(conversation.KindOf(err))})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
