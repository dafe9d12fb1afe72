package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/amoghd24/footagents-ai-game/eventstream"
)

// ChatRequest is one user turn.
type ChatRequest struct {
	Message        string
	CharacterID    string
	ConversationID string
}

// ChatResponse is the character's answer to a ChatRequest.
type ChatResponse struct {
	Response       string    `json:"response"`
	CharacterID    string    `json:"character_id"`
	ConversationID string    `json:"conversation_id"`
	RunID          string    `json:"run_id"`
	Timestamp      time.Time `json:"timestamp"`
}

// ServiceDeps are the collaborators of a Service. Publisher and Logger are
// optional.
type ServiceDeps struct {
	Characters Catalog
	Repository Repository
	Workflow   *Workflow
	Publisher  eventstream.Publisher
	Logger     *zap.Logger
}

// Service runs conversation turns and manages stored conversations.
type Service struct {
	characters Catalog
	repo       Repository
	workflow   *Workflow
	publisher  eventstream.Publisher
	logger     *zap.Logger
	now        func() time.Time
}

// NewService returns a Service over deps.
func NewService(deps ServiceDeps) (*Service, error) {
	switch {
	case deps.Characters == nil:
		return nil, errors.New("service: character catalog is required")
	case deps.Repository == nil:
		return nil, errors.New("service: repository is required")
	case deps.Workflow == nil:
		return nil, errors.New("service: workflow is required")
	}
	return &Service{
		characters: deps.Characters,
		repo:       deps.Repository,
		workflow:   deps.Workflow,
		publisher:  deps.Publisher,
		logger:     logger(deps.Logger),
		now:        time.Now,
	}, nil
}

// Chat runs one turn: load the conversation, run the workflow, persist the
// result and report it. Character lookup happens before any node runs.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	const op = "conversation.Chat"
	started := s.now()

	if strings.TrimSpace(req.Message) == "" {
		return ChatResponse{}, E(KindInvalidState, op, "message is required")
	}
	if strings.TrimSpace(req.CharacterID) == "" {
		return ChatResponse{}, E(KindInvalidState, op, "character_id is required")
	}

	profile, err := s.characters.GetCharacter(ctx, req.CharacterID)
	if err != nil {
		return ChatResponse{}, Wrap(KindNotFound, op, err)
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	history, summary, found, err := s.repo.LoadState(ctx, conversationID)
	if err != nil {
		return ChatResponse{}, Wrap(KindStore, op, err)
	}
	isNew := !found
	if isNew && req.ConversationID != "" {
		// An unknown client-chosen ID starts a conversation; a deleted one
		// stays deleted.
		if _, err := s.repo.Get(ctx, conversationID); err == nil {
			return ChatResponse{}, E(KindNotFound, op, "conversation "+conversationID+" is no longer active")
		} else if !errors.Is(err, ErrNotFound) {
			return ChatResponse{}, Wrap(KindStore, op, err)
		}
	}

	state, err := NewState(profile, history, summary, req.Message)
	if err != nil {
		return ChatResponse{}, err
	}

	runID := uuid.NewString()
	log := s.logger.With(
		zap.String("conversation_id", conversationID),
		zap.String("character_id", profile.ID),
		zap.String("run_id", runID),
	)

	final, err := s.workflow.Run(ctx, runID, state)
	if err != nil {
		log.Error("workflow run failed", zap.Error(err))
		// Node failures already carry a Kind; engine and context failures do not.
		return ChatResponse{}, Wrap(KindGeneration, op, err)
	}

	reply, ok := final.LastAssistant()
	if !ok {
		return ChatResponse{}, E(KindGeneration, op, "workflow produced no assistant message")
	}

	if err := s.repo.SaveState(ctx, conversationID, profile.ID, final.Messages, final.Summary); err != nil {
		return ChatResponse{}, Wrap(KindStore, op, err)
	}

	if err := s.repo.IncrementUsage(ctx, profile.ID); err != nil {
		log.Warn("failed to increment character usage", zap.Error(err))
	}

	finished := s.now()
	elapsed := finished.Sub(started).Milliseconds()

	if err := s.repo.AppendChatLog(ctx, ChatLog{
		ConversationID: conversationID,
		CharacterID:    profile.ID,
		UserMessage:    req.Message,
		Response:       reply.Content,
		ResponseTimeMs: elapsed,
		RunID:          runID,
		Timestamp:      finished.UTC(),
	}); err != nil {
		log.Warn("failed to append chat log", zap.Error(err))
	}

	if s.publisher != nil {
		event := eventstream.NewTurnEvent(conversationID, profile.ID, runID)
		event.UserMessage = req.Message
		event.Response = reply.Content
		event.ResponseTimeMs = elapsed
		event.MessageCount = len(final.Messages)
		event.Summarized = final.Summary != summary
		if err := s.publisher.PublishTurn(ctx, event); err != nil {
			log.Warn("failed to publish turn event", zap.Error(err))
		}
	}

	log.Info("turn completed",
		zap.Int("messages", len(final.Messages)),
		zap.Int64("response_time_ms", elapsed),
	)

	return ChatResponse{
		Response:       reply.Content,
		CharacterID:    profile.ID,
		ConversationID: conversationID,
		RunID:          runID,
		Timestamp:      finished.UTC(),
	}, nil
}

// Conversation returns a stored conversation.
func (s *Service) Conversation(ctx context.Context, id string) (Record, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return Record{}, Wrap(KindStore, "conversation.Conversation", err)
	}
	return rec, nil
}

// DeleteConversation soft-deletes a conversation.
func (s *Service) DeleteConversation(ctx context.Context, id string) error {
	return Wrap(KindStore, "conversation.DeleteConversation", s.repo.Deactivate(ctx, id))
}

// Characters lists the available character IDs.
func (s *Service) Characters() []string {
	return s.characters.IDs()
}

// Character returns one character profile.
func (s *Service) Character(ctx context.Context, id string) (Profile, error) {
	p, err := s.characters.GetCharacter(ctx, id)
	if err != nil {
		return Profile{}, Wrap(KindNotFound, "conversation.Character", err)
	}
	return p, nil
}

// Usage returns how many completed turns a character has served.
func (s *Service) Usage(ctx context.Context, characterID string) (int64, error) {
	p, err := s.Character(ctx, characterID)
	if err != nil {
		return 0, err
	}
	n, err := s.repo.Usage(ctx, p.ID)
	if err != nil {
		return 0, Wrap(KindStore, "conversation.Usage", err)
	}
	return n, nil
}
