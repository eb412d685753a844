package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/solvik/agenthub/internal/adapter/ws"
	"github.com/solvik/agenthub/internal/config"
	"github.com/solvik/agenthub/internal/domain"
	"github.com/solvik/agenthub/internal/domain/chat"
	"github.com/solvik/agenthub/internal/domain/conversation"
	"github.com/solvik/agenthub/internal/domain/status"
	"github.com/solvik/agenthub/internal/port/broadcast"
	"github.com/solvik/agenthub/internal/port/database"
)

// unavailableReply is returned without any model call while the service is
// marked unavailable.
const unavailableReply = "The agent is currently unavailable. Please try again later."

// ChatService orchestrates one chat turn: availability gate, history load,
// intent classification, skill routing, and persistence of the exchange.
type ChatService struct {
	store        database.Store
	classifier   *IntentClassifier
	router       *SkillRouter
	availability *status.Store
	events       broadcast.Broadcaster
	historyTurns int
	logger       *slog.Logger
}

// NewChatService creates a ChatService.
func NewChatService(store database.Store, classifier *IntentClassifier, router *SkillRouter, availability *status.Store, events broadcast.Broadcaster, orchCfg *config.Orchestrator, logger *slog.Logger) *ChatService {
	historyTurns := orchCfg.HistoryTurns
	if historyTurns <= 0 {
		historyTurns = 10
	}
	return &ChatService{
		store:        store,
		classifier:   classifier,
		router:       router,
		availability: availability,
		events:       events,
		historyTurns: historyTurns,
		logger:       logger,
	}
}

// SendMessage runs the full orchestration pipeline for one user message
// against the given agent and returns the response envelope.
func (s *ChatService) SendMessage(ctx context.Context, agentID string, req *conversation.SendMessageRequest) (*chat.Envelope, error) {
	if req.UserName == "" {
		return nil, fmt.Errorf("user_name is required: %w", domain.ErrValidation)
	}
	message := strings.TrimSpace(req.Content)
	if message == "" {
		return nil, fmt.Errorf("content is empty: %w", domain.ErrValidation)
	}

	profile, err := s.store.GetAgent(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("get agent: %w", err)
	}

	if cur := s.availability.Current(); !cur.Available {
		s.logger.Info("chat turn refused while unavailable", "agent_id", agentID, "user", req.UserName)
		return chat.NewEnvelope(unavailableReply, "", message), nil
	}

	history, err := s.loadHistory(ctx, req.UserName)
	if err != nil {
		return nil, err
	}
	recent := history.Recent(s.historyTurns)

	label, clsResp, err := s.classifier.Classify(ctx, profile, recent, message)
	if err != nil {
		return nil, err
	}

	env, err := s.router.Route(ctx, profile, recent, message, label)
	if err != nil {
		return nil, err
	}
	env.AddUsage(clsResp.TokensIn, clsResp.TokensOut)

	if err := s.store.AppendTurns(ctx, history.ID, []conversation.Turn{
		{Role: conversation.RoleUser, Content: message},
		{Role: conversation.RoleAssistant, Content: env.FinalText},
	}); err != nil {
		// The answer was produced; losing the history write should not
		// lose the turn for the user.
		s.logger.Error("append conversation turns", "history_id", history.ID, "error", err)
	}

	s.logger.Info("chat turn completed",
		"agent_id", agentID,
		"user", req.UserName,
		"intent", env.UserIntent,
		"tokens_in", env.TokensIn,
		"tokens_out", env.TokensOut,
	)
	if s.events != nil {
		s.events.BroadcastEvent(ctx, ws.EventChatResponse, ws.ChatResponseEvent{
			AgentID:    agentID,
			UserName:   req.UserName,
			UserIntent: env.UserIntent,
			FinalText:  env.FinalText,
		})
	}
	return env, nil
}

// ClearHistory deactivates the user's current conversation. The next turn
// starts a fresh history.
func (s *ChatService) ClearHistory(ctx context.Context, userName string) error {
	if userName == "" {
		return fmt.Errorf("user_name is required: %w", domain.ErrValidation)
	}
	if err := s.store.ClearHistory(ctx, userName); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// GetHistory returns the user's active conversation history.
func (s *ChatService) GetHistory(ctx context.Context, userName string) (*conversation.History, error) {
	if userName == "" {
		return nil, fmt.Errorf("user_name is required: %w", domain.ErrValidation)
	}
	return s.store.GetHistoryByUser(ctx, userName)
}

func (s *ChatService) loadHistory(ctx context.Context, userName string) (*conversation.History, error) {
	history, err := s.store.GetHistoryByUser(ctx, userName)
	if errors.Is(err, domain.ErrNotFound) {
		history, err = s.store.CreateHistory(ctx, userName)
	}
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return history, nil
}
