package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/solvik/agenthub/internal/config"
	"github.com/solvik/agenthub/internal/domain"
	"github.com/solvik/agenthub/internal/port/embedding"
	"github.com/solvik/agenthub/internal/port/vectorstore"
)

// defaultTopK bounds retrieval when no top-k is configured.
const defaultTopK = 5

// RetrievalService answers similarity queries against an agent's knowledge
// namespace and joins the matches into a single context string.
type RetrievalService struct {
	embedder embedding.Service
	vectors  vectorstore.Store
	topK     int
	logger   *slog.Logger
}

// NewRetrievalService creates a RetrievalService.
func NewRetrievalService(embedder embedding.Service, vectors vectorstore.Store, orchCfg *config.Orchestrator, logger *slog.Logger) *RetrievalService {
	topK := orchCfg.RetrievalTopK
	if topK <= 0 {
		topK = defaultTopK
	}
	return &RetrievalService{embedder: embedder, vectors: vectors, topK: topK, logger: logger}
}

// Retrieve embeds the query once, fetches the nearest chunks in the agent's
// namespace, and joins their text nearest-first with blank lines. An empty
// namespace or no matches yields "" and a nil error: absence of knowledge
// is an ordinary outcome, not a failure.
func (s *RetrievalService) Retrieve(ctx context.Context, agentID, query string) (string, error) {
	if agentID == "" {
		return "", fmt.Errorf("agent id is required: %w", domain.ErrValidation)
	}
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("query is empty: %w", domain.ErrValidation)
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("embed query: %w", err)
	}

	matches, err := s.vectors.NearestMatches(ctx, agentID, vector, s.topK)
	if err != nil {
		return "", fmt.Errorf("nearest matches: %w", err)
	}

	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		if text := strings.TrimSpace(m.Chunk.Text); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		s.logger.Debug("no knowledge retrieved", "agent_id", agentID)
		return "", nil
	}
	return strings.Join(parts, "\n\n"), nil
}
