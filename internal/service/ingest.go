package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/solvik/agenthub/internal/adapter/ws"
	"github.com/solvik/agenthub/internal/config"
	"github.com/solvik/agenthub/internal/domain"
	"github.com/solvik/agenthub/internal/domain/knowledge"
	"github.com/solvik/agenthub/internal/port/broadcast"
	"github.com/solvik/agenthub/internal/port/embedding"
	"github.com/solvik/agenthub/internal/port/vectorstore"
	"github.com/solvik/agenthub/internal/resilience"
)

// IngestService splits documents into chunks, embeds them in one batch,
// and upserts them into the agent's vector namespace.
type IngestService struct {
	embedder  embedding.Service
	vectors   vectorstore.Store
	events    broadcast.Broadcaster
	pool      *resilience.Pool
	chunkSize int
	logger    *slog.Logger
}

// NewIngestService creates an IngestService. The pool bounds concurrent
// embedding batches across simultaneous ingest requests.
func NewIngestService(embedder embedding.Service, vectors vectorstore.Store, events broadcast.Broadcaster, pool *resilience.Pool, orchCfg *config.Orchestrator, logger *slog.Logger) *IngestService {
	chunkSize := orchCfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = knowledge.DefaultChunkSize
	}
	return &IngestService{
		embedder:  embedder,
		vectors:   vectors,
		events:    events,
		pool:      pool,
		chunkSize: chunkSize,
		logger:    logger,
	}
}

// Ingest stores content under the agent's namespace and returns the number
// of chunks written. The operation is all-or-nothing before the first
// write: producing zero chunks from non-blank content, or an embedding
// batch whose length differs from the chunk count, aborts with an error
// and nothing is persisted.
func (s *IngestService) Ingest(ctx context.Context, agentID, content string) (int, error) {
	if agentID == "" {
		return 0, fmt.Errorf("agent id is required: %w", domain.ErrValidation)
	}
	if strings.TrimSpace(content) == "" {
		return 0, fmt.Errorf("document content is empty: %w", domain.ErrValidation)
	}

	texts := knowledge.Split(content, s.chunkSize)
	if len(texts) == 0 {
		return 0, fmt.Errorf("splitting produced no chunks for non-empty content")
	}

	var vectors [][]float32
	err := s.pool.Run(ctx, func() error {
		var embedErr error
		vectors, embedErr = s.embedder.EmbedBatch(ctx, texts)
		return embedErr
	})
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(texts) {
		return 0, fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(texts), len(vectors))
	}

	for i, text := range texts {
		chunk := knowledge.Chunk{
			AgentID:       agentID,
			Text:          text,
			Embedding:     vectors[i],
			SequenceLabel: knowledge.SequenceLabel(i, len(texts)),
		}
		if err := s.vectors.Upsert(ctx, agentID, chunk.ID(i), chunk); err != nil {
			return 0, fmt.Errorf("upsert chunk %d: %w", i, err)
		}
	}

	s.logger.Info("document ingested", "agent_id", agentID, "chunks", len(texts))
	if s.events != nil {
		s.events.BroadcastEvent(ctx, ws.EventKnowledgeIngested, ws.KnowledgeIngestedEvent{
			AgentID:    agentID,
			ChunkCount: len(texts),
		})
	}
	return len(texts), nil
}

// DeleteKnowledge removes every chunk in the agent's namespace.
func (s *IngestService) DeleteKnowledge(ctx context.Context, agentID string) error {
	if agentID == "" {
		return fmt.Errorf("agent id is required: %w", domain.ErrValidation)
	}
	if err := s.vectors.DeleteNamespace(ctx, agentID); err != nil {
		return fmt.Errorf("delete knowledge namespace: %w", err)
	}
	return nil
}
