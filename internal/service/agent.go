package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/solvik/agenthub/internal/config"
	"github.com/solvik/agenthub/internal/domain"
	"github.com/solvik/agenthub/internal/domain/agent"
	"github.com/solvik/agenthub/internal/port/cache"
	"github.com/solvik/agenthub/internal/port/database"
	"github.com/solvik/agenthub/internal/port/vectorstore"
)

// AgentService manages agent profiles with a read-through cache in front
// of the database.
type AgentService struct {
	store      database.Store
	vectors    vectorstore.Store
	cache      cache.Cache
	profileTTL time.Duration
	logger     *slog.Logger
}

// NewAgentService creates an AgentService.
func NewAgentService(store database.Store, vectors vectorstore.Store, c cache.Cache, cacheCfg *config.Cache, logger *slog.Logger) *AgentService {
	ttl := cacheCfg.ProfileTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AgentService{store: store, vectors: vectors, cache: c, profileTTL: ttl, logger: logger}
}

// Create registers a new agent profile.
func (s *AgentService) Create(ctx context.Context, req *agent.CreateRequest) (*agent.Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	profile, err := s.store.CreateAgent(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}
	s.logger.Info("agent created", "agent_id", profile.ID, "name", profile.Name)
	return profile, nil
}

// Get returns the agent profile, served from cache when fresh.
func (s *AgentService) Get(ctx context.Context, id string) (*agent.Profile, error) {
	if err := validAgentID(id); err != nil {
		return nil, err
	}

	key := profileCacheKey(id)
	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var profile agent.Profile
		if err := json.Unmarshal(data, &profile); err == nil {
			return &profile, nil
		}
		// Corrupt entry; fall through to the database.
		_ = s.cache.Delete(ctx, key)
	}

	profile, err := s.store.GetAgent(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(profile); err == nil {
		if err := s.cache.Set(ctx, key, data, s.profileTTL); err != nil {
			s.logger.Debug("cache agent profile", "agent_id", id, "error", err)
		}
	}
	return profile, nil
}

// List returns all agent profiles.
func (s *AgentService) List(ctx context.Context) ([]agent.Profile, error) {
	return s.store.ListAgents(ctx)
}

// Update applies a partial update and invalidates the cached profile.
func (s *AgentService) Update(ctx context.Context, id string, req agent.UpdateRequest) (*agent.Profile, error) {
	if err := validAgentID(id); err != nil {
		return nil, err
	}
	profile, err := s.store.UpdateAgent(ctx, id, req)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Delete(ctx, profileCacheKey(id))
	return profile, nil
}

// Delete removes the agent along with its knowledge namespace.
func (s *AgentService) Delete(ctx context.Context, id string) error {
	if err := validAgentID(id); err != nil {
		return err
	}
	if err := s.store.DeleteAgent(ctx, id); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, profileCacheKey(id))
	if err := s.vectors.DeleteNamespace(ctx, id); err != nil {
		// The profile is gone; orphaned chunks are unreachable but should
		// still be reported.
		s.logger.Error("delete knowledge namespace", "agent_id", id, "error", err)
	}
	s.logger.Info("agent deleted", "agent_id", id)
	return nil
}

func profileCacheKey(id string) string {
	return "agent:profile:" + id
}

// validAgentID rejects malformed agent IDs before they reach the database.
func validAgentID(id string) error {
	if id == "" {
		return fmt.Errorf("agent id is required: %w", domain.ErrValidation)
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("agent id is not a valid uuid: %w", domain.ErrValidation)
	}
	return nil
}
