package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solvik/agenthub/internal/domain"
	"github.com/solvik/agenthub/internal/domain/agent"
)

// Store implements the database port on top of a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) CreateAgent(ctx context.Context, req *agent.CreateRequest) (*agent.Profile, error) {
	var created agent.Profile
	err := s.pool.QueryRow(ctx,
		`INSERT INTO agents (name, behavior_prompt, application_name, tool_server_url, private)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, name, behavior_prompt, application_name, tool_server_url, private, created_at, updated_at`,
		req.Name, req.BehaviorPrompt, req.ApplicationName, req.ToolServerURL, req.Private,
	).Scan(&created.ID, &created.Name, &created.BehaviorPrompt, &created.ApplicationName,
		&created.ToolServerURL, &created.Private, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}
	return &created, nil
}

func (s *Store) GetAgent(ctx context.Context, id string) (*agent.Profile, error) {
	var p agent.Profile
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, behavior_prompt, application_name, tool_server_url, private, created_at, updated_at
		 FROM agents WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Name, &p.BehaviorPrompt, &p.ApplicationName,
		&p.ToolServerURL, &p.Private, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get agent %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get agent %s: %w", id, err)
	}
	return &p, nil
}

func (s *Store) ListAgents(ctx context.Context) ([]agent.Profile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, behavior_prompt, application_name, tool_server_url, private, created_at, updated_at
		 FROM agents ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	var result []agent.Profile
	for rows.Next() {
		var p agent.Profile
		if err := rows.Scan(&p.ID, &p.Name, &p.BehaviorPrompt, &p.ApplicationName,
			&p.ToolServerURL, &p.Private, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *Store) UpdateAgent(ctx context.Context, id string, req agent.UpdateRequest) (*agent.Profile, error) {
	var p agent.Profile
	err := s.pool.QueryRow(ctx,
		`UPDATE agents SET
		     name            = COALESCE($2, name),
		     behavior_prompt = COALESCE($3, behavior_prompt),
		     tool_server_url = COALESCE($4, tool_server_url),
		     private         = COALESCE($5, private),
		     updated_at      = NOW()
		 WHERE id = $1
		 RETURNING id, name, behavior_prompt, application_name, tool_server_url, private, created_at, updated_at`,
		id, req.Name, req.BehaviorPrompt, req.ToolServerURL, req.Private,
	).Scan(&p.ID, &p.Name, &p.BehaviorPrompt, &p.ApplicationName,
		&p.ToolServerURL, &p.Private, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("update agent %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("update agent %s: %w", id, err)
	}
	return &p, nil
}

func (s *Store) DeleteAgent(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM agents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete agent %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete agent %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
