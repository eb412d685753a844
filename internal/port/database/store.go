// Package database defines the port interface for relational persistence.
package database

import (
	"context"

	"github.com/solvik/agenthub/internal/domain/agent"
	"github.com/solvik/agenthub/internal/domain/conversation"
)

// Store is the port interface for agent profiles and conversation history.
// The orchestration core reads profiles and histories through it; only the
// chat layer writes turns back.
type Store interface {
	// Agents
	CreateAgent(ctx context.Context, req *agent.CreateRequest) (*agent.Profile, error)
	GetAgent(ctx context.Context, id string) (*agent.Profile, error)
	ListAgents(ctx context.Context) ([]agent.Profile, error)
	UpdateAgent(ctx context.Context, id string, req agent.UpdateRequest) (*agent.Profile, error)
	DeleteAgent(ctx context.Context, id string) error

	// Conversations
	GetHistoryByUser(ctx context.Context, userName string) (*conversation.History, error)
	AppendTurns(ctx context.Context, historyID string, turns []conversation.Turn) error
	CreateHistory(ctx context.Context, userName string) (*conversation.History, error)
	ClearHistory(ctx context.Context, userName string) error
}
