package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/solvik/agenthub/internal/domain"
	"github.com/solvik/agenthub/internal/domain/conversation"
)

func (s *Store) CreateHistory(ctx context.Context, userName string) (*conversation.History, error) {
	var h conversation.History
	err := s.pool.QueryRow(ctx,
		`INSERT INTO conversations (user_name) VALUES ($1)
		 RETURNING id, user_name, active, last_modified_on`,
		userName,
	).Scan(&h.ID, &h.UserName, &h.Active, &h.LastModifiedOn)
	if err != nil {
		return nil, fmt.Errorf("create history: %w", err)
	}
	return &h, nil
}

func (s *Store) GetHistoryByUser(ctx context.Context, userName string) (*conversation.History, error) {
	var h conversation.History
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_name, active, last_modified_on
		 FROM conversations WHERE user_name = $1 AND active`,
		userName,
	).Scan(&h.ID, &h.UserName, &h.Active, &h.LastModifiedOn)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get history for %s: %w", userName, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get history for %s: %w", userName, err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, conversation_id, role, content, created_at
		 FROM conversation_turns WHERE conversation_id = $1 ORDER BY created_at ASC`,
		h.ID)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t conversation.Turn
		if err := rows.Scan(&t.ID, &t.ConversationID, &t.Role, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		h.Turns = append(h.Turns, t)
	}
	return &h, rows.Err()
}

func (s *Store) AppendTurns(ctx context.Context, historyID string, turns []conversation.Turn) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin append turns: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, t := range turns {
		if _, err := tx.Exec(ctx,
			`INSERT INTO conversation_turns (conversation_id, role, content) VALUES ($1, $2, $3)`,
			historyID, t.Role, t.Content); err != nil {
			return fmt.Errorf("insert turn: %w", err)
		}
	}
	if _, err := tx.Exec(ctx,
		`UPDATE conversations SET last_modified_on = NOW() WHERE id = $1`, historyID); err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit append turns: %w", err)
	}
	return nil
}

func (s *Store) ClearHistory(ctx context.Context, userName string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE conversations SET active = FALSE, last_modified_on = NOW()
		 WHERE user_name = $1 AND active`,
		userName)
	if err != nil {
		return fmt.Errorf("clear history for %s: %w", userName, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("clear history for %s: %w", userName, domain.ErrNotFound)
	}
	return nil
}
