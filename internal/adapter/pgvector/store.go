// Package pgvector implements the vector store port on PostgreSQL with the
// pgvector extension.
package pgvector

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/solvik/agenthub/internal/domain/knowledge"
	"github.com/solvik/agenthub/internal/port/vectorstore"
)

// Store persists knowledge chunks with their embeddings and answers
// nearest-neighbour queries using cosine distance.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store backed by the given pool. The pool must have the
// pgvector codec registered (see postgres.NewPool).
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Upsert writes a chunk under (namespace, id), overwriting any existing
// record with the same identity.
func (s *Store) Upsert(ctx context.Context, namespace, id string, chunk knowledge.Chunk) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO knowledge_chunks (namespace, chunk_id, content, embedding, sequence_label)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (namespace, chunk_id) DO UPDATE SET
		     content        = EXCLUDED.content,
		     embedding      = EXCLUDED.embedding,
		     sequence_label = EXCLUDED.sequence_label`,
		namespace, id, chunk.Text, pgvector.NewVector(chunk.Embedding), chunk.SequenceLabel)
	if err != nil {
		return fmt.Errorf("upsert chunk %s/%s: %w", namespace, id, err)
	}
	return nil
}

// NearestMatches returns the k chunks nearest to the query vector within the
// namespace, most similar first. Cosine distance is converted to a
// similarity score in [0, 1].
func (s *Store) NearestMatches(ctx context.Context, namespace string, vector []float32, k int) ([]vectorstore.Match, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT content, sequence_label, 1 - (embedding <=> $2) AS score
		 FROM knowledge_chunks
		 WHERE namespace = $1
		 ORDER BY embedding <=> $2
		 LIMIT $3`,
		namespace, pgvector.NewVector(vector), k)
	if err != nil {
		return nil, fmt.Errorf("nearest matches %s: %w", namespace, err)
	}
	defer rows.Close()

	var matches []vectorstore.Match
	for rows.Next() {
		var m vectorstore.Match
		m.Chunk.AgentID = namespace
		if err := rows.Scan(&m.Chunk.Text, &m.Chunk.SequenceLabel, &m.Score); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// DeleteNamespace removes every chunk in an agent's namespace. Used when an
// agent is deleted.
func (s *Store) DeleteNamespace(ctx context.Context, namespace string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM knowledge_chunks WHERE namespace = $1`, namespace)
	if err != nil {
		return fmt.Errorf("delete namespace %s: %w", namespace, err)
	}
	return nil
}
