// Package vectorstore defines the port for namespaced vector similarity search.
package vectorstore

import (
	"context"

	"github.com/solvik/agenthub/internal/domain/knowledge"
)

// Match is a retrieved chunk with its similarity score, nearest first in
// any result ordering.
type Match struct {
	Chunk knowledge.Chunk
	Score float64
}

// Store is the port interface for the vector store. Namespaces partition
// records per agent; a query never crosses namespaces.
type Store interface {
	// Upsert writes a chunk under the given namespace and id, overwriting
	// any existing record with the same identity.
	Upsert(ctx context.Context, namespace, id string, chunk knowledge.Chunk) error

	// NearestMatches returns the k records nearest to the query vector
	// within the namespace, ordered by descending relevance.
	NearestMatches(ctx context.Context, namespace string, vector []float32, k int) ([]Match, error)

	// DeleteNamespace removes every record in the namespace.
	DeleteNamespace(ctx context.Context, namespace string) error
}
