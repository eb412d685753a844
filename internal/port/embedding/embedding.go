// Package embedding defines the port for generating vector embeddings.
package embedding

import "context"

// Service is the port interface for the embedding provider.
type Service interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input text, order-preserving and
	// 1:1 with the input.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
