package resilience

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Pool limits concurrent calls to an external service using a weighted
// semaphore. Ingestion runs one embedding batch per document; a shared Pool
// keeps simultaneous ingests from flooding the embedding API.
type Pool struct {
	sem *semaphore.Weighted
}

// NewWorkPool creates a Pool that allows at most limit concurrent operations.
func NewWorkPool(limit int) *Pool {
	if limit < 1 {
		limit = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(limit))}
}

// Run acquires a slot, runs fn, and releases the slot. Blocks if all slots
// are busy. Returns ctx.Err() if the context is cancelled while waiting.
// If the pool is nil, fn is executed directly without concurrency control.
func (p *Pool) Run(ctx context.Context, fn func() error) error {
	if p == nil || p.sem == nil {
		return fn()
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)
	return fn()
}
