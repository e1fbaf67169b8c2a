package generation

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Ceiling bounds the number of in-flight generation requests across every
// client that shares it. A nil Ceiling imposes no bound.
type Ceiling struct {
	sem *semaphore.Weighted
}

// NewCeiling returns a Ceiling admitting n concurrent requests, or nil when
// n <= 0.
func NewCeiling(n int) *Ceiling {
	if n <= 0 {
		return nil
	}
	return &Ceiling{sem: semaphore.NewWeighted(int64(n))}
}

// Acquire blocks until a request slot is free or ctx is done.
func (c *Ceiling) Acquire(ctx context.Context) error {
	if c == nil {
		return ctx.Err()
	}
	return c.sem.Acquire(ctx, 1)
}

// Release frees a slot taken by Acquire.
func (c *Ceiling) Release() {
	if c == nil {
		return
	}
	c.sem.Release(1)
}
