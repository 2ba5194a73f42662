package service

import (
	"context"
	"errors"
	"time"

	"github.com/stallfront/stallfront/internal/shop/store"
)

// retryBackoff is the pause before the single retry of a transient
// store failure.
const retryBackoff = 50 * time.Millisecond

// retryTransient runs op and retries it exactly once after a short pause
// when the failure looks transient. Domain outcomes (not found, already
// exists) and context cancellation are returned as-is; a retry would
// only repeat them.
func retryTransient(ctx context.Context, op func() error) error {
	err := op()
	if err == nil ||
		errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, store.ErrAlreadyExists) ||
		ctx.Err() != nil {
		return err
	}

	select {
	case <-time.After(retryBackoff):
	case <-ctx.Done():
		return ctx.Err()
	}

	return op()
}
