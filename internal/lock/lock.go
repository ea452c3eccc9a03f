// Package lock serializes per-user exam operations.
package lock

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotAcquired is returned when a lock could not be taken before the
// context ended.
var ErrNotAcquired = errors.New("lock not acquired")

// Release gives a held lock back.
type Release func() error

// Manager hands out exclusive locks by key.
type Manager interface {
	// Acquire blocks until key is held or ctx ends. On failure the error
	// wraps ErrNotAcquired.
	Acquire(ctx context.Context, key string) (Release, error)
}

// With runs fn while holding key. The lock is released on every path,
// including a panic in fn.
func With(ctx context.Context, m Manager, key string, fn func(ctx context.Context) error) (err error) {
	release, err := m.Acquire(ctx, key)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := release(); rerr != nil && err == nil {
			err = fmt.Errorf("release %s: %w", key, rerr)
		}
	}()
	return fn(ctx)
}

func notAcquired(key string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrNotAcquired, key, cause)
}
