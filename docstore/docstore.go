// Package docstore holds the document side of the fruit catalogue: one
// collection of schema-flexible fruit records keyed by fruit_id.
package docstore

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by FindByID when no record has the fruit_id.
	ErrNotFound = errors.New("fruit record not found")

	// ErrDuplicateKey is returned by Insert when the fruit_id already exists.
	ErrDuplicateKey = errors.New("fruit_id already exists")
)

func bound(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
