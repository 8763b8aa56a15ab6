// Package repository persists match sessions between requests.
package repository

import (
	"context"

	"github.com/okian/cricksim/internal/domain/match"
)

// Store provides read/write access to stored matches.
type Store interface {
	// Get returns the stored state of a match.
	// Returns ErrNotFound if the match is unknown or expired.
	Get(ctx context.Context, id string) (match.State, error)

	// Put creates or replaces a match.
	Put(ctx context.Context, st match.State) error

	// Delete removes a match. Deleting an unknown match is not an error.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored matches.
	Count(ctx context.Context) (int, error)

	// Backend names the implementation for logs and metrics.
	Backend() string
}
