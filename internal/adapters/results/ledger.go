// Package results keeps completed matches and serves the board of best
// innings totals.
package results

import (
	"context"

	"github.com/okian/cricksim/internal/domain/model"
	"github.com/okian/cricksim/internal/domain/types"
)

// Ledger records completed matches.
type Ledger interface {
	// Record stores a result and both innings totals.
	// Returns ErrDuplicate if the match was already recorded.
	Record(ctx context.Context, r model.Result) error

	// Top returns up to n innings totals in board order.
	// Returns ErrInvalidLimit if n < 1.
	Top(ctx context.Context, n int) ([]types.Entry, error)

	// Count returns the number of recorded matches.
	Count(ctx context.Context) (int, error)

	// Backend names the implementation for logs and metrics.
	Backend() string

	Close() error
}

// DriverNone keeps results in memory for the life of the process.
const DriverNone = "none"

// New builds the ledger for a configured driver.
func New(ctx context.Context, driver, dsn string) (Ledger, error) {
	if driver == DriverNone {
		return NewMemoryLedger(), nil
	}
	return Open(ctx, driver, dsn)
}
