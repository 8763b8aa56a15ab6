package ratings

import "errors"

// Sentinel errors for table lookups and loading.
var (
	// ErrNotFound is returned when a delivery has no row or a shot has no column.
	ErrNotFound = errors.New("rating not found")
	// ErrInvalidTable is returned when a table fails validation at load.
	ErrInvalidTable = errors.New("invalid rating table")
)
