package results

import "errors"

// Sentinel kinds for ledger errors.
var (
	ErrDuplicate     = errors.New("result already recorded")
	ErrInvalidLimit  = errors.New("limit must be positive")
	ErrInvalidResult = errors.New("invalid result")
	ErrUnknownDriver = errors.New("unknown results driver")
)
