package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound  = errors.New("match not found")
	ErrInvalidID = errors.New("invalid match id")
	ErrCorrupt   = errors.New("stored match is corrupt")
)
