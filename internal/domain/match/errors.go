package match

import "errors"

// Sentinel errors returned by Match operations.
var (
	ErrInvalidPhase    = errors.New("operation not allowed in this phase")
	ErrMatchComplete   = errors.New("match is complete")
	ErrInvalidDecision = errors.New("decision must be bat or bowl")
	ErrUnknownTeam     = errors.New("unknown team")
	ErrInvalidOvers    = errors.New("overs must be positive")
	ErrInvalidState    = errors.New("invalid match state")
)
