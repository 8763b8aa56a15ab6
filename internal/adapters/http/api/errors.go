package api

import (
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/cricksim/internal/app"
	"github.com/okian/cricksim/internal/adapters/repository"
	"github.com/okian/cricksim/internal/adapters/results"
	"github.com/okian/cricksim/internal/domain/match"
	"github.com/okian/cricksim/internal/domain/ratings"
	"github.com/okian/cricksim/internal/domain/toss"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
)

// kindError tags an error with the operation that failed.
type kindError struct {
	op   string
	kind error
	err  error
}

func (e *kindError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("%s: %v", e.op, e.kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.op, e.kind, e.err)
}

func (e *kindError) Unwrap() []error {
	if e.err == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.err}
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error { return &kindError{op: op, kind: kind} }

// WrapKind tags err with kind and op.
func WrapKind(op string, kind, err error) error { return &kindError{op: op, kind: kind, err: err} }

// classify maps domain errors to an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, match.ErrInvalidPhase), errors.Is(err, match.ErrMatchComplete):
		return http.StatusConflict, "conflict"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, match.ErrInvalidDecision),
		errors.Is(err, match.ErrUnknownTeam),
		errors.Is(err, match.ErrInvalidOvers),
		errors.Is(err, toss.ErrInvalidCall),
		errors.Is(err, results.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, ratings.ErrNotFound):
		// a repaired delivery missing from the table means the table is broken
		return http.StatusInternalServerError, "internal_error"
	}
	return http.StatusInternalServerError, "internal_error"
}
