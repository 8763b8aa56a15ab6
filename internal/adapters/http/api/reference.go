package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/cricksim/internal/domain/ratings"
)

// ReferenceHandler serves rosters, toss conditions and rating table options.
type ReferenceHandler struct {
	deps ReferenceDependencies
}

// NewReferenceHandler creates a new reference handler.
func NewReferenceHandler(deps ReferenceDependencies) *ReferenceHandler {
	return &ReferenceHandler{deps: deps}
}

// HandleTeams handles GET /api/v1/teams.
func (h *ReferenceHandler) HandleTeams(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Teams())
}

// HandleConditions handles GET /api/v1/conditions.
func (h *ReferenceHandler) HandleConditions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Conditions())
}

// HandleRatings handles GET /api/v1/ratings.
func (h *ReferenceHandler) HandleRatings(w http.ResponseWriter, _ *http.Request) {
	all, err := h.deps.Ratings()
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// HandleStyle handles GET /api/v1/ratings/{style}.
func (h *ReferenceHandler) HandleStyle(w http.ResponseWriter, r *http.Request) {
	const op = "api.style"
	o, err := h.deps.StyleOptions(chi.URLParam(r, "style"))
	if errors.Is(err, ratings.ErrNotFound) {
		fail(w, WrapKind(op, ErrNotFound, err))
		return
	}
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
