package api

import (
	"net/http"
	"strconv"
)

// ResultsHandler serves the best innings totals.
type ResultsHandler struct {
	deps ResultsDependencies
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps ResultsDependencies) *ResultsHandler {
	return &ResultsHandler{deps: deps}
}

// HandleResults handles GET /api/v1/results?limit=N.
func (h *ResultsHandler) HandleResults(w http.ResponseWriter, r *http.Request) {
	const op = "api.results"
	limit := 0
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			fail(w, WrapKind(op, ErrBadRequest, errInvalid("limit", q)))
			return
		}
		limit = n
	}
	entries, err := h.deps.Results(r.Context(), limit)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
