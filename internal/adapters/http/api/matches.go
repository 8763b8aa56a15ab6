package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/cricksim/internal/adapters/feed"
	service "github.com/okian/cricksim/internal/app"
	"github.com/okian/cricksim/internal/domain/match"
	"github.com/okian/cricksim/internal/domain/model"
	"github.com/okian/cricksim/pkg/logger"
)

// MatchHandler handles the match lifecycle routes.
type MatchHandler struct {
	deps MatchDependencies
	log  logger.Logger
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(deps MatchDependencies) *MatchHandler {
	return &MatchHandler{deps: deps, log: logger.Get().Named("api")}
}

type decisionRequest struct {
	Decision string `json:"decision"`
}

type offerRequest struct {
	Delivery model.Delivery `json:"delivery"`
}

func matchID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "id"))
}

// HandleCreate handles POST /api/v1/matches.
func (h *MatchHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_match"
	var req service.CreateRequest
	if err := decode(r, op, &req); err != nil {
		fail(w, err)
		return
	}
	if strings.TrimSpace(req.Team) == "" {
		fail(w, WrapKind(op, ErrBadRequest, errMissing("team")))
		return
	}
	v, err := h.deps.CreateMatch(r.Context(), req)
	if err != nil {
		fail(w, err)
		return
	}
	w.Header().Set("Location", "/api/v1/matches/"+v.ID)
	writeJSON(w, http.StatusCreated, v)
}

// HandleGet handles GET /api/v1/matches/{id}.
func (h *MatchHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	v, err := h.deps.Match(r.Context(), matchID(r))
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleToss handles POST /api/v1/matches/{id}/toss.
func (h *MatchHandler) HandleToss(w http.ResponseWriter, r *http.Request) {
	const op = "api.toss"
	var req service.TossRequest
	if err := decode(r, op, &req); err != nil {
		fail(w, err)
		return
	}
	res, err := h.deps.Toss(r.Context(), matchID(r), req)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleDecision handles POST /api/v1/matches/{id}/decision.
func (h *MatchHandler) HandleDecision(w http.ResponseWriter, r *http.Request) {
	const op = "api.decision"
	var req decisionRequest
	if err := decode(r, op, &req); err != nil {
		fail(w, err)
		return
	}
	v, err := h.deps.Decide(r.Context(), matchID(r), req.Decision)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleInnings handles POST /api/v1/matches/{id}/innings.
func (h *MatchHandler) HandleInnings(w http.ResponseWriter, r *http.Request) {
	v, err := h.deps.StartSecondInnings(r.Context(), matchID(r))
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleOffer handles POST /api/v1/matches/{id}/offer. The body carries the
// human's delivery when bowling and may be empty when batting.
func (h *MatchHandler) HandleOffer(w http.ResponseWriter, r *http.Request) {
	const op = "api.offer"
	var req offerRequest
	if err := decode(r, op, &req); err != nil {
		fail(w, err)
		return
	}
	res, err := h.deps.Offer(r.Context(), matchID(r), req.Delivery)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleResolve handles POST /api/v1/matches/{id}/resolve.
func (h *MatchHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	const op = "api.resolve"
	var c match.Commit
	if err := decode(r, op, &c); err != nil {
		fail(w, err)
		return
	}
	res, err := h.deps.Resolve(r.Context(), matchID(r), c)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleWatch handles GET /ws/matches/{id}.
func (h *MatchHandler) HandleWatch(w http.ResponseWriter, r *http.Request) {
	id := matchID(r)
	if err := h.deps.Watch(r.Context(), w, r, id); err != nil {
		if errors.Is(err, feed.ErrUpgrade) {
			return
		}
		h.log.Debug(logger.WithMatchID(r.Context(), id), "watch refused", logger.Error(err))
		fail(w, err)
	}
}
