// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	service "github.com/okian/cricksim/internal/app"
	"github.com/okian/cricksim/internal/domain/match"
	"github.com/okian/cricksim/internal/domain/model"
	"github.com/okian/cricksim/internal/domain/ratings"
	"github.com/okian/cricksim/internal/domain/types"
)

const apiTimeout = 15 * time.Second

// MatchDependencies drive a match through its lifecycle.
type MatchDependencies interface {
	CreateMatch(ctx context.Context, req service.CreateRequest) (match.View, error)
	Match(ctx context.Context, id string) (match.View, error)
	Toss(ctx context.Context, id string, req service.TossRequest) (service.TossResponse, error)
	Decide(ctx context.Context, id, decision string) (match.View, error)
	StartSecondInnings(ctx context.Context, id string) (match.View, error)
	Offer(ctx context.Context, id string, d model.Delivery) (service.OfferResponse, error)
	Resolve(ctx context.Context, id string, c match.Commit) (service.ResolveResponse, error)
	Watch(ctx context.Context, w http.ResponseWriter, r *http.Request, id string) error
}

// ReferenceDependencies expose the static game data.
type ReferenceDependencies interface {
	Teams() []model.Team
	Conditions() map[string][]string
	Ratings() (map[string]ratings.Options, error)
	StyleOptions(style string) (ratings.Options, error)
}

// ResultsDependencies read the results board.
type ResultsDependencies interface {
	Results(ctx context.Context, limit int) ([]types.Entry, error)
}

// Dependencies required by HTTP handlers.
type Dependencies interface {
	MatchDependencies
	ReferenceDependencies
	ResultsDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	matchHandler     *MatchHandler
	referenceHandler *ReferenceHandler
	resultsHandler   *ResultsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(deps),
		matchHandler:     NewMatchHandler(deps),
		referenceHandler: NewReferenceHandler(deps),
		resultsHandler:   NewResultsHandler(deps),
	}
}

// Register attaches all API routes to r. The WebSocket feed sits outside the
// request timeout.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(MetricsMiddleware)
		r.Get("/healthz", s.healthHandler.HandleHealth)
		r.Get("/stats", s.statsHandler.HandleStats)
		r.Get("/ws/matches/{id}", s.matchHandler.HandleWatch)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(MetricsMiddleware)
		r.Use(middleware.Timeout(apiTimeout))

		r.Get("/teams", s.referenceHandler.HandleTeams)
		r.Get("/conditions", s.referenceHandler.HandleConditions)
		r.Get("/ratings", s.referenceHandler.HandleRatings)
		r.Get("/ratings/{style}", s.referenceHandler.HandleStyle)
		r.Get("/results", s.resultsHandler.HandleResults)

		r.Post("/matches", s.matchHandler.HandleCreate)
		r.Route("/matches/{id}", func(r chi.Router) {
			r.Get("/", s.matchHandler.HandleGet)
			r.Post("/toss", s.matchHandler.HandleToss)
			r.Post("/decision", s.matchHandler.HandleDecision)
			r.Post("/innings", s.matchHandler.HandleInnings)
			r.Post("/offer", s.matchHandler.HandleOffer)
			r.Post("/resolve", s.matchHandler.HandleResolve)
		})
	})
}
