// Package service orchestrates matches for the HTTP API: it loads and stores
// match state, serialises operations per match, de-duplicates commits and
// emits ball events to the live feed and the results ledger.
package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/cricksim/internal/adapters/feed"
	eventqueue "github.com/okian/cricksim/internal/adapters/mq/queue"
	workerpool "github.com/okian/cricksim/internal/adapters/mq/worker"
	"github.com/okian/cricksim/internal/adapters/repository"
	"github.com/okian/cricksim/internal/adapters/results"
	"github.com/okian/cricksim/internal/domain/dedupe"
	"github.com/okian/cricksim/internal/domain/match"
	"github.com/okian/cricksim/internal/domain/model"
	"github.com/okian/cricksim/internal/domain/ratings"
	"github.com/okian/cricksim/internal/domain/selection"
	"github.com/okian/cricksim/internal/domain/toss"
	"github.com/okian/cricksim/internal/domain/types"
	"github.com/okian/cricksim/pkg/logger"
	"github.com/okian/cricksim/pkg/metrics"
)

const (
	lockStripes   = 256
	defaultTop    = 10
	shutdownGrace = 10 * time.Second
)

// CreateRequest starts a match. Zero values fall back to service defaults.
type CreateRequest struct {
	Team  string  `json:"team"`
	Overs int     `json:"overs"`
	Mode  string  `json:"mode"`
	Seed  *uint64 `json:"seed,omitempty"`
}

// TossRequest is the human's call plus the match conditions.
type TossRequest struct {
	Call       string          `json:"call"`
	Conditions toss.Conditions `json:"conditions"`
}

// TossResponse carries the toss and the resulting snapshot.
type TossResponse struct {
	Toss  toss.Result `json:"toss"`
	Match match.View  `json:"match"`
}

// OfferResponse is phase one of a ball.
type OfferResponse struct {
	Offer *match.Offer `json:"offer"`
	Match match.View   `json:"match"`
}

// ResolveResponse is phase two of a ball. Ball is nil when the commit was a
// duplicate.
type ResolveResponse struct {
	Ball  *match.BallResult `json:"ball,omitempty"`
	Match match.View        `json:"match"`
}

// Service implements the API dependencies for the match simulator.
type Service struct {
	mu sync.RWMutex

	table       *ratings.Table
	store       repository.Store
	ledger      results.Ledger
	deduper     dedupe.Deduper
	eventQueue  eventqueue.Queue
	workerPool  *workerpool.Pool
	hub         *feed.Hub
	extraSinks  []workerpool.Sink
	allowOrigin func(*http.Request) bool

	workerCount  int
	queueSize    int
	dedupeSize   int
	defaultOvers int
	defaultTier  selection.Tier
	maxOvers     int
	maxResults   int
	seed         uint64
	endOnTarget  bool
	matchOpts    []match.Option

	seq   atomic.Uint64
	locks [lockStripes]sync.Mutex

	started bool
	cancel  context.CancelFunc
	logger  logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  runtime.NumCPU(),
		queueSize:    10_000,
		dedupeSize:   50_000,
		defaultOvers: 2,
		defaultTier:  selection.Medium,
		maxOvers:     50,
		maxResults:   100,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the queue, workers and live feed. Background goroutines run
// until Stop or until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.table == nil {
		t, err := ratings.Default()
		if err != nil {
			return fmt.Errorf("load rating table: %w", err)
		}
		s.table = t
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.ledger == nil {
		s.ledger = results.NewMemoryLedger()
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.eventQueue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.hub = feed.NewHub(s.allowOrigin)
	go s.hub.Run(runCtx)

	sinks := append([]workerpool.Sink{s.hub, ledgerSink{s.ledger}}, s.extraSinks...)
	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, sinks)
	s.workerPool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "match service started",
		logger.String("store", s.store.Backend()),
		logger.String("ledger", s.ledger.Backend()),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("styles", len(s.table.Styles())),
	)
	return nil
}

// Stop drains the ball event queue, stops the feed and closes the ledger.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	s.logger.Info(ctx, "stopping match service...")
	if err := s.workerPool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	s.cancel()
	if err := s.ledger.Close(); err != nil {
		s.logger.Warn(ctx, "closing results ledger", logger.Error(err))
	}
	s.started = false
	s.logger.Info(ctx, "match service stopped")
}

// ready returns an error unless Start has run.
func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// lock serialises operations on one match.
func (s *Service) lock(id string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	mu := &s.locks[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}

func (s *Service) nextSeed(requested *uint64) uint64 {
	if requested != nil {
		return *requested
	}
	n := s.seq.Add(1)
	if s.seed == 0 {
		return uint64(time.Now().UnixNano()) + n
	}
	return s.seed + n - 1
}

// Teams returns the rosters.
func (s *Service) Teams() []model.Team { return model.Teams() }

// Conditions returns the selectable toss conditions.
func (s *Service) Conditions() map[string][]string { return toss.Options() }

// Ratings returns the dropdown data of every bowling style.
func (s *Service) Ratings() (map[string]ratings.Options, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	out := make(map[string]ratings.Options)
	for _, name := range s.table.Styles() {
		o, err := s.table.Options(name)
		if err != nil {
			return nil, err
		}
		out[name] = o
	}
	return out, nil
}

// StyleOptions returns the dropdown data of one bowling style.
func (s *Service) StyleOptions(style string) (ratings.Options, error) {
	if err := s.ready(); err != nil {
		return ratings.Options{}, err
	}
	return s.table.Options(style)
}

// CreateMatch starts a match in the pre-toss phase.
func (s *Service) CreateMatch(ctx context.Context, req CreateRequest) (match.View, error) {
	if err := s.ready(); err != nil {
		return match.View{}, err
	}
	overs := req.Overs
	if overs == 0 {
		overs = s.defaultOvers
	}
	if overs < 0 || overs > s.maxOvers {
		return match.View{}, fmt.Errorf("%w: %w: overs must be between 1 and %d", ErrInvalidRequest, match.ErrInvalidOvers, s.maxOvers)
	}
	tier := s.defaultTier
	if req.Mode != "" {
		tier = selection.ParseTier(req.Mode)
	}

	m, err := match.New(s.table, match.Config{
		Human:       req.Team,
		Overs:       overs,
		Tier:        tier,
		Seed:        s.nextSeed(req.Seed),
		EndOnTarget: s.endOnTarget,
	}, s.matchOpts...)
	if err != nil {
		return match.View{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err := s.store.Put(ctx, m.Snapshot()); err != nil {
		return match.View{}, fmt.Errorf("store match: %w", err)
	}

	metrics.RecordMatchStarted()
	s.logger.Info(logger.WithMatchID(ctx, m.ID()), "match created",
		logger.String("team", req.Team),
		logger.Int("overs", overs),
		logger.String("tier", string(tier)))
	return m.View(), nil
}

// Match returns the current snapshot.
func (s *Service) Match(ctx context.Context, id string) (match.View, error) {
	if err := s.ready(); err != nil {
		return match.View{}, err
	}
	m, err := s.load(ctx, id)
	if err != nil {
		return match.View{}, err
	}
	return m.View(), nil
}

// Toss flips the coin for the human's call.
func (s *Service) Toss(ctx context.Context, id string, req TossRequest) (TossResponse, error) {
	var res toss.Result
	v, err := s.update(ctx, id, func(m *match.Match) error {
		var err error
		res, err = m.Toss(req.Call, req.Conditions)
		return err
	})
	if err != nil {
		return TossResponse{}, err
	}
	s.logger.Debug(logger.WithMatchID(ctx, id), "toss",
		logger.String("coin", res.Coin),
		logger.Bool("humanWon", res.HumanWon),
		logger.String("recommendation", res.Recommendation.Decision))
	return TossResponse{Toss: res, Match: v}, nil
}

// Decide records the toss winner's choice and starts the first innings.
func (s *Service) Decide(ctx context.Context, id, decision string) (match.View, error) {
	return s.update(ctx, id, func(m *match.Match) error { return m.Decide(decision) })
}

// StartSecondInnings leaves the innings break.
func (s *Service) StartSecondInnings(ctx context.Context, id string) (match.View, error) {
	return s.update(ctx, id, func(m *match.Match) error { return m.StartSecondInnings() })
}

// Offer runs phase one of the next ball.
func (s *Service) Offer(ctx context.Context, id string, d model.Delivery) (OfferResponse, error) {
	var o *match.Offer
	v, err := s.update(ctx, id, func(m *match.Match) error {
		var err error
		o, err = m.Offer(d)
		return err
	})
	if err != nil {
		return OfferResponse{}, err
	}

	ctx = logger.WithMatchID(ctx, id)
	metrics.RecordOffer(string(o.Role))
	s.recordRepairs(ctx, o.Repaired)
	return OfferResponse{Offer: o, Match: v}, nil
}

// Resolve runs phase two of the pending ball. A commit for an offer that was
// already resolved returns the snapshot flagged as a duplicate.
func (s *Service) Resolve(ctx context.Context, id string, c match.Commit) (ResolveResponse, error) {
	if err := s.ready(); err != nil {
		return ResolveResponse{}, err
	}
	unlock := s.lock(id)
	defer unlock()
	ctx = logger.WithMatchID(ctx, id)

	m, err := s.load(ctx, id)
	if err != nil {
		return ResolveResponse{}, err
	}

	key := dedupe.Key(id, c.OfferID)
	if c.OfferID != "" && s.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordDuplicateCommit()
		s.logger.Debug(ctx, "duplicate commit", logger.String("offerID", c.OfferID))
		v := m.View()
		v.Duplicate = true
		return ResolveResponse{Match: v}, nil
	}
	forget := func() {
		if c.OfferID != "" {
			s.deduper.Unrecord(ctx, key)
		}
	}

	res, err := m.Resolve(c)
	if err != nil {
		forget()
		s.countError(err)
		return ResolveResponse{}, err
	}
	st := m.Snapshot()
	if err := s.store.Put(ctx, st); err != nil {
		forget()
		return ResolveResponse{}, fmt.Errorf("store match: %w", err)
	}

	metrics.RecordBall(res.Outcome.String(), res.EffectiveScore)
	s.recordRepairs(ctx, res.Repaired)
	if res.ProtocolViolation {
		metrics.RecordProtocolViolation()
		s.logger.Warn(ctx, "resolve without a matching offer; automated side chose inline",
			logger.String("offerID", c.OfferID),
			logger.String("usedOfferID", res.OfferID))
	}
	if res.Complete && st.Result != nil {
		metrics.RecordMatchCompleted(outcomeFor(st.Human, *st.Result))
		s.logger.Info(ctx, "match complete", logger.String("result", st.Result.Summary))
	}
	s.emit(ctx, ballEvent(st, res, time.Now().UTC()))

	return ResolveResponse{Ball: &res, Match: m.View()}, nil
}

// Results returns the best innings totals. Limits outside [1, max] are clamped.
func (s *Service) Results(ctx context.Context, limit int) ([]types.Entry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	switch {
	case limit < 1:
		limit = defaultTop
	case limit > s.maxResults:
		limit = s.maxResults
	}
	return s.ledger.Top(ctx, limit)
}

// Watch streams a match's balls over a WebSocket until the client leaves.
func (s *Service) Watch(ctx context.Context, w http.ResponseWriter, r *http.Request, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	return s.hub.Serve(ctx, w, r, id)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}
	if !s.started {
		return stats
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	stats["queueLength"] = s.eventQueue.Len(ctx)
	stats["resolvedOffers"] = s.deduper.Size()
	stats["feedClients"] = s.hub.Clients(ctx)
	stats["store"] = s.store.Backend()
	stats["ledger"] = s.ledger.Backend()
	if n, err := s.store.Count(ctx); err == nil {
		stats["activeMatches"] = n
		metrics.UpdateActiveMatches(n)
	}
	if n, err := s.ledger.Count(ctx); err == nil {
		stats["completedMatches"] = n
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	metrics.UpdateSystemMemoryUsage(mem.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	return stats
}

// update loads a match, applies fn under the match lock and stores the result.
func (s *Service) update(ctx context.Context, id string, fn func(*match.Match) error) (match.View, error) {
	if err := s.ready(); err != nil {
		return match.View{}, err
	}
	unlock := s.lock(id)
	defer unlock()

	m, err := s.load(ctx, id)
	if err != nil {
		return match.View{}, err
	}
	if err := fn(m); err != nil {
		s.countError(err)
		return match.View{}, err
	}
	if err := s.store.Put(ctx, m.Snapshot()); err != nil {
		return match.View{}, fmt.Errorf("store match: %w", err)
	}
	return m.View(), nil
}

func (s *Service) load(ctx context.Context, id string) (*match.Match, error) {
	st, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	m, err := match.Restore(s.table, st, s.matchOpts...)
	if err != nil {
		metrics.RecordErrorByComponent("service", "restore")
		return nil, fmt.Errorf("restore match %s: %w", id, err)
	}
	return m, nil
}

func (s *Service) emit(ctx context.Context, e model.BallEvent) {
	if !s.eventQueue.Enqueue(ctx, e) {
		s.logger.Warn(ctx, "ball event dropped", logger.Int("ball", e.Ball))
	}
}

func (s *Service) recordRepairs(ctx context.Context, fields []string) {
	for _, f := range fields {
		metrics.RecordSelectionRepair(f)
		s.logger.Debug(ctx, "repaired invalid selection", logger.String("field", f))
	}
}

func (s *Service) countError(err error) {
	switch {
	case errors.Is(err, match.ErrInvalidPhase):
		metrics.RecordErrorByComponent("match", "invalid_phase")
	case errors.Is(err, match.ErrMatchComplete):
		metrics.RecordErrorByComponent("match", "complete")
	case errors.Is(err, ratings.ErrNotFound):
		metrics.RecordRatingLookupError()
		metrics.RecordErrorByType("rating_lookup", "high")
	}
}

func outcomeFor(human string, r model.Result) string {
	switch {
	case r.Tie:
		return "tie"
	case r.Winner == human:
		return "won"
	default:
		return "lost"
	}
}

// ballEvent describes a resolved ball with the innings totals after it.
func ballEvent(st match.State, res match.BallResult, at time.Time) model.BallEvent {
	e := model.BallEvent{
		MatchID:        st.ID,
		OfferID:        res.OfferID,
		Innings:        res.Innings,
		Ball:           res.Ball + 1,
		Overs:          match.OversString(res.Ball + 1),
		Batsman:        res.Batsman.Name,
		Bowler:         res.Bowler.Name,
		Delivery:       res.Delivery,
		Shot:           res.Shot,
		EffectiveScore: res.EffectiveScore,
		Outcome:        res.Outcome,
		Commentary:     res.Commentary,
		Complete:       res.Complete,
		Result:         st.Result,
		TS:             at,
	}
	switch {
	case res.Innings == 1 && res.InningsOver && st.First != nil:
		e.Runs, e.Wickets = st.First.Runs, st.First.Wickets
	default:
		e.Runs, e.Wickets, e.Target = st.Innings.Runs, st.Innings.Wickets, st.Innings.Target
	}
	return e
}

// ledgerSink records completed matches from the ball stream.
type ledgerSink struct {
	ledger results.Ledger
}

func (l ledgerSink) Name() string { return "results" }

func (l ledgerSink) Publish(ctx context.Context, e model.BallEvent) error {
	if !e.Complete || e.Result == nil {
		return nil
	}
	if err := l.ledger.Record(ctx, *e.Result); err != nil && !errors.Is(err, results.ErrDuplicate) {
		return err
	}
	return nil
}
