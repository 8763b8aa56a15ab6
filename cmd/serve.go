package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"slices"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/okian/cricksim/internal/adapters/feed"
	"github.com/okian/cricksim/internal/adapters/http/api"
	"github.com/okian/cricksim/internal/adapters/http/site"
	"github.com/okian/cricksim/internal/adapters/http/swagger"
	workerpool "github.com/okian/cricksim/internal/adapters/mq/worker"
	"github.com/okian/cricksim/internal/adapters/repository"
	"github.com/okian/cricksim/internal/adapters/results"
	app "github.com/okian/cricksim/internal/app"
	"github.com/okian/cricksim/internal/config"
	"github.com/okian/cricksim/internal/domain/match"
	"github.com/okian/cricksim/internal/domain/ratings"
	"github.com/okian/cricksim/pkg/logger"
	"github.com/okian/cricksim/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
	corsMaxAge                = 300
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP match server",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := initLogging(cmd, cfg); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	svc, cleanup, err := buildService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// buildService wires the configured table, store, ledger and sinks. The
// cleanup func closes the Redis client when one was opened.
func buildService(ctx context.Context, cfg *config.Config, log logger.Logger) (*app.Service, func(), error) {
	cleanup := func() {}

	tbl, err := loadTable(cfg.RatingsPath)
	if err != nil {
		return nil, cleanup, err
	}

	var rdb *redis.Client
	if cfg.Store == config.StoreRedis || cfg.RedisStream != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, cleanup, fmt.Errorf("%w: redis_url: %w", config.ErrInvalidConfig, err)
		}
		rdb = redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, cleanup, fmt.Errorf("failed to reach redis: %w", err)
		}
		cleanup = func() {
			if err := rdb.Close(); err != nil {
				log.Warn(context.Background(), "closing redis client", logger.Error(err))
			}
		}
	}

	var store repository.Store = repository.NewMemoryStore()
	if cfg.Store == config.StoreRedis {
		store = repository.NewRedisStore(rdb, repository.WithTTL(cfg.MatchTTL))
	}

	var sinks []workerpool.Sink
	if cfg.RedisStream != "" {
		sinks = append(sinks, feed.NewStreamPublisher(rdb, cfg.RedisStream))
	}

	ledger, err := results.New(ctx, cfg.ResultsDriver, cfg.ResultsDSN)
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("failed to open results ledger: %w", err)
	}

	svc := app.New(
		app.WithLogger(log.Named("service")),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.EventQueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithTable(tbl),
		app.WithStore(store),
		app.WithLedger(ledger),
		app.WithSinks(sinks...),
		app.WithDefaults(cfg.DefaultOvers, cfg.DefaultTier),
		app.WithMaxOvers(cfg.MaxOvers),
		app.WithMaxResults(cfg.MaxResultsLimit),
		app.WithSeed(cfg.Seed),
		app.WithEndOnTarget(cfg.EndOnTarget),
		app.WithMatchOptions(match.WithBands(cfg.Bands), match.WithFixedBowlerSkill(cfg.FixedBowlerSkill)),
		app.WithOriginCheck(originCheck(cfg.CORSOrigins)),
	)
	return svc, cleanup, nil
}

func loadTable(path string) (*ratings.Table, error) {
	if path == "" {
		return ratings.Default()
	}
	tbl, err := ratings.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load rating table %s: %w", path, err)
	}
	return tbl, nil
}

// newRouter mounts docs, the static client and the API behind the shared
// middleware stack.
func newRouter(ctx context.Context, cfg *config.Config, svc api.Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         corsMaxAge,
	}))

	swagger.Register(ctx, r)
	site.Register(ctx, r)
	api.NewServer(svc).Register(ctx, r)
	return r
}

// originCheck mirrors the CORS origins for WebSocket upgrades.
func originCheck(origins []string) func(*http.Request) bool {
	if len(origins) == 0 || slices.Contains(origins, "*") {
		return nil
	}
	return func(r *http.Request) bool {
		o := r.Header.Get("Origin")
		return o == "" || slices.Contains(origins, o)
	}
}

// startSystemMetricsUpdater refreshes process metrics until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater refreshes service gauges until ctx is done.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics copies queue and match gauges out of the service stats.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if active, ok := stats["activeMatches"].(int); ok {
		metrics.UpdateActiveMatches(active)
	}
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
	if clients, ok := stats["feedClients"].(int); ok {
		metrics.UpdateFeedClients(clients)
	}
}
