package autoplay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	service "github.com/okian/cricksim/internal/app"
	"github.com/okian/cricksim/pkg/logger"
)

var teams = []string{"CSK", "MI"}

// Run plays cfg.Matches matches against the server and verifies the
// snapshots and the results board.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("autoplay")

	log.Info(ctx, "starting autoplay",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("matches", cfg.Matches),
		logger.Int("workers", cfg.Workers),
		logger.String("mode", cfg.Mode),
		logger.Int("overs", cfg.Overs),
		logger.Any("seed", cfg.Seed))

	client := NewClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Fetch reference data
	ref, err := fetchReference(ctx, client)
	if err != nil {
		return stats, err
	}

	// Step 3: Play matches concurrently
	failures := playAll(ctx, cfg, client, ref, stats)

	// Step 4: Wait for the ledger and verify the board
	if stats.MatchesCompleted > 0 {
		if err := checkResults(ctx, cfg, client, stats); err != nil {
			failures = append(failures, err)
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if err := errors.Join(failures...); err != nil {
		return stats, err
	}
	log.Info(ctx, "autoplay completed successfully")
	return stats, nil
}

func fetchReference(ctx context.Context, c *Client) (reference, error) {
	r, err := c.Ratings(ctx)
	if err != nil {
		return reference{}, errors.Join(ErrNoReference, err)
	}
	cond, err := c.Conditions(ctx)
	if err != nil {
		return reference{}, errors.Join(ErrNoReference, err)
	}
	if len(r) == 0 {
		return reference{}, fmt.Errorf("%w: empty rating options", ErrNoReference)
	}
	return reference{ratings: r, conditions: cond}, nil
}

// playAll runs the matches on a bounded set of workers.
func playAll(ctx context.Context, cfg *Config, c *Client, ref reference, stats *Stats) []error {
	var (
		started, completed, failed        int64
		balls, dupes, violations, repairs int64
		mu                                sync.Mutex
		failures                          []error
	)

	workers := max(1, cfg.Workers)
	jobs := make(chan int, workers*workerChannelMultiplier)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					return
				}
				atomic.AddInt64(&started, 1)
				rep, err := playMatch(ctx, c, NewRobot(cfg.Seed+uint64(i)), ref, createRequest(cfg, i), cfg.Verbose)
				if err == nil {
					err = verifyMatch(rep.view)
				}
				atomic.AddInt64(&balls, int64(rep.balls))
				atomic.AddInt64(&dupes, int64(rep.duplicates))
				atomic.AddInt64(&violations, int64(rep.violations))
				atomic.AddInt64(&repairs, int64(rep.repairs))
				if err != nil {
					atomic.AddInt64(&failed, 1)
					mu.Lock()
					failures = append(failures, fmt.Errorf("match %d: %w", i, err))
					mu.Unlock()
					continue
				}
				atomic.AddInt64(&completed, 1)
				logger.Get().Info(logger.WithMatchID(ctx, rep.view.ID), "match completed",
					logger.String("result", rep.view.Result.Summary),
					logger.Int("balls", rep.balls))
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < cfg.Matches; i++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()
	wg.Wait()

	stats.MatchesStarted = int(started)
	stats.MatchesCompleted = int(completed)
	stats.MatchesFailed = int(failed)
	stats.Balls = int(balls)
	stats.Duplicates = int(dupes)
	stats.Violations = int(violations)
	stats.Repairs = int(repairs)
	if err := ctx.Err(); err != nil {
		failures = append(failures, err)
	}
	return failures
}

func createRequest(cfg *Config, i int) service.CreateRequest {
	team := cfg.Team
	if team == "" {
		team = teams[i%len(teams)]
	}
	req := service.CreateRequest{Team: team, Overs: cfg.Overs, Mode: cfg.Mode}
	if cfg.Seed != 0 {
		s := cfg.Seed + uint64(i)
		req.Seed = &s
	}
	return req
}

// checkResults polls the board until the completed matches show up, then
// verifies its order.
func checkResults(ctx context.Context, cfg *Config, c *Client, stats *Stats) error {
	limit := max(1, cfg.TopN)
	want := min(limit, 2*stats.MatchesCompleted)
	deadline := time.Now().Add(resultsWait)
	for {
		entries, err := c.Results(ctx, limit)
		if err != nil {
			return fmt.Errorf("results retrieval failed: %w", err)
		}
		stats.ResultEntries = len(entries)
		if len(entries) >= want || time.Now().After(deadline) {
			if len(entries) < want {
				return fmt.Errorf("%w: %d results entries, want at least %d", ErrVerify, len(entries), want)
			}
			return verifyBoard(entries, limit)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(resultsPoll):
		}
	}
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var ballsPerSecond float64
	if stats.Duration > 0 {
		ballsPerSecond = float64(stats.Balls) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("matchesStarted", stats.MatchesStarted),
		logger.Int("matchesCompleted", stats.MatchesCompleted),
		logger.Int("matchesFailed", stats.MatchesFailed),
		logger.Int("balls", stats.Balls),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("violations", stats.Violations),
		logger.Int("repairs", stats.Repairs),
		logger.Int("resultEntries", stats.ResultEntries),
		logger.Duration("duration", stats.Duration),
		logger.Float64("ballsPerSecond", ballsPerSecond))
}
