package service

import (
	"net/http"

	"github.com/okian/cricksim/internal/adapters/mq/worker"
	"github.com/okian/cricksim/internal/adapters/repository"
	"github.com/okian/cricksim/internal/adapters/results"
	"github.com/okian/cricksim/internal/domain/match"
	"github.com/okian/cricksim/internal/domain/ratings"
	"github.com/okian/cricksim/internal/domain/selection"
	"github.com/okian/cricksim/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of ball event workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the ball event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds how many resolved offers are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTable replaces the embedded rating table.
func WithTable(t *ratings.Table) Option {
	return func(s *Service) {
		if t != nil {
			s.table = t
		}
	}
}

// WithStore sets the match session store. The default keeps matches in memory.
//
// Per-match locks and the offer deduper stay in this process whatever the
// store. A shared store such as redis survives restarts but does not make two
// service instances safe on the same matches; run a single instance.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithLedger sets the results ledger. The service closes it on Stop.
func WithLedger(l results.Ledger) Option {
	return func(s *Service) {
		if l != nil {
			s.ledger = l
		}
	}
}

// WithSinks adds ball event sinks next to the live feed and the ledger.
func WithSinks(sinks ...worker.Sink) Option {
	return func(s *Service) {
		s.extraSinks = append(s.extraSinks, sinks...)
	}
}

// WithDefaults sets the overs and tier used when a create request omits them.
func WithDefaults(overs int, tier string) Option {
	return func(s *Service) {
		if overs > 0 {
			s.defaultOvers = overs
		}
		if tier != "" {
			s.defaultTier = selection.ParseTier(tier)
		}
	}
}

// WithMaxOvers caps the overs a client may request.
func WithMaxOvers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxOvers = n
		}
	}
}

// WithMaxResults caps the results board limit.
func WithMaxResults(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// WithSeed seeds match generators. Match n gets seed+n-1; zero uses the clock.
func WithSeed(seed uint64) Option {
	return func(s *Service) { s.seed = seed }
}

// WithEndOnTarget stops a chase as soon as the target is reached.
func WithEndOnTarget(on bool) Option {
	return func(s *Service) { s.endOnTarget = on }
}

// WithMatchOptions passes options to every match the service creates or restores.
func WithMatchOptions(opts ...match.Option) Option {
	return func(s *Service) {
		s.matchOpts = append(s.matchOpts, opts...)
	}
}

// WithOriginCheck decides which browser origins may open the live feed. Nil
// accepts every origin.
func WithOriginCheck(allow func(r *http.Request) bool) Option {
	return func(s *Service) {
		s.allowOrigin = allow
	}
}
