// Package worker drains the ball event queue and hands every event to the
// configured sinks.
package worker

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/cricksim/internal/adapters/mq/queue"
	"github.com/okian/cricksim/pkg/logger"
	"github.com/okian/cricksim/pkg/metrics"
)

const laneBuffer = 64

// Event is what workers read off the queue.
type Event = queue.Event

// Sink receives ball events: the live feed, a stream, the results ledger.
type Sink interface {
	Name() string
	Publish(ctx context.Context, e Event) error
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Worker processes events until its queue closes or it is stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker without draining its queue.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker publishes each event to every sink in order.
type InMemoryWorker struct {
	queue Queue
	sinks []Sink
	name  string

	shutdown chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker with configuration options.
func NewInMemoryWorker(q Queue, sinks []Sink, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		sinks:    sinks,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run implements Worker.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := w.processEvent(logger.WithMatchID(ctx, e.MatchID), e); err != nil {
				w.logger.Error(ctx, "publishing ball event",
					logger.String("match_id", e.MatchID),
					logger.Int("ball", e.Ball),
					logger.Error(err))
			}
		}
	}
}

// Shutdown implements Worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// processEvent publishes to every sink; one failing sink does not stop the rest.
func (w *InMemoryWorker) processEvent(ctx context.Context, e Event) error { //nolint:gocritic // hugeParam: channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	var errs []error
	for _, s := range w.sinks {
		if err := s.Publish(ctx, e); err != nil {
			metrics.RecordWorkerError()
			metrics.RecordErrorByComponent("worker", s.Name())
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		metrics.RecordFeedMessage(s.Name())
	}
	return errors.Join(errs...)
}

// lane is one worker's private queue. Events of a match always land in the
// same lane, so sinks see a match's balls in order.
type lane chan Event

func (l lane) Dequeue(context.Context) <-chan Event { return l }

// Pool fans the queue out to a fixed set of workers.
type Pool struct {
	workers []*InMemoryWorker
	lanes   []lane
	queue   Queue

	dispatched chan struct{}
	logger     logger.Logger
}

// NewPool creates a pool. A non-positive count uses one worker per CPU.
func NewPool(workerCount int, q Queue, sinks []Sink) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers:    make([]*InMemoryWorker, workerCount),
		lanes:      make([]lane, workerCount),
		queue:      q,
		dispatched: make(chan struct{}),
		logger:     logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.lanes[i] = make(lane, laneBuffer)
		p.workers[i] = NewInMemoryWorker(p.lanes[i], sinks, WithName("worker-"+strconv.Itoa(i)))
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start runs the dispatcher and the workers until ctx is canceled or the
// queue is closed and drained.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	go p.dispatch(ctx)
}

func (p *Pool) dispatch(ctx context.Context) {
	defer close(p.dispatched)
	defer func() {
		for _, l := range p.lanes {
			close(l)
		}
	}()

	for e := range p.queue.Dequeue(ctx) {
		select {
		case p.lanes[p.laneFor(e.MatchID)] <- e:
		case <-ctx.Done():
			return
		}
	}
}

func (p *Pool) laneFor(matchID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(matchID))
	return int(h.Sum32() % uint32(len(p.lanes)))
}

// Shutdown closes the queue and lets the workers drain it. Workers still
// busy when ctx expires are stopped.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "closing queue", logger.Error(err))
		}
	}

	select {
	case <-p.dispatched:
	case <-ctx.Done():
	}

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.Done():
		case <-ctx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			stop, cancel := context.WithTimeout(context.Background(), time.Second)
			_ = w.Shutdown(stop)
			cancel()
		}
	}
	if timedOut {
		return fmt.Errorf("pool shutdown: %w", ctx.Err())
	}
	return nil
}
