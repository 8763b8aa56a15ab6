package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	queue "github.com/okian/cricksim/internal/adapters/mq/queue"
	worker "github.com/okian/cricksim/internal/adapters/mq/worker"
	logging "github.com/okian/cricksim/pkg/logger"
)

func init() {
	if err := logging.Init(); err != nil {
		panic(err)
	}
}

type mockQueue struct {
	eventChan chan queue.Event
	once      sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{eventChan: make(chan queue.Event, 100)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan queue.Event { return mq.eventChan }

func (mq *mockQueue) Close() error {
	mq.once.Do(func() { close(mq.eventChan) })
	return nil
}

type mockSink struct {
	name string
	mu   sync.Mutex
	got  []queue.Event
	fail map[string]error
}

func newMockSink(name string) *mockSink {
	return &mockSink{name: name, fail: make(map[string]error)}
}

func (s *mockSink) Name() string { return s.name }

func (s *mockSink) Publish(_ context.Context, e queue.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.fail[e.MatchID]; ok {
		return err
	}
	s.got = append(s.got, e)
	return nil
}

func (s *mockSink) failFor(matchID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[matchID] = err
}

func (s *mockSink) events() []queue.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]queue.Event(nil), s.got...)
}

func (s *mockSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker with two sinks", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		feed := newMockSink("websocket")
		stream := newMockSink("redis")
		w := worker.NewInMemoryWorker(q, []worker.Sink{feed, stream}, worker.WithName("test-worker"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When an event arrives", func() {
			q.eventChan <- queue.Event{MatchID: "m1", Ball: 1}

			convey.Convey("Then every sink receives it", func() {
				convey.So(eventually(func() bool { return feed.count() == 1 && stream.count() == 1 }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When one sink fails", func() {
			feed.failFor("m2", errors.New("socket gone"))
			q.eventChan <- queue.Event{MatchID: "m2", Ball: 1}
			q.eventChan <- queue.Event{MatchID: "m3", Ball: 1}

			convey.Convey("Then the other sinks still get the event", func() {
				convey.So(eventually(func() bool { return stream.count() == 2 }), convey.ShouldBeTrue)
				convey.So(feed.count(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()

			convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
		})

		convey.Convey("When the queue closes", func() {
			_ = q.Close()

			convey.Convey("Then the worker stops", func() {
				select {
				case <-w.Done():
				case <-time.After(time.Second):
					convey.So("worker still running", convey.ShouldBeEmpty)
				}
			})
		})
	})

	convey.Convey("Given a worker whose context is cancelled", t, func() {
		w := worker.NewInMemoryWorker(newMockQueue(), nil)
		ctx, cancel := context.WithCancel(context.Background())
		go w.Run(ctx)
		cancel()

		convey.Convey("Then it stops", func() {
			select {
			case <-w.Done():
			case <-time.After(time.Second):
				convey.So("worker still running", convey.ShouldBeEmpty)
			}
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a pool on a real queue", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(1000))
		sink := newMockSink("websocket")
		pool := worker.NewPool(4, q, []worker.Sink{sink})
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.Convey("When several matches emit balls", func() {
			for ball := 1; ball <= 12; ball++ {
				for m := 0; m < 5; m++ {
					convey.So(q.Enqueue(ctx, queue.Event{MatchID: fmt.Sprintf("m%d", m), Ball: ball}), convey.ShouldBeTrue)
				}
			}

			convey.Convey("Then each match's balls arrive in order", func() {
				convey.So(eventually(func() bool { return sink.count() == 60 }), convey.ShouldBeTrue)
				last := map[string]int{}
				for _, e := range sink.events() {
					convey.So(e.Ball, convey.ShouldEqual, last[e.MatchID]+1)
					last[e.MatchID] = e.Ball
				}
			})
		})

		convey.Convey("When the pool shuts down", func() {
			for i := 1; i <= 20; i++ {
				q.Enqueue(ctx, queue.Event{MatchID: "drain", Ball: i})
			}
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer shutdownCancel()

			convey.So(pool.Shutdown(shutdownCtx), convey.ShouldBeNil)

			convey.Convey("Then queued events are drained first", func() {
				convey.So(sink.count(), convey.ShouldEqual, 20)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a pool with no worker count", t, func() {
		pool := worker.NewPool(0, newMockQueue(), nil)
		convey.So(pool, convey.ShouldNotBeNil)
	})
}
