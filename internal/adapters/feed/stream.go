package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/okian/cricksim/internal/domain/model"
)

const defaultStreamMaxLen = 100_000

// StreamPublisher appends ball events to a Redis stream for external consumers.
type StreamPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewStreamPublisher creates a publisher writing to stream.
func NewStreamPublisher(client *redis.Client, stream string, opts ...StreamOption) *StreamPublisher {
	p := &StreamPublisher{client: client, stream: stream, maxLen: defaultStreamMaxLen}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements worker.Sink.
func (p *StreamPublisher) Name() string { return "redis_stream" }

// Publish implements worker.Sink.
func (p *StreamPublisher) Publish(ctx context.Context, e model.BallEvent) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling ball event: %w", err)
	}
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data":     string(data),
			"match_id": e.MatchID,
			"innings":  strconv.Itoa(e.Innings),
			"ball":     strconv.Itoa(e.Ball),
			"outcome":  e.Outcome.String(),
		},
	}).Err()
}

// StreamOption configures a StreamPublisher.
type StreamOption func(*StreamPublisher)

// WithMaxLen caps the stream length approximately. Zero leaves it unbounded.
func WithMaxLen(n int64) StreamOption {
	return func(p *StreamPublisher) {
		if n >= 0 {
			p.maxLen = n
		}
	}
}
