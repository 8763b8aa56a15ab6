package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/cricksim/internal/domain/match"
	"github.com/okian/cricksim/pkg/metrics"
)

const (
	defaultKeyPrefix = "cricksim"
	defaultTTL       = 6 * time.Hour
)

// RedisStore keeps each match as a JSON string under prefix:match:{id} and
// tracks ids in the prefix:matches set.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a store on an existing client.
func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: defaultKeyPrefix, ttl: defaultTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend implements Store.
func (s *RedisStore) Backend() string { return "redis" }

func (s *RedisStore) key(id string) string { return fmt.Sprintf("%s:match:%s", s.prefix, id) }
func (s *RedisStore) index() string        { return s.prefix + ":matches" }

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, id string) (match.State, error) {
	start := time.Now()
	defer observe(s.Backend(), "get", start)

	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		// expired; keep the index honest
		s.client.SRem(ctx, s.index(), id)
		return match.State{}, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError(s.Backend(), "get")
		return match.State{}, fmt.Errorf("redis get %s: %w", id, err)
	}
	return decode(id, data)
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, st match.State) error {
	start := time.Now()
	defer observe(s.Backend(), "put", start)

	data, err := encode(st)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(st.ID), data, s.ttl)
	pipe.SAdd(ctx, s.index(), st.ID)
	card := pipe.SCard(ctx, s.index())
	if _, err := pipe.Exec(ctx); err != nil {
		metrics.RecordStoreError(s.Backend(), "put")
		return fmt.Errorf("redis put %s: %w", st.ID, err)
	}
	metrics.UpdateActiveMatches(int(card.Val()))
	return nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(id))
	pipe.SRem(ctx, s.index(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		metrics.RecordStoreError(s.Backend(), "delete")
		return fmt.Errorf("redis delete %s: %w", id, err)
	}
	return nil
}

// Count implements Store. Ids whose keys expired are counted until the next Get.
func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.SCard(ctx, s.index()).Result()
	if err != nil {
		metrics.RecordStoreError(s.Backend(), "count")
		return 0, fmt.Errorf("redis count: %w", err)
	}
	return int(n), nil
}
