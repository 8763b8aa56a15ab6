package repository

import "time"

// RedisOption applies a configuration option to the RedisStore.
type RedisOption func(*RedisStore)

// WithTTL expires a match after it has been idle for ttl. Zero keeps matches forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

// WithKeyPrefix namespaces every key written by the store.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}
