package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/cricksim/internal/domain/match"
	"github.com/okian/cricksim/pkg/metrics"
)

// MemoryStore keeps encoded matches in a map. Stored bytes are never shared
// with callers, so a caller mutating a returned State cannot corrupt it.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Backend implements Store.
func (s *MemoryStore) Backend() string { return "memory" }

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (match.State, error) {
	start := time.Now()
	defer observe(s.Backend(), "get", start)

	s.mu.RLock()
	b, ok := s.data[id]
	s.mu.RUnlock()
	if !ok {
		return match.State{}, ErrNotFound
	}
	return decode(id, b)
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, st match.State) error {
	start := time.Now()
	defer observe(s.Backend(), "put", start)

	b, err := encode(st)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[st.ID] = b
	n := len(s.data)
	s.mu.Unlock()
	metrics.UpdateActiveMatches(n)
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.data, id)
	n := len(s.data)
	s.mu.Unlock()
	metrics.UpdateActiveMatches(n)
	return nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data), nil
}

func observe(backend, op string, start time.Time) {
	metrics.RecordStoreLatency(backend, op, float64(time.Since(start).Microseconds())/1000)
}
