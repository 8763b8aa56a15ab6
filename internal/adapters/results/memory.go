package results

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/okian/cricksim/internal/domain/model"
	"github.com/okian/cricksim/internal/domain/types"
	"github.com/okian/cricksim/pkg/metrics"
)

// Treap ordered by types.Before: in-order traversal yields the board from
// best to worst. Priorities are random, so depth stays logarithmic.
type node struct {
	e     types.Entry
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, e types.Entry, prio uint64) *node {
	if n == nil {
		return &node{e: e, prio: prio, size: 1}
	}
	if types.Before(e, n.e) {
		n.left = insert(n.left, e, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, e, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, e types.Entry) *node {
	if n == nil {
		return nil
	}
	switch {
	case n.e.MatchID == e.MatchID && n.e.Innings == e.Innings:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, e)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, e)
		}
	case types.Before(e, n.e):
		n.left = deleteNode(n.left, e)
	default:
		n.right = deleteNode(n.right, e)
	}
	fix(n)
	return n
}

// last returns the worst entry.
func last(n *node) (types.Entry, bool) {
	if n == nil {
		return types.Entry{}, false
	}
	for n.right != nil {
		n = n.right
	}
	return n.e, true
}

// collectTopN appends up to limit entries in board order.
func collectTopN(n *node, limit int, out *[]types.Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n.e)
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// MemoryLedger is an in-process Ledger. With a capacity set it keeps only
// the best innings totals; match ids are remembered regardless so a result
// is never counted twice.
type MemoryLedger struct {
	mu       sync.RWMutex
	root     *node
	matches  map[string]struct{}
	capacity int
	prio     func() uint64
}

// NewMemoryLedger constructs an empty ledger.
func NewMemoryLedger(opts ...MemoryOption) *MemoryLedger {
	l := &MemoryLedger{
		matches: make(map[string]struct{}),
		prio:    rand.Uint64,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Backend implements Ledger.
func (l *MemoryLedger) Backend() string { return "memory" }

// Record implements Ledger in O(log n) expected time.
func (l *MemoryLedger) Record(_ context.Context, r model.Result) error {
	start := time.Now()
	defer observe(l.Backend(), "record", start)

	if r.MatchID == "" {
		return ErrInvalidResult
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.matches[r.MatchID]; ok {
		return ErrDuplicate
	}
	l.matches[r.MatchID] = struct{}{}
	for _, e := range types.Entries(r) {
		l.root = insert(l.root, e, l.prio())
	}
	for l.capacity > 0 && nsize(l.root) > l.capacity {
		worst, _ := last(l.root)
		l.root = deleteNode(l.root, worst)
	}
	metrics.RecordResult()
	return nil
}

// Top implements Ledger.
func (l *MemoryLedger) Top(_ context.Context, n int) ([]types.Entry, error) {
	start := time.Now()
	defer observe(l.Backend(), "top", start)

	if n < 1 {
		return nil, ErrInvalidLimit
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]types.Entry, 0, min(n, nsize(l.root)))
	collectTopN(l.root, n, &out)
	types.AssignRanks(out)
	return out, nil
}

// Count implements Ledger.
func (l *MemoryLedger) Count(_ context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.matches), nil
}

// Close implements Ledger.
func (l *MemoryLedger) Close() error { return nil }

func observe(backend, op string, start time.Time) {
	metrics.RecordStoreLatency("results_"+backend, op, float64(time.Since(start).Microseconds())/1000)
}
