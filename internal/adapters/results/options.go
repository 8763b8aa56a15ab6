package results

// MemoryOption applies a configuration option to the MemoryLedger.
type MemoryOption func(*MemoryLedger)

// WithCapacity bounds the number of innings totals kept. Zero is unbounded.
func WithCapacity(n int) MemoryOption {
	return func(l *MemoryLedger) {
		if n >= 0 {
			l.capacity = n
		}
	}
}

// withPriorities replaces the treap priority source; tests use it to force
// worst-case shapes.
func withPriorities(f func() uint64) MemoryOption {
	return func(l *MemoryLedger) { l.prio = f }
}
