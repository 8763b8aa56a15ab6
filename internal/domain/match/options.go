package match

import (
	"time"

	"github.com/okian/cricksim/internal/domain/selection"
)

// Option applies a configuration option to a Match.
type Option func(*Match)

// WithBands overrides the automated side's strong sampling band per tier.
func WithBands(b selection.Bands) Option {
	return func(m *Match) {
		if len(b) > 0 {
			m.bands = b
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Match) {
		if now != nil {
			m.now = now
		}
	}
}

// WithIDGenerator replaces the offer id generator.
func WithIDGenerator(gen func() string) Option {
	return func(m *Match) {
		if gen != nil {
			m.newID = gen
		}
	}
}

// WithFixedBowlerSkill makes the automated batsman rank its shots against a
// bowler of the given skill instead of the actual bowler. Scoring still uses
// the actual bowler. Zero or less keeps the actual skill.
func WithFixedBowlerSkill(skill int) Option {
	return func(m *Match) {
		if skill > 0 {
			m.fixedBowl = skill
		}
	}
}
