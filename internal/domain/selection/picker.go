package selection

import (
	"sort"

	"github.com/okian/cricksim/internal/domain/model"
	"github.com/okian/cricksim/internal/domain/scoring"
)

// Picker samples the automated side's shot or delivery.
type Picker struct {
	rng   scoring.Roller
	tier  Tier
	bands Bands
}

// NewPicker creates a picker drawing from rng.
func NewPicker(rng scoring.Roller, tier Tier, opts ...Option) *Picker {
	p := &Picker{rng: rng, tier: tier, bands: DefaultBands()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Tier returns the picker's difficulty tier.
func (p *Picker) Tier() Tier { return p.tier }

// PickShot samples from an ascending ranking. Weak balls draw uniformly from
// the half-open band [0, max(1, n/3)). From three candidates up, index n/3 is
// never drawn, one candidate narrower than an inclusive [0, n/3] draw. Other
// balls draw from the tier's strong band.
func (p *Picker) PickShot(ranked []Candidate, weak bool) Candidate {
	n := len(ranked)
	if n == 0 {
		return Candidate{}
	}
	if weak {
		size := n / 3
		if size < 1 {
			size = 1
		}
		return ranked[p.rng.IntN(size)]
	}
	band, ok := p.bands[p.tier]
	if !ok {
		band = TopThird
	}
	lo := band.start(n)
	return ranked[lo+p.rng.IntN(n-lo)]
}

// PickDelivery samples uniformly over every row of every style.
func (p *Picker) PickDelivery(all []model.Delivery) model.Delivery {
	if len(all) == 0 {
		return model.Delivery{}
	}
	return all[p.rng.IntN(len(all))]
}

// WeakSchedule draws max(1, floor(total*fraction)) distinct ball indices from
// [0,total), returned ascending. A non-positive total yields no indices.
func WeakSchedule(rng scoring.Roller, totalBalls int, tier Tier) []int {
	if totalBalls <= 0 {
		return nil
	}
	count := int(float64(totalBalls) * tier.WeakFraction())
	if count < 1 {
		count = 1
	}
	if count > totalBalls {
		count = totalBalls
	}

	// Partial Fisher-Yates over the index space.
	idx := make([]int, totalBalls)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < count; i++ {
		j := i + rng.IntN(totalBalls-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	out := append([]int(nil), idx[:count]...)
	sort.Ints(out)
	return out
}

// IsWeak reports whether ball is in the schedule.
func IsWeak(schedule []int, ball int) bool {
	i := sort.SearchInts(schedule, ball)
	return i < len(schedule) && schedule[i] == ball
}
