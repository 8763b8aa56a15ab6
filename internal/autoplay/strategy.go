package autoplay

import (
	"math/rand/v2"
	"sort"

	"github.com/okian/cricksim/internal/domain/match"
	"github.com/okian/cricksim/internal/domain/model"
	"github.com/okian/cricksim/internal/domain/ratings"
	"github.com/okian/cricksim/internal/domain/toss"
)

// Robot stands in for the human player. It is not safe for concurrent use.
type Robot struct {
	rng *rand.Rand
}

// NewRobot returns a robot with its own random stream.
func NewRobot(seed uint64) *Robot {
	return &Robot{rng: rand.New(rand.NewPCG(seed, 0x5eed))}
}

// Delivery builds a delivery from the dropdown options. The combination may
// be missing from the table; the server repairs it.
func (r *Robot) Delivery(opts map[string]ratings.Options) model.Delivery {
	if len(opts) == 0 {
		return model.Delivery{}
	}
	styles := make([]string, 0, len(opts))
	for s := range opts {
		styles = append(styles, s)
	}
	sort.Strings(styles)
	style := styles[r.rng.IntN(len(styles))]
	o := opts[style]
	return model.Delivery{
		Style:     style,
		Line:      r.pick(o.Lines),
		Length:    r.pick(o.Lengths),
		Variation: r.pick(o.Variations),
	}
}

// TableDelivery picks a row that exists in the table.
func (r *Robot) TableDelivery(all []model.Delivery) model.Delivery {
	if len(all) == 0 {
		return model.Delivery{}
	}
	return all[r.rng.IntN(len(all))]
}

// Shot takes the best alternative most of the time and otherwise one of the
// next two.
func (r *Robot) Shot(alts []match.Alternative) string {
	if len(alts) == 0 {
		return ""
	}
	if r.rng.IntN(100) < bestShotPercent || len(alts) == 1 {
		return alts[0].Shot
	}
	n := min(3, len(alts))
	return alts[1+r.rng.IntN(n-1)].Shot
}

// Call returns Heads or Tails.
func (r *Robot) Call() string {
	if r.rng.IntN(2) == 0 {
		return "Heads"
	}
	return "Tails"
}

// Decision follows the toss recommendation.
func (r *Robot) Decision(rec string) string {
	if rec == "" {
		return match.DecisionBat
	}
	return rec
}

func (r *Robot) pick(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[r.rng.IntN(len(values))]
}

// Conditions picks one value per condition.
func (r *Robot) Conditions(opts map[string][]string) toss.Conditions {
	return toss.Conditions{
		Time:     r.pick(opts["time"]),
		Pitch:    r.pick(opts["pitch"]),
		Ground:   r.pick(opts["ground"]),
		Dew:      r.pick(opts["dew"]),
		Rain:     r.pick(opts["rain"]),
		Humidity: r.pick(opts["humidity"]),
		Turn:     r.pick(opts["turn"]),
	}
}
