// Package scoring turns skills and shot ratings into an effective score and
// maps that score plus the delivery into a ball outcome.
package scoring

import (
	"fmt"

	"github.com/okian/cricksim/internal/domain/model"
)

// Effective score bounds and outcome thresholds.
const (
	MinScore = 1
	MaxScore = 100

	boundaryThreshold = 98
	fourThreshold     = 85
	twoThreshold      = 75

	wicketDie = 100
)

var (
	stumpLines    = map[string]bool{"Off Stump": true, "Middle Stump": true, "Leg Stump": true}
	attackLengths = map[string]bool{"Yorker": true, "Good Length": true, "Full": true}
)

// Roller is a source of uniform integers in [0,n). *rand.Rand satisfies it.
type Roller interface {
	IntN(n int) int
}

// RatingSource looks up the rating of a shot against a delivery.
type RatingSource interface {
	Lookup(d model.Delivery, shot string) (int, error)
}

// EffectiveScore combines the skills and the shot rating:
// 0.8*shot + 0.4*bat - 0.2*bowl, truncated toward zero, clamped to [1,100].
func EffectiveScore(batSkill, bowlSkill, shotRating int) int {
	raw := 0.8*float64(shotRating) + 0.4*float64(batSkill) - 0.2*float64(bowlSkill)
	score := int(raw)
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// AttackingDelivery reports whether a low score on this delivery can be a wicket.
func AttackingDelivery(line, length string) bool {
	return stumpLines[line] && attackLengths[length]
}

// Projection is the draw-free view of an outcome.
type Projection struct {
	Runs       int  `json:"runs"`
	WicketRisk bool `json:"wicket_risk"`
}

// Project evaluates the outcome rules without the wicket draw.
func Project(score int, line, length string, maxRuns int) Projection {
	switch {
	case maxRuns == model.ClassDefensive:
		return Projection{}
	case score >= boundaryThreshold:
		if maxRuns == model.ClassAerial {
			return Projection{Runs: 6}
		}
		return Projection{Runs: 4}
	case score >= fourThreshold:
		return Projection{Runs: 4}
	case score >= twoThreshold:
		return Projection{Runs: 2}
	}
	return Projection{WicketRisk: AttackingDelivery(line, length)}
}

// Decide maps an effective score to an outcome. The roller is consulted only
// when a wicket is possible; a draw in [1,100] above the score is a wicket.
func Decide(score int, line, length string, maxRuns int, r Roller) model.Outcome {
	p := Project(score, line, length, maxRuns)
	if p.WicketRisk && r.IntN(wicketDie)+1 > score {
		return model.Wicket
	}
	return model.Outcome(p.Runs)
}

// Ball is a fully evaluated delivery and shot.
type Ball struct {
	Rating         int           `json:"rating"`
	EffectiveScore int           `json:"effective_score"`
	Outcome        model.Outcome `json:"outcome"`
}

// Play looks up the rating, scores it and decides the outcome.
// A lookup miss is returned unchanged; callers repair deliveries beforehand.
func Play(src RatingSource, batSkill, bowlSkill int, d model.Delivery, shot string, r Roller) (Ball, error) {
	rating, err := src.Lookup(d, shot)
	if err != nil {
		return Ball{}, fmt.Errorf("score ball: %w", err)
	}
	score := EffectiveScore(batSkill, bowlSkill, rating)
	return Ball{
		Rating:         rating,
		EffectiveScore: score,
		Outcome:        Decide(score, d.Line, d.Length, model.MaxRuns(shot), r),
	}, nil
}
