// Package selection implements the automated side's choices: ranking shots by
// effective score, sampling from a band of that ranking, picking deliveries and
// scheduling the weak balls of an innings.
package selection

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/cricksim/internal/domain/model"
	"github.com/okian/cricksim/internal/domain/ratings"
	"github.com/okian/cricksim/internal/domain/scoring"
)

// Tier is a difficulty level; it controls how often the automated side errs.
type Tier string

// Difficulty tiers.
const (
	Easy   Tier = "easy"
	Medium Tier = "medium"
	Hard   Tier = "hard"
)

// ParseTier normalises a tier name. Anything unrecognised is Hard.
func ParseTier(s string) Tier {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case Easy:
		return Easy
	case Medium:
		return Medium
	}
	return Hard
}

// WeakFraction is the share of an innings' balls scheduled as weak.
func (t Tier) WeakFraction() float64 {
	switch t {
	case Easy:
		return 0.15
	case Medium:
		return 0.08
	}
	return 0.03
}

// Candidate is a shot scored against the current delivery.
type Candidate struct {
	Shot           string `json:"shot"`
	Rating         int    `json:"rating"`
	EffectiveScore int    `json:"effective_score"`
}

// RowSource returns every shot rating for a delivery.
type RowSource interface {
	Row(d model.Delivery) ([]ratings.ShotRating, error)
}

// RankShots scores every shot against d and sorts ascending by effective
// score. Equal scores keep table column order.
func RankShots(src RowSource, d model.Delivery, batSkill, bowlSkill int) ([]Candidate, error) {
	row, err := src.Row(d)
	if err != nil {
		return nil, fmt.Errorf("rank shots: %w", err)
	}
	out := make([]Candidate, len(row))
	for i, sr := range row {
		out[i] = Candidate{
			Shot:           sr.Shot,
			Rating:         sr.Rating,
			EffectiveScore: scoring.EffectiveScore(batSkill, bowlSkill, sr.Rating),
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EffectiveScore < out[j].EffectiveScore })
	return out, nil
}

// Band is the start of the strong sampling band as the fraction Num/Den of
// the ranked list. The band runs from n*Num/Den to the end.
type Band struct {
	Num int `koanf:"num" json:"num"`
	Den int `koanf:"den" json:"den"`
}

// Bands configures the strong band per tier.
type Bands map[Tier]Band

// TopThird is the strong band every tier uses by default.
var TopThird = Band{Num: 2, Den: 3}

// DefaultBands keeps easy, medium and hard identical; only the weak-ball
// frequency differs between tiers.
func DefaultBands() Bands {
	return Bands{Easy: TopThird, Medium: TopThird, Hard: TopThird}
}

func (b Band) start(n int) int {
	if b.Den <= 0 || b.Num < 0 {
		b = TopThird
	}
	s := n * b.Num / b.Den
	if s >= n {
		s = n - 1
	}
	if s < 0 {
		s = 0
	}
	return s
}
