// Package toss decides the coin toss and recommends batting or bowling first
// from the match conditions.
package toss

import (
	"errors"
	"math"
	"strings"
)

// Coin faces.
const (
	Heads = "Heads"
	Tails = "Tails"
)

// Recommendations.
const (
	Bat  = "BAT"
	Bowl = "BOWL"
)

const (
	conditionCount = 7
	knowledgeBonus = 5
	tossBonus      = 3
)

// ErrInvalidCall is returned for a call other than Heads or Tails.
var ErrInvalidCall = errors.New("toss call must be Heads or Tails")

// Roller is a source of uniform integers in [0,n).
type Roller interface {
	IntN(n int) int
}

type weight struct{ bat, bowl float64 }

var matrix = map[string]weight{
	"Afternoon Match":    {65, 35},
	"Night Match":        {30, 70},
	"High Dew":           {25, 75},
	"No Dew":             {60, 40},
	"Dry Pitch":          {60, 40},
	"Green Pitch":        {35, 65},
	"Rain Affected":      {40, 60},
	"No Rain":            {55, 45},
	"High Humidity":      {30, 70},
	"Normal Humidity":    {50, 50},
	"Slow Turning Pitch": {60, 40},
	"Fast Pitch":         {45, 55},
	"Small Ground":       {35, 65},
	"Large Ground":       {60, 40},
}

// Conditions are the seven match conditions. Unknown values weigh nothing.
type Conditions struct {
	Time     string `json:"time"`
	Pitch    string `json:"pitch"`
	Ground   string `json:"ground"`
	Dew      string `json:"dew"`
	Rain     string `json:"rain"`
	Humidity string `json:"humidity"`
	Turn     string `json:"turn"`
}

// Options lists the selectable value of each condition.
func Options() map[string][]string {
	return map[string][]string{
		"time":     {"Afternoon Match", "Night Match"},
		"pitch":    {"Dry Pitch", "Green Pitch"},
		"ground":   {"Small Ground", "Large Ground"},
		"dew":      {"High Dew", "No Dew"},
		"rain":     {"Rain Affected", "No Rain"},
		"humidity": {"High Humidity", "Normal Humidity"},
		"turn":     {"Slow Turning Pitch", "Fast Pitch"},
	}
}

// Recommendation is the normalised bat/bowl split and the better choice.
type Recommendation struct {
	BatPct   float64 `json:"bat_pct"`
	BowlPct  float64 `json:"bowl_pct"`
	Decision string  `json:"decision"`
}

// Result records a completed toss.
type Result struct {
	Call           string         `json:"call"`
	Coin           string         `json:"coin"`
	HumanWon       bool           `json:"human_won"`
	Conditions     Conditions     `json:"conditions"`
	Recommendation Recommendation `json:"recommendation"`
}

// NormalizeCall accepts heads/tails in any case.
func NormalizeCall(call string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(call)) {
	case "heads":
		return Heads, nil
	case "tails":
		return Tails, nil
	}
	return "", ErrInvalidCall
}

// Flip tosses the coin for the human's call.
func Flip(r Roller, call string, c Conditions) (Result, error) {
	call, err := NormalizeCall(call)
	if err != nil {
		return Result{}, err
	}
	coin := Heads
	if r.IntN(2) == 1 {
		coin = Tails
	}
	won := coin == call
	return Result{
		Call:           call,
		Coin:           coin,
		HumanWon:       won,
		Conditions:     c,
		Recommendation: Recommend(c, won),
	}, nil
}

// Recommend averages the condition weights, applies the pitch knowledge and
// toss winner bonuses and normalises to percentages with one decimal.
func Recommend(c Conditions, humanWon bool) Recommendation {
	var bat, bowl float64
	for _, v := range []string{c.Time, c.Pitch, c.Ground, c.Dew, c.Rain, c.Humidity, c.Turn} {
		if w, ok := matrix[v]; ok {
			bat += w.bat
			bowl += w.bowl
		}
	}
	bat /= conditionCount
	bowl /= conditionCount

	if strings.Contains(c.Pitch, "Dry") || strings.Contains(c.Turn, "Slow") {
		bat += knowledgeBonus
	}
	if strings.Contains(c.Pitch, "Green") || strings.Contains(c.Dew, "High Dew") {
		bowl += knowledgeBonus
	}
	if humanWon {
		if bat > bowl {
			bat += tossBonus
		} else {
			bowl += tossBonus
		}
	}

	rec := Recommendation{Decision: Bowl}
	if bat > bowl {
		rec.Decision = Bat
	}
	if total := bat + bowl; total > 0 {
		rec.BatPct = round1(bat / total * 100)
		rec.BowlPct = round1(bowl / total * 100)
	}
	return rec
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
