package match

import (
	"fmt"

	"github.com/okian/cricksim/internal/domain/model"
)

func commentary(r BallResult, role Role, showScore bool) string {
	var line string
	b := r.Batsman.Name
	switch r.Outcome {
	case model.Wicket:
		line = fmt.Sprintf("OUT! %s dismissed by %s!", b, r.Bowler.Name)
	case model.Six:
		line = fmt.Sprintf("SIX by %s!", b)
	case model.Four:
		line = fmt.Sprintf("FOUR by %s!", b)
	case model.Two:
		line = fmt.Sprintf("%s scores 2 runs.", b)
	case model.One:
		line = fmt.Sprintf("Single taken by %s.", b)
	default:
		line = fmt.Sprintf("%s plays a dot ball.", b)
	}

	d := r.Delivery
	if role == Batting {
		line += fmt.Sprintf(" | Bot bowled: %s (%s, %s, %s)", d.Style, d.Line, d.Length, d.Variation)
	} else {
		line += fmt.Sprintf(" | Bot played: %s", r.Shot)
	}
	if showScore {
		line += fmt.Sprintf(" (Effective Score: %d)", r.EffectiveScore)
	}
	return line
}
