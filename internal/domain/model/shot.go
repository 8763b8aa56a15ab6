package model

// Shot classes by the most runs a shot can score.
const (
	ClassDefensive = 0
	ClassGround    = 4
	ClassAerial    = 6
)

var shotMaxRuns = map[string]int{
	"Cut": 4, "Late Cut": 4, "Square Cut": 4,
	"Pull": 6, "Hook": 6,
	"Straight Drive": 4, "Cover Drive": 4,
	"On Drive": 4, "Flick": 6, "Glance": 4,
	"Sweep": 6, "Reverse Sweep": 6,
	"Paddle Sweep": 6, "Lofted Straight": 6,
	"Lofted Cover": 6, "Lofted On": 6,
	"Upper Cut": 6, "Ramp Shot": 6,
	"Defense": 0, "Forward Defense": 0,
	"Backfoot Defense": 0, "Leave": 0,
}

// MaxRuns returns the class of a shot. Unknown shots count as ground shots.
func MaxRuns(shot string) int {
	if r, ok := shotMaxRuns[shot]; ok {
		return r
	}
	return ClassGround
}

// KnownShot reports whether the shot is part of the fixed enumeration.
func KnownShot(shot string) bool {
	_, ok := shotMaxRuns[shot]
	return ok
}

// Delivery identifies a bowled ball. It must match exactly one rating row.
type Delivery struct {
	Style     string `json:"style"`
	Line      string `json:"line"`
	Length    string `json:"length"`
	Variation string `json:"variation"`
}
