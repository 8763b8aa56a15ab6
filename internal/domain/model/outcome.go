package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Outcome is the result of one ball: runs scored, or Wicket.
type Outcome int

// Outcomes. 1 and 3 are representable but never produced by the outcome policy.
const (
	Wicket Outcome = -1
	Dot    Outcome = 0
	One    Outcome = 1
	Two    Outcome = 2
	Three  Outcome = 3
	Four   Outcome = 4
	Six    Outcome = 6
)

// Runs returns the runs credited to the batting side.
func (o Outcome) Runs() int {
	if o == Wicket {
		return 0
	}
	return int(o)
}

// IsWicket reports whether the ball dismissed the batsman.
func (o Outcome) IsWicket() bool { return o == Wicket }

func (o Outcome) String() string {
	if o == Wicket {
		return "W"
	}
	return strconv.Itoa(int(o))
}

// ParseOutcome is the inverse of String.
func ParseOutcome(s string) (Outcome, error) {
	switch s {
	case "W":
		return Wicket, nil
	case "0", "1", "2", "3", "4", "6":
		n, _ := strconv.Atoi(s)
		return Outcome(n), nil
	}
	return Dot, fmt.Errorf("unknown outcome %q", s)
}

// MarshalJSON encodes the outcome as its display string.
func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// UnmarshalJSON accepts the display string.
func (o *Outcome) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseOutcome(s)
	if err != nil {
		return err
	}
	*o = v
	return nil
}
