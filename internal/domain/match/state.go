package match

import (
	"fmt"
	"time"

	"github.com/okian/cricksim/internal/domain/model"
	"github.com/okian/cricksim/internal/domain/scoring"
	"github.com/okian/cricksim/internal/domain/selection"
	"github.com/okian/cricksim/internal/domain/toss"
)

// Phase is a state of the match lifecycle.
type Phase string

// Phases in order.
const (
	PreToss      Phase = "pre_toss"
	InningsOne   Phase = "innings_one"
	InningsBreak Phase = "innings_break"
	InningsTwo   Phase = "innings_two"
	Complete     Phase = "complete"
)

// Role is the human side's job for the current innings.
type Role string

// Roles.
const (
	Batting Role = "batting"
	Bowling Role = "bowling"
)

// Toss winner decisions.
const (
	DecisionBat  = "bat"
	DecisionBowl = "bowl"
)

// Alternative is one shot scored against the offered delivery.
type Alternative struct {
	Shot           string             `json:"shot"`
	Rating         int                `json:"rating"`
	EffectiveScore int                `json:"effective_score"`
	Projection     scoring.Projection `json:"projection"`
}

// Offer is the automated side's choice for the ball in progress. It is held by
// the innings between Offer and Resolve so the draws behind it are made once.
type Offer struct {
	ID           string         `json:"id"`
	Innings      int            `json:"innings"`
	Ball         int            `json:"ball"`
	Role         Role           `json:"role"`
	Batsman      model.Player   `json:"batsman"`
	Bowler       model.Player   `json:"bowler"`
	Delivery     model.Delivery `json:"delivery"`
	Shot         string         `json:"shot,omitempty"`
	Alternatives []Alternative  `json:"alternatives"`
	Repaired     []string       `json:"repaired,omitempty"`
}

// Commit is the human's action for the ball: a shot when batting, a delivery
// when bowling.
type Commit struct {
	OfferID   string         `json:"offer_id"`
	Shot      string         `json:"shot,omitempty"`
	Delivery  model.Delivery `json:"delivery"`
	ShowScore bool           `json:"show_score"`
}

// Innings is the mutable per-innings state.
type Innings struct {
	Number     int      `json:"number"`
	Batting    string   `json:"batting"`
	Bowling    string   `json:"bowling"`
	Balls      int      `json:"balls"`
	Runs       int      `json:"runs"`
	Wickets    int      `json:"wickets"`
	Target     int      `json:"target,omitempty"`
	Weak       []int    `json:"weak"`
	Pending    *Offer   `json:"pending,omitempty"`
	Commentary []string `json:"commentary"`

	// Reached is set on the ball the chase first reaches Target, with the
	// wickets down at that moment. Play continues unless EndOnTarget is set.
	Reached         bool `json:"reached,omitempty"`
	WicketsAtTarget int  `json:"wickets_at_target,omitempty"`
}

// Summary is a finished innings.
type Summary struct {
	Batting string `json:"batting"`
	Runs    int    `json:"runs"`
	Wickets int    `json:"wickets"`
	Balls   int    `json:"balls"`
}

// State is the complete, serialisable match. RNG carries the generator state
// so a restored match continues the same random stream.
type State struct {
	ID          string         `json:"id"`
	Human       string         `json:"human"`
	Opponent    string         `json:"opponent"`
	Overs       int            `json:"overs"`
	Tier        selection.Tier `json:"tier"`
	EndOnTarget bool           `json:"end_on_target"`
	Phase       Phase          `json:"phase"`
	Toss        *toss.Result   `json:"toss,omitempty"`
	Decision    string         `json:"decision,omitempty"`
	Innings     Innings        `json:"innings"`
	First       *Summary       `json:"first,omitempty"`
	Result      *model.Result  `json:"result,omitempty"`
	RNG         []byte         `json:"rng"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// BallResult describes one resolved ball.
type BallResult struct {
	OfferID           string         `json:"offer_id,omitempty"`
	Innings           int            `json:"innings"`
	Ball              int            `json:"ball"`
	Batsman           model.Player   `json:"batsman"`
	Bowler            model.Player   `json:"bowler"`
	Delivery          model.Delivery `json:"delivery"`
	Shot              string         `json:"shot"`
	Rating            int            `json:"rating"`
	EffectiveScore    int            `json:"effective_score"`
	Outcome           model.Outcome  `json:"outcome"`
	Commentary        string         `json:"commentary"`
	ProtocolViolation bool           `json:"protocol_violation,omitempty"`
	Repaired          []string       `json:"repaired,omitempty"`
	InningsOver       bool           `json:"innings_over"`
	Complete          bool           `json:"complete"`
}

// View is the snapshot shown to clients: the state plus derived fields.
type View struct {
	ID          string         `json:"id"`
	Human       string         `json:"human"`
	Opponent    string         `json:"opponent"`
	Overs       int            `json:"overs"`
	Tier        selection.Tier `json:"tier"`
	Phase       Phase          `json:"phase"`
	Toss        *toss.Result   `json:"toss,omitempty"`
	Decision    string         `json:"decision,omitempty"`
	Innings     int            `json:"innings"`
	Batting     string         `json:"batting,omitempty"`
	Bowling     string         `json:"bowling,omitempty"`
	HumanRole   Role           `json:"human_role,omitempty"`
	Runs        int            `json:"runs"`
	Wickets     int            `json:"wickets"`
	Balls       int            `json:"balls"`
	OversPlayed string         `json:"overs_played"`
	Target      int            `json:"target,omitempty"`
	RunsNeeded  int            `json:"runs_needed,omitempty"`
	BallsLeft   int            `json:"balls_left"`
	Batsman     string         `json:"batsman,omitempty"`
	Bowler      string         `json:"bowler,omitempty"`
	PendingID   string         `json:"pending_offer_id,omitempty"`
	Commentary  []string       `json:"commentary"`
	First       *Summary       `json:"first,omitempty"`
	Result      *model.Result  `json:"result,omitempty"`
	Duplicate   bool           `json:"duplicate,omitempty"`
}

// OversString formats balls as completed overs and balls, e.g. 13 -> "2.1".
func OversString(balls int) string {
	return fmt.Sprintf("%d.%d", balls/model.BallsPerOver, balls%model.BallsPerOver)
}

func (s State) clone() State {
	c := s
	c.Innings.Weak = append([]int(nil), s.Innings.Weak...)
	c.Innings.Commentary = append([]string(nil), s.Innings.Commentary...)
	if s.Innings.Pending != nil {
		p := *s.Innings.Pending
		p.Alternatives = append([]Alternative(nil), p.Alternatives...)
		p.Repaired = append([]string(nil), p.Repaired...)
		c.Innings.Pending = &p
	}
	if s.Toss != nil {
		t := *s.Toss
		c.Toss = &t
	}
	if s.First != nil {
		f := *s.First
		c.First = &f
	}
	if s.Result != nil {
		r := *s.Result
		c.Result = &r
	}
	c.RNG = append([]byte(nil), s.RNG...)
	return c
}
