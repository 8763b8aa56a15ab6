// Package match drives a limited-overs match ball by ball: toss, innings
// changes, the two-phase offer/resolve protocol and the final result.
package match

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/cricksim/internal/domain/model"
	"github.com/okian/cricksim/internal/domain/ratings"
	"github.com/okian/cricksim/internal/domain/selection"
	"github.com/okian/cricksim/internal/domain/toss"
)

// Config describes a new match.
type Config struct {
	ID          string
	Human       string
	Overs       int
	Tier        selection.Tier
	Seed        uint64
	EndOnTarget bool
}

// Match is a single match. It is not safe for concurrent use; callers
// serialise operations per match.
type Match struct {
	st        State
	table     *ratings.Table
	pcg       *rand.PCG
	rng       *rand.Rand
	picker    *selection.Picker
	bands     selection.Bands
	fixedBowl int
	now       func() time.Time
	newID     func() string
}

// New creates a match in PreToss.
func New(tbl *ratings.Table, cfg Config, opts ...Option) (*Match, error) {
	human, ok := model.TeamByCode(cfg.Human)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTeam, cfg.Human)
	}
	if cfg.Overs <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOvers, cfg.Overs)
	}
	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}

	m := newMatch(tbl, rand.NewPCG(cfg.Seed, 0), opts)
	now := m.now().UTC()
	m.st = State{
		ID:          id,
		Human:       human.Code,
		Opponent:    model.Opponent(human.Code).Code,
		Overs:       cfg.Overs,
		Tier:        selection.ParseTier(string(cfg.Tier)),
		EndOnTarget: cfg.EndOnTarget,
		Phase:       PreToss,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.picker = selection.NewPicker(m.rng, m.st.Tier, selection.WithBands(m.bands))
	return m, nil
}

// Restore rebuilds a match from a snapshot, continuing its random stream.
func Restore(tbl *ratings.Table, st State, opts ...Option) (*Match, error) {
	if _, ok := model.TeamByCode(st.Human); !ok {
		return nil, fmt.Errorf("%w: unknown team %q", ErrInvalidState, st.Human)
	}
	if st.Overs <= 0 || st.Phase == "" {
		return nil, fmt.Errorf("%w: overs %d phase %q", ErrInvalidState, st.Overs, st.Phase)
	}
	pcg := &rand.PCG{}
	if err := pcg.UnmarshalBinary(st.RNG); err != nil {
		return nil, fmt.Errorf("%w: rng: %w", ErrInvalidState, err)
	}
	m := newMatch(tbl, pcg, opts)
	m.st = st.clone()
	m.picker = selection.NewPicker(m.rng, m.st.Tier, selection.WithBands(m.bands))
	return m, nil
}

func newMatch(tbl *ratings.Table, pcg *rand.PCG, opts []Option) *Match {
	m := &Match{
		table: tbl,
		pcg:   pcg,
		rng:   rand.New(pcg),
		bands: selection.DefaultBands(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ID returns the match id.
func (m *Match) ID() string { return m.st.ID }

// Phase returns the current phase.
func (m *Match) Phase() Phase { return m.st.Phase }

// Snapshot returns a deep copy of the state including the RNG position.
func (m *Match) Snapshot() State {
	st := m.st.clone()
	st.RNG, _ = m.pcg.MarshalBinary()
	return st
}

// HumanRole returns the human's role in the current innings.
func (m *Match) HumanRole() Role {
	if m.st.Innings.Batting == m.st.Human {
		return Batting
	}
	return Bowling
}

// View returns the client facing snapshot.
func (m *Match) View() View {
	st := m.st.clone()
	in := st.Innings
	v := View{
		ID:          st.ID,
		Human:       st.Human,
		Opponent:    st.Opponent,
		Overs:       st.Overs,
		Tier:        st.Tier,
		Phase:       st.Phase,
		Toss:        st.Toss,
		Decision:    st.Decision,
		Innings:     in.Number,
		Runs:        in.Runs,
		Wickets:     in.Wickets,
		Balls:       in.Balls,
		OversPlayed: OversString(in.Balls),
		Target:      in.Target,
		Commentary:  in.Commentary,
		First:       st.First,
		Result:      st.Result,
	}
	if v.Commentary == nil {
		v.Commentary = []string{}
	}
	if in.Number == 0 {
		return v
	}
	v.Batting, v.Bowling = in.Batting, in.Bowling
	v.HumanRole = m.HumanRole()
	if st.Phase != Complete {
		v.BallsLeft = st.Overs*model.BallsPerOver - in.Balls
		bat, bowl := m.teams()
		v.Batsman = bat.Batsman(in.Wickets).Name
		v.Bowler = bowl.BowlerFor(in.Balls).Name
	}
	if in.Target > 0 && in.Runs < in.Target {
		v.RunsNeeded = in.Target - in.Runs
	}
	if in.Pending != nil {
		v.PendingID = in.Pending.ID
	}
	return v
}

// Toss flips the coin for the human's call and records the recommendation.
func (m *Match) Toss(call string, c toss.Conditions) (toss.Result, error) {
	if m.st.Phase == Complete {
		return toss.Result{}, ErrMatchComplete
	}
	if m.st.Phase != PreToss {
		return toss.Result{}, fmt.Errorf("%w: toss in %s", ErrInvalidPhase, m.st.Phase)
	}
	res, err := toss.Flip(m.rng, call, c)
	if err != nil {
		return toss.Result{}, err
	}
	m.st.Toss = &res
	m.touch()
	return res, nil
}

// Decide records the toss winner's choice and starts the first innings.
// When the opponent won the toss it follows the recommendation and decision
// is ignored.
func (m *Match) Decide(decision string) error {
	if m.st.Phase == Complete {
		return ErrMatchComplete
	}
	if m.st.Phase != PreToss || m.st.Toss == nil {
		return fmt.Errorf("%w: decision needs a completed toss", ErrInvalidPhase)
	}

	winner, other := m.st.Opponent, m.st.Human
	choice := strings.ToLower(m.st.Toss.Recommendation.Decision)
	if m.st.Toss.HumanWon {
		winner, other = m.st.Human, m.st.Opponent
		var err error
		if choice, err = parseDecision(decision); err != nil {
			return err
		}
	}

	batting, bowling := winner, other
	if choice == DecisionBowl {
		batting, bowling = other, winner
	}
	m.st.Decision = choice
	m.st.Phase = InningsOne
	m.st.Innings = Innings{
		Number:  1,
		Batting: batting,
		Bowling: bowling,
		Weak:    selection.WeakSchedule(m.rng, m.totalBalls(), m.st.Tier),
	}
	m.touch()
	return nil
}

func parseDecision(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bat", "batting":
		return DecisionBat, nil
	case "bowl", "bowling", "field":
		return DecisionBowl, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDecision, s)
}

// StartSecondInnings leaves the innings break.
func (m *Match) StartSecondInnings() error {
	switch m.st.Phase {
	case InningsBreak:
		m.st.Phase = InningsTwo
		m.touch()
		return nil
	case Complete:
		return ErrMatchComplete
	}
	return fmt.Errorf("%w: no innings break in %s", ErrInvalidPhase, m.st.Phase)
}

// ensurePlayable moves past an innings break and rejects non-playing phases.
func (m *Match) ensurePlayable() error {
	switch m.st.Phase {
	case InningsOne, InningsTwo:
		return nil
	case InningsBreak:
		return m.StartSecondInnings()
	case Complete:
		return ErrMatchComplete
	}
	return fmt.Errorf("%w: no ball can be played in %s", ErrInvalidPhase, m.st.Phase)
}

func (m *Match) teams() (batting, bowling model.Team) {
	batting, _ = model.TeamByCode(m.st.Innings.Batting)
	bowling, _ = model.TeamByCode(m.st.Innings.Bowling)
	return batting, bowling
}

func (m *Match) totalBalls() int {
	return m.st.Overs * model.BallsPerOver
}

func (m *Match) touch() {
	m.st.UpdatedAt = m.now().UTC()
}
