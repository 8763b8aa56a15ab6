package match

import (
	"fmt"
	"sort"

	"github.com/okian/cricksim/internal/domain/model"
	"github.com/okian/cricksim/internal/domain/scoring"
	"github.com/okian/cricksim/internal/domain/selection"
)

// Offer runs phase one of a ball. When the human bats, the automated bowler
// picks a delivery; when the human bowls, the human's delivery is repaired
// and the automated batsman picks a shot. Every shot is scored against the
// delivery and returned best first. A repeated Offer for the same ball
// returns the pending offer without drawing again.
func (m *Match) Offer(humanDelivery model.Delivery) (*Offer, error) {
	if err := m.ensurePlayable(); err != nil {
		return nil, err
	}
	in := &m.st.Innings
	if p := in.Pending; p != nil && p.Innings == in.Number && p.Ball == in.Balls {
		cp := *p
		return &cp, nil
	}

	o, err := m.buildOffer(humanDelivery)
	if err != nil {
		return nil, err
	}
	in.Pending = o
	m.touch()
	cp := *o
	return &cp, nil
}

func (m *Match) buildOffer(humanDelivery model.Delivery) (*Offer, error) {
	in := m.st.Innings
	batting, bowling := m.teams()
	o := &Offer{
		ID:      m.newID(),
		Innings: in.Number,
		Ball:    in.Balls,
		Role:    m.HumanRole(),
		Batsman: batting.Batsman(in.Wickets),
		Bowler:  bowling.BowlerFor(in.Balls),
	}

	if o.Role == Batting {
		o.Delivery = m.picker.PickDelivery(m.table.Deliveries())
	} else {
		o.Delivery, o.Repaired = m.table.Repair(humanDelivery)
	}

	bowl := o.Bowler.Bowl
	if o.Role == Bowling && m.fixedBowl > 0 {
		bowl = m.fixedBowl
	}
	ranked, err := selection.RankShots(m.table, o.Delivery, o.Batsman.Bat, bowl)
	if err != nil {
		return nil, fmt.Errorf("offer: %w", err)
	}
	if o.Role == Bowling {
		o.Shot = m.picker.PickShot(ranked, selection.IsWeak(in.Weak, in.Balls)).Shot
	}
	o.Alternatives = alternatives(ranked, o.Delivery)
	return o, nil
}

func alternatives(ranked []selection.Candidate, d model.Delivery) []Alternative {
	out := make([]Alternative, len(ranked))
	for i, c := range ranked {
		out[i] = Alternative{
			Shot:           c.Shot,
			Rating:         c.Rating,
			EffectiveScore: c.EffectiveScore,
			Projection:     scoring.Project(c.EffectiveScore, d.Line, d.Length, model.MaxRuns(c.Shot)),
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EffectiveScore > out[j].EffectiveScore })
	return out
}

// Resolve runs phase two of a ball. It consumes the pending offer; without one
// the automated choice is made inline and the result is flagged as a protocol
// violation. Invalid human input is repaired field by field.
func (m *Match) Resolve(c Commit) (BallResult, error) {
	if err := m.ensurePlayable(); err != nil {
		return BallResult{}, err
	}
	in := &m.st.Innings

	pending := in.Pending
	violation := pending == nil || (c.OfferID != "" && c.OfferID != pending.ID)
	if pending == nil {
		o, err := m.buildOffer(c.Delivery)
		if err != nil {
			return BallResult{}, err
		}
		pending = o
	}

	res := BallResult{
		OfferID:           pending.ID,
		Innings:           in.Number,
		Ball:              in.Balls,
		Batsman:           pending.Batsman,
		Bowler:            pending.Bowler,
		ProtocolViolation: violation,
	}
	if pending.Role == Batting {
		res.Delivery = pending.Delivery
		shot, fixed := m.table.RepairShot(res.Delivery.Style, c.Shot)
		if fixed {
			res.Repaired = append(res.Repaired, "shot")
		}
		res.Shot = shot
	} else {
		res.Delivery, res.Repaired = pending.Delivery, pending.Repaired
		if c.Delivery != (model.Delivery{}) && c.Delivery != pending.Delivery {
			res.Delivery, res.Repaired = m.table.Repair(c.Delivery)
		}
		res.Shot = pending.Shot
	}

	ball, err := scoring.Play(m.table, res.Batsman.Bat, res.Bowler.Bowl, res.Delivery, res.Shot, m.rng)
	if err != nil {
		return BallResult{}, fmt.Errorf("resolve: %w", err)
	}
	res.Rating = ball.Rating
	res.EffectiveScore = ball.EffectiveScore
	res.Outcome = ball.Outcome

	in.Balls++
	in.Runs += ball.Outcome.Runs()
	if ball.Outcome.IsWicket() {
		in.Wickets++
	}
	if in.Target > 0 && !in.Reached && in.Runs >= in.Target {
		in.Reached, in.WicketsAtTarget = true, in.Wickets
	}
	in.Pending = nil
	res.Commentary = commentary(res, pending.Role, c.ShowScore)
	in.Commentary = append([]string{res.Commentary}, in.Commentary...)

	if m.inningsOver() {
		res.InningsOver = true
		m.endInnings()
		res.Complete = m.st.Phase == Complete
	}
	m.touch()
	return res, nil
}

func (m *Match) inningsOver() bool {
	in := m.st.Innings
	if in.Balls >= m.totalBalls() || in.Wickets >= model.MaxWickets {
		return true
	}
	return m.st.EndOnTarget && in.Target > 0 && in.Runs >= in.Target
}

func (m *Match) endInnings() {
	in := m.st.Innings
	if in.Number == 1 {
		m.st.First = &Summary{Batting: in.Batting, Runs: in.Runs, Wickets: in.Wickets, Balls: in.Balls}
		m.st.Phase = InningsBreak
		m.st.Innings = Innings{
			Number:  2,
			Batting: in.Bowling,
			Bowling: in.Batting,
			Target:  in.Runs + 1,
			Weak:    selection.WeakSchedule(m.rng, m.totalBalls(), m.st.Tier),
		}
		return
	}
	m.st.Phase = Complete
	r := decideResult(m.st, m.now().UTC())
	m.st.Result = &r
}
