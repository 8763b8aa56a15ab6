package autoplay

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/okian/cricksim/internal/domain/match"
	"github.com/okian/cricksim/internal/domain/model"
	"github.com/okian/cricksim/internal/domain/ratings"
	"github.com/okian/cricksim/internal/domain/selection"
	"github.com/okian/cricksim/internal/domain/toss"
)

// SimConfig describes a headless simulation.
type SimConfig struct {
	Matches     int
	Overs       int
	Mode        string
	Seed        uint64
	EndOnTarget bool
}

// Report aggregates a simulation.
type Report struct {
	Matches      int            `json:"matches"`
	Balls        int            `json:"balls"`
	Outcomes     map[string]int `json:"outcomes"`
	Wins         map[string]int `json:"wins"`
	Ties         int            `json:"ties"`
	BattingFirst int            `json:"batting_first_wins"`
	FirstRuns    int            `json:"first_innings_runs"`
	ChaseRuns    int            `json:"chase_runs"`
	Repairs      int            `json:"repairs"`
}

// Simulate plays cfg.Matches matches in-process with a robot on the human
// side. The same config and table always produce the same report.
func Simulate(ctx context.Context, tbl *ratings.Table, cfg SimConfig, opts ...match.Option) (*Report, error) {
	rep := &Report{Outcomes: map[string]int{}, Wins: map[string]int{}}
	deliveries := tbl.Deliveries()
	for i := 0; i < cfg.Matches; i++ {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		seed := cfg.Seed + uint64(i)
		m, err := match.New(tbl, match.Config{
			ID:          fmt.Sprintf("sim-%d", i),
			Human:       teams[i%len(teams)],
			Overs:       cfg.Overs,
			Tier:        selection.ParseTier(cfg.Mode),
			Seed:        seed,
			EndOnTarget: cfg.EndOnTarget,
		}, opts...)
		if err != nil {
			return rep, err
		}
		if err := simulateMatch(m, NewRobot(seed), deliveries, rep); err != nil {
			return rep, fmt.Errorf("match %d: %w", i, err)
		}
	}
	return rep, nil
}

func simulateMatch(m *match.Match, robot *Robot, deliveries []model.Delivery, rep *Report) error {
	tr, err := m.Toss(robot.Call(), robot.Conditions(toss.Options()))
	if err != nil {
		return err
	}
	if err := m.Decide(robot.Decision(tr.Recommendation.Decision)); err != nil {
		return err
	}

	for i := 0; i < maxBallsPerMatch && m.Phase() != match.Complete; i++ {
		if m.Phase() == match.InningsBreak {
			if err := m.StartSecondInnings(); err != nil {
				return err
			}
		}
		var d model.Delivery
		if m.HumanRole() == match.Bowling {
			d = robot.TableDelivery(deliveries)
		}
		o, err := m.Offer(d)
		if err != nil {
			return err
		}
		commit := match.Commit{OfferID: o.ID}
		if o.Role == match.Batting {
			commit.Shot = robot.Shot(o.Alternatives)
		}
		ball, err := m.Resolve(commit)
		if err != nil {
			return err
		}
		rep.Balls++
		rep.Outcomes[ball.Outcome.String()]++
		rep.Repairs += len(ball.Repaired)
	}

	r := m.Snapshot().Result
	if r == nil {
		return fmt.Errorf("%w: %s", ErrIncomplete, m.Phase())
	}
	rep.Matches++
	rep.FirstRuns += r.FirstRuns
	rep.ChaseRuns += r.ChaseRuns
	switch {
	case r.Tie:
		rep.Ties++
	default:
		rep.Wins[r.Winner]++
		if r.Winner == r.BattingFirst {
			rep.BattingFirst++
		}
	}
	return nil
}

// Write prints the outcome distribution and match summary.
func (r *Report) Write(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "matches\t%d\n", r.Matches)
	fmt.Fprintf(tw, "balls\t%d\n", r.Balls)
	if r.Matches > 0 {
		fmt.Fprintf(tw, "avg first innings\t%.1f\n", float64(r.FirstRuns)/float64(r.Matches))
		fmt.Fprintf(tw, "avg chase\t%.1f\n", float64(r.ChaseRuns)/float64(r.Matches))
		fmt.Fprintf(tw, "batting first won\t%.1f%%\n", 100*float64(r.BattingFirst)/float64(r.Matches))
	}
	fmt.Fprintf(tw, "ties\t%d\n", r.Ties)
	fmt.Fprintf(tw, "repairs\t%d\n", r.Repairs)
	fmt.Fprintln(tw, "\noutcome\tballs\tshare")

	keys := make([]string, 0, len(r.Outcomes))
	for k := range r.Outcomes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\n", k, r.Outcomes[k], r.Share(k))
	}
	return tw.Flush()
}

// Share returns the percentage of balls that ended in outcome.
func (r *Report) Share(outcome string) float64 {
	if r.Balls == 0 {
		return 0
	}
	return 100 * float64(r.Outcomes[outcome]) / float64(r.Balls)
}
