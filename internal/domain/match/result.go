package match

import (
	"fmt"
	"time"

	"github.com/okian/cricksim/internal/domain/model"
)

// decideResult compares the chase with the target set by the first innings.
func decideResult(st State, at time.Time) model.Result {
	chase := st.Innings
	r := model.Result{
		MatchID:      st.ID,
		BattingFirst: chase.Bowling,
		Chasing:      chase.Batting,
		ChaseRuns:    chase.Runs,
		ChaseWickets: chase.Wickets,
		Overs:        st.Overs,
		Tier:         string(st.Tier),
		CompletedAt:  at,
	}
	if st.First != nil {
		r.FirstRuns = st.First.Runs
		r.FirstWickets = st.First.Wickets
	}

	switch {
	case chase.Reached || chase.Runs >= chase.Target:
		// The chase is won when the target falls; wickets lost afterwards
		// do not count against the margin.
		down := chase.Wickets
		if chase.Reached {
			down = chase.WicketsAtTarget
		}
		r.Winner = chase.Batting
		r.Margin = model.MaxWickets - down
		r.MarginUnit = "wickets"
	case chase.Runs == chase.Target-1:
		r.Tie = true
	default:
		r.Winner = chase.Bowling
		r.Margin = chase.Target - 1 - chase.Runs
		r.MarginUnit = "runs"
	}

	if r.Tie {
		r.Summary = "Match tied"
	} else {
		unit := r.MarginUnit
		if r.Margin == 1 {
			unit = unit[:len(unit)-1]
		}
		r.Summary = fmt.Sprintf("%s won by %d %s", r.Winner, r.Margin, unit)
	}
	return r
}
