package types_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/cricksim/internal/domain/model"
	types "github.com/okian/cricksim/internal/domain/types"
)

func TestEntries(t *testing.T) {
	Convey("Given a completed result", t, func() {
		r := model.Result{
			MatchID:      "m1",
			BattingFirst: "CSK",
			Chasing:      "MI",
			FirstRuns:    30,
			FirstWickets: 2,
			ChaseRuns:    31,
			ChaseWickets: 4,
			Overs:        2,
			Tier:         "hard",
			Winner:       "MI",
		}

		Convey("When it is split", func() {
			e := types.Entries(r)

			Convey("Then each innings carries its own total", func() {
				So(e[0].Team, ShouldEqual, "CSK")
				So(e[0].Innings, ShouldEqual, 1)
				So(e[0].Runs, ShouldEqual, 30)
				So(e[0].Won, ShouldBeFalse)
				So(e[1].Team, ShouldEqual, "MI")
				So(e[1].Wickets, ShouldEqual, 4)
				So(e[1].Won, ShouldBeTrue)
				So(e[1].Tier, ShouldEqual, "hard")
			})
		})

		Convey("When the match is tied", func() {
			r.Winner, r.Tie = "", true
			e := types.Entries(r)

			Convey("Then nobody won", func() {
				So(e[0].Won, ShouldBeFalse)
				So(e[1].Won, ShouldBeFalse)
			})
		})
	})
}

func TestOrdering(t *testing.T) {
	Convey("Given entries out of order", t, func() {
		a := types.Entry{MatchID: "a", Innings: 1, Runs: 20, Wickets: 3}
		b := types.Entry{MatchID: "b", Innings: 1, Runs: 20, Wickets: 1}
		c := types.Entry{MatchID: "c", Innings: 2, Runs: 25, Wickets: 9}
		d := types.Entry{MatchID: "a", Innings: 2, Runs: 20, Wickets: 3}

		Convey("Then more runs rank first", func() {
			So(types.Before(c, a), ShouldBeTrue)
			So(types.Before(a, c), ShouldBeFalse)
		})

		Convey("Then fewer wickets break a runs tie", func() {
			So(types.Before(b, a), ShouldBeTrue)
		})

		Convey("Then match id and innings make the order total", func() {
			So(types.Before(a, d), ShouldBeTrue)
			So(types.Before(d, a), ShouldBeFalse)
		})

		Convey("When ranks are assigned", func() {
			board := []types.Entry{c, b, a, d}
			types.AssignRanks(board)

			Convey("Then equal totals share a rank", func() {
				So(board[0].Rank, ShouldEqual, 1)
				So(board[1].Rank, ShouldEqual, 2)
				So(board[2].Rank, ShouldEqual, 3)
				So(board[3].Rank, ShouldEqual, 3)
			})
		})

		Convey("When the board is empty", func() {
			So(func() { types.AssignRanks(nil) }, ShouldNotPanic)
		})
	})
}
