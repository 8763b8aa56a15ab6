package autoplay

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/cricksim/internal/adapters/http/api"
	service "github.com/okian/cricksim/internal/app"
	"github.com/okian/cricksim/internal/domain/match"
	"github.com/okian/cricksim/internal/domain/model"
	"github.com/okian/cricksim/internal/domain/ratings"
	"github.com/okian/cricksim/internal/domain/types"
	"github.com/okian/cricksim/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newServer() (*service.Service, *httptest.Server) {
	svc := service.New(service.WithWorkerCount(2))
	So(svc.Start(context.Background()), ShouldBeNil)
	r := chi.NewRouter()
	api.NewServer(svc).Register(context.Background(), r)
	return svc, httptest.NewServer(r)
}

func TestRun(t *testing.T) {
	Convey("Given a running server", t, func() {
		svc, srv := newServer()
		defer svc.Stop()
		defer srv.Close()

		Convey("When the robot plays several matches", func() {
			cfg := DefaultConfig()
			cfg.BaseURL = srv.URL
			cfg.Matches = 4
			cfg.Workers = 2
			cfg.Overs = 1
			cfg.Seed = 42
			stats, err := Run(context.Background(), cfg)

			Convey("Then every match completes and the board checks out", func() {
				So(err, ShouldBeNil)
				So(stats.MatchesStarted, ShouldEqual, 4)
				So(stats.MatchesCompleted, ShouldEqual, 4)
				So(stats.MatchesFailed, ShouldEqual, 0)
				So(stats.Duplicates, ShouldEqual, 4)
				So(stats.Violations, ShouldEqual, 0)
				So(stats.Balls, ShouldBeGreaterThanOrEqualTo, 4*6)
				So(stats.ResultEntries, ShouldEqual, 8)
			})
		})

		Convey("When the requested team is unknown", func() {
			cfg := DefaultConfig()
			cfg.BaseURL = srv.URL
			cfg.Matches = 1
			cfg.Team = "RCB"
			stats, err := Run(context.Background(), cfg)

			Convey("Then the failure is reported", func() {
				So(errors.Is(err, ErrStatus), ShouldBeTrue)
				So(stats.MatchesFailed, ShouldEqual, 1)
			})
		})
	})

	Convey("Given no server", t, func() {
		cfg := DefaultConfig()
		cfg.BaseURL = "http://127.0.0.1:1"
		cfg.Timeout = time.Second
		_, err := Run(context.Background(), cfg)
		So(errors.Is(err, ErrUnhealthy), ShouldBeTrue)
	})
}

func TestRobot(t *testing.T) {
	Convey("Given two robots with the same seed", t, func() {
		tbl, err := ratings.Default()
		So(err, ShouldBeNil)
		opts := map[string]ratings.Options{}
		for _, s := range tbl.Styles() {
			o, err := tbl.Options(s)
			So(err, ShouldBeNil)
			opts[s] = o
		}
		a, b := NewRobot(9), NewRobot(9)

		Convey("Then they make the same choices", func() {
			for i := 0; i < 20; i++ {
				So(a.Delivery(opts), ShouldResemble, b.Delivery(opts))
				So(a.Call(), ShouldEqual, b.Call())
			}
		})

		Convey("Then deliveries come from the options", func() {
			d := a.Delivery(opts)
			So(opts, ShouldContainKey, d.Style)
			So(opts[d.Style].Lines, ShouldContain, d.Line)
			So(opts[d.Style].Variations, ShouldContain, d.Variation)
		})

		Convey("Then shots come from the top three", func() {
			alts := []match.Alternative{{Shot: "Cut"}, {Shot: "Pull"}, {Shot: "Hook"}, {Shot: "Leave"}}
			for i := 0; i < 50; i++ {
				So(a.Shot(alts), ShouldBeIn, "Cut", "Pull", "Hook")
			}
			So(a.Shot(nil), ShouldEqual, "")
		})

		Convey("Then empty inputs yield zero values", func() {
			So(a.Delivery(nil), ShouldResemble, model.Delivery{})
			So(a.TableDelivery(nil), ShouldResemble, model.Delivery{})
			So(a.Decision(""), ShouldEqual, match.DecisionBat)
		})
	})
}

func TestVerifyBoard(t *testing.T) {
	Convey("Given a results board", t, func() {
		board := []types.Entry{
			{Rank: 1, MatchID: "a", Innings: 1, Runs: 30, Wickets: 1},
			{Rank: 1, MatchID: "b", Innings: 2, Runs: 30, Wickets: 1},
			{Rank: 2, MatchID: "a", Innings: 2, Runs: 30, Wickets: 4},
			{Rank: 3, MatchID: "b", Innings: 1, Runs: 12, Wickets: 0},
		}

		Convey("Then a well formed board passes", func() {
			So(verifyBoard(board, 10), ShouldBeNil)
			So(verifyBoard(nil, 10), ShouldBeNil)
		})

		Convey("Then too many entries fail", func() {
			So(errors.Is(verifyBoard(board, 3), ErrVerify), ShouldBeTrue)
		})

		Convey("Then out of order entries fail", func() {
			board[0], board[3] = board[3], board[0]
			So(errors.Is(verifyBoard(board, 10), ErrVerify), ShouldBeTrue)
		})

		Convey("Then skipped ranks fail", func() {
			board[3].Rank = 4
			So(errors.Is(verifyBoard(board, 10), ErrVerify), ShouldBeTrue)
		})
	})
}

func TestVerifyMatch(t *testing.T) {
	Convey("Given completed snapshots", t, func() {
		v := match.View{ID: "m", Human: "CSK", Opponent: "MI", Phase: match.Complete,
			Result: &model.Result{Winner: "MI", Summary: "MI won by 3 runs"}}
		So(verifyMatch(v), ShouldBeNil)

		v.Result = &model.Result{Winner: "RCB", Summary: "RCB won"}
		So(errors.Is(verifyMatch(v), ErrVerify), ShouldBeTrue)

		v.Result = &model.Result{Tie: true, Winner: "MI", Summary: "tie"}
		So(errors.Is(verifyMatch(v), ErrVerify), ShouldBeTrue)

		v.Phase = match.InningsTwo
		So(errors.Is(verifyMatch(v), ErrVerify), ShouldBeTrue)
	})
}

func TestSimulate(t *testing.T) {
	Convey("Given the default rating table", t, func() {
		tbl, err := ratings.Default()
		So(err, ShouldBeNil)
		cfg := SimConfig{Matches: 6, Overs: 2, Mode: "medium", Seed: 5}

		Convey("When simulating", func() {
			rep, err := Simulate(context.Background(), tbl, cfg)
			So(err, ShouldBeNil)

			Convey("Then every match finishes", func() {
				So(rep.Matches, ShouldEqual, 6)
				wins := rep.Ties
				for _, n := range rep.Wins {
					wins += n
				}
				So(wins, ShouldEqual, 6)
			})

			Convey("Then outcomes account for every ball", func() {
				total := 0
				for _, n := range rep.Outcomes {
					total += n
				}
				So(total, ShouldEqual, rep.Balls)
				So(rep.Outcomes, ShouldNotContainKey, "1")
				So(rep.Outcomes, ShouldNotContainKey, "3")
			})

			Convey("Then the same seed reproduces the report", func() {
				again, err := Simulate(context.Background(), tbl, cfg)
				So(err, ShouldBeNil)
				So(again, ShouldResemble, rep)
			})

			Convey("Then the report prints a distribution", func() {
				var buf bytes.Buffer
				So(rep.Write(&buf), ShouldBeNil)
				So(buf.String(), ShouldContainSubstring, "outcome")
				So(buf.String(), ShouldContainSubstring, "matches")
			})
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := Simulate(ctx, tbl, cfg)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})

		Convey("When overs are invalid", func() {
			_, err := Simulate(context.Background(), tbl, SimConfig{Matches: 1})
			So(errors.Is(err, match.ErrInvalidOvers), ShouldBeTrue)
		})
	})
}
