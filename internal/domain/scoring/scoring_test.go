package scoring_test

import (
	"errors"
	"testing"

	"github.com/okian/cricksim/internal/domain/model"
	scoring "github.com/okian/cricksim/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

// fixedRoll returns draw-1 so the scoring side sees exactly draw.
type fixedRoll struct {
	draw  int
	calls int
}

func (f *fixedRoll) IntN(int) int {
	f.calls++
	return f.draw - 1
}

type tableStub map[string]int

func (t tableStub) Lookup(d model.Delivery, shot string) (int, error) {
	r, ok := t[d.Line+"/"+shot]
	if !ok {
		return 0, errors.New("rating not found")
	}
	return r, nil
}

func TestEffectiveScore(t *testing.T) {
	Convey("Given the scoring formula", t, func() {
		Convey("When the raw score exceeds 100", func() {
			So(scoring.EffectiveScore(90, 0, 100), ShouldEqual, 100)
		})

		Convey("When the raw score is fractional", func() {
			// 8 + 24 - 19.8 = 12.2
			So(scoring.EffectiveScore(60, 99, 10), ShouldEqual, 12)
			// 0.8 + 0.4 - 0 = 1.2; truncation not rounding
			So(scoring.EffectiveScore(1, 0, 1), ShouldEqual, 1)
			// 79.2 + 0 - 0 = 79.2
			So(scoring.EffectiveScore(0, 0, 99), ShouldEqual, 79)
		})

		Convey("When the raw score is below 1", func() {
			So(scoring.EffectiveScore(0, 100, 1), ShouldEqual, 1)
		})

		Convey("Then every input in range yields a score in [1,100]", func() {
			for bat := 0; bat <= 100; bat += 5 {
				for bowl := 0; bowl <= 100; bowl += 5 {
					for shot := 1; shot <= 100; shot += 3 {
						s := scoring.EffectiveScore(bat, bowl, shot)
						So(s >= scoring.MinScore && s <= scoring.MaxScore, ShouldBeTrue)
					}
				}
			}
		})
	})
}

func TestDecide(t *testing.T) {
	Convey("Given the outcome policy", t, func() {
		Convey("When the shot is defensive", func() {
			r := &fixedRoll{draw: 100}
			for _, score := range []int{1, 50, 80, 90, 100} {
				So(scoring.Decide(score, "Off Stump", "Yorker", 0, r), ShouldEqual, model.Dot)
			}
			So(r.calls, ShouldEqual, 0)
		})

		Convey("When the score is 98 or more", func() {
			r := &fixedRoll{draw: 100}
			So(scoring.Decide(98, "Off Stump", "Yorker", 6, r), ShouldEqual, model.Six)
			So(scoring.Decide(100, "Off Stump", "Yorker", 6, r), ShouldEqual, model.Six)
			So(scoring.Decide(100, "Off Stump", "Yorker", 4, r), ShouldEqual, model.Four)
		})

		Convey("When the score is between 85 and 97", func() {
			r := &fixedRoll{draw: 100}
			So(scoring.Decide(85, "Outside Off", "Short", 6, r), ShouldEqual, model.Four)
			So(scoring.Decide(97, "Outside Off", "Short", 6, r), ShouldEqual, model.Four)
		})

		Convey("When the score is between 75 and 84", func() {
			r := &fixedRoll{draw: 100}
			So(scoring.Decide(75, "Middle Stump", "Full", 4, r), ShouldEqual, model.Two)
			So(scoring.Decide(84, "Middle Stump", "Full", 6, r), ShouldEqual, model.Two)
			So(r.calls, ShouldEqual, 0)
		})

		Convey("When a low score meets an attacking delivery", func() {
			score := scoring.EffectiveScore(60, 99, 10)

			Convey("Then a draw of 50 takes the wicket", func() {
				So(scoring.Decide(score, "Off Stump", "Good Length", 4, &fixedRoll{draw: 50}), ShouldEqual, model.Wicket)
			})

			Convey("Then a draw of 5 is a dot ball", func() {
				So(scoring.Decide(score, "Off Stump", "Good Length", 4, &fixedRoll{draw: 5}), ShouldEqual, model.Dot)
			})

			Convey("Then a draw equal to the score survives", func() {
				So(scoring.Decide(score, "Off Stump", "Good Length", 4, &fixedRoll{draw: score}), ShouldEqual, model.Dot)
			})
		})

		Convey("When a low score meets a harmless delivery", func() {
			r := &fixedRoll{draw: 100}
			So(scoring.Decide(10, "Outside Off", "Yorker", 4, r), ShouldEqual, model.Dot)
			So(scoring.Decide(10, "Off Stump", "Bouncer", 6, r), ShouldEqual, model.Dot)
			So(r.calls, ShouldEqual, 0)
		})

		Convey("Then wickets only happen on stump lines, attacking lengths and scores below 75", func() {
			lines := []string{"Off Stump", "Middle Stump", "Leg Stump", "Outside Off", "Outside Leg"}
			lengths := []string{"Yorker", "Full", "Good Length", "Short", "Bouncer"}
			r := &fixedRoll{draw: 100}
			for _, line := range lines {
				for _, length := range lengths {
					for score := 1; score <= 100; score++ {
						out := scoring.Decide(score, line, length, 6, r)
						if out == model.Wicket {
							So(scoring.AttackingDelivery(line, length), ShouldBeTrue)
							So(score, ShouldBeLessThan, 75)
						}
						So(out, ShouldNotEqual, model.One)
						So(out, ShouldNotEqual, model.Three)
					}
				}
			}
		})
	})
}

func TestProject(t *testing.T) {
	Convey("Given a projection", t, func() {
		So(scoring.Project(99, "Off Stump", "Full", 6), ShouldResemble, scoring.Projection{Runs: 6})
		So(scoring.Project(80, "Off Stump", "Full", 6), ShouldResemble, scoring.Projection{Runs: 2})
		So(scoring.Project(40, "Off Stump", "Full", 6), ShouldResemble, scoring.Projection{WicketRisk: true})
		So(scoring.Project(40, "Outside Leg", "Full", 6), ShouldResemble, scoring.Projection{})
		So(scoring.Project(40, "Off Stump", "Full", 0), ShouldResemble, scoring.Projection{})
	})
}

func TestPlay(t *testing.T) {
	Convey("Given a rating source", t, func() {
		src := tableStub{"Off Stump/Hook": 100, "Off Stump/Cut": 10}
		d := model.Delivery{Style: "Fast", Line: "Off Stump", Length: "Yorker", Variation: "Outswing"}

		Convey("When the batsman middles a hook", func() {
			ball, err := scoring.Play(src, 90, 0, d, "Hook", &fixedRoll{draw: 1})
			So(err, ShouldBeNil)
			So(ball.Rating, ShouldEqual, 100)
			So(ball.EffectiveScore, ShouldEqual, 100)
			So(ball.Outcome, ShouldEqual, model.Six)
		})

		Convey("When the rating is missing", func() {
			_, err := scoring.Play(src, 90, 0, d, "Sweep", &fixedRoll{draw: 1})
			So(err, ShouldNotBeNil)
		})
	})
}
