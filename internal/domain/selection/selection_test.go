package selection_test

import (
	"math/rand/v2"
	"testing"

	"github.com/okian/cricksim/internal/domain/model"
	"github.com/okian/cricksim/internal/domain/ratings"
	"github.com/okian/cricksim/internal/domain/selection"
	. "github.com/smartystreets/goconvey/convey"
)

// scripted returns queued draws, clamped into [0,n).
type scripted struct {
	draws []int
	seen  []int
}

func (s *scripted) IntN(n int) int {
	s.seen = append(s.seen, n)
	if len(s.draws) == 0 {
		return 0
	}
	d := s.draws[0]
	s.draws = s.draws[1:]
	if d >= n {
		d = n - 1
	}
	return d
}

func ranked(n int) []selection.Candidate {
	out := make([]selection.Candidate, n)
	for i := range out {
		out[i] = selection.Candidate{Shot: string(rune('A' + i)), EffectiveScore: i + 1}
	}
	return out
}

func TestParseTier(t *testing.T) {
	Convey("Given tier names", t, func() {
		So(selection.ParseTier("Easy"), ShouldEqual, selection.Easy)
		So(selection.ParseTier(" medium "), ShouldEqual, selection.Medium)
		So(selection.ParseTier("hard"), ShouldEqual, selection.Hard)
		So(selection.ParseTier("insane"), ShouldEqual, selection.Hard)
		So(selection.Easy.WeakFraction(), ShouldEqual, 0.15)
		So(selection.Medium.WeakFraction(), ShouldEqual, 0.08)
		So(selection.Hard.WeakFraction(), ShouldEqual, 0.03)
	})
}

func TestRankShots(t *testing.T) {
	Convey("Given the default table", t, func() {
		tbl, err := ratings.Default()
		So(err, ShouldBeNil)
		d := tbl.Deliveries()[0]

		Convey("When ranking every shot", func() {
			got, err := selection.RankShots(tbl, d, 80, 85)
			So(err, ShouldBeNil)

			Convey("Then all shots are scored in ascending order", func() {
				So(got, ShouldHaveLength, 22)
				for i := 1; i < len(got); i++ {
					So(got[i-1].EffectiveScore, ShouldBeLessThanOrEqualTo, got[i].EffectiveScore)
				}
			})
		})

		Convey("When the delivery is not in the table", func() {
			_, err := selection.RankShots(tbl, model.Delivery{Style: "Fast", Line: "Wide"}, 80, 85)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestPickShot(t *testing.T) {
	Convey("Given a ranking of 22 shots", t, func() {
		list := ranked(22)

		Convey("When the ball is weak", func() {
			r := &scripted{draws: []int{100}}
			got := selection.NewPicker(r, selection.Hard).PickShot(list, true)

			Convey("Then the pick comes from the lowest third", func() {
				So(r.seen, ShouldResemble, []int{7})
				So(got.EffectiveScore, ShouldEqual, 7)
			})
		})

		Convey("When the ball is not weak", func() {
			for _, tier := range []selection.Tier{selection.Easy, selection.Medium, selection.Hard} {
				low := selection.NewPicker(&scripted{draws: []int{0}}, tier).PickShot(list, false)
				high := selection.NewPicker(&scripted{draws: []int{100}}, tier).PickShot(list, false)

				So(low.EffectiveScore, ShouldEqual, 15)
				So(high.EffectiveScore, ShouldEqual, 22)
			}
		})

		Convey("When a tier gets its own band", func() {
			p := selection.NewPicker(&scripted{draws: []int{0}}, selection.Easy,
				selection.WithBands(selection.Bands{selection.Easy: {Num: 1, Den: 2}}))
			So(p.PickShot(list, false).EffectiveScore, ShouldEqual, 12)
		})

		Convey("When an invalid band is supplied", func() {
			p := selection.NewPicker(&scripted{draws: []int{0}}, selection.Easy,
				selection.WithBands(selection.Bands{selection.Easy: {Num: 3, Den: 0}}))
			So(p.PickShot(list, false).EffectiveScore, ShouldEqual, 15)
		})
	})

	Convey("Given tiny rankings", t, func() {
		Convey("When there is a single candidate", func() {
			p := selection.NewPicker(&scripted{}, selection.Hard)
			So(p.PickShot(ranked(1), true).Shot, ShouldEqual, "A")
			So(p.PickShot(ranked(1), false).Shot, ShouldEqual, "A")
		})

		Convey("When there are two candidates", func() {
			p := selection.NewPicker(&scripted{draws: []int{5, 5}}, selection.Hard)
			So(p.PickShot(ranked(2), true).Shot, ShouldEqual, "A")
			So(p.PickShot(ranked(2), false).Shot, ShouldEqual, "B")
		})

		Convey("When three candidates face a weak ball", func() {
			r := &scripted{draws: []int{5}}
			got := selection.NewPicker(r, selection.Hard).PickShot(ranked(3), true)
			So(r.seen, ShouldResemble, []int{1})
			So(got.Shot, ShouldEqual, "A")
		})

		Convey("When there are none", func() {
			p := selection.NewPicker(&scripted{}, selection.Hard)
			So(p.PickShot(nil, false), ShouldResemble, selection.Candidate{})
		})
	})
}

func TestPickDelivery(t *testing.T) {
	Convey("Given every delivery of the default table", t, func() {
		tbl, err := ratings.Default()
		So(err, ShouldBeNil)
		all := tbl.Deliveries()

		r := &scripted{draws: []int{299}}
		got := selection.NewPicker(r, selection.Medium).PickDelivery(all)

		So(r.seen, ShouldResemble, []int{300})
		So(got, ShouldResemble, all[299])
		So(got.Style, ShouldEqual, "Off Spin")
	})
}

func TestWeakSchedule(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		rng := rand.New(rand.NewPCG(7, 0))

		Convey("When two overs are played on easy", func() {
			got := selection.WeakSchedule(rng, 12, selection.Easy)
			So(got, ShouldHaveLength, 1)
			So(got[0], ShouldBeBetweenOrEqual, 0, 11)
		})

		Convey("When twenty overs are played on each tier", func() {
			So(selection.WeakSchedule(rng, 120, selection.Easy), ShouldHaveLength, 18)
			So(selection.WeakSchedule(rng, 120, selection.Medium), ShouldHaveLength, 9)
			So(selection.WeakSchedule(rng, 120, selection.Hard), ShouldHaveLength, 3)
		})

		Convey("Then indices are unique, sorted and in range", func() {
			for total := 1; total <= 60; total++ {
				got := selection.WeakSchedule(rng, total, selection.Easy)
				So(len(got), ShouldBeGreaterThanOrEqualTo, 1)
				So(len(got), ShouldBeLessThanOrEqualTo, total)
				for i, b := range got {
					So(b, ShouldBeGreaterThanOrEqualTo, 0)
					So(b, ShouldBeLessThan, total)
					if i > 0 {
						So(b, ShouldBeGreaterThan, got[i-1])
					}
					So(selection.IsWeak(got, b), ShouldBeTrue)
				}
			}
		})

		Convey("When there are no balls", func() {
			So(selection.WeakSchedule(rng, 0, selection.Easy), ShouldBeEmpty)
		})

		Convey("When the same seed is reused", func() {
			a := selection.WeakSchedule(rand.New(rand.NewPCG(1, 2)), 120, selection.Easy)
			b := selection.WeakSchedule(rand.New(rand.NewPCG(1, 2)), 120, selection.Easy)
			So(a, ShouldResemble, b)
		})

		So(selection.IsWeak([]int{2, 5}, 3), ShouldBeFalse)
	})
}
