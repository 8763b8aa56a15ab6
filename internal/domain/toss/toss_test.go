package toss_test

import (
	"errors"
	"testing"

	"github.com/okian/cricksim/internal/domain/toss"
	. "github.com/smartystreets/goconvey/convey"
)

type coin int

func (c coin) IntN(int) int { return int(c) }

func TestFlip(t *testing.T) {
	Convey("Given a coin that lands heads", t, func() {
		Convey("When the human calls heads", func() {
			res, err := toss.Flip(coin(0), "heads", toss.Conditions{})
			So(err, ShouldBeNil)
			So(res.Coin, ShouldEqual, toss.Heads)
			So(res.Call, ShouldEqual, toss.Heads)
			So(res.HumanWon, ShouldBeTrue)
		})

		Convey("When the human calls tails", func() {
			res, err := toss.Flip(coin(0), "Tails", toss.Conditions{})
			So(err, ShouldBeNil)
			So(res.HumanWon, ShouldBeFalse)
		})

		Convey("When the call is neither", func() {
			_, err := toss.Flip(coin(0), "edge", toss.Conditions{})
			So(errors.Is(err, toss.ErrInvalidCall), ShouldBeTrue)
		})
	})

	Convey("Given a coin that lands tails", t, func() {
		res, err := toss.Flip(coin(1), "Tails", toss.Conditions{})
		So(err, ShouldBeNil)
		So(res.Coin, ShouldEqual, toss.Tails)
		So(res.HumanWon, ShouldBeTrue)
	})
}

func TestRecommend(t *testing.T) {
	Convey("Given batting friendly conditions", t, func() {
		c := toss.Conditions{
			Time: "Afternoon Match", Pitch: "Dry Pitch", Ground: "Large Ground",
			Dew: "No Dew", Rain: "No Rain", Humidity: "Normal Humidity", Turn: "Slow Turning Pitch",
		}

		Convey("When the opponent won the toss", func() {
			// bat (65+60+60+60+55+50+60)/7 = 58.571 + 5; bowl 41.428
			rec := toss.Recommend(c, false)
			So(rec.Decision, ShouldEqual, toss.Bat)
			So(rec.BatPct, ShouldEqual, 60.5)
			So(rec.BowlPct, ShouldEqual, 39.5)
		})

		Convey("When the human won the toss", func() {
			rec := toss.Recommend(c, true)
			So(rec.Decision, ShouldEqual, toss.Bat)
			So(rec.BatPct, ShouldEqual, 61.6)
			So(rec.BowlPct, ShouldEqual, 38.4)
		})
	})

	Convey("Given bowling friendly conditions", t, func() {
		c := toss.Conditions{
			Time: "Night Match", Pitch: "Green Pitch", Ground: "Small Ground",
			Dew: "High Dew", Rain: "Rain Affected", Humidity: "High Humidity", Turn: "Fast Pitch",
		}
		rec := toss.Recommend(c, false)
		So(rec.Decision, ShouldEqual, toss.Bowl)
		So(rec.BowlPct, ShouldBeGreaterThan, rec.BatPct)
	})

	Convey("Given balanced conditions", t, func() {
		c := toss.Conditions{Humidity: "Normal Humidity"}

		Convey("Then a tie goes to bowling and so does the toss bonus", func() {
			So(toss.Recommend(c, false).Decision, ShouldEqual, toss.Bowl)
			rec := toss.Recommend(c, true)
			So(rec.Decision, ShouldEqual, toss.Bowl)
			So(rec.BowlPct, ShouldBeGreaterThan, rec.BatPct)
		})
	})

	Convey("Given no recognised conditions", t, func() {
		rec := toss.Recommend(toss.Conditions{}, false)
		So(rec.Decision, ShouldEqual, toss.Bowl)
		So(rec.BatPct, ShouldEqual, 0)
	})

	Convey("Given the condition options", t, func() {
		opts := toss.Options()
		So(opts, ShouldHaveLength, 7)
		for _, values := range opts {
			for _, v := range values {
				So(toss.Recommend(toss.Conditions{Time: v}, false).BatPct+toss.Recommend(toss.Conditions{Time: v}, false).BowlPct,
					ShouldAlmostEqual, 100, 0.11)
			}
		}
	})
}
