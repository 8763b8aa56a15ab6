package ratings_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/cricksim/internal/domain/model"
	"github.com/okian/cricksim/internal/domain/ratings"
	"github.com/smartystreets/goconvey/convey"
)

const smallYAML = `
styles:
  - name: Fast
    shots: [Cover Drive, Pull, Leave]
    rows:
      - [Off Stump, Yorker, Outswing, 40, 10, 5]
      - [Off Stump, Short, Outswing, 20, 90, 60]
      - [Outside Off, Yorker, Inswing, 70, 30, 80]
  - name: Off Spin
    shots: [Sweep, Defense]
    rows:
      - [Middle Stump, Full, Off Break, 88, 70]
`

const smallTOML = `
[[styles]]
name = "Fast"
shots = ["Cover Drive", "Pull"]
rows = [
  ["Off Stump", "Yorker", "Outswing", 40, 10],
  ["Off Stump", "Short", "Outswing", 20, 90],
]
`

func TestDefaultTable(t *testing.T) {
	convey.Convey("Given the embedded table", t, func() {
		tbl, err := ratings.Default()
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then it covers every style with the full grid", func() {
			convey.So(tbl.Styles(), convey.ShouldResemble, []string{"Fast", "Medium", "Leg Spin", "Off Spin"})
			convey.So(tbl.Deliveries(), convey.ShouldHaveLength, 300)

			opts, err := tbl.Options("Leg Spin")
			convey.So(err, convey.ShouldBeNil)
			convey.So(opts.Shots, convey.ShouldHaveLength, 22)
			convey.So(opts.Lines[0], convey.ShouldEqual, "Off Stump")
			convey.So(opts.Lengths, convey.ShouldResemble, []string{"Yorker", "Full", "Good Length", "Short", "Bouncer"})
			convey.So(opts.Variations, convey.ShouldResemble, []string{"Leg Break", "Googly", "Flipper"})
		})

		convey.Convey("Then every delivery has a rating for every shot", func() {
			for _, d := range tbl.Deliveries() {
				row, err := tbl.Row(d)
				convey.So(err, convey.ShouldBeNil)
				for _, sr := range row {
					convey.So(sr.Rating, convey.ShouldBeBetweenOrEqual, ratings.MinRating, ratings.MaxRating)
				}
			}
		})
	})
}

func TestLookup(t *testing.T) {
	convey.Convey("Given a small table", t, func() {
		tbl, err := ratings.Parse([]byte(smallYAML), ratings.FormatYAML)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When the row and shot exist", func() {
			r, err := tbl.Lookup(model.Delivery{Style: "Fast", Line: "Off Stump", Length: "Short", Variation: "Outswing"}, "Pull")
			convey.So(err, convey.ShouldBeNil)
			convey.So(r, convey.ShouldEqual, 90)
		})

		convey.Convey("When the triple has no row", func() {
			_, err := tbl.Lookup(model.Delivery{Style: "Fast", Line: "Outside Off", Length: "Short", Variation: "Outswing"}, "Pull")
			convey.So(errors.Is(err, ratings.ErrNotFound), convey.ShouldBeTrue)
		})

		convey.Convey("When the shot is not a column for the style", func() {
			_, err := tbl.Lookup(model.Delivery{Style: "Off Spin", Line: "Middle Stump", Length: "Full", Variation: "Off Break"}, "Pull")
			convey.So(errors.Is(err, ratings.ErrNotFound), convey.ShouldBeTrue)
			convey.So(tbl.HasShot("Off Spin", "Pull"), convey.ShouldBeFalse)
		})

		convey.Convey("When the style is unknown", func() {
			_, err := tbl.Lookup(model.Delivery{Style: "Chinaman"}, "Pull")
			convey.So(errors.Is(err, ratings.ErrNotFound), convey.ShouldBeTrue)
			_, err = tbl.Options("Chinaman")
			convey.So(errors.Is(err, ratings.ErrNotFound), convey.ShouldBeTrue)
		})

		convey.Convey("When reading a whole row", func() {
			row, err := tbl.Row(model.Delivery{Style: "Fast", Line: "Outside Off", Length: "Yorker", Variation: "Inswing"})
			convey.So(err, convey.ShouldBeNil)
			convey.So(row, convey.ShouldResemble, []ratings.ShotRating{
				{Shot: "Cover Drive", Rating: 70}, {Shot: "Pull", Rating: 30}, {Shot: "Leave", Rating: 80},
			})
		})
	})
}

func TestRepair(t *testing.T) {
	convey.Convey("Given a small table", t, func() {
		tbl, err := ratings.Parse([]byte(smallYAML), ratings.FormatYAML)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When the delivery is valid", func() {
			d := model.Delivery{Style: "Fast", Line: "Outside Off", Length: "Yorker", Variation: "Inswing"}
			got, fixed := tbl.Repair(d)
			convey.So(got, convey.ShouldResemble, d)
			convey.So(fixed, convey.ShouldBeEmpty)
		})

		convey.Convey("When single fields are invalid", func() {
			got, fixed := tbl.Repair(model.Delivery{Style: "Fast", Line: "Wide", Length: "Short", Variation: "Doosra"})
			convey.So(got, convey.ShouldResemble, model.Delivery{Style: "Fast", Line: "Off Stump", Length: "Short", Variation: "Outswing"})
			convey.So(fixed, convey.ShouldResemble, []string{"line", "variation"})
		})

		convey.Convey("When the style is unknown", func() {
			got, fixed := tbl.Repair(model.Delivery{Style: "Slow Left Arm", Line: "Outside Off", Length: "Yorker", Variation: "Inswing"})
			convey.So(got.Style, convey.ShouldEqual, "Fast")
			convey.So(got.Line, convey.ShouldEqual, "Outside Off")
			convey.So(fixed, convey.ShouldResemble, []string{"style"})
		})

		convey.Convey("When a shot is invalid for the style", func() {
			shot, fixed := tbl.RepairShot("Off Spin", "Hook")
			convey.So(shot, convey.ShouldEqual, "Sweep")
			convey.So(fixed, convey.ShouldBeTrue)

			shot, fixed = tbl.RepairShot("Off Spin", "Defense")
			convey.So(shot, convey.ShouldEqual, "Defense")
			convey.So(fixed, convey.ShouldBeFalse)
		})
	})
}

func TestParseValidation(t *testing.T) {
	convey.Convey("Given malformed tables", t, func() {
		cases := map[string]string{
			"no styles":       `styles: []`,
			"empty style":     "styles:\n  - name: \"\"\n    shots: [Pull]\n    rows:\n      - [a, b, c, 10]\n",
			"unknown shot":    "styles:\n  - name: Fast\n    shots: [Switch Hit]\n    rows:\n      - [a, b, c, 10]\n",
			"duplicate shot":  "styles:\n  - name: Fast\n    shots: [Pull, Pull]\n    rows:\n      - [a, b, c, 10, 10]\n",
			"short row":       "styles:\n  - name: Fast\n    shots: [Pull, Hook]\n    rows:\n      - [a, b, c, 10]\n",
			"rating too high": "styles:\n  - name: Fast\n    shots: [Pull]\n    rows:\n      - [a, b, c, 101]\n",
			"rating zero":     "styles:\n  - name: Fast\n    shots: [Pull]\n    rows:\n      - [a, b, c, 0]\n",
			"text rating":     "styles:\n  - name: Fast\n    shots: [Pull]\n    rows:\n      - [a, b, c, high]\n",
			"fraction":        "styles:\n  - name: Fast\n    shots: [Pull]\n    rows:\n      - [a, b, c, 10.5]\n",
			"duplicate key":   "styles:\n  - name: Fast\n    shots: [Pull]\n    rows:\n      - [a, b, c, 10]\n      - [a, b, c, 20]\n",
			"blank line":      "styles:\n  - name: Fast\n    shots: [Pull]\n    rows:\n      - [\"\", b, c, 10]\n",
			"no rows":         "styles:\n  - name: Fast\n    shots: [Pull]\n    rows: []\n",
			"duplicate style": "styles:\n  - name: Fast\n    shots: [Pull]\n    rows:\n      - [a, b, c, 10]\n  - name: Fast\n    shots: [Pull]\n    rows:\n      - [a, b, c, 10]\n",
			"bad yaml":        "styles: [",
		}
		for name, doc := range cases {
			convey.Convey("When the table has "+name, func() {
				_, err := ratings.Parse([]byte(doc), ratings.FormatYAML)
				convey.So(errors.Is(err, ratings.ErrInvalidTable), convey.ShouldBeTrue)
			})
		}

		convey.Convey("When the format is unknown", func() {
			_, err := ratings.Parse([]byte(smallYAML), "xlsx")
			convey.So(errors.Is(err, ratings.ErrInvalidTable), convey.ShouldBeTrue)
		})
	})
}

func TestLoadFile(t *testing.T) {
	convey.Convey("Given table files on disk", t, func() {
		dir := t.TempDir()

		convey.Convey("When loading TOML", func() {
			path := filepath.Join(dir, "ratings.toml")
			convey.So(os.WriteFile(path, []byte(smallTOML), 0o600), convey.ShouldBeNil)

			tbl, err := ratings.Load(path)
			convey.So(err, convey.ShouldBeNil)
			r, err := tbl.Lookup(model.Delivery{Style: "Fast", Line: "Off Stump", Length: "Short", Variation: "Outswing"}, "Pull")
			convey.So(err, convey.ShouldBeNil)
			convey.So(r, convey.ShouldEqual, 90)
		})

		convey.Convey("When loading YAML", func() {
			path := filepath.Join(dir, "ratings.yml")
			convey.So(os.WriteFile(path, []byte(smallYAML), 0o600), convey.ShouldBeNil)

			tbl, err := ratings.Load(path)
			convey.So(err, convey.ShouldBeNil)
			convey.So(tbl.Deliveries(), convey.ShouldHaveLength, 4)
		})

		convey.Convey("When the file is missing", func() {
			_, err := ratings.Load(filepath.Join(dir, "missing.yaml"))
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
