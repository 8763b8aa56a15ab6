// Package ratings holds the static shot rating table keyed by bowling style,
// line, length and variation. Tables are validated at load and immutable after.
package ratings

import (
	"fmt"

	"github.com/okian/cricksim/internal/domain/model"
)

// Rating bounds for a table cell.
const (
	MinRating = 1
	MaxRating = 100
)

// Key identifies a row within one bowling style.
type Key struct {
	Line      string
	Length    string
	Variation string
}

// ShotRating is one column of a row.
type ShotRating struct {
	Shot   string `json:"shot"`
	Rating int    `json:"rating"`
}

// Options is the enumeration for one style, in first-seen order.
type Options struct {
	Shots      []string `json:"shots"`
	Lines      []string `json:"lines"`
	Lengths    []string `json:"lengths"`
	Variations []string `json:"variations"`
}

type style struct {
	name    string
	opts    Options
	shotIdx map[string]int
	rows    map[Key][]int
	order   []Key
}

// Table is a validated rating table. Safe for concurrent reads.
type Table struct {
	styles []string
	by     map[string]*style
	all    []model.Delivery
}

// Styles lists bowling styles in table order.
func (t *Table) Styles() []string {
	return append([]string(nil), t.styles...)
}

// Options returns the enumeration for a style.
func (t *Table) Options(styleName string) (Options, error) {
	s, ok := t.by[styleName]
	if !ok {
		return Options{}, fmt.Errorf("%w: style %q", ErrNotFound, styleName)
	}
	return Options{
		Shots:      append([]string(nil), s.opts.Shots...),
		Lines:      append([]string(nil), s.opts.Lines...),
		Lengths:    append([]string(nil), s.opts.Lengths...),
		Variations: append([]string(nil), s.opts.Variations...),
	}, nil
}

// Deliveries returns every (style, line, length, variation) row of every style.
func (t *Table) Deliveries() []model.Delivery {
	return append([]model.Delivery(nil), t.all...)
}

// Lookup returns the rating of shot against delivery d.
func (t *Table) Lookup(d model.Delivery, shot string) (int, error) {
	s, row, err := t.row(d)
	if err != nil {
		return 0, err
	}
	i, ok := s.shotIdx[shot]
	if !ok {
		return 0, fmt.Errorf("%w: shot %q for %s", ErrNotFound, shot, d.Style)
	}
	return row[i], nil
}

// Row returns every shot rating for delivery d in column order.
func (t *Table) Row(d model.Delivery) ([]ShotRating, error) {
	s, row, err := t.row(d)
	if err != nil {
		return nil, err
	}
	out := make([]ShotRating, len(row))
	for i, r := range row {
		out[i] = ShotRating{Shot: s.opts.Shots[i], Rating: r}
	}
	return out, nil
}

func (t *Table) row(d model.Delivery) (*style, []int, error) {
	s, ok := t.by[d.Style]
	if !ok {
		return nil, nil, fmt.Errorf("%w: style %q", ErrNotFound, d.Style)
	}
	row, ok := s.rows[Key{Line: d.Line, Length: d.Length, Variation: d.Variation}]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s (%s, %s, %s)", ErrNotFound, d.Style, d.Line, d.Length, d.Variation)
	}
	return s, row, nil
}

// HasShot reports whether shot is a column of the style.
func (t *Table) HasShot(styleName, shot string) bool {
	s, ok := t.by[styleName]
	if !ok {
		return false
	}
	_, ok = s.shotIdx[shot]
	return ok
}

// Repair substitutes the first enumerated value for every field of d that is
// not valid for its style. Unknown styles fall back to the first style first.
// The returned slice names the repaired fields.
func (t *Table) Repair(d model.Delivery) (model.Delivery, []string) {
	var fixed []string
	s, ok := t.by[d.Style]
	if !ok {
		s = t.by[t.styles[0]]
		d.Style = s.name
		fixed = append(fixed, "style")
	}
	if !contains(s.opts.Lines, d.Line) {
		d.Line = s.opts.Lines[0]
		fixed = append(fixed, "line")
	}
	if !contains(s.opts.Lengths, d.Length) {
		d.Length = s.opts.Lengths[0]
		fixed = append(fixed, "length")
	}
	if !contains(s.opts.Variations, d.Variation) {
		d.Variation = s.opts.Variations[0]
		fixed = append(fixed, "variation")
	}
	return d, fixed
}

// RepairShot returns shot if valid for the style, otherwise its first shot.
func (t *Table) RepairShot(styleName, shot string) (string, bool) {
	s, ok := t.by[styleName]
	if !ok {
		s = t.by[t.styles[0]]
	}
	if _, ok := s.shotIdx[shot]; ok {
		return shot, false
	}
	return s.opts.Shots[0], true
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
