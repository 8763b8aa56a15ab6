package ratings

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/okian/cricksim/internal/domain/model"
)

// Supported table formats.
const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// rowPrefix counts the key columns (line, length, variation) before ratings.
const rowPrefix = 3

//go:embed data/ratings.yaml
var defaultTable []byte

var (
	defaultOnce sync.Once
	defaultTbl  *Table
	defaultErr  error
)

// Document is the on-disk shape: one table per bowling style.
type Document struct {
	Styles []StyleDoc `yaml:"styles" toml:"styles"`
}

// StyleDoc holds the shot header and rows of one style.
// Each row is line, length, variation followed by one rating per shot.
type StyleDoc struct {
	Name  string   `yaml:"name" toml:"name"`
	Shots []string `yaml:"shots" toml:"shots"`
	Rows  [][]any  `yaml:"rows" toml:"rows"`
}

// Default returns the embedded table.
func Default() (*Table, error) {
	defaultOnce.Do(func() {
		defaultTbl, defaultErr = Parse(defaultTable, FormatYAML)
	})
	return defaultTbl, defaultErr
}

// Load reads a table from path; the extension selects YAML or TOML.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rating table: %w", err)
	}
	return Parse(data, FormatFromPath(path))
}

// FormatFromPath maps a file extension to a table format. YAML is the default.
func FormatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// Parse decodes and validates a table.
func Parse(data []byte, format string) (*Table, error) {
	var doc Document
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidTable, format)
	}
	return Build(doc)
}

// Build validates a decoded document into a Table.
func Build(doc Document) (*Table, error) {
	if len(doc.Styles) == 0 {
		return nil, fmt.Errorf("%w: no styles", ErrInvalidTable)
	}
	t := &Table{by: make(map[string]*style, len(doc.Styles))}
	for _, sd := range doc.Styles {
		s, err := buildStyle(sd)
		if err != nil {
			return nil, err
		}
		if _, dup := t.by[s.name]; dup {
			return nil, fmt.Errorf("%w: duplicate style %q", ErrInvalidTable, s.name)
		}
		t.by[s.name] = s
		t.styles = append(t.styles, s.name)
		for _, k := range s.order {
			t.all = append(t.all, model.Delivery{Style: s.name, Line: k.Line, Length: k.Length, Variation: k.Variation})
		}
	}
	return t, nil
}

func buildStyle(sd StyleDoc) (*style, error) {
	name := strings.TrimSpace(sd.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: style without a name", ErrInvalidTable)
	}
	if len(sd.Shots) == 0 {
		return nil, fmt.Errorf("%w: %s: no shot columns", ErrInvalidTable, name)
	}
	if len(sd.Rows) == 0 {
		return nil, fmt.Errorf("%w: %s: no rows", ErrInvalidTable, name)
	}

	s := &style{
		name:    name,
		shotIdx: make(map[string]int, len(sd.Shots)),
		rows:    make(map[Key][]int, len(sd.Rows)),
	}
	for i, shot := range sd.Shots {
		if !model.KnownShot(shot) {
			return nil, fmt.Errorf("%w: %s: unknown shot column %q", ErrInvalidTable, name, shot)
		}
		if _, dup := s.shotIdx[shot]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate shot column %q", ErrInvalidTable, name, shot)
		}
		s.shotIdx[shot] = i
	}
	s.opts.Shots = append([]string(nil), sd.Shots...)

	seen := struct{ lines, lengths, variations map[string]bool }{
		map[string]bool{}, map[string]bool{}, map[string]bool{},
	}
	for n, raw := range sd.Rows {
		if len(raw) != rowPrefix+len(sd.Shots) {
			return nil, fmt.Errorf("%w: %s row %d: want %d columns, got %d",
				ErrInvalidTable, name, n+1, rowPrefix+len(sd.Shots), len(raw))
		}
		key, err := rowKey(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %w", ErrInvalidTable, name, n+1, err)
		}
		if _, dup := s.rows[key]; dup {
			return nil, fmt.Errorf("%w: %s row %d: duplicate key %v", ErrInvalidTable, name, n+1, key)
		}
		vals := make([]int, len(sd.Shots))
		for i, cell := range raw[rowPrefix:] {
			v, ok := toInt(cell)
			if !ok || v < MinRating || v > MaxRating {
				return nil, fmt.Errorf("%w: %s row %d: %s rating %v not in [%d,%d]",
					ErrInvalidTable, name, n+1, sd.Shots[i], cell, MinRating, MaxRating)
			}
			vals[i] = v
		}
		s.rows[key] = vals
		s.order = append(s.order, key)

		if !seen.lines[key.Line] {
			seen.lines[key.Line] = true
			s.opts.Lines = append(s.opts.Lines, key.Line)
		}
		if !seen.lengths[key.Length] {
			seen.lengths[key.Length] = true
			s.opts.Lengths = append(s.opts.Lengths, key.Length)
		}
		if !seen.variations[key.Variation] {
			seen.variations[key.Variation] = true
			s.opts.Variations = append(s.opts.Variations, key.Variation)
		}
	}
	return s, nil
}

func rowKey(raw []any) (Key, error) {
	var parts [rowPrefix]string
	for i := 0; i < rowPrefix; i++ {
		v, ok := raw[i].(string)
		if !ok || strings.TrimSpace(v) == "" {
			return Key{}, fmt.Errorf("column %d must be a non-empty string", i+1)
		}
		parts[i] = strings.TrimSpace(v)
	}
	return Key{Line: parts[0], Length: parts[1], Variation: parts[2]}, nil
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
