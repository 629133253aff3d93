// Package dataset reads the CSV exports of a solved network model: the
// per-link flow table, the static link attributes and an optional price
// table. The first column of every time-indexed table is the snapshot.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/h2cf/core/model"
)

// ErrMalformed is wrapped by every parse failure.
var ErrMalformed = errors.New("malformed dataset")

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// ParseTimestamp parses a snapshot label. Labels without a zone are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable timestamp %q", ErrMalformed, s)
}

func malformed(path string, line int, format string, args ...any) error {
	return fmt.Errorf("%w: %s line %d: %s", ErrMalformed, path, line, fmt.Sprintf(format, args...))
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	return cr
}

// parseFloat returns an absent value for empty cells.
func parseFloat(s string) (model.NullFloat, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return model.Null(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return model.Null(), err
	}
	return model.Float(v), nil
}

// table reads a time-indexed table into its header and columns.
func table(path string, r io.Reader) ([]string, []time.Time, [][]float64, error) {
	cr := newReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, nil, fmt.Errorf("%w: %s is empty", ErrMalformed, path)
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	if len(header) < 2 {
		return nil, nil, nil, malformed(path, 1, "need a snapshot column and at least one value column")
	}
	cols := header[1:]
	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if _, dup := seen[c]; dup {
			return nil, nil, nil, malformed(path, 1, "duplicate column %q", c)
		}
		seen[c] = struct{}{}
	}
	var ts []time.Time
	values := make([][]float64, len(cols))
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
		}
		t, err := ParseTimestamp(rec[0])
		if err != nil {
			return nil, nil, nil, malformed(path, line, "%v", err)
		}
		ts = append(ts, t)
		for i, cell := range rec[1:] {
			v, err := parseFloat(cell)
			if err != nil {
				return nil, nil, nil, malformed(path, line, "column %s: %v", cols[i], err)
			}
			if !v.Valid {
				return nil, nil, nil, malformed(path, line, "column %s: empty value", cols[i])
			}
			values[i] = append(values[i], v.Float64)
		}
	}
	return cols, ts, values, nil
}

// ReadFlows parses a flow table with header snapshot,<unit>...
func ReadFlows(path string, r io.Reader) (model.FlowSeries, error) {
	cols, ts, values, err := table(path, r)
	if err != nil {
		return model.FlowSeries{}, err
	}
	fs := model.FlowSeries{Timestamps: ts, Flows: make(map[string][]float64, len(cols))}
	for i, c := range cols {
		fs.Flows[c] = values[i]
	}
	return fs, nil
}

// ReadPrices parses a price table. With several value columns, column
// selects one; an empty column is only accepted for single-column tables.
func ReadPrices(path string, r io.Reader, column string) (*model.PriceSeries, error) {
	cols, ts, values, err := table(path, r)
	if err != nil {
		return nil, err
	}
	idx := -1
	switch {
	case column != "":
		for i, c := range cols {
			if c == column {
				idx = i
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s has no price column %q", ErrMalformed, path, column)
		}
	case len(cols) == 1:
		idx = 0
	default:
		return nil, fmt.Errorf("%w: %s has %d price columns, choose one with price_column", ErrMalformed, path, len(cols))
	}
	return &model.PriceSeries{Timestamps: ts, Prices: values[idx]}, nil
}

var (
	idColumns       = []string{"name", "link", "id", "unit"}
	capacityColumns = []string{"p_nom_opt", "p_nom"}
)

// ReadUnits parses the static link attributes. The id column is name, Link,
// id or unit (or an unnamed first column); capacity is p_nom_opt, falling
// back to p_nom. Empty cells are absent values.
func ReadUnits(path string, r io.Reader) ([]model.Unit, error) {
	cr := newReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: %s is empty", ErrMalformed, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(h))] = i
	}
	idCol := lookup(pos, idColumns)
	if idCol < 0 && strings.TrimSpace(header[0]) == "" {
		idCol = 0
	}
	if idCol < 0 {
		return nil, malformed(path, 1, "no unit id column (name, Link, id or unit)")
	}
	carrierCol, ok := pos["carrier"]
	if !ok {
		return nil, malformed(path, 1, "no carrier column")
	}
	capCol := lookup(pos, capacityColumns)
	if capCol < 0 {
		return nil, malformed(path, 1, "no p_nom_opt or p_nom column")
	}
	effCol, hasEff := pos["efficiency"]

	var units []model.Unit
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
		}
		u := model.Unit{ID: strings.TrimSpace(rec[idCol]), Carrier: strings.TrimSpace(rec[carrierCol])}
		if u.ID == "" {
			return nil, malformed(path, line, "empty unit id")
		}
		if u.NominalCapacity, err = parseFloat(rec[capCol]); err != nil {
			return nil, malformed(path, line, "capacity: %v", err)
		}
		if hasEff {
			if u.Efficiency, err = parseFloat(rec[effCol]); err != nil {
				return nil, malformed(path, line, "efficiency: %v", err)
			}
		}
		units = append(units, u)
	}
	return units, nil
}

func lookup(pos map[string]int, names []string) int {
	for _, n := range names {
		if i, ok := pos[n]; ok {
			return i
		}
	}
	return -1
}

// Files names the tables of one dataset. Prices is optional.
type Files struct {
	Flows       string
	Units       string
	Prices      string
	PriceColumn string
}

// Dataset is the parsed content of Files.
type Dataset struct {
	Flows  model.FlowSeries
	Units  []model.Unit
	Prices *model.PriceSeries
}

// Load opens and parses every configured file.
func Load(f Files) (*Dataset, error) {
	ds := &Dataset{}
	if err := withFile(f.Flows, func(r io.Reader) error {
		var err error
		ds.Flows, err = ReadFlows(f.Flows, r)
		return err
	}); err != nil {
		return nil, err
	}
	if err := withFile(f.Units, func(r io.Reader) error {
		var err error
		ds.Units, err = ReadUnits(f.Units, r)
		return err
	}); err != nil {
		return nil, err
	}
	if f.Prices != "" {
		if err := withFile(f.Prices, func(r io.Reader) error {
			var err error
			ds.Prices, err = ReadPrices(f.Prices, r, f.PriceColumn)
			return err
		}); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func withFile(path string, fn func(io.Reader) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()
	return fn(file)
}
