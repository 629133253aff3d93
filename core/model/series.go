package model

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// FlowSeries is an hourly table of signed power flow per unit.
type FlowSeries struct {
	Timestamps []time.Time
	// Flows maps a unit id to one value per timestamp.
	Flows map[string][]float64
}

// Len returns the number of rows.
func (f FlowSeries) Len() int { return len(f.Timestamps) }

// Columns returns the unit ids sorted alphabetically.
func (f FlowSeries) Columns() []string {
	cols := make([]string, 0, len(f.Flows))
	for id := range f.Flows {
		cols = append(cols, id)
	}
	sort.Strings(cols)
	return cols
}

// Validate checks timestamp ordering, column lengths and that every value is
// finite.
func (f FlowSeries) Validate() error {
	if err := checkIndex(f.Timestamps); err != nil {
		return err
	}
	for id, vals := range f.Flows {
		if len(vals) != len(f.Timestamps) {
			return fmt.Errorf("column %s has %d values for %d timestamps", id, len(vals), len(f.Timestamps))
		}
		for i, v := range vals {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("column %s: non-finite flow at %s", id, f.Timestamps[i].Format(time.RFC3339))
			}
		}
	}
	return nil
}

// PriceSeries is an hourly price signal in currency per MWh.
type PriceSeries struct {
	Timestamps []time.Time
	Prices     []float64
}

// Validate checks ordering and that timestamps and prices line up.
func (p PriceSeries) Validate() error {
	if err := checkIndex(p.Timestamps); err != nil {
		return err
	}
	if len(p.Prices) != len(p.Timestamps) {
		return fmt.Errorf("price series has %d values for %d timestamps", len(p.Prices), len(p.Timestamps))
	}
	for i, v := range p.Prices {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite price at %s", p.Timestamps[i].Format(time.RFC3339))
		}
	}
	return nil
}

// Lookup indexes prices by timestamp.
func (p PriceSeries) Lookup() map[int64]float64 {
	m := make(map[int64]float64, len(p.Timestamps))
	for i, ts := range p.Timestamps {
		m[ts.UnixNano()] = p.Prices[i]
	}
	return m
}

func checkIndex(ts []time.Time) error {
	for i := 1; i < len(ts); i++ {
		if !ts[i].After(ts[i-1]) {
			if ts[i].Equal(ts[i-1]) {
				return fmt.Errorf("duplicate timestamp %s", ts[i].Format(time.RFC3339))
			}
			return fmt.Errorf("timestamps not increasing at %s", ts[i].Format(time.RFC3339))
		}
	}
	return nil
}
