// Package scenarios runs declarative capacity-factor scenarios described in
// YAML against the analyzer.
package scenarios

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/h2cf/core/capacity"
	"github.com/kilianp07/h2cf/core/model"
)

// UnitDef declares one unit. A nil capacity or efficiency is absent.
type UnitDef struct {
	ID         string   `yaml:"id"`
	Carrier    string   `yaml:"carrier"`
	Capacity   *float64 `yaml:"capacity"`
	Efficiency *float64 `yaml:"efficiency"`
}

func (u UnitDef) ToModel() model.Unit {
	out := model.Unit{ID: u.ID, Carrier: u.Carrier}
	if u.Capacity != nil {
		out.NominalCapacity = model.Float(*u.Capacity)
	}
	if u.Efficiency != nil {
		out.Efficiency = model.Float(*u.Efficiency)
	}
	return out
}

// Profile is an hourly pattern repeated over the scenario length.
type Profile []float64

func (p Profile) expand(n int) []float64 {
	out := make([]float64, n)
	if len(p) == 0 {
		return out
	}
	for i := range out {
		out[i] = p[i%len(p)]
	}
	return out
}

// ParamsDef overrides the default parameters.
type ParamsDef struct {
	Carrier        *string  `yaml:"carrier"`
	PriceThreshold *float64 `yaml:"price_threshold"`
	MinTurndown    *float64 `yaml:"min_turndown"`
	OutageFraction *float64 `yaml:"outage_fraction"`
	Seed           *int64   `yaml:"seed"`
	SyntheticPrice *bool    `yaml:"synthetic_price"`
}

// UnitExpectation is checked against the unit result. Nil CFs are not
// checked unless Undefined is set.
type UnitExpectation struct {
	Status        string   `yaml:"status"`
	RawCF         *float64 `yaml:"raw_cf"`
	ConstrainedCF *float64 `yaml:"constrained_cf"`
	Undefined     bool     `yaml:"undefined"`
}

type Expected struct {
	Error             bool                       `yaml:"error"`
	HoursInWindow     *int                       `yaml:"hours_in_window"`
	HoursForcedOutage *int                       `yaml:"hours_forced_outage"`
	UsedSynthetic     *bool                      `yaml:"used_synthetic_price"`
	Computed          *int                       `yaml:"computed"`
	Excluded          *int                       `yaml:"excluded"`
	Warnings          []string                   `yaml:"warnings"`
	Units             map[string]UnitExpectation `yaml:"units"`
}

type Scenario struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description,omitempty"`
	Year        int                `yaml:"year"`
	Month       int                `yaml:"month"`
	Start       string             `yaml:"start,omitempty"`
	Hours       int                `yaml:"hours"`
	Units       []UnitDef          `yaml:"units"`
	Flows       map[string]Profile `yaml:"flows"`
	Prices      Profile            `yaml:"prices,omitempty"`
	Params      ParamsDef          `yaml:"params"`
	Expected    Expected           `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("%s: scenario has no name", path)
	}
	return &sc, nil
}

// Input builds the analyzer input. Timestamps start at Start (RFC3339) or
// at the first hour of the scenario month.
func (s *Scenario) Input() (capacity.Input, error) {
	start := time.Date(s.Year, time.Month(s.Month), 1, 0, 0, 0, 0, time.UTC)
	if s.Start != "" {
		t, err := time.Parse(time.RFC3339, s.Start)
		if err != nil {
			return capacity.Input{}, fmt.Errorf("start: %w", err)
		}
		start = t
	}
	ts := make([]time.Time, s.Hours)
	for i := range ts {
		ts[i] = start.Add(time.Duration(i) * time.Hour)
	}
	in := capacity.Input{Flows: model.FlowSeries{Timestamps: ts, Flows: make(map[string][]float64, len(s.Flows))}}
	for id, p := range s.Flows {
		in.Flows.Flows[id] = p.expand(s.Hours)
	}
	for _, u := range s.Units {
		in.Units = append(in.Units, u.ToModel())
	}
	if len(s.Prices) > 0 {
		in.Prices = &model.PriceSeries{Timestamps: ts, Prices: s.Prices.expand(s.Hours)}
	}
	return in, nil
}

// ToParams applies the overrides on top of the defaults.
func (s *Scenario) ToParams() capacity.Params {
	p := capacity.DefaultParams()
	p.Year, p.Month = s.Year, s.Month
	d := s.Params
	if d.Carrier != nil {
		p.Carrier = *d.Carrier
	}
	if d.PriceThreshold != nil {
		p.PriceThreshold = *d.PriceThreshold
	}
	if d.MinTurndown != nil {
		p.MinTurndown = *d.MinTurndown
	}
	if d.OutageFraction != nil {
		p.OutageFraction = *d.OutageFraction
	}
	if d.Seed != nil {
		p.Seed = *d.Seed
	}
	if d.SyntheticPrice != nil {
		p.SyntheticPrice = *d.SyntheticPrice
	}
	return p
}
