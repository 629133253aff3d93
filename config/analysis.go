package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/h2cf/core/capacity"
)

// AnalysisConfig holds the defaults for capacity-factor runs. Year and Month
// may be left empty and supplied on the command line instead.
type AnalysisConfig struct {
	Year           int     `json:"year"`
	Month          int     `json:"month"`
	Months         []int   `json:"months"`
	Carrier        string  `json:"carrier"`
	PriceThreshold float64 `json:"price_threshold"`
	MinTurndown    float64 `json:"min_turndown"`
	OutageFraction float64 `json:"outage_fraction"`
	Seed           int64   `json:"seed"`
	// SyntheticPrice enables the diurnal price proxy when no price file is given.
	SyntheticPrice bool                `json:"synthetic_price"`
	Maintenance    []MaintenanceConfig `json:"maintenance"`
}

// MaintenanceConfig describes a planned outage. Times are RFC3339.
type MaintenanceConfig struct {
	Unit  string `json:"unit"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// DefaultAnalysis returns the model defaults.
func DefaultAnalysis() AnalysisConfig {
	p := capacity.DefaultParams()
	return AnalysisConfig{
		Carrier:        p.Carrier,
		PriceThreshold: p.PriceThreshold,
		MinTurndown:    p.MinTurndown,
		OutageFraction: p.OutageFraction,
		Seed:           p.Seed,
		SyntheticPrice: p.SyntheticPrice,
	}
}

// SetDefaults fills the carrier when it was left empty.
func (c *AnalysisConfig) SetDefaults() {
	if c.Carrier == "" {
		c.Carrier = capacity.DefaultCarrier
	}
}

// Validate checks parameter domains. Year and month are checked per run.
func (c AnalysisConfig) Validate() error {
	p := c.Params(2000, 1)
	if err := p.Validate(); err != nil {
		return err
	}
	if c.Month != 0 && (c.Month < 1 || c.Month > 12) {
		return fmt.Errorf("month must be in 1..12, got %d", c.Month)
	}
	for _, m := range c.Months {
		if m < 1 || m > 12 {
			return fmt.Errorf("months: %d outside 1..12", m)
		}
	}
	_, err := c.MaintenanceWindows()
	return err
}

// Params returns the run parameters for one month.
func (c AnalysisConfig) Params(year, month int) capacity.Params {
	return capacity.Params{
		Year:           year,
		Month:          month,
		Carrier:        c.Carrier,
		PriceThreshold: c.PriceThreshold,
		MinTurndown:    c.MinTurndown,
		OutageFraction: c.OutageFraction,
		Seed:           c.Seed,
		SyntheticPrice: c.SyntheticPrice,
	}
}

// SweepMonths returns the months a sweep covers, all twelve by default.
func (c AnalysisConfig) SweepMonths() []int {
	if len(c.Months) > 0 {
		return c.Months
	}
	return []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
}

// MaintenanceWindows parses the configured maintenance windows.
func (c AnalysisConfig) MaintenanceWindows() ([]capacity.MaintenanceWindow, error) {
	out := make([]capacity.MaintenanceWindow, 0, len(c.Maintenance))
	for i, m := range c.Maintenance {
		start, err := time.Parse(time.RFC3339, m.Start)
		if err != nil {
			return nil, fmt.Errorf("maintenance[%d].start: %w", i, err)
		}
		end, err := time.Parse(time.RFC3339, m.End)
		if err != nil {
			return nil, fmt.Errorf("maintenance[%d].end: %w", i, err)
		}
		w := capacity.MaintenanceWindow{Unit: m.Unit, Start: start, End: end}
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("maintenance[%d]: %w", i, err)
		}
		out = append(out, w)
	}
	return out, nil
}
