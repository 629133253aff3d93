package capacity

import (
	"math"
	"strings"
)

const (
	DefaultCarrier        = "electrolysis"
	DefaultPriceThreshold = 50.0
	DefaultMinTurndown    = 0.4
	DefaultOutageFraction = 0.05
	DefaultSeed           = int64(42)
)

// Params configures one analysis run.
type Params struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	// Carrier is matched as a case-insensitive substring of the unit carrier.
	Carrier string `json:"carrier"`
	// PriceThreshold is the minimum price (per MWh) at which units may run.
	PriceThreshold float64 `json:"price_threshold"`
	// MinTurndown is the minimum stable load as a fraction of nominal capacity.
	MinTurndown float64 `json:"min_turndown"`
	// OutageFraction is the share of window hours in forced outage.
	OutageFraction float64 `json:"outage_fraction"`
	Seed           int64   `json:"seed"`
	// SyntheticPrice allows the diurnal proxy when no price series is given.
	SyntheticPrice bool `json:"synthetic_price"`
}

// DefaultParams returns the parameters used when nothing is configured.
func DefaultParams() Params {
	return Params{
		Carrier:        DefaultCarrier,
		PriceThreshold: DefaultPriceThreshold,
		MinTurndown:    DefaultMinTurndown,
		OutageFraction: DefaultOutageFraction,
		Seed:           DefaultSeed,
		SyntheticPrice: true,
	}
}

// Validate checks that every parameter is inside its domain.
func (p Params) Validate() error {
	if p.Year <= 0 {
		return invalid("year", "must be positive, got %d", p.Year)
	}
	if p.Month < 1 || p.Month > 12 {
		return invalid("month", "must be in 1..12, got %d", p.Month)
	}
	if strings.TrimSpace(p.Carrier) == "" {
		return invalid("carrier", "must not be empty")
	}
	if math.IsNaN(p.PriceThreshold) || math.IsInf(p.PriceThreshold, 0) {
		return invalid("price_threshold", "must be finite")
	}
	if !inUnit(p.MinTurndown) {
		return invalid("min_turndown", "must be in [0,1], got %g", p.MinTurndown)
	}
	if !inUnit(p.OutageFraction) {
		return invalid("outage_fraction", "must be in [0,1], got %g", p.OutageFraction)
	}
	return nil
}

func inUnit(v float64) bool { return v >= 0 && v <= 1 }
