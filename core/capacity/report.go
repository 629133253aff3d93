package capacity

import (
	"time"

	"github.com/kilianp07/h2cf/core/model"
)

// Status tells whether a unit's capacity factors were computed.
type Status string

const (
	StatusComputed Status = "computed"
	StatusExcluded Status = "excluded"
	// StatusFailed marks an invocation that was rejected; it never appears on
	// a unit of a successful report.
	StatusFailed Status = "failed"
)

// WarningKind classifies non-fatal conditions.
type WarningKind string

const (
	WarnEmptySelection     WarningKind = "empty_selection"
	WarnDegenerateCapacity WarningKind = "degenerate_capacity"
	WarnMissingEfficiency  WarningKind = "missing_efficiency"
	WarnSyntheticPrice     WarningKind = "synthetic_price"
	WarnMissingPrice       WarningKind = "missing_price_hours"
	WarnOutOfRange         WarningKind = "cf_out_of_range"
	WarnNoMatchingUnits    WarningKind = "no_matching_units"
)

// Warning is a non-fatal condition attached to a report.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Unit    string      `json:"unit,omitempty"`
	Message string      `json:"message"`
}

// UnitResult holds the capacity factors of one unit.
type UnitResult struct {
	Unit            string          `json:"unit"`
	Carrier         string          `json:"carrier"`
	NominalCapacity model.NullFloat `json:"nominal_capacity"`
	Status          Status          `json:"status"`
	// RawCF and ConstrainedCF are undefined for excluded units.
	RawCF                  model.NullFloat `json:"raw_cf"`
	ConstrainedCF          model.NullFloat `json:"constrained_cf"`
	RawEnergy              float64         `json:"raw_energy_mwh"`
	ConstrainedEnergy      float64         `json:"constrained_energy_mwh"`
	ActiveHoursRaw         int             `json:"active_hours_raw"`
	ActiveHoursConstrained int             `json:"active_hours_constrained"`
	// OutOfRange is set when a CF falls outside [0,1]. Values are never clamped.
	OutOfRange bool `json:"out_of_range"`
}

// Stats summarises one CF series over the computed units. Min, Max and Mean
// are undefined when Count is zero.
type Stats struct {
	Min   model.NullFloat `json:"min"`
	Max   model.NullFloat `json:"max"`
	Mean  model.NullFloat `json:"mean"`
	Count int             `json:"count"`
}

// Metadata describes the window and the provenance of a run.
type Metadata struct {
	RunID             string    `json:"run_id"`
	Year              int       `json:"year"`
	Month             int       `json:"month"`
	Period            string    `json:"period"`
	WindowStart       time.Time `json:"window_start"`
	WindowEnd         time.Time `json:"window_end"`
	HoursInWindow     int       `json:"hours_in_window"`
	HoursForcedOutage int       `json:"hours_forced_outage"`
	OutageHours       []int     `json:"outage_hours"`
	HoursPriceGated   int       `json:"hours_price_gated"`
	HoursWithoutPrice int       `json:"hours_without_price"`
	// UsedSyntheticPrice marks runs gated on the diurnal proxy instead of
	// real prices.
	UsedSyntheticPrice bool     `json:"used_synthetic_price"`
	EmptyWindow        bool     `json:"empty_window"`
	Rules              []string `json:"rules"`
	Params             Params   `json:"params"`
}

// Report is the output of one analysis run.
type Report struct {
	Metadata    Metadata     `json:"metadata"`
	Units       []UnitResult `json:"units"`
	Raw         Stats        `json:"raw"`
	Constrained Stats        `json:"constrained"`
	Computed    int          `json:"computed"`
	Excluded    int          `json:"excluded"`
	Warnings    []Warning    `json:"warnings,omitempty"`
}

// Result returns the result for the given unit.
func (r *Report) Result(unit string) (UnitResult, bool) {
	for _, u := range r.Units {
		if u.Unit == unit {
			return u, true
		}
	}
	return UnitResult{}, false
}

// ExcludedUnits lists the units left out of the aggregate.
func (r *Report) ExcludedUnits() []string {
	var out []string
	for _, u := range r.Units {
		if u.Status == StatusExcluded {
			out = append(out, u.Unit)
		}
	}
	return out
}

// HasWarning reports whether a warning of the given kind was raised.
func (r *Report) HasWarning(kind WarningKind) bool {
	for _, w := range r.Warnings {
		if w.Kind == kind {
			return true
		}
	}
	return false
}

func (r *Report) warn(kind WarningKind, unit, msg string) {
	r.Warnings = append(r.Warnings, Warning{Kind: kind, Unit: unit, Message: msg})
}
