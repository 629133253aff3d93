package model

import (
	"fmt"
	"math"
	"strings"
)

// Unit holds the static attributes of an energy-conversion unit (a link in
// the network model) such as an electrolyser or a fuel cell.
type Unit struct {
	ID      string `json:"id"`
	Carrier string `json:"carrier"`
	// NominalCapacity is the optimised nominal power in MW. Absent when the
	// model did not report one.
	NominalCapacity NullFloat `json:"nominal_capacity"`
	// Efficiency is the conversion efficiency in [0,1]. Absent is not zero.
	Efficiency NullFloat `json:"efficiency"`
}

// Validate checks that the unit attributes are in domain. A missing capacity
// is not an error here; it is handled as a degenerate unit downstream.
func (u Unit) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("unit id is required")
	}
	if u.NominalCapacity.Valid {
		c := u.NominalCapacity.Float64
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("unit %s: nominal capacity must be finite", u.ID)
		}
		if c < 0 {
			return fmt.Errorf("unit %s: nominal capacity must be >= 0, got %g", u.ID, c)
		}
	}
	if u.Efficiency.Valid {
		e := u.Efficiency.Float64
		if math.IsNaN(e) || e < 0 || e > 1 {
			return fmt.Errorf("unit %s: efficiency must be in [0,1], got %g", u.ID, e)
		}
	}
	return nil
}

// MatchesCarrier reports whether the unit's carrier contains substr, ignoring
// case. Units without a carrier never match.
func (u Unit) MatchesCarrier(substr string) bool {
	if u.Carrier == "" {
		return false
	}
	return strings.Contains(strings.ToLower(u.Carrier), strings.ToLower(substr))
}

// HasCapacity reports whether the unit declares a strictly positive capacity.
func (u Unit) HasCapacity() bool {
	return u.NominalCapacity.Valid && u.NominalCapacity.Float64 > 0
}

// SelectUnits returns the units whose carrier matches substr, in input order.
func SelectUnits(units []Unit, substr string) []Unit {
	var out []Unit
	for _, u := range units {
		if u.MatchesCarrier(substr) {
			out = append(out, u)
		}
	}
	return out
}
