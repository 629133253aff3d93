// Package conversion estimates the hydrogen round-trip potential of a network:
// how much energy the electrolysers absorb, how much the fuel cells give back
// and what the declared efficiencies imply.
package conversion

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/h2cf/core/capacity"
	"github.com/kilianp07/h2cf/core/model"
)

const (
	DefaultElectrolysisCarrier = "electrolysis"
	DefaultFuelCellCarrier     = "fuel cell"
)

// Options selects the two unit groups.
type Options struct {
	Year                int    `json:"year"`
	Month               int    `json:"month"`
	ElectrolysisCarrier string `json:"electrolysis_carrier"`
	FuelCellCarrier     string `json:"fuel_cell_carrier"`
}

// Result holds the conversion metrics for one window. Efficiency based
// values are undefined when no unit of the group declares an efficiency.
type Result struct {
	Period                 string             `json:"period"`
	HoursInWindow          int                `json:"hours_in_window"`
	ElectrolyserUnits      int                `json:"electrolyser_units"`
	FuelCellUnits          int                `json:"fuel_cell_units"`
	EnergyIn               float64            `json:"energy_in_mwh"`
	EnergyOut              float64            `json:"energy_out_mwh"`
	ElectrolyserEfficiency model.NullFloat    `json:"electrolyser_efficiency"`
	FuelCellEfficiency     model.NullFloat    `json:"fuel_cell_efficiency"`
	H2Energy               model.NullFloat    `json:"h2_energy_mwh"`
	PotentialOutput        model.NullFloat    `json:"potential_output_mwh"`
	TheoreticalRoundTrip   model.NullFloat    `json:"theoretical_round_trip"`
	EmpiricalRoundTrip     model.NullFloat    `json:"empirical_round_trip"`
	Warnings               []capacity.Warning `json:"warnings,omitempty"`
}

// Compute derives the round-trip metrics for the month in opts.
func Compute(flows model.FlowSeries, units []model.Unit, opts Options) (*Result, error) {
	if opts.Month < 1 || opts.Month > 12 {
		return nil, &capacity.ValidationError{Field: "month", Err: fmt.Errorf("must be in 1..12, got %d", opts.Month)}
	}
	if opts.ElectrolysisCarrier == "" {
		opts.ElectrolysisCarrier = DefaultElectrolysisCarrier
	}
	if opts.FuelCellCarrier == "" {
		opts.FuelCellCarrier = DefaultFuelCellCarrier
	}
	if err := flows.Validate(); err != nil {
		return nil, &capacity.ValidationError{Field: "flows", Err: err}
	}
	for _, u := range units {
		if err := u.Validate(); err != nil {
			return nil, &capacity.ValidationError{Field: "units", Err: err}
		}
	}

	w := capacity.SelectWindow(flows.Timestamps, opts.Year, time.Month(opts.Month))
	el := model.SelectUnits(units, opts.ElectrolysisCarrier)
	fc := model.SelectUnits(units, opts.FuelCellCarrier)
	res := &Result{
		Period:            w.Period(),
		HoursInWindow:     w.Hours(),
		ElectrolyserUnits: len(el),
		FuelCellUnits:     len(fc),
	}
	var err error
	if res.EnergyIn, err = energy(flows, el, w); err != nil {
		return nil, err
	}
	if res.EnergyOut, err = energy(flows, fc, w); err != nil {
		return nil, err
	}

	res.ElectrolyserEfficiency = meanEfficiency(el)
	res.FuelCellEfficiency = meanEfficiency(fc)
	if !res.ElectrolyserEfficiency.Valid {
		res.warn(fmt.Sprintf("no %s unit declares an efficiency", opts.ElectrolysisCarrier))
	}
	if !res.FuelCellEfficiency.Valid {
		res.warn(fmt.Sprintf("no %s unit declares an efficiency", opts.FuelCellCarrier))
	}
	if res.ElectrolyserEfficiency.Valid {
		res.H2Energy = model.Float(res.EnergyIn * res.ElectrolyserEfficiency.Float64)
	}
	if res.H2Energy.Valid && res.FuelCellEfficiency.Valid {
		res.PotentialOutput = model.Float(res.H2Energy.Float64 * res.FuelCellEfficiency.Float64)
		res.TheoreticalRoundTrip = model.Float(res.ElectrolyserEfficiency.Float64 * res.FuelCellEfficiency.Float64)
	}
	if res.EnergyIn > 0 {
		res.EmpiricalRoundTrip = model.Float(res.EnergyOut / res.EnergyIn)
	}
	return res, nil
}

func (r *Result) warn(msg string) {
	r.Warnings = append(r.Warnings, capacity.Warning{Kind: capacity.WarnMissingEfficiency, Message: msg})
}

func energy(flows model.FlowSeries, units []model.Unit, w capacity.Window) (float64, error) {
	var total float64
	for _, u := range units {
		col, ok := flows.Flows[u.ID]
		if !ok {
			return 0, &capacity.ValidationError{Field: "flows", Err: fmt.Errorf("no flow column for unit %s", u.ID)}
		}
		for _, r := range w.Rows {
			total += math.Abs(col[r])
		}
	}
	return total, nil
}

func meanEfficiency(units []model.Unit) model.NullFloat {
	var vals []float64
	for _, u := range units {
		if u.Efficiency.Valid {
			vals = append(vals, u.Efficiency.Float64)
		}
	}
	if len(vals) == 0 {
		return model.Null()
	}
	return model.Float(stat.Mean(vals, nil))
}
