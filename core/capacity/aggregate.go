package capacity

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/h2cf/core/model"
)

// Summary carries the cross-unit reduction.
type Summary struct {
	Raw         Stats
	Constrained Stats
	Computed    int
	Excluded    int
}

// Aggregate reduces the unit×hour dispatch matrices to capacity factors.
// Row i of raw and constrained belongs to units[i]. A nil matrix stands for
// an empty window. Units with zero or missing capacity are excluded from the
// statistics and their CFs stay undefined.
func Aggregate(units []model.Unit, raw, constrained *mat.Dense, w Window) ([]UnitResult, Summary) {
	results := make([]UnitResult, len(units))
	var rawCFs, consCFs []float64
	var sum Summary
	hours := w.Divisor()
	for i, u := range units {
		rawRow := row(raw, i)
		consRow := row(constrained, i)
		res := UnitResult{
			Unit:                   u.ID,
			Carrier:                u.Carrier,
			NominalCapacity:        u.NominalCapacity,
			RawEnergy:              floats.Sum(rawRow),
			ConstrainedEnergy:      floats.Sum(consRow),
			ActiveHoursRaw:         active(rawRow),
			ActiveHoursConstrained: active(consRow),
		}
		if !u.HasCapacity() {
			res.Status = StatusExcluded
			sum.Excluded++
			results[i] = res
			continue
		}
		denom := u.NominalCapacity.Float64 * hours
		rcf := res.RawEnergy / denom
		ccf := res.ConstrainedEnergy / denom
		res.Status = StatusComputed
		res.RawCF = model.Float(rcf)
		res.ConstrainedCF = model.Float(ccf)
		res.OutOfRange = !inUnit(rcf) || !inUnit(ccf)
		rawCFs = append(rawCFs, rcf)
		consCFs = append(consCFs, ccf)
		sum.Computed++
		results[i] = res
	}
	sum.Raw = summarize(rawCFs)
	sum.Constrained = summarize(consCFs)
	return results, sum
}

func summarize(vals []float64) Stats {
	if len(vals) == 0 {
		return Stats{}
	}
	return Stats{
		Min:   model.Float(floats.Min(vals)),
		Max:   model.Float(floats.Max(vals)),
		Mean:  model.Float(stat.Mean(vals, nil)),
		Count: len(vals),
	}
}

func row(m *mat.Dense, i int) []float64 {
	if m == nil {
		return nil
	}
	return m.RawRowView(i)
}

func active(vals []float64) int {
	n := 0
	for _, v := range vals {
		if v > 0 {
			n++
		}
	}
	return n
}
