package capacity

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/h2cf/core/logger"
	"github.com/kilianp07/h2cf/core/model"
)

// Input bundles the data one run reads. Prices may be nil.
type Input struct {
	Flows  model.FlowSeries
	Units  []model.Unit
	Prices *model.PriceSeries
}

// Analyzer computes raw and constrained capacity factors for one month.
// Extra eligibility rules are ANDed with the price gate and the forced outage.
type Analyzer struct {
	log   logger.Logger
	rules []Eligibility
}

// NewAnalyzer returns an Analyzer. A nil logger discards output.
func NewAnalyzer(log logger.Logger, rules ...Eligibility) *Analyzer {
	if log == nil {
		log = logger.Nop{}
	}
	return &Analyzer{log: log, rules: rules}
}

// Run analyses the month named by p with a source seeded from p.Seed. Two
// runs with identical inputs return identical reports apart from RunID.
func (a *Analyzer) Run(in Input, p Params) (*Report, error) {
	return a.RunWithSource(in, p, NewRandSource(p.Seed))
}

// RunWithSource is Run with a caller-owned random source. A nil rng falls
// back to a source seeded from p.Seed.
func (a *Analyzer) RunWithSource(in Input, p Params, rng RandSource) (*Report, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewRandSource(p.Seed)
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.Prices == nil && !p.SyntheticPrice {
		return nil, invalid("prices", "no price series supplied and synthetic prices are disabled")
	}
	units := model.SelectUnits(in.Units, p.Carrier)
	for _, u := range units {
		if _, ok := in.Flows.Flows[u.ID]; !ok {
			return nil, invalid("flows", "no flow column for unit %s", u.ID)
		}
	}

	w := SelectWindow(in.Flows.Timestamps, p.Year, time.Month(p.Month))
	h := w.Hours()
	gate := NewPriceGate(w, in.Prices, p.PriceThreshold)
	outage := NewForcedOutage(w, p.OutageFraction, rng)

	rep := &Report{Metadata: Metadata{
		RunID:              uuid.NewString(),
		Year:               p.Year,
		Month:              p.Month,
		Period:             w.Period(),
		WindowStart:        w.Start,
		WindowEnd:          w.End,
		HoursInWindow:      h,
		HoursForcedOutage:  len(outage.Hours),
		OutageHours:        outage.Hours,
		HoursPriceGated:    gate.Gated(),
		HoursWithoutPrice:  gate.Missing,
		UsedSyntheticPrice: gate.Synthetic,
		EmptyWindow:        w.Empty(),
		Rules:              a.ruleNames(),
		Params:             p,
	}}

	if w.Empty() {
		rep.warn(WarnEmptySelection, "", fmt.Sprintf("no observations in %s", w.Period()))
	}
	if gate.Synthetic {
		rep.warn(WarnSyntheticPrice, "", "price gate evaluated on the synthetic diurnal proxy")
	}
	if gate.Missing > 0 {
		rep.warn(WarnMissingPrice, "", fmt.Sprintf("%d window hours have no price and were not permitted", gate.Missing))
	}
	for _, u := range units {
		if !u.Efficiency.Valid {
			rep.warn(WarnMissingEfficiency, u.ID, fmt.Sprintf("unit %s has no efficiency; it is left undefined", u.ID))
		}
	}
	if len(units) == 0 {
		rep.warn(WarnNoMatchingUnits, "", fmt.Sprintf("no unit carrier contains %q", p.Carrier))
	}

	var raw, constrained *mat.Dense
	if h > 0 && len(units) > 0 {
		raw = mat.NewDense(len(units), h, nil)
		constrained = mat.NewDense(len(units), h, nil)
		rules := append([]Eligibility{gate, outage}, a.rules...)
		for i, u := range units {
			col := in.Flows.Flows[u.ID]
			rawRow := raw.RawRowView(i)
			for j, r := range w.Rows {
				rawRow[j] = math.Abs(col[r])
			}
			masks := make([]Mask, 0, len(rules))
			for _, rule := range rules {
				masks = append(masks, rule.Mask(u, w))
			}
			allowed := Combine(h, masks...)
			constrained.SetRow(i, EnforceTurndown(rawRow, allowed, u.NominalCapacity.Or(0), p.MinTurndown))
		}
	}

	results, sum := Aggregate(units, raw, constrained, w)
	rep.Units = results
	rep.Raw = sum.Raw
	rep.Constrained = sum.Constrained
	rep.Computed = sum.Computed
	rep.Excluded = sum.Excluded
	for _, r := range results {
		if r.Status == StatusExcluded {
			rep.warn(WarnDegenerateCapacity, r.Unit, fmt.Sprintf("unit %s has capacity %s and was excluded", r.Unit, r.NominalCapacity))
		}
		if r.OutOfRange {
			rep.warn(WarnOutOfRange, r.Unit, fmt.Sprintf("unit %s capacity factor outside [0,1]: raw %s constrained %s", r.Unit, r.RawCF, r.ConstrainedCF))
		}
	}

	a.log.Debugw("capacity analysis complete", map[string]any{
		"period":      rep.Metadata.Period,
		"hours":       h,
		"units":       len(units),
		"computed":    rep.Computed,
		"excluded":    rep.Excluded,
		"outage":      rep.Metadata.HoursForcedOutage,
		"price_gated": rep.Metadata.HoursPriceGated,
	})
	for _, wn := range rep.Warnings {
		a.log.Warnf("%s: %s", wn.Kind, wn.Message)
	}
	return rep, nil
}

func (a *Analyzer) ruleNames() []string {
	names := []string{"price", "outage"}
	for _, r := range a.rules {
		names = append(names, r.Name())
	}
	return names
}

func validateInput(in Input) error {
	if err := in.Flows.Validate(); err != nil {
		return invalidErr("flows", err)
	}
	if in.Prices != nil {
		if err := in.Prices.Validate(); err != nil {
			return invalidErr("prices", err)
		}
	}
	seen := make(map[string]struct{}, len(in.Units))
	for _, u := range in.Units {
		if err := u.Validate(); err != nil {
			return invalidErr("units", err)
		}
		if _, dup := seen[u.ID]; dup {
			return invalid("units", "duplicate unit id %s", u.ID)
		}
		seen[u.ID] = struct{}{}
	}
	return nil
}
