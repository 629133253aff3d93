package scenarios

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/h2cf/core/capacity"
)

const cfTolerance = 1e-9

// RunScenario analyses the scenario and checks every expectation it
// declares.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	in, err := sc.Input()
	require.NoError(t, err)

	rep, err := capacity.NewAnalyzer(nil).Run(in, sc.ToParams())
	exp := sc.Expected
	if exp.Error {
		require.Error(t, err)
		assert.ErrorIs(t, err, capacity.ErrInvalidInput)
		return
	}
	require.NoError(t, err)

	md := rep.Metadata
	if exp.HoursInWindow != nil {
		assert.Equal(t, *exp.HoursInWindow, md.HoursInWindow, "hours in window")
	}
	if exp.HoursForcedOutage != nil {
		assert.Equal(t, *exp.HoursForcedOutage, md.HoursForcedOutage, "forced outage hours")
	}
	if exp.UsedSynthetic != nil {
		assert.Equal(t, *exp.UsedSynthetic, md.UsedSyntheticPrice, "synthetic price")
	}
	if exp.Computed != nil {
		assert.Equal(t, *exp.Computed, rep.Computed, "computed units")
	}
	if exp.Excluded != nil {
		assert.Equal(t, *exp.Excluded, rep.Excluded, "excluded units")
	}
	for _, w := range exp.Warnings {
		assert.True(t, rep.HasWarning(capacity.WarningKind(w)), "warning %s", w)
	}
	for id, ue := range exp.Units {
		res, ok := rep.Result(id)
		if !assert.True(t, ok, "unit %s in report", id) {
			continue
		}
		if ue.Status != "" {
			assert.Equal(t, capacity.Status(ue.Status), res.Status, "unit %s status", id)
		}
		if ue.Undefined {
			assert.False(t, res.RawCF.Valid, "unit %s raw cf", id)
			assert.False(t, res.ConstrainedCF.Valid, "unit %s constrained cf", id)
		}
		if ue.RawCF != nil {
			assert.InDelta(t, *ue.RawCF, res.RawCF.Float64, cfTolerance, "unit %s raw cf", id)
		}
		if ue.ConstrainedCF != nil {
			assert.InDelta(t, *ue.ConstrainedCF, res.ConstrainedCF.Float64, cfTolerance, "unit %s constrained cf", id)
		}
		if res.Status == capacity.StatusComputed {
			assert.LessOrEqual(t, res.ConstrainedCF.Float64, res.RawCF.Float64+cfTolerance, "unit %s constrained above raw", id)
		}
	}
}
