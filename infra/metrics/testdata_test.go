package metrics

import (
	"time"

	"github.com/kilianp07/h2cf/core/capacity"
	"github.com/kilianp07/h2cf/core/model"
)

func sampleReport() *capacity.Report {
	start := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	return &capacity.Report{
		Metadata: capacity.Metadata{
			RunID:             "run-1",
			Year:              2020,
			Month:             3,
			Period:            "2020-03",
			WindowStart:       start,
			WindowEnd:         start.AddDate(0, 1, 0),
			HoursInWindow:     744,
			HoursForcedOutage: 37,
			HoursPriceGated:   300,
		},
		Units: []capacity.UnitResult{
			{Unit: "el1", Status: capacity.StatusComputed, NominalCapacity: model.Float(100), RawCF: model.Float(0.8), ConstrainedCF: model.Float(0.4), RawEnergy: 59520, ConstrainedEnergy: 29760},
			{Unit: "el2", Status: capacity.StatusExcluded},
		},
		Raw:         capacity.Stats{Min: model.Float(0.8), Max: model.Float(0.8), Mean: model.Float(0.8), Count: 1},
		Constrained: capacity.Stats{Min: model.Float(0.4), Max: model.Float(0.4), Mean: model.Float(0.4), Count: 1},
		Computed:    1,
		Excluded:    1,
	}
}
