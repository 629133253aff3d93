package capacity

import (
	"fmt"
	"time"

	"github.com/kilianp07/h2cf/core/model"
)

// MaintenanceWindow takes a unit offline over [Start, End). An empty Unit
// applies the window to every unit.
type MaintenanceWindow struct {
	Unit  string    `json:"unit"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate checks that the window is not inverted.
func (m MaintenanceWindow) Validate() error {
	if m.Start.IsZero() || m.End.IsZero() {
		return fmt.Errorf("maintenance window needs start and end")
	}
	if !m.End.After(m.Start) {
		return fmt.Errorf("maintenance window end %s not after start %s", m.End.Format(time.RFC3339), m.Start.Format(time.RFC3339))
	}
	return nil
}

func (m MaintenanceWindow) covers(unit string, ts time.Time) bool {
	if m.Unit != "" && m.Unit != unit {
		return false
	}
	return !ts.Before(m.Start) && ts.Before(m.End)
}

// Maintenance is an eligibility rule built from planned outages.
type Maintenance struct {
	Windows []MaintenanceWindow
}

func (Maintenance) Name() string { return "maintenance" }

// Mask forbids the hours covered by any window that applies to u.
func (m Maintenance) Mask(u model.Unit, w Window) Mask {
	mask := NewMask(w.Hours(), true)
	for i, ts := range w.Timestamps {
		for _, mw := range m.Windows {
			if mw.covers(u.ID, ts) {
				mask[i] = false
				break
			}
		}
	}
	return mask
}
