package capacity

import (
	"math"

	"github.com/kilianp07/h2cf/core/model"
)

// SyntheticPrice is the diurnal price proxy used when no price data is
// supplied: 40 + 20·sin(2π·i/24) for the i-th hour of the window.
func SyntheticPrice(i int) float64 {
	return 40 + 20*math.Sin(2*math.Pi*float64(i)/24)
}

// PriceGate permits an hour when its price reaches the threshold.
type PriceGate struct {
	Threshold float64
	// Synthetic is set when the gate ran on the diurnal proxy.
	Synthetic bool
	// Missing counts window hours with no price; they are not permitted.
	Missing int
	mask    Mask
}

// NewPriceGate evaluates the gate over the window. A nil series selects the
// synthetic proxy.
func NewPriceGate(w Window, prices *model.PriceSeries, threshold float64) *PriceGate {
	g := &PriceGate{Threshold: threshold, mask: make(Mask, w.Hours())}
	if prices == nil {
		g.Synthetic = true
		for i := range g.mask {
			g.mask[i] = SyntheticPrice(i) >= threshold
		}
		return g
	}
	lookup := prices.Lookup()
	for i, ts := range w.Timestamps {
		p, ok := lookup[ts.UnixNano()]
		if !ok {
			g.Missing++
			continue
		}
		g.mask[i] = p >= threshold
	}
	return g
}

func (g *PriceGate) Name() string { return "price" }

// Mask returns the gate's mask; the same for every unit.
func (g *PriceGate) Mask(model.Unit, Window) Mask {
	return append(Mask(nil), g.mask...)
}

// Gated counts window hours the gate forbids.
func (g *PriceGate) Gated() int { return len(g.mask) - g.mask.Allowed() }
