package capacity

import "github.com/kilianp07/h2cf/core/model"

// Mask holds one flag per window hour; true means the unit may run.
type Mask []bool

// NewMask returns a mask of h hours all set to v.
func NewMask(h int, v bool) Mask {
	m := make(Mask, h)
	if v {
		for i := range m {
			m[i] = true
		}
	}
	return m
}

// Allowed counts the hours permitted to run.
func (m Mask) Allowed() int {
	n := 0
	for _, ok := range m {
		if ok {
			n++
		}
	}
	return n
}

// Eligibility produces a may-run mask for one unit over a window. Rules are
// combined with logical AND, so adding a rule can only remove hours.
type Eligibility interface {
	Name() string
	Mask(u model.Unit, w Window) Mask
}

// Combine ANDs the masks into a new mask of h hours. A mask shorter than h
// forbids the hours it does not cover.
func Combine(h int, masks ...Mask) Mask {
	out := NewMask(h, true)
	for _, m := range masks {
		for i := range out {
			if i >= len(m) || !m[i] {
				out[i] = false
			}
		}
	}
	return out
}

// staticMask applies the same mask to every unit.
type staticMask struct {
	name string
	mask Mask
}

func (s staticMask) Name() string { return s.name }

func (s staticMask) Mask(model.Unit, Window) Mask {
	return append(Mask(nil), s.mask...)
}
