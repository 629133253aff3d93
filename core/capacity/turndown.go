package capacity

// EnforceTurndown returns the constrained dispatch for one unit. Hours where
// the mask forbids running are zeroed, then every remaining value strictly
// below minTurndown·capacity is zeroed as well. Dispatch below the floor is
// never raised to it.
func EnforceTurndown(raw []float64, mask Mask, capacity, minTurndown float64) []float64 {
	floor := capacity * minTurndown
	out := make([]float64, len(raw))
	for i, v := range raw {
		if i >= len(mask) || !mask[i] {
			continue
		}
		if v < floor {
			continue
		}
		out[i] = v
	}
	return out
}
