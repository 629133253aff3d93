package capacity

import (
	"math"
	"math/rand"
	"sort"
)

// RandSource is the subset of *rand.Rand the outage sampler needs. Callers own
// the source; nothing in this package reads a global generator.
type RandSource interface {
	Intn(n int) int
}

// NewRandSource returns a deterministic source for seed.
func NewRandSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// OutageCount returns round(h·f) bounded to [0,h].
func OutageCount(h int, f float64) int {
	n := int(math.Round(float64(h) * f))
	if n < 0 {
		return 0
	}
	if n > h {
		return h
	}
	return n
}

// SampleOutages draws OutageCount(h, f) distinct hour indices from [0,h)
// uniformly without replacement and returns them sorted. The same h, f and
// source state always yield the same indices.
func SampleOutages(h int, f float64, rng RandSource) []int {
	k := OutageCount(h, f)
	if k == 0 {
		return []int{}
	}
	idx := make([]int, h)
	for i := range idx {
		idx[i] = i
	}
	// partial Fisher-Yates
	for i := 0; i < k; i++ {
		j := i + rng.Intn(h-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	out := append([]int(nil), idx[:k]...)
	sort.Ints(out)
	return out
}

// ForcedOutage forbids the sampled hours for every unit, whatever the price.
type ForcedOutage struct {
	Hours []int
	staticMask
}

// NewForcedOutage samples the outage hours for the window.
func NewForcedOutage(w Window, f float64, rng RandSource) *ForcedOutage {
	hours := SampleOutages(w.Hours(), f, rng)
	m := NewMask(w.Hours(), true)
	for _, i := range hours {
		m[i] = false
	}
	return &ForcedOutage{Hours: hours, staticMask: staticMask{name: "outage", mask: m}}
}
