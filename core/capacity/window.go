package capacity

import (
	"fmt"
	"sort"
	"time"
)

// Window is the set of hourly observations that fall in one calendar month.
type Window struct {
	Year  int
	Month time.Month
	// Start and End bound the month as [Start, End) in UTC.
	Start time.Time
	End   time.Time
	// Rows indexes the selected observations in the source series.
	Rows       []int
	Timestamps []time.Time
}

// SelectWindow returns the observations of ts that fall in the given month.
// ts must be strictly increasing. An empty selection is a valid window.
func SelectWindow(ts []time.Time, year int, month time.Month) Window {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	lo := sort.Search(len(ts), func(i int) bool { return !ts[i].Before(start) })
	hi := sort.Search(len(ts), func(i int) bool { return !ts[i].Before(end) })
	w := Window{Year: year, Month: month, Start: start, End: end}
	for i := lo; i < hi; i++ {
		w.Rows = append(w.Rows, i)
		w.Timestamps = append(w.Timestamps, ts[i])
	}
	return w
}

// Hours returns the number of observations in the window.
func (w Window) Hours() int { return len(w.Rows) }

// Empty reports whether no observation matched.
func (w Window) Empty() bool { return len(w.Rows) == 0 }

// Divisor is the hour count used in rate computations, never below one.
func (w Window) Divisor() float64 {
	if len(w.Rows) == 0 {
		return 1
	}
	return float64(len(w.Rows))
}

// Period formats the window as YYYY-MM.
func (w Window) Period() string { return fmt.Sprintf("%04d-%02d", w.Year, int(w.Month)) }
