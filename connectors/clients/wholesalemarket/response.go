package wholesalemarket

import (
	"fmt"
	"sort"
	"time"

	"github.com/kilianp07/h2cf/core/model"
)

// Value is one exchange interval.
type Value struct {
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Value     float64 `json:"value"`
	Price     float64 `json:"price"`
}

type Response struct {
	FrancePowerExchanges []struct {
		StartDate   string  `json:"start_date"`
		EndDate     string  `json:"end_date"`
		UpdatedDate string  `json:"updated_date"`
		Values      []Value `json:"values"`
	} `json:"france_power_exchanges"`
}

// Hourly averages the exchange intervals into one price per UTC hour and
// keeps the hours within [start, end). Sub-hourly products are averaged;
// duplicate intervals across exchanges are averaged too.
func (r *Response) Hourly(start, end time.Time) (*model.PriceSeries, error) {
	type acc struct {
		sum float64
		n   int
	}
	hours := make(map[int64]*acc)
	for _, ex := range r.FrancePowerExchanges {
		for _, v := range ex.Values {
			t, err := time.Parse(time.RFC3339, v.StartDate)
			if err != nil {
				return nil, fmt.Errorf("failed to parse time: %w", err)
			}
			t = t.UTC().Truncate(time.Hour)
			if t.Before(start) || !t.Before(end) {
				continue
			}
			a, ok := hours[t.Unix()]
			if !ok {
				a = &acc{}
				hours[t.Unix()] = a
			}
			a.sum += v.Price
			a.n++
		}
	}
	keys := make([]int64, 0, len(hours))
	for k := range hours {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	ps := &model.PriceSeries{
		Timestamps: make([]time.Time, len(keys)),
		Prices:     make([]float64, len(keys)),
	}
	for i, k := range keys {
		ps.Timestamps[i] = time.Unix(k, 0).UTC()
		ps.Prices[i] = hours[k].sum / float64(hours[k].n)
	}
	return ps, nil
}
