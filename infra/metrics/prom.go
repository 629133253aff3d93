package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/h2cf/core/capacity"
	"github.com/kilianp07/h2cf/core/conversion"
	coremetrics "github.com/kilianp07/h2cf/core/metrics"
)

// PromSink exposes report values as Prometheus gauges.
type PromSink struct {
	cf       *prometheus.GaugeVec
	window   *prometheus.GaugeVec
	outage   *prometheus.GaugeVec
	excluded *prometheus.GaugeVec
	stats    *prometheus.GaugeVec
	roundRT  *prometheus.GaugeVec
}

// NewPromSink registers the gauges on the default Prometheus registerer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	s, err := NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewPromSinkWithRegistry registers the gauges on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		cf: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "electrolyser_capacity_factor",
			Help: "Capacity factor per unit and month",
		}, []string{"unit", "period", "kind"}),
		window: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "analysis_window_hours",
			Help: "Hourly observations in the analysed month",
		}, []string{"period"}),
		outage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "analysis_forced_outage_hours",
			Help: "Hours in sampled forced outage",
		}, []string{"period"}),
		excluded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "analysis_excluded_units",
			Help: "Units excluded for zero or missing capacity",
		}, []string{"period"}),
		stats: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "electrolyser_capacity_factor_summary",
			Help: "Cross-unit capacity factor statistics",
		}, []string{"period", "kind", "stat"}),
		roundRT: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "h2_round_trip_efficiency",
			Help: "Hydrogen round-trip efficiency per month",
		}, []string{"period", "kind"}),
	}
	for _, g := range []**prometheus.GaugeVec{&s.cf, &s.window, &s.outage, &s.excluded, &s.stats, &s.roundRT} {
		if err := reg.Register(*g); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				*g = are.ExistingCollector.(*prometheus.GaugeVec)
			} else {
				return nil, err
			}
		}
	}
	return s, nil
}

// RecordReport sets the gauges for one month. Excluded units get no
// capacity-factor series.
func (s *PromSink) RecordReport(r *capacity.Report) error {
	period := r.Metadata.Period
	s.window.WithLabelValues(period).Set(float64(r.Metadata.HoursInWindow))
	s.outage.WithLabelValues(period).Set(float64(r.Metadata.HoursForcedOutage))
	s.excluded.WithLabelValues(period).Set(float64(r.Excluded))
	for _, u := range r.Units {
		if u.Status != capacity.StatusComputed {
			continue
		}
		s.cf.WithLabelValues(u.Unit, period, "raw").Set(u.RawCF.Float64)
		s.cf.WithLabelValues(u.Unit, period, "constrained").Set(u.ConstrainedCF.Float64)
	}
	s.setStats(period, "raw", r.Raw)
	s.setStats(period, "constrained", r.Constrained)
	return nil
}

func (s *PromSink) setStats(period, kind string, st capacity.Stats) {
	if st.Count == 0 {
		return
	}
	s.stats.WithLabelValues(period, kind, "min").Set(st.Min.Float64)
	s.stats.WithLabelValues(period, kind, "max").Set(st.Max.Float64)
	s.stats.WithLabelValues(period, kind, "mean").Set(st.Mean.Float64)
}

// RecordConversion sets the round-trip gauges that are defined.
func (s *PromSink) RecordConversion(r *conversion.Result) error {
	if r.TheoreticalRoundTrip.Valid {
		s.roundRT.WithLabelValues(r.Period, "theoretical").Set(r.TheoreticalRoundTrip.Float64)
	}
	if r.EmpiricalRoundTrip.Valid {
		s.roundRT.WithLabelValues(r.Period, "empirical").Set(r.EmpiricalRoundTrip.Float64)
	}
	return nil
}
