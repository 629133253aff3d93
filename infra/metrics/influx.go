package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/h2cf/core/capacity"
	"github.com/kilianp07/h2cf/core/conversion"
	coremetrics "github.com/kilianp07/h2cf/core/metrics"
	"github.com/kilianp07/h2cf/infra/logger"
)

// InfluxSink writes analysis reports to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordReport writes one capacity_factor point per computed unit and one
// analysis_window point, all stamped with the window start.
func (s *InfluxSink) RecordReport(r *capacity.Report) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	md := r.Metadata
	points := make([]*write.Point, 0, len(r.Units)+1)
	for _, u := range r.Units {
		if u.Status != capacity.StatusComputed {
			continue
		}
		points = append(points, write.NewPointWithMeasurement("capacity_factor").
			AddTag("unit", u.Unit).
			AddTag("period", md.Period).
			AddTag("run_id", md.RunID).
			AddField("raw_cf", round6(u.RawCF.Float64)).
			AddField("constrained_cf", round6(u.ConstrainedCF.Float64)).
			AddField("raw_energy_mwh", round3(u.RawEnergy)).
			AddField("constrained_energy_mwh", round3(u.ConstrainedEnergy)).
			SetTime(md.WindowStart))
	}
	points = append(points, write.NewPointWithMeasurement("analysis_window").
		AddTag("period", md.Period).
		AddTag("run_id", md.RunID).
		AddField("hours", md.HoursInWindow).
		AddField("forced_outage_hours", md.HoursForcedOutage).
		AddField("price_gated_hours", md.HoursPriceGated).
		AddField("excluded_units", r.Excluded).
		AddField("synthetic_price", md.UsedSyntheticPrice).
		SetTime(md.WindowStart))
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordConversion writes the defined round-trip values.
func (s *InfluxSink) RecordConversion(r *conversion.Result) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	start, err := time.Parse("2006-01", r.Period)
	if err != nil {
		return err
	}
	p := write.NewPointWithMeasurement("h2_conversion").
		AddTag("period", r.Period).
		AddField("energy_in_mwh", round3(r.EnergyIn)).
		AddField("energy_out_mwh", round3(r.EnergyOut))
	if r.TheoreticalRoundTrip.Valid {
		p = p.AddField("theoretical_round_trip", round6(r.TheoreticalRoundTrip.Float64))
	}
	if r.EmpiricalRoundTrip.Valid {
		p = p.AddField("empirical_round_trip", round6(r.EmpiricalRoundTrip.Float64))
	}
	return s.writeAPI.WritePoint(ctx, p.SetTime(start))
}

// Close releases the client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

func round6(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}
