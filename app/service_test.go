package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/h2cf/config"
	"github.com/kilianp07/h2cf/core/capacity"
	"github.com/kilianp07/h2cf/core/conversion"
	"github.com/kilianp07/h2cf/core/factory"
	"github.com/kilianp07/h2cf/core/model"
	"github.com/kilianp07/h2cf/infra/dataset"
)

type recordSink struct {
	reports     []*capacity.Report
	conversions []*conversion.Result
	closed      bool
}

func (r *recordSink) RecordReport(rep *capacity.Report) error {
	r.reports = append(r.reports, rep)
	return nil
}

func (r *recordSink) RecordConversion(res *conversion.Result) error {
	r.conversions = append(r.conversions, res)
	return nil
}

func (r *recordSink) Close() error {
	r.closed = true
	return nil
}

func twoMonths() *dataset.Dataset {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	n := (31 + 29) * 24
	ds := &dataset.Dataset{Flows: model.FlowSeries{Flows: map[string][]float64{"el": make([]float64, n), "fc": make([]float64, n)}}}
	for i := 0; i < n; i++ {
		ds.Flows.Timestamps = append(ds.Flows.Timestamps, start.Add(time.Duration(i)*time.Hour))
		ds.Flows.Flows["el"][i] = 60
		ds.Flows.Flows["fc"][i] = -15
	}
	ds.Units = []model.Unit{
		{ID: "el", Carrier: "H2 Electrolysis", NominalCapacity: model.Float(100), Efficiency: model.Float(0.7)},
		{ID: "fc", Carrier: "H2 Fuel Cell", NominalCapacity: model.Float(50), Efficiency: model.Float(0.5)},
	}
	return ds
}

func newService(t *testing.T, mutate func(*config.Config)) (*Service, *recordSink) {
	t.Helper()
	cfg := config.Default()
	cfg.Export.Dir = t.TempDir()
	if mutate != nil {
		mutate(cfg)
	}
	sink := &recordSink{}
	svc, err := NewWithSink(cfg, sink)
	require.NoError(t, err)
	return svc, sink
}

func TestAnalyzeRecordsReport(t *testing.T) {
	svc, sink := newService(t, nil)
	rep, err := svc.Analyze(twoMonths(), 2020, 1)
	require.NoError(t, err)
	assert.Equal(t, 744, rep.Metadata.HoursInWindow)
	assert.True(t, rep.Metadata.UsedSyntheticPrice)
	require.Len(t, sink.reports, 1)
	res, ok := rep.Result("el")
	require.True(t, ok)
	assert.InDelta(t, 0.6, res.RawCF.Float64, 1e-12)
	assert.Less(t, res.ConstrainedCF.Float64, res.RawCF.Float64)
}

func TestSweepYear(t *testing.T) {
	svc, sink := newService(t, nil)
	res := svc.Sweep(twoMonths(), 2020)
	require.Len(t, res.Months, 12)
	assert.Equal(t, 12, res.Computed)
	assert.Zero(t, res.Failed)
	assert.Equal(t, 744, res.Months[0].Report.Metadata.HoursInWindow)
	assert.Equal(t, 696, res.Months[1].Report.Metadata.HoursInWindow)
	assert.True(t, res.Months[2].Report.Metadata.EmptyWindow)
	assert.Equal(t, "2020-12", res.Months[11].Period)
	assert.Len(t, sink.reports, 12)
}

func TestSweepRecordsFailedMonths(t *testing.T) {
	svc, _ := newService(t, func(c *config.Config) {
		c.Analysis.SyntheticPrice = false
		c.Analysis.Months = []int{1, 2}
	})
	res := svc.Sweep(twoMonths(), 2020)
	require.Len(t, res.Months, 2)
	assert.Equal(t, 2, res.Failed)
	for _, m := range res.Months {
		assert.Equal(t, capacity.StatusFailed, m.Status)
		assert.Nil(t, m.Report)
		assert.Contains(t, m.Error, "synthetic prices are disabled")
	}
}

func TestSweepMonthsAreIndependent(t *testing.T) {
	svc, _ := newService(t, nil)
	full := svc.Sweep(twoMonths(), 2020)

	only, _ := newService(t, func(c *config.Config) { c.Analysis.Months = []int{2} })
	single := only.Sweep(twoMonths(), 2020)
	assert.Equal(t, full.Months[1].Report.Metadata.OutageHours, single.Months[0].Report.Metadata.OutageHours)
}

func TestConversionRecorded(t *testing.T) {
	svc, sink := newService(t, nil)
	res, err := svc.Conversion(twoMonths(), 2020, 2)
	require.NoError(t, err)
	assert.InDelta(t, 60*696, res.EnergyIn, 1e-6)
	assert.InDelta(t, 0.25, res.EmpiricalRoundTrip.Float64, 1e-12)
	require.Len(t, sink.conversions, 1)
}

func TestConversionUsesConfiguredCarrier(t *testing.T) {
	svc, _ := newService(t, func(c *config.Config) { c.Analysis.Carrier = "pem" })
	ds := twoMonths()
	ds.Units[0].Carrier = "PEM stack"
	res, err := svc.Conversion(ds, 2020, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ElectrolyserUnits)
	assert.InDelta(t, 60*696, res.EnergyIn, 1e-6)
}

func TestExportAndClose(t *testing.T) {
	textfile := filepath.Join(t.TempDir(), "h2cf.prom")
	svc, sink := newService(t, func(c *config.Config) {
		c.Export.Formats = []string{"csv", "json"}
		c.Export.Textfile = textfile
	})
	rep, err := svc.Analyze(twoMonths(), 2020, 1)
	require.NoError(t, err)
	paths, err := svc.Export(rep)
	require.NoError(t, err)
	assert.Len(t, paths, 2)
	for _, p := range paths {
		_, err := os.Stat(p)
		assert.NoError(t, err)
	}
	require.NoError(t, svc.Close())
	assert.True(t, sink.closed)
	_, err = os.Stat(textfile)
	assert.NoError(t, err)
}

func TestLoadDatasetRequiresInput(t *testing.T) {
	svc, _ := newService(t, nil)
	_, err := svc.LoadDataset()
	assert.Error(t, err)
}

func TestNewRejectsBadMaintenance(t *testing.T) {
	cfg := config.Default()
	cfg.Analysis.Maintenance = []config.MaintenanceConfig{{Start: "soon", End: "later"}}
	_, err := NewWithSink(cfg, nil)
	assert.Error(t, err)
}

func TestNewBuildsSinksFromConfig(t *testing.T) {
	cfg := config.Default()
	svc, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, svc.Close())
}

type stubPrices struct {
	calls []time.Time
	err   error
}

func (s *stubPrices) Prices(_ context.Context, start, end time.Time) (*model.PriceSeries, error) {
	s.calls = append(s.calls, start)
	if s.err != nil {
		return nil, s.err
	}
	ps := &model.PriceSeries{}
	for t := start; t.Before(end); t = t.Add(time.Hour) {
		ps.Timestamps = append(ps.Timestamps, t)
		price := 10.0
		if t.Hour() < 12 {
			price = 90
		}
		ps.Prices = append(ps.Prices, price)
	}
	return ps, nil
}

func TestAnalyzeFetchesPricesWhenMissing(t *testing.T) {
	svc, _ := newService(t, func(c *config.Config) {
		c.Analysis.OutageFraction = 0
		c.Analysis.MinTurndown = 0
	})
	src := &stubPrices{}
	svc.prices = src

	rep, err := svc.Analyze(twoMonths(), 2020, 2)
	require.NoError(t, err)
	require.Len(t, src.calls, 1)
	assert.Equal(t, time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC), src.calls[0])
	assert.False(t, rep.Metadata.UsedSyntheticPrice)
	res, _ := rep.Result("el")
	assert.InDelta(t, 0.3, res.ConstrainedCF.Float64, 1e-12)

	src.err = errors.New("api down")
	_, err = svc.Analyze(twoMonths(), 2020, 1)
	assert.ErrorContains(t, err, "api down")

	_, err = svc.Analyze(twoMonths(), 2020, 13)
	assert.ErrorIs(t, err, capacity.ErrInvalidInput)
	assert.Len(t, src.calls, 2)
}

func TestNewBuildsPriceSource(t *testing.T) {
	cfg := config.Default()
	cfg.Input.PriceSource = &factory.ModuleConfig{Type: "wholesale_market", Conf: map[string]any{
		"client_id": "id", "client_secret": "secret", "auth_url": "http://auth.invalid",
	}}
	svc, err := NewWithSink(cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, svc.prices)

	cfg.Input.PriceSource = &factory.ModuleConfig{Type: "unknown"}
	_, err = NewWithSink(cfg, nil)
	assert.Error(t, err)
}
