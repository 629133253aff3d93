package app

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/h2cf/config"
	"github.com/kilianp07/h2cf/connectors"
	connfactory "github.com/kilianp07/h2cf/connectors/factory"
	"github.com/kilianp07/h2cf/core/capacity"
	"github.com/kilianp07/h2cf/core/conversion"
	coremetrics "github.com/kilianp07/h2cf/core/metrics"
	"github.com/kilianp07/h2cf/core/model"
	"github.com/kilianp07/h2cf/infra/dataset"
	"github.com/kilianp07/h2cf/infra/logger"
	"github.com/kilianp07/h2cf/infra/metrics"
	"github.com/kilianp07/h2cf/pkg/export"
)

// Service wires the analysis core to the configured inputs, exports and
// metrics sinks.
type Service struct {
	cfg      *config.Config
	analyzer *capacity.Analyzer
	sink     coremetrics.MetricsSink
	prices   connectors.PriceSource
	log      logger.Logger
}

const priceFetchTimeout = time.Minute

// New creates a Service from the configuration. Metrics sinks are built from
// cfg.Metrics.Sinks; reports are also published to cfg.MQTT when a broker is
// set.
func New(cfg *config.Config) (*Service, error) {
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	if cfg.MQTT.Broker != "" {
		pub, err := metrics.NewMQTTSink(cfg.MQTT)
		if err != nil {
			_ = coremetrics.NewMultiSink(sink).Close()
			return nil, fmt.Errorf("mqtt: %w", err)
		}
		sink = coremetrics.NewMultiSink(sink, pub)
	}
	return NewWithSink(cfg, sink)
}

// NewWithSink creates a Service recording to sink.
func NewWithSink(cfg *config.Config, sink coremetrics.MetricsSink) (*Service, error) {
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	windows, err := cfg.Analysis.MaintenanceWindows()
	if err != nil {
		return nil, err
	}
	var rules []capacity.Eligibility
	if len(windows) > 0 {
		rules = append(rules, capacity.Maintenance{Windows: windows})
	}
	var prices connectors.PriceSource
	if cfg.Input.PriceSource != nil {
		if prices, err = connfactory.NewPriceSource(*cfg.Input.PriceSource); err != nil {
			return nil, fmt.Errorf("price source: %w", err)
		}
	}
	return &Service{
		cfg:      cfg,
		analyzer: capacity.NewAnalyzer(logger.New("capacity"), rules...),
		sink:     sink,
		prices:   prices,
		log:      logger.New("service"),
	}, nil
}

// Config returns the configuration the service was built with.
func (s *Service) Config() *config.Config { return s.cfg }

// LoadDataset reads the configured input files.
func (s *Service) LoadDataset() (*dataset.Dataset, error) {
	if err := s.cfg.Input.Validate(); err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	ds, err := dataset.Load(dataset.Files{
		Flows:       s.cfg.Input.Flows,
		Units:       s.cfg.Input.Units,
		Prices:      s.cfg.Input.Prices,
		PriceColumn: s.cfg.Input.PriceColumn,
	})
	if err != nil {
		return nil, err
	}
	s.log.Infof("loaded %d snapshots, %d units, prices=%t", ds.Flows.Len(), len(ds.Units), ds.Prices != nil)
	return ds, nil
}

// Run analyses one input with explicit parameters and records the report.
func (s *Service) Run(in capacity.Input, p capacity.Params) (*capacity.Report, error) {
	rep, err := s.analyzer.Run(in, p)
	if err != nil {
		return nil, err
	}
	if err := s.sink.RecordReport(rep); err != nil {
		s.log.Errorf("record report %s: %v", rep.Metadata.Period, err)
	}
	return rep, nil
}

// Analyze runs one month of ds with the configured parameters. When ds has
// no prices and a price source is configured, the month is fetched first.
func (s *Service) Analyze(ds *dataset.Dataset, year, month int) (*capacity.Report, error) {
	p := s.cfg.Analysis.Params(year, month)
	in := input(ds)
	if in.Prices == nil && s.prices != nil {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		ps, err := s.fetchPrices(year, month)
		if err != nil {
			return nil, err
		}
		in.Prices = ps
	}
	return s.Run(in, p)
}

func (s *Service) fetchPrices(year, month int) (*model.PriceSeries, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	ctx, cancel := context.WithTimeout(context.Background(), priceFetchTimeout)
	defer cancel()
	ps, err := s.prices.Prices(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch prices %04d-%02d: %w", year, month, err)
	}
	s.log.Infof("fetched %d hourly prices for %04d-%02d", len(ps.Prices), year, month)
	return ps, nil
}

// MonthResult is the outcome of one month of a sweep.
type MonthResult struct {
	Month  int              `json:"month"`
	Period string           `json:"period"`
	Status capacity.Status  `json:"status"`
	Report *capacity.Report `json:"report,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// SweepResult collects the months of one year.
type SweepResult struct {
	Year     int           `json:"year"`
	Months   []MonthResult `json:"months"`
	Computed int           `json:"computed"`
	Failed   int           `json:"failed"`
}

// Sweep analyses every configured month of year. Each month is an
// independent run with its own random source; a failed month is recorded
// and the sweep continues.
func (s *Service) Sweep(ds *dataset.Dataset, year int) *SweepResult {
	res := &SweepResult{Year: year}
	for _, m := range s.cfg.Analysis.SweepMonths() {
		mr := MonthResult{Month: m, Period: fmt.Sprintf("%04d-%02d", year, m)}
		rep, err := s.Analyze(ds, year, m)
		if err != nil {
			mr.Status = capacity.StatusFailed
			mr.Error = err.Error()
			res.Failed++
			s.log.Errorf("month %s failed: %v", mr.Period, err)
		} else {
			mr.Status = capacity.StatusComputed
			mr.Report = rep
			res.Computed++
		}
		res.Months = append(res.Months, mr)
	}
	return res
}

// Conversion computes the hydrogen round-trip metrics for one month.
func (s *Service) Conversion(ds *dataset.Dataset, year, month int) (*conversion.Result, error) {
	res, err := conversion.Compute(ds.Flows, ds.Units, conversion.Options{
		Year:                year,
		Month:               month,
		ElectrolysisCarrier: s.cfg.Analysis.Carrier,
	})
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		s.log.Warnf("%s: %s", w.Kind, w.Message)
	}
	if rec, ok := s.sink.(coremetrics.ConversionRecorder); ok {
		if err := rec.RecordConversion(res); err != nil {
			s.log.Errorf("record conversion %s: %v", res.Period, err)
		}
	}
	return res, nil
}

// Export writes the report in the configured formats.
func (s *Service) Export(rep *capacity.Report) ([]string, error) {
	return export.WriteFiles(s.cfg.Export.Dir, s.cfg.Export.Formats, rep)
}

// Close flushes the Prometheus textfile when configured and releases the
// sinks.
func (s *Service) Close() error {
	var err error
	if s.cfg.Export.Textfile != "" {
		err = metrics.WriteTextfile(s.cfg.Export.Textfile, nil)
	}
	if c, ok := s.sink.(coremetrics.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func input(ds *dataset.Dataset) capacity.Input {
	return capacity.Input{Flows: ds.Flows, Units: ds.Units, Prices: ds.Prices}
}
