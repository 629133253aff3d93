package metrics

import (
	"errors"

	"github.com/kilianp07/h2cf/core/capacity"
	"github.com/kilianp07/h2cf/core/conversion"
)

// MetricsSink records analysis reports for observability purposes.
type MetricsSink interface {
	RecordReport(r *capacity.Report) error
}

// ConversionRecorder records round-trip conversion results.
type ConversionRecorder interface {
	RecordConversion(r *conversion.Result) error
}

// Closer is implemented by sinks holding connections.
type Closer interface {
	Close() error
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) RecordReport(*capacity.Report) error       { return nil }
func (NopSink) RecordConversion(*conversion.Result) error { return nil }

// MultiSink fans records out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordReport forwards the report to every sink and joins their errors.
func (m *MultiSink) RecordReport(r *capacity.Report) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordReport(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordConversion forwards to the sinks that support it.
func (m *MultiSink) RecordConversion(r *conversion.Result) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(ConversionRecorder); ok {
			if err := rec.RecordConversion(r); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes the sinks that hold resources.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if c, ok := s.(Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
