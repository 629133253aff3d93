package metrics

import (
	"github.com/kilianp07/h2cf/core/capacity"
	"github.com/kilianp07/h2cf/core/conversion"
	"github.com/kilianp07/h2cf/infra/mqtt"
)

type reportPublisher interface {
	PublishReport(r *capacity.Report) error
	PublishConversion(r *conversion.Result) error
	Disconnect()
}

// MQTTSink publishes every report to the broker.
type MQTTSink struct {
	pub reportPublisher
}

// NewMQTTSink connects a publisher for cfg.
func NewMQTTSink(cfg mqtt.Config) (*MQTTSink, error) {
	pub, err := mqtt.NewReportPublisher(cfg)
	if err != nil {
		return nil, err
	}
	return &MQTTSink{pub: pub}, nil
}

func (s *MQTTSink) RecordReport(r *capacity.Report) error {
	return s.pub.PublishReport(r)
}

func (s *MQTTSink) RecordConversion(r *conversion.Result) error {
	return s.pub.PublishConversion(r)
}

func (s *MQTTSink) Close() error {
	s.pub.Disconnect()
	return nil
}
