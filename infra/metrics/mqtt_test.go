package metrics

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/h2cf/core/capacity"
	"github.com/kilianp07/h2cf/core/conversion"
	"github.com/kilianp07/h2cf/core/factory"
	coremetrics "github.com/kilianp07/h2cf/core/metrics"
)

type fakePublisher struct {
	reports      []string
	conversions  []string
	disconnected bool
}

func (f *fakePublisher) PublishReport(r *capacity.Report) error {
	f.reports = append(f.reports, r.Metadata.Period)
	return nil
}

func (f *fakePublisher) PublishConversion(r *conversion.Result) error {
	f.conversions = append(f.conversions, r.Period)
	return nil
}

func (f *fakePublisher) Disconnect() { f.disconnected = true }

func TestMQTTSinkForwards(t *testing.T) {
	pub := &fakePublisher{}
	sink := &MQTTSink{pub: pub}
	require.NoError(t, sink.RecordReport(sampleReport()))
	require.NoError(t, sink.RecordConversion(&conversion.Result{Period: "2020-03"}))
	require.NoError(t, sink.Close())
	assert.Equal(t, []string{"2020-03"}, pub.reports)
	assert.Equal(t, []string{"2020-03"}, pub.conversions)
	assert.True(t, pub.disconnected)
}

/*
TestMetricsFactoryBuiltins verifies registration via factory.go.

	Cases:
	- instantiate builtin nop sink
	- mqtt sink without broker fails
	- unknown type returns error
	- sqlite sink opens the history database
*/
func TestMetricsFactoryBuiltins(t *testing.T) {
	s, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}})
	require.NoError(t, err)
	assert.IsType(t, coremetrics.NopSink{}, s)

	_, err = coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "mqtt", Conf: map[string]any{"topic_prefix": "x"}}})
	assert.Error(t, err)

	_, err = coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "missing"}})
	assert.Error(t, err)

	db := filepath.Join(t.TempDir(), "runs.db")
	s, err = coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "sqlite", Conf: map[string]any{"path": db}}})
	require.NoError(t, err)
	require.NoError(t, s.RecordReport(sampleReport()))
	closer, ok := s.(coremetrics.Closer)
	require.True(t, ok)
	require.NoError(t, closer.Close())
	assert.FileExists(t, db)
}
