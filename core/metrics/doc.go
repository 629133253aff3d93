// Package metrics defines the sink interface analysis reports are recorded
// through. Sinks such as the Prometheus, InfluxDB and MQTT implementations in
// infra/metrics register themselves by type name; NewMetricsSink builds one
// from configuration and returns a MultiSink when several are configured.
package metrics
