// Package infra contains technical adapters: the CSV dataset reader, the
// run history store, MQTT publishing and the metrics exporters. These
// packages depend only on the interfaces and types defined in core.
package infra
