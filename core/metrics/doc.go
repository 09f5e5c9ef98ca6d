// Package metrics defines the scheduling metrics events and the sink
// interfaces recording them. Sinks such as the Prometheus and InfluxDB ones
// in infra/metrics register themselves by type name and are built from
// configuration with NewMetricsSink. Several configured sinks are combined
// in a MultiSink.
package metrics
