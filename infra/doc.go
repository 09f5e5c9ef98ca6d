// Package infra holds the adapters behind core interfaces: the zerolog
// logger, the Prometheus and InfluxDB metrics sinks and the MQTT run
// summary publisher.
package infra
