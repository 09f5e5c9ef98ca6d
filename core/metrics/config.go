package metrics

import "github.com/kilianp07/spms/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks" yaml:"sinks"`
	// ListenAddr enables the Prometheus endpoint of long-running commands
	// when set, e.g. ":2112".
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`
	// RecordSteps forwards every optimizer step to the sinks.
	RecordSteps bool `json:"record_steps" yaml:"record_steps"`
}
