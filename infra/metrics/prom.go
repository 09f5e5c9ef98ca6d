package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/spms/core/metrics"
)

// PromSink records scheduling runs in Prometheus metrics.
type PromSink struct {
	runs        *prometheus.CounterVec
	requests    *prometheus.CounterVec
	utilization *prometheus.GaugeVec
	duration    *prometheus.HistogramVec
	best        *prometheus.GaugeVec
	invalid     *prometheus.CounterVec
}

// NewPromSink registers scheduling metrics on the default Prometheus registerer.
// The HTTP endpoint is served separately with StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spms_runs_total",
			Help: "Total number of scheduling runs",
		}, []string{"algorithm"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spms_requests_total",
			Help: "Requests handled by scheduling runs, by outcome",
		}, []string{"algorithm", "outcome"}),
		utilization: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "spms_utilization_ratio",
			Help: "Occupied fraction of resource-minutes of the last run",
		}, []string{"algorithm", "category"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "spms_run_duration_seconds",
			Help:    "Wall time of scheduling runs",
			Buckets: prometheus.DefBuckets,
		}, []string{"algorithm"}),
		best: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "spms_optimizer_best_utilization_ratio",
			Help: "Best utilization found by the running optimizer",
		}, []string{"run_id"}),
		invalid: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spms_invalid_commands_total",
			Help: "Command lines rejected by the parser",
		}, []string{"source"}),
	}
	var err error
	if s.runs, err = register(reg, s.runs); err != nil {
		return nil, err
	}
	if s.requests, err = register(reg, s.requests); err != nil {
		return nil, err
	}
	if s.utilization, err = register(reg, s.utilization); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.best, err = register(reg, s.best); err != nil {
		return nil, err
	}
	if s.invalid, err = register(reg, s.invalid); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the already registered collector when c was registered
// before, so several sinks can share one registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRun updates run counters and utilization gauges.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.runs.WithLabelValues(ev.Algorithm).Inc()
	s.requests.WithLabelValues(ev.Algorithm, "accepted").Add(float64(ev.Accepted))
	s.requests.WithLabelValues(ev.Algorithm, "rejected").Add(float64(ev.Rejected))
	s.utilization.WithLabelValues(ev.Algorithm, "total").Set(ev.Utilization)
	for cat, u := range ev.PerCategory {
		s.utilization.WithLabelValues(ev.Algorithm, cat).Set(u)
	}
	s.duration.WithLabelValues(ev.Algorithm).Observe(ev.Duration.Seconds())
	// the run is over, its progress gauge is no longer meaningful
	s.best.DeleteLabelValues(ev.RunID)
	return nil
}

// RecordOptimizerStep tracks the best utilization of a running optimizer.
func (s *PromSink) RecordOptimizerStep(ev coremetrics.OptimizerStepEvent) error {
	s.best.WithLabelValues(ev.RunID).Set(ev.Best)
	return nil
}

// RecordInvalidCommand counts a parse failure.
func (s *PromSink) RecordInvalidCommand(ev coremetrics.InvalidCommandEvent) error {
	src := ev.Source
	if src == "" {
		src = "console"
	}
	s.invalid.WithLabelValues(src).Inc()
	return nil
}
