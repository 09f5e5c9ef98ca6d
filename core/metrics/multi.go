package metrics

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the run to all sinks, returning the first error encountered.
func (m *MultiSink) RecordRun(ev RunEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordOptimizerStep forwards steps to sinks supporting them.
func (m *MultiSink) RecordOptimizerStep(ev OptimizerStepEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(OptimizerStepRecorder); ok {
			if err := rec.RecordOptimizerStep(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordInvalidCommand forwards parse failures to sinks supporting them.
func (m *MultiSink) RecordInvalidCommand(ev InvalidCommandEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(InvalidCommandRecorder); ok {
			if err := rec.RecordInvalidCommand(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
