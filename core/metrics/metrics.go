package metrics

import (
	"time"
)

// RunEvent summarizes one scheduling run.
type RunEvent struct {
	RunID       string
	Algorithm   string
	Received    int
	Accepted    int
	Rejected    int
	Utilization float64
	// PerCategory maps category names to their utilization.
	PerCategory map[string]float64
	Steps       int
	Duration    time.Duration
	Time        time.Time
}

// MetricsSink records scheduling runs for observability purposes.
type MetricsSink interface {
	RecordRun(ev RunEvent) error
}

// OptimizerStepEvent is one annealing iteration.
type OptimizerStepEvent struct {
	RunID       string
	Step        int
	Temperature float64
	Current     float64
	Best        float64
	Accepted    bool
	Time        time.Time
}

// OptimizerStepRecorder records annealing progress.
type OptimizerStepRecorder interface {
	RecordOptimizerStep(ev OptimizerStepEvent) error
}

// InvalidCommandEvent records a command line that failed to parse.
type InvalidCommandEvent struct {
	Reason string
	Source string // console or batch file name
	Time   time.Time
}

// InvalidCommandRecorder records parse failures.
type InvalidCommandRecorder interface {
	RecordInvalidCommand(ev InvalidCommandEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error                       { return nil }
func (NopSink) RecordOptimizerStep(OptimizerStepEvent) error   { return nil }
func (NopSink) RecordInvalidCommand(InvalidCommandEvent) error { return nil }
