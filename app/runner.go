// Package app wires the scheduling engine to its console, batch and
// comparison front ends.
package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/spms/core/ledger"
	"github.com/kilianp07/spms/core/logger"
	coremetrics "github.com/kilianp07/spms/core/metrics"
	"github.com/kilianp07/spms/core/model"
	"github.com/kilianp07/spms/core/runlog"
	"github.com/kilianp07/spms/core/scheduler"
	"github.com/kilianp07/spms/internal/eventbus"
)

// Result is the outcome of one scheduler over one ledger.
type Result struct {
	RunID    string
	Stats    ledger.Statistics
	Steps    int
	Seed     [2]uint64
	Duration time.Duration
	Started  time.Time
}

// Meta describes where a run came from. It is copied into run records.
type Meta struct {
	Source  string
	Invalid int
}

// Runner executes schedulers over independent copies of a ledger.
type Runner struct {
	facility    model.Facility
	cfg         scheduler.Config
	log         logger.Logger
	bus         *eventbus.Bus
	store       runlog.LogStore
	recordSteps bool
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger sets the logger handed to every scheduler.
func WithRunnerLogger(l logger.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithBus publishes run events, and optimizer steps when steps is true, on b.
func WithBus(b *eventbus.Bus, steps bool) RunnerOption {
	return func(r *Runner) {
		r.bus = b
		r.recordSteps = steps
	}
}

// WithStore appends one record per completed run to s.
func WithStore(s runlog.LogStore) RunnerOption {
	return func(r *Runner) { r.store = s }
}

// NewRunner validates the facility and scheduler configuration.
func NewRunner(f model.Facility, cfg scheduler.Config, opts ...RunnerOption) (*Runner, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{facility: f, cfg: cfg, log: logger.Nop{}}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// Facility returns the facility runs are scheduled against.
func (r *Runner) Facility() model.Facility { return r.facility }

// Run schedules l with every named policy in parallel. Each policy gets its
// own copy of the ledger and its own tracker. Results follow the order of
// names. When ctx is cancelled the in-flight runs are discarded and the
// context error is returned.
func (r *Runner) Run(ctx context.Context, l *ledger.Ledger, names []string, meta Meta) ([]Result, error) {
	scheds := make([]scheduler.Scheduler, len(names))
	results := make([]Result, len(names))
	for i, name := range names {
		runID := runlog.NewRunID()
		results[i].RunID = runID
		s, err := scheduler.New(name, r.facility, r.cfg,
			scheduler.WithLogger(r.log),
			scheduler.WithObserver(r.observer(runID, &results[i])))
		if err != nil {
			return nil, err
		}
		scheds[i] = s
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range scheds {
		own := l.Clone()
		g.Go(func() error {
			res := &results[i]
			res.Started = time.Now()
			res.Stats = s.Schedule(gctx, own)
			res.Duration = time.Since(res.Started)
			if s.Name() == scheduler.NameOptimizer {
				res.Seed = [2]uint64{r.cfg.Seed0, r.cfg.Seed1}
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("schedule: %w", err)
	}

	for _, res := range results {
		r.publish(ctx, res)
		if r.store != nil {
			if err := r.store.Append(ctx, r.record(res, meta)); err != nil {
				r.log.Warnf("run log append %s: %v", res.RunID, err)
			}
		}
	}
	return results, nil
}

// observer counts steps into res and forwards them to the bus.
func (r *Runner) observer(runID string, res *Result) func(scheduler.StepReport) {
	return func(rep scheduler.StepReport) {
		res.Steps = rep.Step + 1
		if r.bus == nil || !r.recordSteps {
			return
		}
		r.bus.Publish(coremetrics.OptimizerStepEvent{
			RunID:       runID,
			Step:        rep.Step,
			Temperature: rep.Temperature,
			Current:     rep.Current,
			Best:        rep.Best,
			Accepted:    rep.Accepted,
			Time:        time.Now(),
		})
	}
}

func (r *Runner) publish(ctx context.Context, res Result) {
	if r.bus == nil {
		return
	}
	if err := r.bus.PublishWait(ctx, r.event(res)); err != nil {
		r.log.Warnf("publish run %s: %v", res.RunID, err)
	}
}

func (r *Runner) event(res Result) coremetrics.RunEvent {
	u := res.Stats.Utilization(r.facility)
	per := make(map[string]float64, len(u.PerCategory))
	for c, v := range u.PerCategory {
		per[c.String()] = v
	}
	return coremetrics.RunEvent{
		RunID:       res.RunID,
		Algorithm:   res.Stats.Algorithm,
		Received:    res.Stats.Received(),
		Accepted:    res.Stats.Accepted.Len(),
		Rejected:    res.Stats.Rejected.Len(),
		Utilization: u.Total,
		PerCategory: per,
		Steps:       res.Steps,
		Duration:    res.Duration,
		Time:        res.Started,
	}
}

func (r *Runner) record(res Result, meta Meta) runlog.RunRecord {
	ev := r.event(res)
	return runlog.RunRecord{
		ID:          ev.RunID,
		Timestamp:   ev.Time,
		Algorithm:   ev.Algorithm,
		Source:      meta.Source,
		Seed:        res.Seed,
		Steps:       ev.Steps,
		Received:    ev.Received,
		Accepted:    ev.Accepted,
		Rejected:    ev.Rejected,
		Invalid:     meta.Invalid,
		Utilization: ev.Utilization,
		PerCategory: ev.PerCategory,
		DurationMS:  float64(ev.Duration.Microseconds()) / 1000,
	}
}
