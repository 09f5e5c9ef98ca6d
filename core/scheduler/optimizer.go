package scheduler

import (
	"context"
	"math"
	"slices"

	"github.com/kilianp07/spms/core/ledger"
	"github.com/kilianp07/spms/core/model"
	"github.com/kilianp07/spms/core/rng"
	"github.com/kilianp07/spms/core/tracker"
)

// NameOptimizer identifies the simulated-annealing policy.
const NameOptimizer = "opti"

const (
	decayLow       = 1e-9
	decayHigh      = 1e9
	decayTolerance = 1e-9
)

// Temperatures returns the start and end temperatures of the schedule.
func Temperatures(cfg Config) (t0, t1 float64) {
	return cfg.RefDelta / math.Log(cfg.InitialAcceptProb), cfg.RefDelta / math.Log(cfg.FinalAcceptProb)
}

// Calibrate finds by bisection the decay d such that t0 * d^steps = t1.
func Calibrate(t0, t1 float64, steps int) float64 {
	lo, hi := decayLow, decayHigh
	for hi-lo > decayTolerance {
		mid := lo + (hi-lo)/2
		if t0*math.Pow(mid, float64(steps)) > t1 {
			hi = mid
		} else {
			lo = mid
		}
	}
	return lo + (hi-lo)/2
}

// StepReport describes one annealing iteration.
type StepReport struct {
	Step        int     `json:"step"`
	Temperature float64 `json:"temperature"`
	Utilization float64 `json:"utilization"` // of the proposed move
	Current     float64 `json:"current"`     // after acceptance
	Best        float64 `json:"best"`
	Accepted    bool    `json:"accepted"`
	Admitted    int     `json:"admitted"` // accepted requests after the step
}

type state struct {
	accepted []model.Request
	rejected []model.Request
}

func (s state) clone() state {
	return state{accepted: slices.Clone(s.accepted), rejected: slices.Clone(s.rejected)}
}

// OptimizerSession is the working state of one annealing run. It is owned by
// the caller and must not be shared between goroutines.
type OptimizerSession struct {
	cfg      Config
	facility model.Facility
	rand     *rng.Source

	Temperature float64
	Decay       float64
	Step        int
	MaxSteps    int

	tracker  *tracker.Tracker
	cur      state
	curUtil  float64
	prev     state
	prevTrk  *tracker.Tracker
	best     state
	bestUtil float64
}

// NewOptimizerSession prepares a run over reqs with every request rejected.
func NewOptimizerSession(f model.Facility, cfg Config, reqs []model.Request) (*OptimizerSession, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t0, t1 := Temperatures(cfg)
	s := &OptimizerSession{
		cfg:         cfg,
		facility:    f,
		rand:        rng.New(cfg.Seed0, cfg.Seed1),
		Temperature: t0,
		Decay:       Calibrate(t0, t1, cfg.MaxSteps),
		MaxSteps:    cfg.MaxSteps,
		tracker:     newTracker(f),
		cur:         state{rejected: slices.Clone(reqs)},
	}
	s.prev = s.cur.clone()
	s.prevTrk = s.tracker.Snapshot()
	s.best = s.cur.clone()
	return s, nil
}

// Done reports whether the step budget is exhausted.
func (s *OptimizerSession) Done() bool { return s.Step >= s.MaxSteps }

// Best returns the best utilization seen so far.
func (s *OptimizerSession) Best() float64 { return s.bestUtil }

// Current returns the utilization of the current state.
func (s *OptimizerSession) Current() float64 { return s.curUtil }

// Advance performs one delete / insert / accept iteration.
func (s *OptimizerSession) Advance() StepReport {
	byVolume(s.cur.rejected)

	kept := s.cur.accepted[:0:0]
	for _, r := range s.cur.accepted {
		if s.rand.Bernoulli(s.cfg.DeleteProb) {
			s.tracker.Release(r)
			s.cur.rejected = append(s.cur.rejected, r)
			continue
		}
		kept = append(kept, r)
	}
	s.cur.accepted = kept

	s.insert(s.cfg.InsertProb)

	util := s.utilization(s.cur.accepted)
	if util > s.bestUtil {
		s.bestUtil = util
		s.best = s.cur.clone()
	}

	accept := util >= s.curUtil ||
		s.rand.Float64() < math.Exp((util-s.curUtil)/s.Temperature)
	if accept {
		s.curUtil = util
		s.prev = s.cur.clone()
		s.prevTrk.RestoreFrom(s.tracker)
	} else {
		s.cur = s.prev.clone()
		s.tracker.RestoreFrom(s.prevTrk)
	}

	rep := StepReport{
		Step:        s.Step,
		Temperature: s.Temperature,
		Utilization: util,
		Current:     s.curUtil,
		Best:        s.bestUtil,
		Accepted:    accept,
		Admitted:    len(s.cur.accepted),
	}
	s.Step++
	s.Temperature *= s.Decay
	return rep
}

// insert tries every rejected request in its current order, each with
// probability p. p >= 1 draws nothing from the random stream.
func (s *OptimizerSession) insert(p float64) {
	left := s.cur.rejected[:0:0]
	for _, r := range s.cur.rejected {
		if (p >= 1 || s.rand.Bernoulli(p)) && s.tracker.Claim(r) {
			s.cur.accepted = append(s.cur.accepted, r)
			continue
		}
		left = append(left, r)
	}
	s.cur.rejected = left
}

func (s *OptimizerSession) utilization(accepted []model.Request) float64 {
	var v int
	for _, r := range accepted {
		v += r.Volume()
	}
	return float64(v) / float64(s.facility.ResourceMinutes())
}

// Finalize restores the best state, rebuilds the tracker from it and runs a
// deterministic greedy pass over the remaining requests.
func (s *OptimizerSession) Finalize() ledger.Statistics {
	s.cur = s.best.clone()
	s.tracker.Reset()

	// First fit in start order never needs more instances than the
	// deepest overlap, which the best state already satisfied.
	rebuild := slices.Clone(s.cur.accepted)
	slices.SortStableFunc(rebuild, func(a, b model.Request) int { return a.Start - b.Start })
	for _, r := range rebuild {
		if !s.tracker.Claim(r) {
			panic("scheduler: best optimizer state is not feasible")
		}
	}

	byVolume(s.cur.rejected)
	s.insert(1)
	s.curUtil = s.utilization(s.cur.accepted)

	st := ledger.NewStatistics(NameOptimizer)
	for _, r := range s.cur.accepted {
		st.Accepted.Append(r)
	}
	for _, r := range s.cur.rejected {
		st.Rejected.Append(r)
	}
	st.Placements = s.tracker.Placements()
	return st
}

// Run advances until the budget is spent or ctx is done, then finalizes.
func (s *OptimizerSession) Run(ctx context.Context, observe func(StepReport)) ledger.Statistics {
	for !s.Done() {
		if ctx.Err() != nil {
			break
		}
		rep := s.Advance()
		if observe != nil {
			observe(rep)
		}
	}
	return s.Finalize()
}

// Optimizer searches for a high-utilization partition with simulated
// annealing and greedy insert / delete moves.
type Optimizer struct {
	facility model.Facility
	cfg      Config
	opts     options
}

// NewOptimizer validates f and cfg and returns an optimizer.
func NewOptimizer(f model.Facility, cfg Config, opts ...Option) (*Optimizer, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Optimizer{facility: f, cfg: cfg, opts: buildOptions(opts)}, nil
}

func (o *Optimizer) Name() string { return NameOptimizer }

// Schedule runs a fresh session. A cancelled ctx stops the search early and
// returns the best partition found so far.
func (o *Optimizer) Schedule(ctx context.Context, l *ledger.Ledger) ledger.Statistics {
	if l.Len() == 0 {
		return ledger.NewStatistics(NameOptimizer)
	}
	s, err := NewOptimizerSession(o.facility, o.cfg, l.Requests())
	if err != nil {
		panic(err)
	}
	o.opts.log.Debugf("opti: T0=%.6f decay=%.9f steps=%d", s.Temperature, s.Decay, s.MaxSteps)
	st := s.Run(ctx, func(rep StepReport) {
		if o.opts.observer != nil {
			o.opts.observer(rep)
		}
		if rep.Step%100 == 0 {
			o.opts.log.Debugw("opti step", map[string]any{
				"step": rep.Step, "temperature": rep.Temperature,
				"current": rep.Current, "best": rep.Best,
			})
		}
	})
	if s.Step < s.MaxSteps {
		o.opts.log.Warnf("opti: stopped after %d of %d steps", s.Step, s.MaxSteps)
	}
	logSummary(o.opts.log, st, o.facility)
	return st
}

// RunOptimized schedules l with the optimizer seeded by seed.
func RunOptimized(l *ledger.Ledger, f model.Facility, seed [2]uint64, maxSteps int) (ledger.Statistics, error) {
	cfg := DefaultConfig()
	cfg.Seed0, cfg.Seed1 = seed[0], seed[1]
	cfg.MaxSteps = maxSteps
	o, err := NewOptimizer(f, cfg)
	if err != nil {
		return ledger.Statistics{}, err
	}
	return o.Schedule(context.Background(), l), nil
}
