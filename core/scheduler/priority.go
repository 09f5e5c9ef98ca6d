package scheduler

import (
	"context"
	"slices"

	"github.com/kilianp07/spms/core/ledger"
	"github.com/kilianp07/spms/core/model"
)

// NamePriority identifies the static priority policy.
const NamePriority = "prio"

// Priority claims requests by priority class. Within a class, requests lying
// entirely inside the work window of a single day go first.
type Priority struct {
	facility  model.Facility
	workStart int
	workEnd   int
	opts      options
}

// NewPriority returns a priority scheduler. Only the work window of cfg is
// used.
func NewPriority(f model.Facility, cfg Config, opts ...Option) (*Priority, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Priority{facility: f, workStart: cfg.WorkStart, workEnd: cfg.WorkEnd, opts: buildOptions(opts)}, nil
}

func (s *Priority) Name() string { return NamePriority }

// WorkHour reports whether r starts and ends inside the work window of the
// day it starts on.
func (s *Priority) WorkHour(r model.Request) bool {
	start := r.StartOfDay()
	return start >= s.workStart && start+r.Duration <= s.workEnd
}

func (s *Priority) Schedule(_ context.Context, l *ledger.Ledger) ledger.Statistics {
	st := ledger.NewStatistics(NamePriority)
	if l.Len() == 0 {
		return st
	}
	reqs := l.Requests()
	slices.SortStableFunc(reqs, func(a, b model.Request) int {
		if a.Priority != b.Priority {
			return int(a.Priority) - int(b.Priority)
		}
		return rank(s.WorkHour(b)) - rank(s.WorkHour(a))
	})
	t := newTracker(s.facility)
	claimAll(t, reqs, &st)
	st.Placements = t.Placements()
	logSummary(s.opts.log, st, s.facility)
	return st
}

func rank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// RunPriority schedules l by priority on a fresh tracker.
func RunPriority(l *ledger.Ledger, f model.Facility, cfg Config) (ledger.Statistics, error) {
	s, err := NewPriority(f, cfg)
	if err != nil {
		return ledger.Statistics{}, err
	}
	return s.Schedule(context.Background(), l), nil
}
