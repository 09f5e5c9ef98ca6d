package scheduler

import (
	"context"

	"github.com/kilianp07/spms/core/ledger"
	"github.com/kilianp07/spms/core/model"
)

// NameFCFS identifies the first-come-first-served policy.
const NameFCFS = "fcfs"

// FCFS claims requests in ingestion order without backtracking.
type FCFS struct {
	facility model.Facility
	opts     options
}

// NewFCFS returns a FCFS scheduler for the facility.
func NewFCFS(f model.Facility, opts ...Option) (*FCFS, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &FCFS{facility: f, opts: buildOptions(opts)}, nil
}

func (s *FCFS) Name() string { return NameFCFS }

func (s *FCFS) Schedule(_ context.Context, l *ledger.Ledger) ledger.Statistics {
	st := ledger.NewStatistics(NameFCFS)
	if l.Len() == 0 {
		return st
	}
	t := newTracker(s.facility)
	claimAll(t, l.Requests(), &st)
	st.Placements = t.Placements()
	logSummary(s.opts.log, st, s.facility)
	return st
}

// RunFCFS schedules l first-come-first-served on a fresh tracker.
func RunFCFS(l *ledger.Ledger, f model.Facility) (ledger.Statistics, error) {
	s, err := NewFCFS(f)
	if err != nil {
		return ledger.Statistics{}, err
	}
	return s.Schedule(context.Background(), l), nil
}
