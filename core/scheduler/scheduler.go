package scheduler

import (
	"context"
	"fmt"
	"slices"

	"github.com/kilianp07/spms/core/ledger"
	"github.com/kilianp07/spms/core/logger"
	"github.com/kilianp07/spms/core/model"
	"github.com/kilianp07/spms/core/tracker"
)

// Scheduler partitions a ledger into accepted and rejected requests.
// Schedule never modifies l.
type Scheduler interface {
	Name() string
	Schedule(ctx context.Context, l *ledger.Ledger) ledger.Statistics
}

// Option customizes a scheduler.
type Option func(*options)

type options struct {
	log      logger.Logger
	observer func(StepReport)
}

// WithLogger sets the logger used for run summaries.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithObserver registers fn to receive a report after every optimizer step.
// Deterministic policies ignore it.
func WithObserver(fn func(StepReport)) Option {
	return func(o *options) { o.observer = fn }
}

func buildOptions(opts []Option) options {
	o := options{log: logger.Nop{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func newTracker(f model.Facility) *tracker.Tracker {
	t, err := tracker.New(f)
	if err != nil {
		// the facility was validated when the scheduler was built
		panic(fmt.Sprintf("scheduler: %v", err))
	}
	return t
}

// claimAll runs one first-come pass over reqs and appends each request to
// the accepted or rejected ledger of s.
func claimAll(t *tracker.Tracker, reqs []model.Request, s *ledger.Statistics) {
	for _, r := range reqs {
		if t.Claim(r) {
			s.Accepted.Append(r)
		} else {
			s.Rejected.Append(r)
		}
	}
}

// byVolume orders requests by volume then by category count, both
// descending. The sort is stable.
func byVolume(reqs []model.Request) {
	slices.SortStableFunc(reqs, func(a, b model.Request) int {
		if d := b.Volume() - a.Volume(); d != 0 {
			return d
		}
		return b.Categories() - a.Categories()
	})
}

func logSummary(log logger.Logger, s ledger.Statistics, f model.Facility) {
	log.Infof("%s: %d accepted, %d rejected, utilization %.4f",
		s.Algorithm, s.Accepted.Len(), s.Rejected.Len(), s.Utilization(f).Total)
}
