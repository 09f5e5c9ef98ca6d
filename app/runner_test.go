package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/spms/core/audit"
	"github.com/kilianp07/spms/core/ledger"
	coremetrics "github.com/kilianp07/spms/core/metrics"
	"github.com/kilianp07/spms/core/model"
	"github.com/kilianp07/spms/core/runlog"
	"github.com/kilianp07/spms/core/scheduler"
	"github.com/kilianp07/spms/internal/eventbus"
)

// crowded returns n two-hour parking requests on the same slot.
func crowded(n int) *ledger.Ledger {
	l := &ledger.Ledger{}
	for i := 0; i < n; i++ {
		l.Ingest(model.Request{
			Member: model.DefaultMembers[i%5], Start: 600, Duration: 120,
			Priority: model.PriorityParking, Parking: true,
		})
	}
	return l
}

func TestRunnerRunsEveryPolicy(t *testing.T) {
	r := newTestRunner(t)
	l := crowded(12)
	results, err := r.Run(context.Background(), l, scheduler.Names(), Meta{})
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, res := range results {
		assert.Equal(t, scheduler.Names()[i], res.Stats.Algorithm)
		assert.Equal(t, 10, res.Stats.Accepted.Len(), res.Stats.Algorithm)
		assert.Equal(t, 2, res.Stats.Rejected.Len(), res.Stats.Algorithm)
		assert.NoError(t, audit.Check(res.Stats, r.Facility()))
		assert.NotEmpty(t, res.RunID)
	}
	assert.Equal(t, [2]uint64{7, 11}, results[2].Seed)
	assert.Equal(t, [2]uint64{}, results[0].Seed)
	assert.Equal(t, testConfig().MaxSteps, results[2].Steps)
	assert.Zero(t, results[0].Steps)
	assert.Equal(t, 12, l.Len(), "input ledger must be left untouched")
}

func TestRunnerMatchesSequentialRuns(t *testing.T) {
	r := newTestRunner(t)
	l := crowded(15)
	results, err := r.Run(context.Background(), l, []string{scheduler.NameFCFS, scheduler.NameOptimizer}, Meta{})
	require.NoError(t, err)

	fcfs, err := scheduler.RunFCFS(l, r.Facility())
	require.NoError(t, err)
	assert.True(t, fcfs.Equal(results[0].Stats))

	opti, err := scheduler.RunOptimized(l, r.Facility(), [2]uint64{7, 11}, 60)
	require.NoError(t, err)
	assert.True(t, opti.Equal(results[1].Stats))
}

func TestRunnerCancelled(t *testing.T) {
	r := newTestRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Run(ctx, crowded(3), scheduler.Names(), Meta{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunnerUnknownPolicy(t *testing.T) {
	r := newTestRunner(t)
	_, err := r.Run(context.Background(), crowded(1), []string{"ljf"}, Meta{})
	assert.Error(t, err)
}

func TestRunnerPublishesAndRecords(t *testing.T) {
	bus := eventbus.New()
	sub := bus.Subscribe()
	store, err := runlog.NewJSONLStore(filepath.Join(t.TempDir(), "runs.jsonl"))
	require.NoError(t, err)
	r := newTestRunner(t, WithBus(bus, true), WithStore(store))

	results, err := r.Run(context.Background(), crowded(11), []string{scheduler.NameFCFS, scheduler.NameOptimizer}, Meta{Source: "test", Invalid: 2})
	require.NoError(t, err)
	bus.Close()

	var runs []coremetrics.RunEvent
	steps := 0
	for ev := range sub {
		switch e := ev.(type) {
		case coremetrics.RunEvent:
			runs = append(runs, e)
		case coremetrics.OptimizerStepEvent:
			steps++
			assert.Equal(t, results[1].RunID, e.RunID)
		}
	}
	require.Len(t, runs, 2)
	assert.Equal(t, results[0].RunID, runs[0].RunID)
	assert.Equal(t, 10, runs[0].Accepted)
	assert.Equal(t, 11, runs[0].Received)
	assert.InDelta(t, 1200.0/(10080*10), runs[0].PerCategory["parking"], 1e-12)
	assert.Positive(t, steps)

	recs, err := store.Query(context.Background(), runlog.RunQuery{})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, rec := range recs {
		assert.Equal(t, "test", rec.Source)
		assert.Equal(t, 2, rec.Invalid)
	}
	opti, err := store.Query(context.Background(), runlog.RunQuery{Algorithm: scheduler.NameOptimizer})
	require.NoError(t, err)
	require.Len(t, opti, 1)
	assert.Equal(t, [2]uint64{7, 11}, opti[0].Seed)
}

func TestNewRunnerRejectsBadInput(t *testing.T) {
	bad := model.DefaultFacility()
	bad.Capacity.Parking = 0
	_, err := NewRunner(bad, testConfig())
	assert.ErrorIs(t, err, model.ErrInvalidFacility)

	cfg := testConfig()
	cfg.MaxSteps = -1
	_, err = NewRunner(model.DefaultFacility(), cfg)
	assert.ErrorIs(t, err, scheduler.ErrInvalidConfig)
}
