package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/spms/core/scheduler"
	"github.com/kilianp07/spms/core/workload"
)

func TestCompare(t *testing.T) {
	r := newTestRunner(t)
	cfg := CompareConfig{Requests: 120, Trials: 4, Parallelism: 2, Seed: 3, Profile: workload.DefaultProfile()}
	out, err := r.Compare(context.Background(), cfg, newTestParser(t), scheduler.Names())
	require.NoError(t, err)
	require.Len(t, out, 3)
	for _, s := range out {
		require.Len(t, s.Samples, 4)
		assert.Greater(t, s.Mean, 0.0, s.Algorithm)
		assert.LessOrEqual(t, s.Min, s.Mean)
		assert.GreaterOrEqual(t, s.Max, s.Mean)
		assert.GreaterOrEqual(t, s.StdDev, 0.0)
		assert.Greater(t, s.MeanAccepted, 0.0)
	}

	again, err := r.Compare(context.Background(), cfg, newTestParser(t), scheduler.Names())
	require.NoError(t, err)
	assert.Equal(t, out, again, "trials are seeded")
}

func TestCompareSingleTrial(t *testing.T) {
	r := newTestRunner(t)
	cfg := CompareConfig{Requests: 20, Trials: 1, Seed: 1, Profile: workload.DefaultProfile()}
	out, err := r.Compare(context.Background(), cfg, newTestParser(t), []string{scheduler.NameFCFS})
	require.NoError(t, err)
	assert.Equal(t, 0.0, out[0].StdDev)
}

func TestCompareRejectsEmpty(t *testing.T) {
	r := newTestRunner(t)
	_, err := r.Compare(context.Background(), CompareConfig{Trials: 0, Requests: 5}, newTestParser(t), scheduler.Names())
	assert.Error(t, err)
}
