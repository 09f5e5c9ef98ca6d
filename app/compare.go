package app

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/spms/core/model"
	"github.com/kilianp07/spms/core/workload"
)

// CompareConfig describes a comparison experiment.
type CompareConfig struct {
	Requests    int
	Trials      int
	Parallelism int
	// Seed is the first word of every trial's workload seed; the trial
	// index is the second.
	Seed    uint64
	Profile workload.Profile
	Members []model.Member
}

// Summary aggregates one policy over all trials.
type Summary struct {
	Algorithm    string    `json:"algorithm"`
	Mean         float64   `json:"mean"`
	StdDev       float64   `json:"stddev"`
	Min          float64   `json:"min"`
	Max          float64   `json:"max"`
	MeanAccepted float64   `json:"mean_accepted"`
	Samples      []float64 `json:"samples"`
}

// Compare generates cfg.Trials synthetic workloads and schedules each with
// every named policy. Trials run concurrently, at most cfg.Parallelism at a
// time.
func (r *Runner) Compare(ctx context.Context, cfg CompareConfig, parser workload.Parser, names []string) ([]Summary, error) {
	if cfg.Trials <= 0 || cfg.Requests <= 0 {
		return nil, fmt.Errorf("compare needs positive trials and requests, got %d and %d", cfg.Trials, cfg.Requests)
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = runtime.GOMAXPROCS(0)
	}
	util := make([][]float64, len(names))
	accepted := make([][]float64, len(names))
	for i := range names {
		util[i] = make([]float64, cfg.Trials)
		accepted[i] = make([]float64, cfg.Trials)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Parallelism)
	for t := 0; t < cfg.Trials; t++ {
		g.Go(func() error {
			gen, err := workload.NewGenerator(r.facility.Horizon, cfg.Profile, cfg.Members, cfg.Seed, uint64(t)+1)
			if err != nil {
				return err
			}
			l, invalid := gen.Ledger(parser, cfg.Requests)
			results, err := r.Run(gctx, l, names, Meta{Source: fmt.Sprintf("compare/%d", t), Invalid: invalid})
			if err != nil {
				return err
			}
			for i, res := range results {
				util[i][t] = res.Stats.Utilization(r.facility).Total
				accepted[i][t] = res.Stats.AcceptanceRate()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Summary, len(names))
	for i, name := range names {
		mean, std := stat.MeanStdDev(util[i], nil)
		if cfg.Trials == 1 {
			std = 0
		}
		out[i] = Summary{
			Algorithm:    name,
			Mean:         mean,
			StdDev:       std,
			Min:          floats.Min(util[i]),
			Max:          floats.Max(util[i]),
			MeanAccepted: stat.Mean(accepted[i], nil),
			Samples:      util[i],
		}
	}
	return out, nil
}
