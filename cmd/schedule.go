package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/spms/app"
	"github.com/kilianp07/spms/core/audit"
	"github.com/kilianp07/spms/core/booking"
	"github.com/kilianp07/spms/core/scheduler"
	"github.com/kilianp07/spms/pkg/export"
)

type scheduleFlags struct {
	algorithm    string
	format       string
	out          string
	serveMetrics string
	seed         uint64
	steps        int
	audit        bool
}

var schedFlags scheduleFlags

var scheduleCmd = &cobra.Command{
	Use:   "schedule <batch-file>...",
	Short: "Load batch files and print the resulting bookings",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("seed") {
			cfg.Scheduler.Seed0 = schedFlags.seed
		}
		if cmd.Flags().Changed("steps") {
			cfg.Scheduler.MaxSteps = schedFlags.steps
			if err := cfg.Scheduler.Validate(); err != nil {
				return err
			}
		}
		e, err := newEnv(ctx, cfg)
		if err != nil {
			return err
		}
		defer e.close()
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		startServer(ctx, e, schedFlags.serveMetrics)
		return runSchedule(ctx, e, args, schedFlags)
	},
}

func init() {
	f := scheduleCmd.Flags()
	f.StringVarP(&schedFlags.algorithm, "algorithm", "a", booking.AlgorithmAll, "policy to run: fcfs, prio, opti or all")
	f.StringVar(&schedFlags.format, "export", "", "also export bookings as json or csv")
	f.StringVarP(&schedFlags.out, "out", "o", "", "export file; the policy name is inserted before the extension when several run")
	f.StringVar(&schedFlags.serveMetrics, "serve-metrics", "", "serve /metrics and /api/runs on this address while running")
	f.Uint64Var(&schedFlags.seed, "seed", 0, "first seed word of the optimizer")
	f.IntVar(&schedFlags.steps, "steps", 0, "optimizer step budget")
	f.BoolVar(&schedFlags.audit, "audit", false, "verify capacity and instance exclusivity of every schedule")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(ctx context.Context, e *env, files []string, fl scheduleFlags) error {
	algorithm := strings.ToLower(fl.algorithm)
	if err := validAlgorithm(algorithm); err != nil {
		return err
	}
	s := e.session()
	for _, path := range files {
		done, err := s.RunBatch(ctx, path)
		if err != nil {
			return err
		}
		if done {
			break
		}
	}
	results, err := s.Print(ctx, algorithm)
	if err != nil {
		return err
	}
	if fl.audit {
		var errs []error
		for _, res := range results {
			if err := audit.Check(res.Stats, e.facility); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", res.Stats.Algorithm, err))
			}
		}
		if err := errors.Join(errs...); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Audit passed for %d schedule(s)\n", len(results))
	}
	if fl.format != "" {
		return exportResults(e, results, fl.format, fl.out)
	}
	return nil
}

func validAlgorithm(algorithm string) error {
	if algorithm == booking.AlgorithmAll {
		return nil
	}
	if !slices.Contains(scheduler.Names(), algorithm) {
		return fmt.Errorf("%w: %s", booking.ErrUnknownAlgorithm, algorithm)
	}
	return nil
}

func exportResults(e *env, results []app.Result, format, out string) error {
	for _, res := range results {
		if out == "" {
			if err := export.Write(stdout, format, res.Stats, e.facility); err != nil {
				return err
			}
			continue
		}
		path := out
		if len(results) > 1 {
			path = withSuffix(out, strings.ToLower(res.Stats.Algorithm))
		}
		if err := writeFile(path, func(w io.Writer) error {
			return export.Write(w, format, res.Stats, e.facility)
		}); err != nil {
			return err
		}
		e.log.Infof("exported %s bookings to %s", res.Stats.Algorithm, path)
	}
	return nil
}

func withSuffix(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + suffix + ext
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
