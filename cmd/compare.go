package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/spms/app"
	"github.com/kilianp07/spms/core/scheduler"
)

var cmpFlags struct {
	requests int
	trials   int
	parallel int
	seed     uint64
	json     bool
}

var compareCmd = &cobra.Command{
	Use:   "compare [policy...]",
	Short: "Compare policies over synthetic workloads",
	Long: `Generate --trials synthetic workloads of --requests commands each and
schedule every workload with each policy. Reports mean, standard deviation
and range of the overall utilization.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		e, err := newEnv(ctx, cfg)
		if err != nil {
			return err
		}
		defer e.close()

		names := args
		if len(names) == 0 {
			names = scheduler.Names()
		}
		for _, n := range names {
			if err := validAlgorithm(n); err != nil {
				return err
			}
		}
		sums, err := e.runner.Compare(ctx, app.CompareConfig{
			Requests:    cmpFlags.requests,
			Trials:      cmpFlags.trials,
			Parallelism: cmpFlags.parallel,
			Seed:        cmpFlags.seed,
			Profile:     cfg.Workload,
			Members:     e.members,
		}, e.parser, names)
		if err != nil {
			return err
		}
		if cmpFlags.json {
			enc := json.NewEncoder(stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(sums)
		}
		tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "POLICY\tMEAN\tSTDDEV\tMIN\tMAX\tACCEPTED")
		for _, s := range sums {
			fmt.Fprintf(tw, "%s\t%.2f%%\t%.2f\t%.2f%%\t%.2f%%\t%.2f%%\n",
				strings.ToUpper(s.Algorithm), 100*s.Mean, 100*s.StdDev, 100*s.Min, 100*s.Max, 100*s.MeanAccepted)
		}
		return tw.Flush()
	},
}

func init() {
	f := compareCmd.Flags()
	f.IntVarP(&cmpFlags.requests, "requests", "n", 200, "commands per workload")
	f.IntVarP(&cmpFlags.trials, "trials", "t", 10, "number of workloads")
	f.IntVarP(&cmpFlags.parallel, "parallel", "p", 0, "concurrent trials, GOMAXPROCS when zero")
	f.Uint64Var(&cmpFlags.seed, "seed", 1, "workload seed")
	f.BoolVar(&cmpFlags.json, "json", false, "print the summaries as JSON")
	rootCmd.AddCommand(compareCmd)
}
