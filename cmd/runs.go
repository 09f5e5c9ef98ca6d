package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/spms/core/runlog"
)

var runsFlags struct {
	algorithm string
	since     time.Duration
	limit     int
	json      bool
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List past scheduling runs from the run log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := runlog.Open(cfg.RunLog)
		if err != nil {
			return err
		}
		defer store.Close()

		q := runlog.RunQuery{Algorithm: strings.ToLower(runsFlags.algorithm), Limit: runsFlags.limit}
		if runsFlags.since > 0 {
			q.Start = time.Now().Add(-runsFlags.since)
		}
		recs, err := store.Query(context.Background(), q)
		if err != nil {
			return err
		}
		if runsFlags.json {
			enc := json.NewEncoder(stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(recs)
		}
		tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tID\tPOLICY\tSOURCE\tACCEPTED\tREJECTED\tINVALID\tUTILIZATION\tDURATION")
		for _, r := range recs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%.2f%%\t%.1fms\n",
				r.Timestamp.Format(time.DateTime), shortID(r.ID), strings.ToUpper(r.Algorithm), r.Source,
				r.Accepted, r.Rejected, r.Invalid, 100*r.Utilization, r.DurationMS)
		}
		return tw.Flush()
	},
}

func init() {
	f := runsCmd.Flags()
	f.StringVarP(&runsFlags.algorithm, "algorithm", "a", "", "only runs of this policy")
	f.DurationVar(&runsFlags.since, "since", 0, "only runs newer than this, e.g. 24h")
	f.IntVarP(&runsFlags.limit, "limit", "l", 20, "most recent runs to show, all when zero")
	f.BoolVar(&runsFlags.json, "json", false, "print records as JSON")
	rootCmd.AddCommand(runsCmd)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
