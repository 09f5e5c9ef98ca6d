package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/kilianp07/spms/core/workload"
)

var genFlags struct {
	requests int
	seed0    uint64
	seed1    uint64
	profile  string
	out      string
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a synthetic batch file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		profile := cfg.Workload
		if genFlags.profile != "" {
			if profile, err = workload.LoadProfile(genFlags.profile); err != nil {
				return err
			}
		}
		f, err := cfg.Facility.Facility()
		if err != nil {
			return err
		}
		members, err := cfg.MemberList()
		if err != nil {
			return err
		}
		g, err := workload.NewGenerator(f.Horizon, profile, members, genFlags.seed0, genFlags.seed1)
		if err != nil {
			return err
		}
		if genFlags.out == "" {
			return g.WriteBatch(stdout, genFlags.requests)
		}
		return writeFile(genFlags.out, func(w io.Writer) error {
			return g.WriteBatch(w, genFlags.requests)
		})
	},
}

func init() {
	f := generateCmd.Flags()
	f.IntVarP(&genFlags.requests, "requests", "n", 100, "number of commands")
	f.Uint64Var(&genFlags.seed0, "seed", 1, "first seed word")
	f.Uint64Var(&genFlags.seed1, "seed1", 2, "second seed word")
	f.StringVar(&genFlags.profile, "profile", "", "workload profile (yaml); the config's workload section otherwise")
	f.StringVarP(&genFlags.out, "out", "o", "", "output file, stdout when empty")
	rootCmd.AddCommand(generateCmd)
}
