package cmd

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

var consoleServe string

var consoleCmd = &cobra.Command{
	Use:   "console [batch-file...]",
	Short: "Read booking commands interactively",
	Long: `Read booking commands from standard input, one per line:

  addParking -member_A 2025-05-10 09:00 2.0 battery cable;
  addBatch -batch001.dat;
  printBookings -ALL;
  endProgram;

Batch files given as arguments are loaded before the prompt.`,
	RunE: runConsole,
}

func init() {
	consoleCmd.Flags().StringVar(&consoleServe, "serve-metrics", "", "serve /metrics and /api/runs on this address during the session")
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(cmd *cobra.Command, args []string) error {
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
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	startServer(ctx, e, consoleServe)

	s := e.session()
	for _, path := range args {
		done, err := s.RunBatch(ctx, path)
		if err != nil || done {
			return err
		}
	}
	return s.RunConsole(ctx, stdin)
}
