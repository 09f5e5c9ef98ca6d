// Package cmd implements the spms command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/spms/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "spms",
	Short: "Smart parking management: booking console and scheduling policies",
	Long: `spms allocates parking slots and essential equipment to bookings over a
one-week horizon and compares first-come-first-served, priority and
simulated-annealing scheduling. Without a subcommand it starts the console.`,
	SilenceUsage: true,
	RunE:         runConsole,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json); defaults and SPMS_* variables apply when empty")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
