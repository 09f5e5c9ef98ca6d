package cmd

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/kilianp07/spms/api/runs"
	"github.com/kilianp07/spms/core/runlog"
	"github.com/kilianp07/spms/infra/logger"
	inframetrics "github.com/kilianp07/spms/infra/metrics"
)

var serveFlags struct {
	addr  string
	token string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve Prometheus metrics and the run log API",
	Long: `Serve /metrics and GET /api/runs until interrupted. /api/runs accepts the
start, end (RFC 3339), algorithm and limit query parameters and requires
"Authorization: Bearer <token>" when --token is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext()
		defer stop()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := logger.SetDefaultLevel(cfg.Logging.Level); err != nil {
			return err
		}
		store, err := runlog.Open(cfg.RunLog)
		if err != nil {
			return err
		}
		defer store.Close()

		addr := serveFlags.addr
		if addr == "" {
			addr = cfg.Metrics.ListenAddr
		}
		if addr == "" {
			addr = ":2112"
		}
		return serveHTTP(ctx, addr, store, serveFlags.token)
	},
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.addr, "addr", "", "listen address, metrics.listen_addr or :2112 when empty")
	f.StringVar(&serveFlags.token, "token", "", "bearer token required by /api/runs")
	rootCmd.AddCommand(serveCmd)
}

// serveHTTP exposes the default registry and the run log on addr until ctx
// is canceled.
func serveHTTP(ctx context.Context, addr string, store runlog.LogStore, token string) error {
	return inframetrics.ServeRegistry(ctx, addr, prometheus.DefaultGatherer,
		inframetrics.Route{Pattern: runs.Path, Handler: runs.NewHandler(store, token)})
}

// startServer serves metrics and the run log in the background when addr,
// or metrics.listen_addr, is set.
func startServer(ctx context.Context, e *env, addr string) {
	if addr == "" {
		addr = e.cfg.Metrics.ListenAddr
	}
	if addr == "" {
		return
	}
	go func() {
		if err := serveHTTP(ctx, addr, e.store, ""); err != nil {
			e.log.Errorf("http server: %v", err)
		}
	}()
}
