package cmd

import (
	"context"
	"fmt"

	"github.com/kilianp07/spms/app"
	"github.com/kilianp07/spms/config"
	"github.com/kilianp07/spms/core/booking"
	coremetrics "github.com/kilianp07/spms/core/metrics"
	"github.com/kilianp07/spms/core/model"
	"github.com/kilianp07/spms/core/runlog"
	"github.com/kilianp07/spms/core/scheduler"
	"github.com/kilianp07/spms/infra/logger"
	inframetrics "github.com/kilianp07/spms/infra/metrics"
	"github.com/kilianp07/spms/infra/mqtt"
	"github.com/kilianp07/spms/internal/eventbus"
)

// env holds the components shared by the subcommands.
type env struct {
	cfg      *config.Config
	facility model.Facility
	members  []model.Member
	parser   *booking.Parser
	runner   *app.Runner
	bus      *eventbus.Bus
	store    runlog.LogStore
	log      logger.Logger

	sink      coremetrics.MetricsSink
	collected <-chan struct{}
}

// newEnv builds the parser, metrics pipeline, run log and runner from cfg.
// Callers must call close.
func newEnv(ctx context.Context, cfg *config.Config) (*env, error) {
	if err := logger.SetDefaultLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, log: logger.New("cli")}
	var err error
	if e.facility, err = cfg.Facility.Facility(); err != nil {
		return nil, err
	}
	if e.members, err = cfg.MemberList(); err != nil {
		return nil, err
	}
	if e.parser, err = booking.NewParser(e.facility.Horizon, e.members, scheduler.Names()); err != nil {
		return nil, err
	}

	if e.sink, err = coremetrics.NewMetricsSink(cfg.Metrics.Sinks); err != nil {
		return nil, fmt.Errorf("metrics sinks: %w", err)
	}
	if cfg.MQTT.Enabled() {
		pub, err := mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			closeSink(e.sink)
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		e.sink = coremetrics.NewMultiSink(e.sink, pub)
	}
	if e.store, err = runlog.Open(cfg.RunLog); err != nil {
		closeSink(e.sink)
		return nil, fmt.Errorf("run log: %w", err)
	}

	e.bus = eventbus.New()
	e.collected = inframetrics.StartEventCollector(ctx, e.bus.Subscribe(), e.sink)
	e.runner, err = app.NewRunner(e.facility, cfg.Scheduler,
		app.WithRunnerLogger(logger.New("scheduler")),
		app.WithBus(e.bus, cfg.Metrics.RecordSteps),
		app.WithStore(e.store))
	if err != nil {
		e.close()
		return nil, err
	}
	return e, nil
}

func (e *env) report() app.Report {
	return app.Report{Facility: e.facility, Members: e.members}
}

func (e *env) session(opts ...app.SessionOption) *app.Session {
	opts = append([]app.SessionOption{
		app.WithSessionLogger(logger.New("session")),
		app.WithInvalidEvents(e.bus),
	}, opts...)
	return app.NewSession(e.parser, e.runner, e.report(), stdout, opts...)
}

// close drains pending metrics events and releases the stores and sinks.
func (e *env) close() {
	e.bus.Close()
	<-e.collected
	if d := e.bus.Dropped(); d > 0 {
		e.log.Warnf("%d metrics events dropped", d)
	}
	if err := e.store.Close(); err != nil {
		e.log.Warnf("close run log: %v", err)
	}
	closeSink(e.sink)
}

func closeSink(s coremetrics.MetricsSink) {
	switch v := s.(type) {
	case *coremetrics.MultiSink:
		for _, inner := range v.Sinks {
			closeSink(inner)
		}
	case interface{ Close() }:
		v.Close()
	case interface{ Disconnect() }:
		v.Disconnect()
	}
}
