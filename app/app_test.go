package app

import (
	"testing"

	"github.com/kilianp07/spms/core/booking"
	"github.com/kilianp07/spms/core/model"
	"github.com/kilianp07/spms/core/scheduler"
)

func testConfig() scheduler.Config {
	cfg := scheduler.DefaultConfig()
	cfg.MaxSteps = 60
	cfg.Seed0, cfg.Seed1 = 7, 11
	return cfg
}

func newTestParser(t *testing.T) *booking.Parser {
	t.Helper()
	p, err := booking.NewParser(model.DefaultHorizon(), nil, scheduler.Names())
	if err != nil {
		t.Fatalf("parser: %v", err)
	}
	return p
}

func newTestRunner(t *testing.T, opts ...RunnerOption) *Runner {
	t.Helper()
	r, err := NewRunner(model.DefaultFacility(), testConfig(), opts...)
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	return r
}

func testReport() Report {
	return Report{Facility: model.DefaultFacility(), Members: model.DefaultMembers}
}
