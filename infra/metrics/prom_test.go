package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kilianp07/spms/core/metrics"
)

func TestPromSink_RecordRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	sink, ok := sinkIf.(*PromSink)
	if !ok {
		t.Fatalf("expected PromSink")
	}
	ev := coremetrics.RunEvent{
		RunID:       "r1",
		Algorithm:   "fcfs",
		Received:    11,
		Accepted:    10,
		Rejected:    1,
		Utilization: 0.25,
		PerCategory: map[string]float64{"parking": 0.5},
		Duration:    20 * time.Millisecond,
	}
	if err := sink.RecordRun(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}

	expected := `
# HELP spms_requests_total Requests handled by scheduling runs, by outcome
# TYPE spms_requests_total counter
spms_requests_total{algorithm="fcfs",outcome="accepted"} 10
spms_requests_total{algorithm="fcfs",outcome="rejected"} 1
`
	if err := testutil.CollectAndCompare(sink.requests, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if v := testutil.ToFloat64(sink.utilization.WithLabelValues("fcfs", "parking")); v != 0.5 {
		t.Errorf("expected parking utilization 0.5 got %v", v)
	}
	if v := testutil.ToFloat64(sink.runs.WithLabelValues("fcfs")); v != 1 {
		t.Errorf("expected one run got %v", v)
	}
	if c := testutil.CollectAndCount(sink.duration); c == 0 {
		t.Errorf("duration not recorded")
	}
}

func TestPromSink_OptimizerAndInvalid(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	sink := sinkIf.(*PromSink)
	_ = sink.RecordOptimizerStep(coremetrics.OptimizerStepEvent{RunID: "r2", Best: 0.4})
	if v := testutil.ToFloat64(sink.best.WithLabelValues("r2")); v != 0.4 {
		t.Fatalf("expected best 0.4 got %v", v)
	}
	_ = sink.RecordRun(coremetrics.RunEvent{RunID: "r2", Algorithm: "opti"})
	if c := testutil.CollectAndCount(sink.best); c != 0 {
		t.Fatalf("progress gauge should be removed after the run, got %d series", c)
	}
	_ = sink.RecordInvalidCommand(coremetrics.InvalidCommandEvent{Reason: "bad"})
	_ = sink.RecordInvalidCommand(coremetrics.InvalidCommandEvent{Reason: "bad", Source: "batch.dat"})
	if v := testutil.ToFloat64(sink.invalid.WithLabelValues("console")); v != 1 {
		t.Fatalf("expected one console failure got %v", v)
	}
}

func TestPromSink_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("first sink: %v", err)
	}
	b, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second sink should reuse collectors: %v", err)
	}
	_ = a.RecordRun(coremetrics.RunEvent{Algorithm: "prio"})
	_ = b.RecordRun(coremetrics.RunEvent{Algorithm: "prio"})
	if v := testutil.ToFloat64(a.(*PromSink).runs.WithLabelValues("prio")); v != 2 {
		t.Fatalf("expected shared counter at 2 got %v", v)
	}
}
