package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kilianp07/spms/core/model"
	"github.com/kilianp07/spms/core/scheduler"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `facility:
  days: 7
  start_date: "2025-05-10"
  capacity:
    parking: 12
members: ["A", "B", "C"]
scheduler:
  max_steps: 250
  seed0: 42
  seed1: 7
  work_start: 540
  work_end: 1080
workload:
  peak_hours: [9, 17]
metrics:
  sinks:
    - type: "nop"
    - type: "influx"
      conf:
        url: "http://localhost:8086"
        bucket: "spms"
runlog:
  backend: "sqlite"
  path: "runs.db"
mqtt:
  broker: "tcp://localhost:1883"
  topic: "lot/runs"
  qos: 1
logging:
  level: "debug"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	f, err := cfg.Facility.Facility()
	if err != nil {
		t.Fatalf("facility: %v", err)
	}
	members, err := cfg.MemberList()
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"parking", f.Capacity.Parking, 12},
		{"battery default", f.Capacity.BatteryCable, 3},
		{"margin default", f.Horizon.MarginMinutes, model.MinutesPerDay},
		{"members", len(members), 3},
		{"max_steps", cfg.Scheduler.MaxSteps, 250},
		{"seed0", cfg.Scheduler.Seed0, uint64(42)},
		{"insert_prob default", cfg.Scheduler.InsertProb, 0.9},
		{"work_start", cfg.Scheduler.WorkStart, 540},
		{"peak_hours", len(cfg.Workload.PeakHours), 2},
		{"sigma default", cfg.Workload.SigmaHours, 1.0},
		{"sinks", len(cfg.Metrics.Sinks), 2},
		{"influx bucket", cfg.Metrics.Sinks[1].Conf["bucket"], "spms"},
		{"runlog", cfg.RunLog.Backend, "sqlite"},
		{"mqtt topic", cfg.MQTT.Topic, "lot/runs"},
		{"mqtt qos", cfg.MQTT.QoS, byte(1)},
		{"mqtt client default", cfg.MQTT.ClientID, "spms"},
		{"level", cfg.Logging.Level, "debug"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Fatalf("%s: got %v (%T) want %v (%T)", c.name, c.got, c.got, c.want, c.want)
		}
	}
}

func TestLoadJSONWithEnv(t *testing.T) {
	path := writeConfig(t, "config.json", `{"scheduler": {"max_steps": 10}, "runlog": {"backend": "none"}}`)
	t.Setenv("SPMS_SCHEDULER__MAX_STEPS", "75")
	t.Setenv("SPMS_MQTT__BROKER", "tcp://broker:1883")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scheduler.MaxSteps != 75 {
		t.Fatalf("env override not applied: %d", cfg.Scheduler.MaxSteps)
	}
	if !cfg.MQTT.Enabled() {
		t.Fatalf("expected mqtt enabled from env")
	}
	if cfg.RunLog.Backend != "none" {
		t.Fatalf("unexpected runlog backend %s", cfg.RunLog.Backend)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := Default()
	if cfg.Scheduler != def.Scheduler {
		t.Fatalf("expected defaults, got %+v", cfg.Scheduler)
	}
	if cfg.Scheduler != scheduler.DefaultConfig() {
		t.Fatalf("default scheduler config drifted: %+v", cfg.Scheduler)
	}
	if cfg.RunLog.Backend != "jsonl" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected defaults %+v %+v", cfg.RunLog, cfg.Logging)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]string{
		"format.toml":    `x = 1`,
		"steps.yaml":     "scheduler:\n  max_steps: -5\n",
		"prob.yaml":      "scheduler:\n  insert_prob: 1.5\n",
		"capacity.yaml":  "facility:\n  capacity:\n    parking: -1\n",
		"members.yaml":   "members: [\"A\", \"AB\"]\n",
		"duplicate.yaml": "members: [\"A\", \"A\"]\n",
		"backend.yaml":   "runlog:\n  backend: redis\n",
		"level.yaml":     "logging:\n  level: loud\n",
	}
	for name, data := range cases {
		path := writeConfig(t, name, data)
		if _, err := Load(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
