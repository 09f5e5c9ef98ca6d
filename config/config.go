// Package config loads the SPMS configuration from a YAML or JSON file
// with environment overrides.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/spms/core/metrics"
	"github.com/kilianp07/spms/core/model"
	"github.com/kilianp07/spms/core/runlog"
	"github.com/kilianp07/spms/core/scheduler"
	"github.com/kilianp07/spms/core/workload"
	"github.com/kilianp07/spms/infra/mqtt"
)

// EnvPrefix marks environment overrides. SPMS_SCHEDULER__MAX_STEPS=50 sets
// scheduler.max_steps.
const EnvPrefix = "SPMS_"

type Config struct {
	Facility  FacilityConfig   `json:"facility"`
	Members   []string         `json:"members"`
	Scheduler scheduler.Config `json:"scheduler"`
	Workload  workload.Profile `json:"workload"`
	Metrics   metrics.Config   `json:"metrics"`
	RunLog    runlog.Config    `json:"runlog"`
	MQTT      mqtt.Config      `json:"mqtt"`
	Logging   LoggingConfig    `json:"logging"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// Load reads path and applies environment overrides. An empty path skips
// the file and starts from defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Facility.SetDefaults()
	c.Scheduler.SetDefaults()
	c.Workload.SetDefaults()
	c.RunLog.SetDefaults()
	c.MQTT.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if _, err := c.Facility.Facility(); err != nil {
		return err
	}
	if _, err := c.MemberList(); err != nil {
		return err
	}
	return errors.Join(
		c.Scheduler.Validate(),
		c.Workload.Validate(),
		c.RunLog.Validate(),
		c.MQTT.Validate(),
		c.Logging.Validate(),
	)
}

// MemberList converts Members, defaulting to model.DefaultMembers.
func (c Config) MemberList() ([]model.Member, error) {
	if len(c.Members) == 0 {
		return slices.Clone(model.DefaultMembers), nil
	}
	out := make([]model.Member, 0, len(c.Members))
	for _, s := range c.Members {
		var m model.Member
		if err := m.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
			return nil, fmt.Errorf("members: %w", err)
		}
		if slices.Contains(out, m) {
			return nil, fmt.Errorf("members: duplicate %s", m)
		}
		out = append(out, m)
	}
	return out, nil
}

// FacilityConfig is the flat configuration form of model.Facility.
type FacilityConfig struct {
	Days          int            `json:"days"`
	MarginMinutes int            `json:"margin_minutes"`
	StartDate     string         `json:"start_date"`
	Capacity      model.Capacity `json:"capacity"`
}

// SetDefaults fills zero fields from model.DefaultFacility.
func (c *FacilityConfig) SetDefaults() {
	d := model.DefaultFacility()
	if c.Days == 0 {
		c.Days = d.Horizon.Days
	}
	if c.MarginMinutes == 0 {
		c.MarginMinutes = d.Horizon.MarginMinutes
	}
	if c.StartDate == "" {
		c.StartDate = d.Horizon.StartDate
	}
	for _, f := range []struct {
		v *int
		d int
	}{
		{&c.Capacity.Parking, d.Capacity.Parking},
		{&c.Capacity.BatteryCable, d.Capacity.BatteryCable},
		{&c.Capacity.LockerUmbrella, d.Capacity.LockerUmbrella},
		{&c.Capacity.ValetInflation, d.Capacity.ValetInflation},
	} {
		if *f.v == 0 {
			*f.v = f.d
		}
	}
}

// Facility returns the validated facility.
func (c FacilityConfig) Facility() (model.Facility, error) {
	f := model.Facility{
		Horizon:  model.Horizon{Days: c.Days, MarginMinutes: c.MarginMinutes, StartDate: c.StartDate},
		Capacity: c.Capacity,
	}
	return f, f.Validate()
}

// LoggingConfig sets the default log level.
type LoggingConfig struct {
	Level string `json:"level"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

// Validate checks the level name.
func (c LoggingConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
		return nil
	}
	return fmt.Errorf("unknown log level %q", c.Level)
}
