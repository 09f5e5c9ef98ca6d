package scheduler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps scheduler configuration failures.
var ErrInvalidConfig = errors.New("invalid scheduler config")

// Config holds the tunables of the priority and optimizer policies.
type Config struct {
	MaxSteps int `json:"max_steps" yaml:"max_steps"`
	// Seed words of the optimizer random stream.
	Seed0 uint64 `json:"seed0" yaml:"seed0"`
	Seed1 uint64 `json:"seed1" yaml:"seed1"`

	InsertProb        float64 `json:"insert_prob" yaml:"insert_prob"`
	DeleteProb        float64 `json:"delete_prob" yaml:"delete_prob"`
	InitialAcceptProb float64 `json:"initial_accept_prob" yaml:"initial_accept_prob"`
	FinalAcceptProb   float64 `json:"final_accept_prob" yaml:"final_accept_prob"`
	RefDelta          float64 `json:"ref_delta" yaml:"ref_delta"`

	// Work window in minutes of the day, used by the priority policy.
	WorkStart int `json:"work_start" yaml:"work_start"`
	WorkEnd   int `json:"work_end" yaml:"work_end"`
}

// DefaultConfig returns the reference tunables.
func DefaultConfig() Config {
	return Config{
		MaxSteps:          1000,
		InsertProb:        0.9,
		DeleteProb:        0.3,
		InitialAcceptProb: 0.99,
		FinalAcceptProb:   0.01,
		RefDelta:          -0.1,
		WorkStart:         8 * 60,
		WorkEnd:           20 * 60,
	}
}

// SetDefaults fills zero fields with reference values.
func (c *Config) SetDefaults() {
	d := DefaultConfig()
	if c.MaxSteps == 0 {
		c.MaxSteps = d.MaxSteps
	}
	if c.InsertProb == 0 {
		c.InsertProb = d.InsertProb
	}
	if c.DeleteProb == 0 {
		c.DeleteProb = d.DeleteProb
	}
	if c.InitialAcceptProb == 0 {
		c.InitialAcceptProb = d.InitialAcceptProb
	}
	if c.FinalAcceptProb == 0 {
		c.FinalAcceptProb = d.FinalAcceptProb
	}
	if c.RefDelta == 0 {
		c.RefDelta = d.RefDelta
	}
	if c.WorkStart == 0 && c.WorkEnd == 0 {
		c.WorkStart, c.WorkEnd = d.WorkStart, d.WorkEnd
	}
}

// Validate rejects configurations the policies cannot run with.
func (c Config) Validate() error {
	if c.MaxSteps <= 0 {
		return fmt.Errorf("%w: max_steps must be positive, got %d", ErrInvalidConfig, c.MaxSteps)
	}
	for name, p := range map[string]float64{"insert_prob": c.InsertProb, "delete_prob": c.DeleteProb} {
		if p < 0 || p > 1 {
			return fmt.Errorf("%w: %s %v outside [0,1]", ErrInvalidConfig, name, p)
		}
	}
	// Both bounds are logarithms in the temperature formula.
	for name, p := range map[string]float64{"initial_accept_prob": c.InitialAcceptProb, "final_accept_prob": c.FinalAcceptProb} {
		if p <= 0 || p >= 1 {
			return fmt.Errorf("%w: %s %v outside (0,1)", ErrInvalidConfig, name, p)
		}
	}
	if c.RefDelta >= 0 {
		return fmt.Errorf("%w: ref_delta must be negative", ErrInvalidConfig)
	}
	if c.WorkStart < 0 || c.WorkEnd > 24*60 || c.WorkStart >= c.WorkEnd {
		return fmt.Errorf("%w: work window [%d, %d]", ErrInvalidConfig, c.WorkStart, c.WorkEnd)
	}
	return nil
}

// LoadConfig loads a Config from a JSON or YAML file. Missing fields take
// their default value.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return DecodeConfig(f, ext)
}

// DecodeConfig reads from r to decode a Config.
func DecodeConfig(r io.Reader, format string) (Config, error) {
	var cfg Config
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported format: %s", format)
	}
	cfg.SetDefaults()
	return cfg, cfg.Validate()
}
