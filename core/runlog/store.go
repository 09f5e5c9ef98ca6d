// Package runlog persists one record per scheduling run and lets the CLI
// query past runs.
package runlog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunRecord captures the outcome of one scheduling run.
type RunRecord struct {
	ID          string             `json:"id"`
	Timestamp   time.Time          `json:"timestamp"`
	Algorithm   string             `json:"algorithm"`
	Source      string             `json:"source,omitempty"`
	Seed        [2]uint64          `json:"seed"`
	Steps       int                `json:"steps"`
	Received    int                `json:"received"`
	Accepted    int                `json:"accepted"`
	Rejected    int                `json:"rejected"`
	Invalid     int                `json:"invalid"`
	Utilization float64            `json:"utilization"`
	PerCategory map[string]float64 `json:"per_category"`
	DurationMS  float64            `json:"duration_ms"`
}

// NewRunID returns a random run identifier.
func NewRunID() string { return uuid.NewString() }

// RunQuery defines filters for retrieving records. Zero values match all.
type RunQuery struct {
	Start     time.Time
	End       time.Time
	Algorithm string
	// Limit keeps the most recent records when positive.
	Limit int
}

func (q RunQuery) match(r RunRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	return q.Algorithm == "" || r.Algorithm == q.Algorithm
}

// limit keeps the last n records of res, which is sorted by time.
func (q RunQuery) limit(res []RunRecord) []RunRecord {
	if q.Limit > 0 && len(res) > q.Limit {
		return res[len(res)-q.Limit:]
	}
	return res
}

// LogStore persists RunRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q RunQuery) ([]RunRecord, error)
	Close() error
}

// Config selects and configures a store.
type Config struct {
	// Backend is one of "jsonl", "sqlite" or "none".
	Backend string `json:"backend" yaml:"backend"`
	Path    string `json:"path" yaml:"path"`
	// Rotation settings of the jsonl backend. MaxSizeMB = 0 disables rotation.
	MaxSizeMB  int `json:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int `json:"max_backups" yaml:"max_backups"`
	MaxAgeDays int `json:"max_age_days" yaml:"max_age_days"`
}

// SetDefaults fills zero fields.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		switch c.Backend {
		case "sqlite":
			c.Path = "spms-runs.db"
		default:
			c.Path = "spms-runs.jsonl"
		}
	}
}

// Validate checks the backend name and rotation settings.
func (c Config) Validate() error {
	switch c.Backend {
	case "jsonl", "sqlite", "none":
	default:
		return fmt.Errorf("unknown runlog backend %q", c.Backend)
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return fmt.Errorf("runlog rotation settings must not be negative")
	}
	return nil
}

// Open returns the store selected by cfg.
func Open(cfg Config) (LogStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	case "none":
		return NopStore{}, nil
	}
	if cfg.MaxSizeMB > 0 {
		return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	}
	return NewJSONLStore(cfg.Path)
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Append(context.Context, RunRecord) error              { return nil }
func (NopStore) Query(context.Context, RunQuery) ([]RunRecord, error) { return nil, nil }
func (NopStore) Close() error                                         { return nil }
