package scheduler

import (
	"fmt"
	"strings"

	"github.com/kilianp07/spms/core/model"
)

// Constructor builds a scheduler from the shared configuration.
type Constructor func(f model.Facility, cfg Config, opts ...Option) (Scheduler, error)

var constructors = map[string]Constructor{
	NameFCFS: func(f model.Facility, _ Config, opts ...Option) (Scheduler, error) {
		return NewFCFS(f, opts...)
	},
	NamePriority: func(f model.Facility, cfg Config, opts ...Option) (Scheduler, error) {
		return NewPriority(f, cfg, opts...)
	},
	NameOptimizer: func(f model.Facility, cfg Config, opts ...Option) (Scheduler, error) {
		return NewOptimizer(f, cfg, opts...)
	},
}

// Names lists the available policies in report order.
func Names() []string { return []string{NameFCFS, NamePriority, NameOptimizer} }

// New returns the scheduler registered under name. Names are case-insensitive.
func New(name string, f model.Facility, cfg Config, opts ...Option) (Scheduler, error) {
	c, ok := constructors[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown scheduler %q", name)
	}
	return c(f, cfg, opts...)
}
