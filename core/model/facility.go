package model

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar date format used by bookings and reports.
const DateLayout = "2006-01-02"

// Horizon is the scheduling window.
type Horizon struct {
	Days          int    `json:"days"`
	MarginMinutes int    `json:"margin_minutes"`
	StartDate     string `json:"start_date"`
}

// DefaultHorizon returns the one-week horizon starting 2025-05-10.
func DefaultHorizon() Horizon {
	return Horizon{Days: 7, MarginMinutes: MinutesPerDay, StartDate: "2025-05-10"}
}

// Minutes returns the horizon length.
func (h Horizon) Minutes() int { return h.Days * MinutesPerDay }

// Bounds returns the inclusive minute range covered by allocation tables.
func (h Horizon) Bounds() (int, int) {
	return -h.MarginMinutes, h.Minutes() - 1 + h.MarginMinutes
}

// Origin returns midnight of day 0 in UTC.
func (h Horizon) Origin() (time.Time, error) {
	return time.Parse(DateLayout, h.StartDate)
}

// Date returns the calendar date of horizon day d.
func (h Horizon) Date(d int) string {
	o, err := h.Origin()
	if err != nil {
		return fmt.Sprintf("day-%d", d)
	}
	return o.AddDate(0, 0, d).Format(DateLayout)
}

// Validate rejects degenerate horizons.
func (h Horizon) Validate() error {
	if h.Days <= 0 {
		return fmt.Errorf("horizon days must be positive, got %d", h.Days)
	}
	if h.MarginMinutes < 0 {
		return fmt.Errorf("horizon margin must not be negative, got %d", h.MarginMinutes)
	}
	if _, err := h.Origin(); err != nil {
		return fmt.Errorf("horizon start date: %w", err)
	}
	return nil
}

// Capacity holds the number of instances in each category.
type Capacity struct {
	Parking        int `json:"parking"`
	BatteryCable   int `json:"battery_cable"`
	LockerUmbrella int `json:"locker_umbrella"`
	ValetInflation int `json:"valet_inflation"`
}

// DefaultCapacity returns 10 parking slots and 3 instances per essential pair.
func DefaultCapacity() Capacity {
	return Capacity{Parking: 10, BatteryCable: 3, LockerUmbrella: 3, ValetInflation: 3}
}

// Of returns the instance count of category c.
func (c Capacity) Of(cat Category) int {
	switch cat {
	case CategoryParking:
		return c.Parking
	case CategoryBatteryCable:
		return c.BatteryCable
	case CategoryLockerUmbrella:
		return c.LockerUmbrella
	case CategoryValetInflation:
		return c.ValetInflation
	default:
		return 0
	}
}

// Total returns the number of resource instances across all categories.
func (c Capacity) Total() int {
	return c.Parking + c.BatteryCable + c.LockerUmbrella + c.ValetInflation
}

// Validate requires every category to have at least one instance.
func (c Capacity) Validate() error {
	for _, cat := range AllCategories {
		if c.Of(cat) <= 0 {
			return fmt.Errorf("capacity of %s must be positive, got %d", cat, c.Of(cat))
		}
	}
	return nil
}

// Facility describes the horizon and resource pools of a scheduling run.
type Facility struct {
	Horizon  Horizon  `json:"horizon"`
	Capacity Capacity `json:"capacity"`
}

// ErrInvalidFacility wraps facility validation failures.
var ErrInvalidFacility = errors.New("invalid facility")

// DefaultFacility returns the reference one-week, 19-instance facility.
func DefaultFacility() Facility {
	return Facility{Horizon: DefaultHorizon(), Capacity: DefaultCapacity()}
}

// Validate checks horizon and capacity.
func (f Facility) Validate() error {
	if err := f.Horizon.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFacility, err)
	}
	if err := f.Capacity.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFacility, err)
	}
	return nil
}

// ResourceMinutes is the denominator of the utilization ratio.
func (f Facility) ResourceMinutes() int {
	return f.Horizon.Minutes() * f.Capacity.Total()
}
