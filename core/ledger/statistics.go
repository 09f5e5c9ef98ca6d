package ledger

import (
	"maps"
	"slices"

	"github.com/kilianp07/spms/core/model"
)

// Statistics is the outcome of one scheduling run.
type Statistics struct {
	Algorithm string
	Accepted  *Ledger
	Rejected  *Ledger
	// Placements maps the order of each accepted request to the
	// instances it holds.
	Placements map[int]model.Placement
}

// NewStatistics returns empty statistics for the named algorithm.
func NewStatistics(algorithm string) Statistics {
	return Statistics{
		Algorithm:  algorithm,
		Accepted:   &Ledger{},
		Rejected:   &Ledger{},
		Placements: map[int]model.Placement{},
	}
}

// Received is the number of requests handed to the scheduler.
func (s Statistics) Received() int { return s.Accepted.Len() + s.Rejected.Len() }

// AcceptanceRate returns accepted/received, 0 when nothing was received.
func (s Statistics) AcceptanceRate() float64 {
	n := s.Received()
	if n == 0 {
		return 0
	}
	return float64(s.Accepted.Len()) / float64(n)
}

// Utilization is the occupied fraction of resource-minutes.
type Utilization struct {
	PerCategory map[model.Category]float64
	Total       float64
}

// Utilization computes the occupied fraction of each category and of the
// whole facility. Minutes spilling past the horizon are counted as booked.
func (s Statistics) Utilization(f model.Facility) Utilization {
	u := Utilization{PerCategory: make(map[model.Category]float64, len(model.AllCategories))}
	minutes := f.Horizon.Minutes()
	if minutes <= 0 {
		return u
	}
	var total int
	used := make(map[model.Category]int, len(model.AllCategories))
	s.Accepted.Each(func(r model.Request) bool {
		for _, c := range model.Requested(r.Parking, r.Essentials) {
			used[c] += r.Duration
		}
		total += r.Volume()
		return true
	})
	for _, c := range model.AllCategories {
		if k := f.Capacity.Of(c); k > 0 {
			u.PerCategory[c] = float64(used[c]) / float64(minutes*k)
		}
	}
	if rm := f.ResourceMinutes(); rm > 0 {
		u.Total = float64(total) / float64(rm)
	}
	return u
}

// Occupied counts accepted requests holding category c at minute m.
func (s Statistics) Occupied(c model.Category, m int) int {
	n := 0
	s.Accepted.Each(func(r model.Request) bool {
		if r.Needs(c) && r.Covers(m) {
			n++
		}
		return true
	})
	return n
}

// Sorted returns copies of the accepted and rejected requests ordered by
// ingestion number.
func (s Statistics) Sorted() (accepted, rejected []model.Request) {
	byOrder := func(a, b model.Request) int { return a.Order - b.Order }
	accepted = s.Accepted.Requests()
	rejected = s.Rejected.Requests()
	slices.SortStableFunc(accepted, byOrder)
	slices.SortStableFunc(rejected, byOrder)
	return accepted, rejected
}

// Equal reports whether both runs produced the same partitions, in the same
// order, with the same instance assignments.
func (s Statistics) Equal(o Statistics) bool {
	return slices.Equal(s.Accepted.Requests(), o.Accepted.Requests()) &&
		slices.Equal(s.Rejected.Requests(), o.Rejected.Requests()) &&
		maps.Equal(s.Placements, o.Placements)
}
