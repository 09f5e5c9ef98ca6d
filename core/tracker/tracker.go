// Package tracker keeps track of which request owns every instance of every
// resource category over the scheduling horizon.
package tracker

import (
	"fmt"
	"maps"

	"github.com/kilianp07/spms/core/model"
	"github.com/kilianp07/spms/core/segtree"
)

// Tracker groups one allocation table per resource category. A Tracker
// belongs to a single scheduling run and must not be shared.
type Tracker struct {
	Parking        *segtree.Table
	BatteryCable   *segtree.Table
	LockerUmbrella *segtree.Table
	ValetInflation *segtree.Table

	live map[int]model.Placement
}

// New builds an empty tracker for the facility.
func New(f model.Facility) (*Tracker, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	lo, hi := f.Horizon.Bounds()
	t := &Tracker{live: make(map[int]model.Placement)}
	for _, c := range model.AllCategories {
		tb, err := segtree.Build(lo, hi, f.Capacity.Of(c))
		if err != nil {
			return nil, fmt.Errorf("build %s table: %w", c, err)
		}
		*t.slot(c) = tb
	}
	return t, nil
}

func (t *Tracker) slot(c model.Category) **segtree.Table {
	switch c {
	case model.CategoryParking:
		return &t.Parking
	case model.CategoryBatteryCable:
		return &t.BatteryCable
	case model.CategoryLockerUmbrella:
		return &t.LockerUmbrella
	case model.CategoryValetInflation:
		return &t.ValetInflation
	}
	panic(fmt.Sprintf("tracker: unknown category %d", c))
}

// Table returns the allocation table of category c.
func (t *Tracker) Table(c model.Category) *segtree.Table { return *t.slot(c) }

// TryClaim assigns order to the first free instance of every requested
// category over [start, end]. Instances are chosen before anything is
// written, so a failed claim leaves the tracker untouched.
func (t *Tracker) TryClaim(order, start, end int, parking bool, mask model.EssentialMask) bool {
	if order <= 0 {
		panic(fmt.Sprintf("tracker: claim with non-positive order %d", order))
	}
	if _, ok := t.live[order]; ok {
		panic(fmt.Sprintf("tracker: order %d claimed twice", order))
	}
	cats := model.Requested(parking, mask)
	p := model.NoPlacement()
	for _, c := range cats {
		k := firstFree(t.Table(c), start, end)
		if k < 0 {
			return false
		}
		p[c] = k
	}
	for _, c := range cats {
		t.Table(c).Assign(p[c], start, end, order)
	}
	t.live[order] = p
	return true
}

// TryRelease frees the instances owned by order over [start, end]. Releasing
// a request that was not claimed with the same range is a programming error
// and panics.
func (t *Tracker) TryRelease(order, start, end int, parking bool, mask model.EssentialMask) {
	p, ok := t.live[order]
	if !ok {
		panic(fmt.Sprintf("tracker: release of unclaimed order %d", order))
	}
	for _, c := range model.Requested(parking, mask) {
		tb := t.Table(c)
		k := ownerTrack(tb, order, start, end)
		if k < 0 || k != p[c] {
			panic(fmt.Sprintf("tracker: order %d does not own %s over [%d, %d]", order, c, start, end))
		}
		tb.Assign(k, start, end, 0)
	}
	delete(t.live, order)
}

// Claim is TryClaim for a request value.
func (t *Tracker) Claim(r model.Request) bool {
	return t.TryClaim(r.Order, r.Start, r.End(), r.Parking, r.Essentials)
}

// Release is TryRelease for a request value.
func (t *Tracker) Release(r model.Request) {
	t.TryRelease(r.Order, r.Start, r.End(), r.Parking, r.Essentials)
}

// Placement returns the instances held by order.
func (t *Tracker) Placement(order int) (model.Placement, bool) {
	p, ok := t.live[order]
	return p, ok
}

// Placements returns a copy of all live placements keyed by order.
func (t *Tracker) Placements() map[int]model.Placement { return maps.Clone(t.live) }

// Live returns the number of claimed requests.
func (t *Tracker) Live() int { return len(t.live) }

// Occupied returns how many instances of category c are in use at minute m.
func (t *Tracker) Occupied(c model.Category, m int) int {
	tb := t.Table(c)
	n := 0
	for k := 0; k < tb.Tracks(); k++ {
		if tb.TrackMax(k, m, m) != 0 {
			n++
		}
	}
	return n
}

// Reset frees every instance.
func (t *Tracker) Reset() {
	for _, c := range model.AllCategories {
		t.Table(c).Reset()
	}
	clear(t.live)
}

// Snapshot returns an independent deep copy.
func (t *Tracker) Snapshot() *Tracker {
	cp := &Tracker{live: maps.Clone(t.live)}
	for _, c := range model.AllCategories {
		*cp.slot(c) = t.Table(c).Snapshot()
	}
	return cp
}

// RestoreFrom overwrites the tracker with the state of other.
func (t *Tracker) RestoreFrom(other *Tracker) {
	for _, c := range model.AllCategories {
		t.Table(c).RestoreFrom(other.Table(c))
	}
	clear(t.live)
	maps.Copy(t.live, other.live)
}

// Equal reports whether both trackers hold the same owners at every minute.
func (t *Tracker) Equal(other *Tracker) bool {
	if len(t.live) != len(other.live) {
		return false
	}
	for o, p := range t.live {
		if q, ok := other.live[o]; !ok || q != p {
			return false
		}
	}
	for _, c := range model.AllCategories {
		if !t.Table(c).Equal(other.Table(c)) {
			return false
		}
	}
	return true
}

func firstFree(tb *segtree.Table, start, end int) int {
	for k := 0; k < tb.Tracks(); k++ {
		if tb.TrackMax(k, start, end) == 0 {
			return k
		}
	}
	return -1
}

func ownerTrack(tb *segtree.Table, order, start, end int) int {
	for k := 0; k < tb.Tracks(); k++ {
		if tb.TrackMax(k, start, end) == order {
			return k
		}
	}
	return -1
}
