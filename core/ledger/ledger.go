// Package ledger holds the ordered request collections consumed and produced
// by the schedulers.
package ledger

import (
	"github.com/kilianp07/spms/core/model"
)

// Ledger is an append-only ordered sequence of requests.
type Ledger struct {
	items []model.Request
}

// New returns a ledger holding a copy of reqs.
func New(reqs ...model.Request) *Ledger {
	l := &Ledger{}
	l.items = append(l.items, reqs...)
	return l
}

// Ingest assigns the next order number to r and appends it.
func (l *Ledger) Ingest(r model.Request) model.Request {
	r.Order = len(l.items) + 1
	l.items = append(l.items, r)
	return r
}

// Append adds r without touching its order number.
func (l *Ledger) Append(r model.Request) { l.items = append(l.items, r) }

// Len returns the number of requests. A nil ledger is empty.
func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

// At returns the i-th request.
func (l *Ledger) At(i int) model.Request { return l.items[i] }

// Requests returns a copy of the stored requests.
func (l *Ledger) Requests() []model.Request {
	if l == nil {
		return nil
	}
	out := make([]model.Request, len(l.items))
	copy(out, l.items)
	return out
}

// Clone returns an independent copy. Cloning a nil ledger yields an empty one.
func (l *Ledger) Clone() *Ledger {
	if l == nil {
		return &Ledger{}
	}
	return New(l.items...)
}

// Each calls fn for every request in order until fn returns false.
func (l *Ledger) Each(fn func(model.Request) bool) {
	if l == nil {
		return
	}
	for _, r := range l.items {
		if !fn(r) {
			return
		}
	}
}

// Reset drops every request while keeping the allocated storage.
func (l *Ledger) Reset() { l.items = l.items[:0] }
