package segtree

import (
	"errors"
	"fmt"
)

// noLazy marks a node without a pending assignment.
const noLazy int32 = -1

// ErrInvalidRange is returned by Build when end < start or no track is requested.
var ErrInvalidRange = errors.New("invalid table range")

type track struct {
	max  []int32
	lazy []int32
}

// Table holds K parallel range-assignable tracks over [start, end].
type Table struct {
	start  int
	end    int
	tracks []track
}

// Build creates k empty tracks covering the inclusive range [start, end].
func Build(start, end, k int) (*Table, error) {
	if end < start {
		return nil, fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, start, end)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: %d tracks", ErrInvalidRange, k)
	}
	size := 2 * nextPow2(end-start+1)
	t := &Table{start: start, end: end, tracks: make([]track, k)}
	for i := range t.tracks {
		t.tracks[i] = track{max: make([]int32, size), lazy: make([]int32, size)}
	}
	t.Reset()
	return t, nil
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Tracks returns the number of tracks K.
func (t *Table) Tracks() int { return len(t.tracks) }

// Bounds returns the inclusive range covered by the table.
func (t *Table) Bounds() (int, int) { return t.start, t.end }

// Reset clears every track.
func (t *Table) Reset() {
	for i := range t.tracks {
		tr := &t.tracks[i]
		for p := range tr.max {
			tr.max[p] = 0
			tr.lazy[p] = noLazy
		}
	}
}

// Assign overwrites every minute of [l, r] on track k with value. The range
// is clipped to the table bounds. A zero value frees the range.
func (t *Table) Assign(k, l, r, value int) {
	if value < 0 {
		panic(fmt.Sprintf("segtree: negative value %d", value))
	}
	l, r, ok := t.clip(l, r)
	if !ok {
		return
	}
	t.assign(&t.tracks[k], l, r, int32(value), t.start, t.end, 1)
}

// TrackMax returns the maximum value stored on track k within [l, r].
func (t *Table) TrackMax(k, l, r int) int {
	l, r, ok := t.clip(l, r)
	if !ok {
		return 0
	}
	return int(query(&t.tracks[k], l, r, t.start, t.end, 1))
}

// QueryMax returns the maximum value of every track within [l, r]. An entry is
// zero only if the whole range is free on that track.
func (t *Table) QueryMax(l, r int) []int {
	res := make([]int, len(t.tracks))
	for k := range t.tracks {
		res[k] = t.TrackMax(k, l, r)
	}
	return res
}

// Snapshot returns a deep copy of the table.
func (t *Table) Snapshot() *Table {
	cp := &Table{start: t.start, end: t.end, tracks: make([]track, len(t.tracks))}
	for i, tr := range t.tracks {
		cp.tracks[i] = track{
			max:  append([]int32(nil), tr.max...),
			lazy: append([]int32(nil), tr.lazy...),
		}
	}
	return cp
}

// RestoreFrom overwrites the table with the state of other. Both tables must
// have been built with the same range and track count.
func (t *Table) RestoreFrom(other *Table) {
	if other.start != t.start || other.end != t.end || len(other.tracks) != len(t.tracks) {
		panic("segtree: restore from table with different shape")
	}
	for i := range t.tracks {
		copy(t.tracks[i].max, other.tracks[i].max)
		copy(t.tracks[i].lazy, other.tracks[i].lazy)
	}
}

// Values materializes track k as one value per minute, starting at the lower bound.
func (t *Table) Values(k int) []int {
	out := make([]int, t.end-t.start+1)
	fill(&t.tracks[k], out, t.start, t.start, t.end, 1, noLazy)
	return out
}

// Equal reports whether both tables cover the same range and hold the same
// value at every minute of every track. Internal lazy state is ignored.
func (t *Table) Equal(o *Table) bool {
	if o.start != t.start || o.end != t.end || len(o.tracks) != len(t.tracks) {
		return false
	}
	for k := range t.tracks {
		a, b := t.Values(k), o.Values(k)
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
	}
	return true
}

func fill(tr *track, out []int, base, cl, cr, p int, pending int32) {
	if pending == noLazy {
		pending = tr.lazy[p]
	}
	if cl == cr {
		v := tr.max[p]
		if pending != noLazy {
			v = pending
		}
		out[cl-base] = int(v)
		return
	}
	cm := cl + (cr-cl)/2
	fill(tr, out, base, cl, cm, 2*p, pending)
	fill(tr, out, base, cm+1, cr, 2*p+1, pending)
}

func (t *Table) clip(l, r int) (int, int, bool) {
	if l < t.start {
		l = t.start
	}
	if r > t.end {
		r = t.end
	}
	return l, r, l <= r
}

func (t *Table) assign(tr *track, l, r int, v int32, cl, cr, p int) {
	if r < cl || cr < l {
		return
	}
	if l <= cl && cr <= r {
		tr.max[p] = v
		tr.lazy[p] = v
		return
	}
	push(tr, p)
	cm := cl + (cr-cl)/2
	t.assign(tr, l, r, v, cl, cm, 2*p)
	t.assign(tr, l, r, v, cm+1, cr, 2*p+1)
	tr.max[p] = max(tr.max[2*p], tr.max[2*p+1])
}

func push(tr *track, p int) {
	v := tr.lazy[p]
	if v == noLazy {
		return
	}
	for _, c := range [2]int{2 * p, 2*p + 1} {
		tr.max[c] = v
		tr.lazy[c] = v
	}
	tr.lazy[p] = noLazy
}

// query never pushes so that reads leave the table untouched.
func query(tr *track, l, r, cl, cr, p int) int32 {
	if r < cl || cr < l {
		return 0
	}
	if l <= cl && cr <= r {
		return tr.max[p]
	}
	if v := tr.lazy[p]; v != noLazy {
		return v
	}
	cm := cl + (cr-cl)/2
	return max(query(tr, l, r, cl, cm, 2*p), query(tr, l, r, cm+1, cr, 2*p+1))
}
