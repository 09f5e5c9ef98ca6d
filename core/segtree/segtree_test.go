package segtree

import (
	"errors"
	"math/rand/v2"
	"testing"
)

func TestBuildInvalidRange(t *testing.T) {
	if _, err := Build(10, 9, 1); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange got %v", err)
	}
	if _, err := Build(0, 9, 0); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange for zero tracks got %v", err)
	}
	tb, err := Build(5, 5, 2)
	if err != nil {
		t.Fatalf("single minute table: %v", err)
	}
	tb.Assign(1, 5, 5, 7)
	if got := tb.QueryMax(5, 5); got[0] != 0 || got[1] != 7 {
		t.Fatalf("unexpected %v", got)
	}
}

func TestAssignAndQuery(t *testing.T) {
	tb, err := Build(0, 99, 3)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	tb.Assign(0, 10, 19, 4)
	tb.Assign(1, 15, 30, 9)
	got := tb.QueryMax(0, 12)
	if got[0] != 4 || got[1] != 0 || got[2] != 0 {
		t.Fatalf("unexpected %v", got)
	}
	if tb.TrackMax(0, 20, 99) != 0 {
		t.Fatalf("expected track 0 free after 19")
	}
	tb.Assign(1, 15, 30, 0)
	if tb.TrackMax(1, 0, 99) != 0 {
		t.Fatalf("expected track 1 cleared")
	}
}

func TestAssignClipsToBounds(t *testing.T) {
	tb, _ := Build(-10, 10, 1)
	tb.Assign(0, -50, -5, 3)
	tb.Assign(0, 100, 200, 8)
	if tb.TrackMax(0, -10, -5) != 3 {
		t.Fatalf("expected clipped assignment")
	}
	if tb.TrackMax(0, -4, 10) != 0 {
		t.Fatalf("out of range assignment leaked")
	}
	if tb.TrackMax(0, 50, 60) != 0 {
		t.Fatalf("query outside bounds should be free")
	}
}

func TestNegativeValuePanics(t *testing.T) {
	tb, _ := Build(0, 9, 1)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	tb.Assign(0, 0, 1, -1)
}

func TestMatchesNaiveModel(t *testing.T) {
	const lo, hi, k = -37, 500, 4
	tb, err := Build(lo, hi, k)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	naive := make([][]int, k)
	for i := range naive {
		naive[i] = make([]int, hi-lo+1)
	}
	rng := rand.New(rand.NewPCG(1, 2))
	for step := 0; step < 3000; step++ {
		l := lo + rng.IntN(hi-lo+1)
		r := l + rng.IntN(hi-l+1)
		if rng.IntN(3) == 0 {
			tr := rng.IntN(k)
			v := rng.IntN(50)
			tb.Assign(tr, l, r, v)
			for m := l; m <= r; m++ {
				naive[tr][m-lo] = v
			}
			continue
		}
		got := tb.QueryMax(l, r)
		for tr := 0; tr < k; tr++ {
			want := 0
			for m := l; m <= r; m++ {
				want = max(want, naive[tr][m-lo])
			}
			if got[tr] != want {
				t.Fatalf("step %d track %d [%d,%d]: want %d got %d", step, tr, l, r, want, got[tr])
			}
		}
	}
}

func TestSnapshotRestore(t *testing.T) {
	tb, _ := Build(0, 63, 2)
	tb.Assign(0, 0, 31, 1)
	snap := tb.Snapshot()
	tb.Assign(0, 0, 63, 2)
	tb.Assign(1, 10, 12, 5)
	if snap.TrackMax(0, 32, 63) != 0 || snap.TrackMax(1, 0, 63) != 0 {
		t.Fatalf("snapshot shares state with original")
	}
	tb.RestoreFrom(snap)
	if tb.TrackMax(0, 0, 31) != 1 || tb.TrackMax(0, 32, 63) != 0 || tb.TrackMax(1, 0, 63) != 0 {
		t.Fatalf("restore did not bring back snapshot state")
	}
	tb.Reset()
	if got := tb.QueryMax(0, 63); got[0] != 0 || got[1] != 0 {
		t.Fatalf("reset left values %v", got)
	}
}

func TestRestoreShapeMismatchPanics(t *testing.T) {
	a, _ := Build(0, 9, 1)
	b, _ := Build(0, 10, 1)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	a.RestoreFrom(b)
}

func TestValuesAndEqual(t *testing.T) {
	a, _ := Build(-2, 5, 1)
	b, _ := Build(-2, 5, 1)
	a.Assign(0, -2, 5, 3)
	a.Assign(0, 0, 1, 9)
	want := []int{3, 3, 9, 9, 3, 3, 3, 3}
	got := a.Values(0)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("want %v got %v", want, got)
		}
	}
	for m := -2; m <= 5; m++ {
		b.Assign(0, m, m, want[m+2])
	}
	if !a.Equal(b) {
		t.Fatalf("tables with same content should be equal")
	}
	b.Assign(0, 5, 5, 0)
	if a.Equal(b) {
		t.Fatalf("tables with different content should differ")
	}
}
