// Package audit checks scheduling results independently of the allocation
// tables that produced them.
package audit

import (
	"errors"
	"fmt"
	"slices"

	"github.com/kilianp07/spms/core/ledger"
	"github.com/kilianp07/spms/core/model"
)

// ErrInconsistent is wrapped by Check when violations are found.
var ErrInconsistent = errors.New("inconsistent schedule")

// Violation describes one broken rule.
type Violation struct {
	Category model.Category
	// Minute is the first minute the rule is broken at.
	Minute int
	// Instance is -1 for capacity violations.
	Instance int
	Orders   []int
	Reason   string
}

func (v Violation) String() string {
	if v.Instance < 0 {
		return fmt.Sprintf("%s: %s at minute %d (orders %v)", v.Category, v.Reason, v.Minute, v.Orders)
	}
	return fmt.Sprintf("%s#%d: %s at minute %d (orders %v)", v.Category, v.Instance, v.Reason, v.Minute, v.Orders)
}

type event struct {
	at    int
	delta int
	order int
}

// Capacity sweeps the accepted requests of every category and reports the
// first minute of each category where more instances are used than exist.
func Capacity(st ledger.Statistics, f model.Facility) []Violation {
	var out []Violation
	for _, c := range model.AllCategories {
		var evs []event
		st.Accepted.Each(func(r model.Request) bool {
			if r.Needs(c) {
				evs = append(evs, event{r.Start, 1, r.Order}, event{r.End() + 1, -1, r.Order})
			}
			return true
		})
		// releases sort before claims at the same minute
		slices.SortFunc(evs, func(a, b event) int {
			if a.at != b.at {
				return a.at - b.at
			}
			return a.delta - b.delta
		})
		live := map[int]bool{}
		for _, e := range evs {
			if e.delta < 0 {
				delete(live, e.order)
				continue
			}
			live[e.order] = true
			if len(live) > f.Capacity.Of(c) {
				orders := make([]int, 0, len(live))
				for o := range live {
					orders = append(orders, o)
				}
				slices.Sort(orders)
				out = append(out, Violation{Category: c, Minute: e.at, Instance: -1, Orders: orders, Reason: "over capacity"})
				break
			}
		}
	}
	return out
}

// Instances checks that no two accepted requests share an instance over
// overlapping minutes, and that every accepted request holds exactly the
// categories it asked for.
func Instances(st ledger.Statistics, f model.Facility) []Violation {
	var out []Violation
	type key struct {
		c model.Category
		k int
	}
	byInstance := map[key][]model.Request{}
	st.Accepted.Each(func(r model.Request) bool {
		p, ok := st.Placements[r.Order]
		if !ok {
			out = append(out, Violation{Minute: r.Start, Instance: -1, Orders: []int{r.Order}, Reason: "missing placement"})
			return true
		}
		for _, c := range model.AllCategories {
			k := p.Instance(c)
			switch {
			case r.Needs(c) && (k < 0 || k >= f.Capacity.Of(c)):
				out = append(out, Violation{Category: c, Minute: r.Start, Instance: k, Orders: []int{r.Order}, Reason: "invalid instance"})
			case !r.Needs(c) && k >= 0:
				out = append(out, Violation{Category: c, Minute: r.Start, Instance: k, Orders: []int{r.Order}, Reason: "unrequested instance"})
			case k >= 0:
				byInstance[key{c, k}] = append(byInstance[key{c, k}], r)
			}
		}
		return true
	})
	for ck, reqs := range byInstance {
		slices.SortFunc(reqs, func(a, b model.Request) int { return a.Start - b.Start })
		for i := 1; i < len(reqs); i++ {
			if reqs[i].Start <= reqs[i-1].End() {
				out = append(out, Violation{
					Category: ck.c, Instance: ck.k, Minute: reqs[i].Start,
					Orders: []int{reqs[i-1].Order, reqs[i].Order}, Reason: "overlap",
				})
			}
		}
	}
	slices.SortFunc(out, func(a, b Violation) int {
		if a.Category != b.Category {
			return int(a.Category) - int(b.Category)
		}
		return a.Minute - b.Minute
	})
	return out
}

// Check runs every audit and returns an error listing the violations.
func Check(st ledger.Statistics, f model.Facility) error {
	vs := append(Capacity(st, f), Instances(st, f)...)
	if len(vs) == 0 {
		return nil
	}
	errs := make([]error, 0, len(vs)+1)
	errs = append(errs, fmt.Errorf("%w: %s", ErrInconsistent, st.Algorithm))
	for _, v := range vs {
		errs = append(errs, errors.New(v.String()))
	}
	return errors.Join(errs...)
}
