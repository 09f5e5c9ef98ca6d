// Package workload generates synthetic booking batches. Start hours follow a
// mixture of normal peaks and durations an exponential law whose mean depends
// on whether the booking starts at night.
package workload

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"slices"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kilianp07/spms/core/ledger"
	"github.com/kilianp07/spms/core/model"
	"github.com/kilianp07/spms/core/rng"
)

// Command keywords produced by the generator.
const (
	KeywordParking     = "addParking"
	KeywordReservation = "addReservation"
	KeywordEvent       = "addEvent"
	KeywordEssentials  = "bookEssentials"
)

var keywords = []string{KeywordParking, KeywordReservation, KeywordEvent, KeywordEssentials}

func knownKeyword(k string) bool { return slices.Contains(keywords, k) }

var (
	pairs = []string{"battery cable", "locker umbrella", "InflationService valetPark"}
	items = []string{"battery", "cable", "locker", "umbrella", "InflationService", "valetPark"}
)

const maxDraws = 1000

// Generator produces booking commands. It is not safe for concurrent use.
type Generator struct {
	horizon model.Horizon
	profile Profile
	members []model.Member
	rand    *rand.Rand
	src     *rng.Source
	weights []float64
	total   float64
}

// NewGenerator returns a generator seeded with the two words.
func NewGenerator(h model.Horizon, p Profile, members []model.Member, seed0, seed1 uint64) (*Generator, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(members) == 0 {
		members = model.DefaultMembers
	}
	src := rng.New(seed0, seed1)
	g := &Generator{horizon: h, profile: p, members: members, rand: rand.New(src), src: src}
	for _, k := range keywords {
		g.weights = append(g.weights, p.Mix[k])
		g.total += p.Mix[k]
	}
	return g, nil
}

// startHour draws an hour since the horizon origin. Draws outside the
// horizon are retried, then clamped.
func (g *Generator) startHour() int {
	last := g.horizon.Days * 24
	var h float64
	for i := 0; i < maxDraws; i++ {
		peak := g.profile.PeakHours[g.rand.IntN(len(g.profile.PeakHours))]
		day := g.rand.IntN(g.horizon.Days)
		n := distuv.Normal{Mu: float64(day*24) + peak, Sigma: g.profile.SigmaHours, Src: g.src}
		h = n.Rand()
		if h >= 0 && h < float64(last) {
			return int(h)
		}
	}
	return min(max(int(h), 0), last-1)
}

func (g *Generator) night(hour int) bool {
	tau := hour % 24
	return tau >= g.profile.NightStart || tau < g.profile.NightEnd
}

// durationHours draws a whole number of hours clamped to the profile range.
func (g *Generator) durationHours(start int) int {
	mean := g.profile.DayMeanHours
	if g.night(start) {
		mean = g.profile.NightMeanHours
	}
	e := distuv.Exponential{Rate: 1 / mean, Src: g.src}
	d := int(math.Ceil(e.Rand()))
	return min(max(d, g.profile.MinHours), g.profile.MaxHours)
}

func (g *Generator) keyword() string {
	x := g.rand.Float64() * g.total
	for i, w := range g.weights {
		if x < w {
			return keywords[i]
		}
		x -= w
	}
	return keywords[len(keywords)-1]
}

// Line returns one booking command, terminated by ';'.
func (g *Generator) Line() string {
	kw := g.keyword()
	member := g.members[g.rand.IntN(len(g.members))]
	start := g.startHour()
	dur := g.durationHours(start)

	var essentials string
	if kw == KeywordEssentials {
		// zero to three distinct items; only a single item is a valid booking
		n := g.rand.IntN(4)
		perm := g.rand.Perm(len(items))
		picked := make([]string, 0, n)
		for _, i := range perm[:n] {
			picked = append(picked, items[i])
		}
		essentials = strings.Join(picked, " ")
	} else {
		essentials = pairs[g.rand.IntN(len(pairs))]
	}

	day, hour := start/24, start%24
	line := fmt.Sprintf("%s -member_%s %s %02d:00 %d.0 %s", kw, member, g.horizon.Date(day), hour, dur, essentials)
	return strings.TrimRight(line, " ") + ";"
}

// WriteBatch writes n commands, one per line.
func (g *Generator) WriteBatch(w io.Writer, n int) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < n; i++ {
		if _, err := bw.WriteString(g.Line() + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Parser turns a command line into a request.
type Parser interface {
	ParseRequest(line string) (model.Request, error)
}

// Ledger generates n commands and ingests those p accepts. It returns the
// ledger and the number of rejected lines.
func (g *Generator) Ledger(p Parser, n int) (*ledger.Ledger, int) {
	l := &ledger.Ledger{}
	invalid := 0
	for i := 0; i < n; i++ {
		r, err := p.ParseRequest(g.Line())
		if err != nil {
			invalid++
			continue
		}
		l.Ingest(r)
	}
	return l, invalid
}
