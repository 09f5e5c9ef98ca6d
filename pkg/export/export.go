// Package export writes scheduling results in machine-readable formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kilianp07/spms/core/ledger"
	"github.com/kilianp07/spms/core/model"
)

// Outcome values of a Booking.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

// Booking is one request with its scheduling outcome.
type Booking struct {
	Order      int            `json:"order"`
	Member     model.Member   `json:"member"`
	Kind       string         `json:"kind"`
	Outcome    string         `json:"outcome"`
	Date       string         `json:"date"`
	Start      string         `json:"start"`
	Duration   int            `json:"duration_min"`
	Parking    bool           `json:"parking"`
	Essentials []string       `json:"essentials"`
	Instances  map[string]int `json:"instances,omitempty"`
}

// Document is the JSON representation of a run.
type Document struct {
	Algorithm   string             `json:"algorithm"`
	Received    int                `json:"received"`
	Accepted    int                `json:"accepted"`
	Rejected    int                `json:"rejected"`
	Utilization float64            `json:"utilization"`
	PerCategory map[string]float64 `json:"per_category"`
	Bookings    []Booking          `json:"bookings"`
}

// Build converts statistics into a Document with bookings ordered by
// ingestion number.
func Build(st ledger.Statistics, f model.Facility) Document {
	u := st.Utilization(f)
	doc := Document{
		Algorithm:   st.Algorithm,
		Received:    st.Received(),
		Accepted:    st.Accepted.Len(),
		Rejected:    st.Rejected.Len(),
		Utilization: u.Total,
		PerCategory: make(map[string]float64, len(u.PerCategory)),
		Bookings:    make([]Booking, 0, st.Received()),
	}
	for c, v := range u.PerCategory {
		doc.PerCategory[c.String()] = v
	}
	accepted, rejected := st.Sorted()
	i, j := 0, 0
	for i < len(accepted) || j < len(rejected) {
		if j >= len(rejected) || (i < len(accepted) && accepted[i].Order < rejected[j].Order) {
			doc.Bookings = append(doc.Bookings, booking(accepted[i], OutcomeAccepted, st, f.Horizon))
			i++
			continue
		}
		doc.Bookings = append(doc.Bookings, booking(rejected[j], OutcomeRejected, st, f.Horizon))
		j++
	}
	return doc
}

func booking(r model.Request, outcome string, st ledger.Statistics, h model.Horizon) Booking {
	b := Booking{
		Order:      r.Order,
		Member:     r.Member,
		Kind:       r.Kind(),
		Outcome:    outcome,
		Date:       h.Date(r.Day()),
		Start:      clock(r.StartOfDay()),
		Duration:   r.Duration,
		Parking:    r.Parking,
		Essentials: []string{},
	}
	for _, c := range model.Requested(false, r.Essentials) {
		b.Essentials = append(b.Essentials, c.String())
	}
	if p, ok := st.Placements[r.Order]; ok && outcome == OutcomeAccepted {
		b.Instances = make(map[string]int)
		for _, c := range model.Requested(r.Parking, r.Essentials) {
			b.Instances[c.String()] = p.Instance(c)
		}
	}
	return b
}

func clock(minuteOfDay int) string {
	return fmt.Sprintf("%02d:%02d", minuteOfDay/60, minuteOfDay%60)
}

// WriteJSON writes the run to w in JSON format.
func WriteJSON(w io.Writer, st ledger.Statistics, f model.Facility) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Build(st, f))
}

// CSVHeader lists the columns written by WriteCSV.
var CSVHeader = []string{
	"algorithm", "order", "member", "kind", "outcome", "date", "start", "duration_min",
	"parking", "essentials",
	"parking_slot", "battery_cable", "locker_umbrella", "valet_inflation",
}

// WriteCSV writes one row per booking. Instance columns are empty for
// categories the booking does not hold.
func WriteCSV(w io.Writer, st ledger.Statistics, f model.Facility) error {
	doc := Build(st, f)
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, b := range doc.Bookings {
		rec := []string{
			doc.Algorithm,
			strconv.Itoa(b.Order),
			b.Member.String(),
			b.Kind,
			b.Outcome,
			b.Date,
			b.Start,
			strconv.Itoa(b.Duration),
			strconv.FormatBool(b.Parking),
			strings.Join(b.Essentials, "|"),
		}
		for _, c := range model.AllCategories {
			cell := ""
			if idx, ok := b.Instances[c.String()]; ok {
				cell = strconv.Itoa(idx)
			}
			rec = append(rec, cell)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write selects the encoder by format name: "json" or "csv".
func Write(w io.Writer, format string, st ledger.Statistics, f model.Facility) error {
	switch strings.ToLower(format) {
	case "json":
		return WriteJSON(w, st, f)
	case "csv":
		return WriteCSV(w, st, f)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}
