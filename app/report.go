package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/kilianp07/spms/core/ledger"
	"github.com/kilianp07/spms/core/model"
)

const (
	rule    = "==========================================================================="
	divider = "... ... ... ... ... ... ... ... ... ... ... ... ... ... ... ... ... ... ..."
	// device column offset of the continuation lines
	deviceIndent = 45
)

// Report renders booking tables and the summary report as plain text.
type Report struct {
	Facility model.Facility
	Members  []model.Member
	Invalid  int
}

// printer stops writing after the first error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func label(algorithm string) string { return strings.ToUpper(algorithm) }

// WriteBookings prints the accepted and rejected bookings of every member.
func (rp Report) WriteBookings(w io.Writer, st ledger.Statistics) error {
	p := &printer{w: w}
	accepted, rejected := st.Sorted()
	name := label(st.Algorithm)

	p.printf("*** Parking Booking - ACCEPTED / %s ***\n\n", name)
	for i, m := range rp.Members {
		p.printf("Member_%s has the following bookings:\n", m)
		rp.table(p, ofMember(accepted, m))
		if i < len(rp.Members)-1 {
			p.printf("\n%s\n\n", divider)
		}
	}

	p.printf("\n*** Parking Booking - REJECTED / %s ***\n\n", name)
	for i, m := range rp.Members {
		mine := ofMember(rejected, m)
		p.printf("Member_%s (there are %d bookings rejected):\n", m, len(mine))
		rp.table(p, mine)
		if i < len(rp.Members)-1 {
			p.printf("\n%s\n\n", divider)
		}
	}
	p.printf("   - End -\n\n%s\n\n", rule)
	return p.err
}

func ofMember(reqs []model.Request, m model.Member) []model.Request {
	var out []model.Request
	for _, r := range reqs {
		if r.Member == m {
			out = append(out, r)
		}
	}
	return out
}

func (rp Report) table(p *printer, reqs []model.Request) {
	if len(reqs) == 0 {
		p.printf("   No record for this member.\n")
		return
	}
	p.printf("%-12s %-8s %-8s %-13s %-29s\n", "Date", "Start", "End", "Type", "Device")
	p.printf("%s\n", rule)
	for _, r := range reqs {
		devices := devicesOf(r)
		p.printf("%-12s %-8s %-8s %-13s %-29s \n",
			rp.Facility.Horizon.Date(r.Day()), clock(r.StartOfDay()), clock(r.EndOfDay()), r.Kind(), devices[0])
		for _, d := range devices[1:] {
			p.printf("%s%-29s \n", strings.Repeat(" ", deviceIndent), d)
		}
	}
}

// devicesOf lists the essential devices of r, or "*" when it has none.
func devicesOf(r model.Request) []string {
	var out []string
	for _, c := range model.Requested(false, r.Essentials) {
		out = append(out, c.Devices()...)
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func clock(minuteOfDay int) string {
	return fmt.Sprintf("%02d:%02d", minuteOfDay/60, minuteOfDay%60)
}

// WriteSummary prints the performance of each run.
func (rp Report) WriteSummary(w io.Writer, stats []ledger.Statistics) error {
	p := &printer{w: w}
	p.printf("*** Parking Booking Manager - Summary Report ***\n\n")
	p.printf("Performance:\n\n")
	for _, st := range stats {
		rp.summary(p, st)
	}
	p.printf("\n")
	return p.err
}

func (rp Report) summary(p *printer, st ledger.Statistics) {
	p.printf(" For %s:\n", label(st.Algorithm))
	if n := st.Received(); n > 0 {
		p.printf("         Total Number of Booking Received: %d (100.00%%)\n", n)
		p.printf("         Total Number of Booking Assigned: %d (%.2f%%)\n",
			st.Accepted.Len(), percent(st.Accepted.Len(), n))
		p.printf("         Total Number of Booking Rejected: %d (%.2f%%)\n",
			st.Rejected.Len(), percent(st.Rejected.Len(), n))
	} else {
		p.printf("         No Bookings are Received Currently.\n")
	}
	p.printf("\n")

	u := st.Utilization(rp.Facility)
	p.printf("         Utilization of Time Slot:\n")
	for _, c := range model.AllCategories {
		for _, d := range c.Devices() {
			p.printf("               %-18s - %.2f%%\n", d+":", u.PerCategory[c]*100)
		}
	}
	p.printf("\n")
	p.printf("         Invalid request(s) made: %d\n\n", rp.Invalid)
}

func percent(part, whole int) float64 {
	return float64(part) / float64(whole) * 100
}
