package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kilianp07/spms/core/ledger"
	"github.com/kilianp07/spms/core/model"
)

func TestWriteBookingsLayout(t *testing.T) {
	st := ledger.NewStatistics("prio")
	st.Accepted.Append(model.Request{
		Member: 'B', Start: 2*model.MinutesPerDay + 23*60, Duration: 120,
		Priority: model.PriorityEvent, Parking: true,
		Essentials: model.EssentialBatteryCable | model.EssentialValetInflation, Order: 1,
	})
	st.Rejected.Append(model.Request{
		Member: 'B', Start: 0, Duration: 30, Priority: model.PriorityEssentials,
		Essentials: model.EssentialLockerUmbrella, Order: 2,
	})
	var buf bytes.Buffer
	if err := testReport().WriteBookings(&buf, st); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := buf.String()
	want := []string{
		"*** Parking Booking - ACCEPTED / PRIO ***\n\nMember_A has the following bookings:\n   No record for this member.\n",
		"Member_B has the following bookings:\nDate         Start    End      Type          Device                       \n",
		// the end wraps past midnight
		"2025-05-12   23:00    01:00    Event         Battery                       \n",
		strings.Repeat(" ", 45) + "Cable                         \n",
		strings.Repeat(" ", 45) + "Valet Parking                 \n",
		"Member_B (there are 1 bookings rejected):\n",
		"2025-05-10   00:00    00:30    *             Locker                        \n",
		"   - End -\n",
	}
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Fatalf("missing %q in\n%s", w, got)
		}
	}
	if strings.Count(got, divider) != 8 {
		t.Fatalf("expected 8 dividers, got %d", strings.Count(got, divider))
	}
}

func TestWriteSummary(t *testing.T) {
	st := ledger.NewStatistics("fcfs")
	st.Accepted.Append(model.Request{Member: 'A', Duration: 1008, Parking: true, Essentials: model.EssentialLockerUmbrella, Order: 1})
	st.Rejected.Append(model.Request{Member: 'A', Duration: 10, Parking: true, Order: 2})
	st.Rejected.Append(model.Request{Member: 'A', Duration: 10, Parking: true, Order: 3})
	empty := ledger.NewStatistics("opti")

	rp := testReport()
	rp.Invalid = 4
	var buf bytes.Buffer
	if err := rp.WriteSummary(&buf, []ledger.Statistics{st, empty}); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := buf.String()
	for _, w := range []string{
		" For FCFS:\n         Total Number of Booking Received: 3 (100.00%)\n",
		"Total Number of Booking Assigned: 1 (33.33%)\n",
		"Total Number of Booking Rejected: 2 (66.67%)\n",
		"               Parking Slot:      - 1.00%\n",
		"               Locker:            - 3.33%\n",
		"               Umbrella:          - 3.33%\n",
		"               Battery:           - 0.00%\n",
		" For OPTI:\n         No Bookings are Received Currently.\n",
		"         Invalid request(s) made: 4\n",
	} {
		if !strings.Contains(got, w) {
			t.Fatalf("missing %q in\n%s", w, got)
		}
	}
}
