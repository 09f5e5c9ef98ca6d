package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/spms/core/ledger"
	"github.com/kilianp07/spms/core/model"
)

func sampleStats() ledger.Statistics {
	st := ledger.NewStatistics("fcfs")
	st.Rejected.Append(model.Request{
		Member: 'B', Start: 0, Duration: 60, Priority: model.PriorityEvent,
		Parking: true, Essentials: model.EssentialValetInflation, Order: 2,
	})
	st.Accepted.Append(model.Request{
		Member: 'A', Start: model.MinutesPerDay + 10*60 + 30, Duration: 90, Priority: model.PriorityReservation,
		Parking: true, Essentials: model.EssentialLockerUmbrella, Order: 1,
	})
	st.Placements[1] = model.Placement{4, -1, 2, -1}
	return st
}

func TestBuildOrdersBookings(t *testing.T) {
	doc := Build(sampleStats(), model.DefaultFacility())
	require.Len(t, doc.Bookings, 2)
	assert.Equal(t, 2, doc.Received)
	assert.Equal(t, 1, doc.Accepted)

	first := doc.Bookings[0]
	assert.Equal(t, 1, first.Order)
	assert.Equal(t, OutcomeAccepted, first.Outcome)
	assert.Equal(t, "2025-05-11", first.Date)
	assert.Equal(t, "10:30", first.Start)
	assert.Equal(t, "Reservation", first.Kind)
	assert.Equal(t, []string{"locker_umbrella"}, first.Essentials)
	assert.Equal(t, map[string]int{"parking": 4, "locker_umbrella": 2}, first.Instances)

	second := doc.Bookings[1]
	assert.Equal(t, OutcomeRejected, second.Outcome)
	assert.Nil(t, second.Instances)

	// 90 parking minutes and 90 locker minutes over one week
	week := float64(7 * model.MinutesPerDay)
	assert.InDelta(t, 90/(week*10), doc.PerCategory["parking"], 1e-12)
	assert.InDelta(t, 180/(week*19), doc.Utilization, 1e-12)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleStats(), model.DefaultFacility()))
	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "fcfs", doc.Algorithm)
	require.Len(t, doc.Bookings, 2)
	assert.Equal(t, model.Member('A'), doc.Bookings[0].Member)
	assert.Contains(t, buf.String(), `"member": "A"`)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleStats(), model.DefaultFacility()))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, CSVHeader, rows[0])
	assert.Equal(t, []string{
		"fcfs", "1", "A", "Reservation", "accepted", "2025-05-11", "10:30", "90",
		"true", "locker_umbrella", "4", "", "2", "",
	}, rows[1])
	assert.Equal(t, "rejected", rows[2][4])
	assert.Equal(t, "valet_inflation", rows[2][9])
	assert.Equal(t, "", rows[2][10])
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, "xml", sampleStats(), model.DefaultFacility()))
	assert.NoError(t, Write(&buf, "CSV", sampleStats(), model.DefaultFacility()))
}
