package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/spms/core/ledger"
	"github.com/kilianp07/spms/core/model"
	"github.com/kilianp07/spms/core/scheduler"
)

func placement(parking int) model.Placement {
	p := model.NoPlacement()
	p[model.CategoryParking] = parking
	return p
}

func TestCheckSchedulerOutputs(t *testing.T) {
	f := model.DefaultFacility()
	l := &ledger.Ledger{}
	for i := 0; i < 40; i++ {
		l.Ingest(model.Request{
			Member: 'A', Start: (i % 5) * 90, Duration: 120 + 10*i,
			Priority: model.PriorityReservation, Parking: true,
			Essentials: model.EssentialMask(1 << (i % 3)),
		})
	}
	for _, name := range scheduler.Names() {
		cfg := scheduler.DefaultConfig()
		cfg.MaxSteps = 50
		s, err := scheduler.New(name, f, cfg)
		require.NoError(t, err)
		st := s.Schedule(context.Background(), l)
		assert.NoError(t, Check(st, f), name)
	}
}

func TestCapacityViolation(t *testing.T) {
	f := model.DefaultFacility()
	f.Capacity.Parking = 2
	st := ledger.NewStatistics("manual")
	for o := 1; o <= 3; o++ {
		st.Accepted.Append(model.Request{Order: o, Start: o * 10, Duration: 100, Parking: true})
		st.Placements[o] = placement(o - 1)
	}
	vs := Capacity(st, f)
	require.Len(t, vs, 1)
	assert.Equal(t, model.CategoryParking, vs[0].Category)
	assert.Equal(t, 30, vs[0].Minute)
	assert.Equal(t, []int{1, 2, 3}, vs[0].Orders)
}

func TestBackToBackIsNotOverCapacity(t *testing.T) {
	f := model.DefaultFacility()
	f.Capacity.Parking = 1
	st := ledger.NewStatistics("manual")
	st.Accepted.Append(model.Request{Order: 1, Start: 0, Duration: 60, Parking: true})
	st.Accepted.Append(model.Request{Order: 2, Start: 60, Duration: 60, Parking: true})
	st.Placements[1] = placement(0)
	st.Placements[2] = placement(0)
	assert.NoError(t, Check(st, f))
}

func TestInstanceOverlap(t *testing.T) {
	f := model.DefaultFacility()
	st := ledger.NewStatistics("manual")
	st.Accepted.Append(model.Request{Order: 1, Start: 0, Duration: 60, Parking: true})
	st.Accepted.Append(model.Request{Order: 2, Start: 59, Duration: 60, Parking: true})
	st.Accepted.Append(model.Request{Order: 3, Start: 0, Duration: 60, Essentials: model.EssentialLockerUmbrella})
	st.Placements[1] = placement(4)
	st.Placements[2] = placement(4)
	st.Placements[3] = placement(0) // parking was not requested

	vs := Instances(st, f)
	require.Len(t, vs, 3)
	reasons := map[string]bool{}
	for _, v := range vs {
		reasons[v.Reason] = true
	}
	assert.True(t, reasons["overlap"])
	assert.True(t, reasons["unrequested instance"])
	assert.True(t, reasons["invalid instance"])

	err := Check(st, f)
	assert.True(t, errors.Is(err, ErrInconsistent))
}
