package workload

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/spms/core/booking"
	"github.com/kilianp07/spms/core/model"
)

func newGenerator(t *testing.T, seed uint64) *Generator {
	t.Helper()
	g, err := NewGenerator(model.DefaultHorizon(), DefaultProfile(), nil, seed, seed)
	require.NoError(t, err)
	return g
}

func TestGeneratedLinesParse(t *testing.T) {
	h := model.DefaultHorizon()
	p, err := booking.NewParser(h, nil, nil)
	require.NoError(t, err)
	g := newGenerator(t, 1)
	valid := 0
	for i := 0; i < 500; i++ {
		line := g.Line()
		require.True(t, strings.HasSuffix(line, ";"), line)
		r, err := p.ParseRequest(line)
		if err != nil {
			// only bookEssentials may carry a wrong number of items
			require.True(t, strings.HasPrefix(line, KeywordEssentials), "%q: %v", line, err)
			continue
		}
		valid++
		assert.GreaterOrEqual(t, r.Duration, 60)
		assert.LessOrEqual(t, r.Duration, 14*60)
		assert.Zero(t, r.Start%60)
	}
	assert.Greater(t, valid, 300)
}

func TestGeneratorDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, newGenerator(t, 5).WriteBatch(&a, 50))
	require.NoError(t, newGenerator(t, 5).WriteBatch(&b, 50))
	assert.Equal(t, a.String(), b.String())
	assert.Equal(t, 50, strings.Count(a.String(), "\n"))

	var c bytes.Buffer
	require.NoError(t, newGenerator(t, 6).WriteBatch(&c, 50))
	assert.NotEqual(t, a.String(), c.String())
}

func TestStartHoursClusterAroundPeaks(t *testing.T) {
	g := newGenerator(t, 3)
	near := 0
	const n = 2000
	for i := 0; i < n; i++ {
		h := g.startHour() % 24
		if h >= 7 && h <= 16 {
			near++
		}
	}
	assert.Greater(t, near, n*9/10)
}

func TestLedger(t *testing.T) {
	p, err := booking.NewParser(model.DefaultHorizon(), nil, nil)
	require.NoError(t, err)
	l, invalid := newGenerator(t, 9).Ledger(p, 200)
	assert.Equal(t, 200, l.Len()+invalid)
	for i := 0; i < l.Len(); i++ {
		assert.Equal(t, i+1, l.At(i).Order)
	}
}

func TestMixRestrictsKeywords(t *testing.T) {
	prof := DefaultProfile()
	prof.Mix = map[string]float64{KeywordParking: 1}
	g, err := NewGenerator(model.DefaultHorizon(), prof, []model.Member{'A'}, 1, 1)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		line := g.Line()
		require.True(t, strings.HasPrefix(line, "addParking -member_A "), line)
	}
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	data := "peak_hours: [9, 17]\nmax_hours: 6\nmix:\n  addEvent: 2\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{9, 17}, p.PeakHours)
	assert.Equal(t, 6, p.MaxHours)
	assert.Equal(t, 1.0, p.SigmaHours)
	assert.Equal(t, 2.0, p.Mix[KeywordEvent])

	require.NoError(t, os.WriteFile(path, []byte("mix:\n  addSomething: 1\n"), 0o644))
	_, err = LoadProfile(path)
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestProfileSetDefaults(t *testing.T) {
	p := Profile{DayMeanHours: 3, Mix: map[string]float64{KeywordEvent: 1}}
	p.SetDefaults()
	if err := p.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if p.DayMeanHours != 3 || p.NightMeanHours != 10 || len(p.PeakHours) != 2 {
		t.Fatalf("unexpected profile %+v", p)
	}
	if len(p.Mix) != 1 {
		t.Fatalf("explicit mix must be kept: %v", p.Mix)
	}
}
