package workload

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidProfile wraps profile validation failures.
var ErrInvalidProfile = errors.New("invalid workload profile")

// Profile shapes the synthetic booking stream.
type Profile struct {
	// PeakHours are the hours of the day start times cluster around.
	PeakHours []float64 `json:"peak_hours" yaml:"peak_hours"`
	// SigmaHours is the spread of every peak.
	SigmaHours float64 `json:"sigma_hours" yaml:"sigma_hours"`
	// Mean booking length of bookings starting at night and during the day.
	NightMeanHours float64 `json:"night_mean_hours" yaml:"night_mean_hours"`
	DayMeanHours   float64 `json:"day_mean_hours" yaml:"day_mean_hours"`
	// Night covers [NightStart, 24) and [0, NightEnd).
	NightStart int `json:"night_start" yaml:"night_start"`
	NightEnd   int `json:"night_end" yaml:"night_end"`
	MinHours   int `json:"min_hours" yaml:"min_hours"`
	MaxHours   int `json:"max_hours" yaml:"max_hours"`
	// Mix weights the command kinds by keyword.
	Mix map[string]float64 `json:"mix" yaml:"mix"`
}

// DefaultProfile returns the reference morning / afternoon peak profile.
func DefaultProfile() Profile {
	return Profile{
		PeakHours:      []float64{10, 14},
		SigmaHours:     1,
		NightMeanHours: 10,
		DayMeanHours:   2,
		NightStart:     20,
		NightEnd:       4,
		MinHours:       1,
		MaxHours:       14,
		Mix: map[string]float64{
			KeywordParking:     1,
			KeywordReservation: 1,
			KeywordEvent:       1,
			KeywordEssentials:  1,
		},
	}
}

// SetDefaults fills zero fields from DefaultProfile.
func (p *Profile) SetDefaults() {
	d := DefaultProfile()
	if len(p.PeakHours) == 0 {
		p.PeakHours = d.PeakHours
	}
	if p.SigmaHours == 0 {
		p.SigmaHours = d.SigmaHours
	}
	if p.NightMeanHours == 0 {
		p.NightMeanHours = d.NightMeanHours
	}
	if p.DayMeanHours == 0 {
		p.DayMeanHours = d.DayMeanHours
	}
	if p.NightStart == 0 && p.NightEnd == 0 {
		p.NightStart, p.NightEnd = d.NightStart, d.NightEnd
	}
	if p.MinHours == 0 {
		p.MinHours = d.MinHours
	}
	if p.MaxHours == 0 {
		p.MaxHours = d.MaxHours
	}
	if len(p.Mix) == 0 {
		p.Mix = d.Mix
	}
}

// Validate checks the profile.
func (p Profile) Validate() error {
	if len(p.PeakHours) == 0 {
		return fmt.Errorf("%w: no peak hours", ErrInvalidProfile)
	}
	for _, h := range p.PeakHours {
		if h < 0 || h >= 24 {
			return fmt.Errorf("%w: peak hour %v", ErrInvalidProfile, h)
		}
	}
	if p.SigmaHours <= 0 || p.NightMeanHours <= 0 || p.DayMeanHours <= 0 {
		return fmt.Errorf("%w: sigma and means must be positive", ErrInvalidProfile)
	}
	if p.MinHours <= 0 || p.MaxHours < p.MinHours {
		return fmt.Errorf("%w: duration range [%d, %d]", ErrInvalidProfile, p.MinHours, p.MaxHours)
	}
	if p.NightStart < 0 || p.NightStart > 24 || p.NightEnd < 0 || p.NightEnd > 24 {
		return fmt.Errorf("%w: night window", ErrInvalidProfile)
	}
	var total float64
	for k, w := range p.Mix {
		if !knownKeyword(k) {
			return fmt.Errorf("%w: unknown command %q in mix", ErrInvalidProfile, k)
		}
		if w < 0 {
			return fmt.Errorf("%w: negative weight for %s", ErrInvalidProfile, k)
		}
		total += w
	}
	if total == 0 {
		return fmt.Errorf("%w: empty command mix", ErrInvalidProfile)
	}
	return nil
}

// LoadProfile reads a YAML profile. Missing fields keep their default value.
func LoadProfile(path string) (Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, err
	}
	p := DefaultProfile()
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return p, p.Validate()
}
