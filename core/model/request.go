package model

import (
	"errors"
	"fmt"
)

// MinutesPerDay is the number of one-minute slots in a day.
const MinutesPerDay = 24 * 60

// Priority is the static priority class of a request. Smaller is higher.
type Priority int

const (
	PriorityEvent Priority = iota
	PriorityReservation
	PriorityParking
	PriorityEssentials
)

// String returns the booking type printed on reports.
func (p Priority) String() string {
	switch p {
	case PriorityEvent:
		return "Event"
	case PriorityReservation:
		return "Reservation"
	case PriorityParking:
		return "Parking"
	case PriorityEssentials:
		return "*"
	default:
		return "(Error)"
	}
}

// Member identifies the member owning a booking, e.g. 'A'.
type Member byte

func (m Member) String() string { return string(rune(m)) }

// MarshalText encodes the member as its letter.
func (m Member) MarshalText() ([]byte, error) { return []byte{byte(m)}, nil }

// UnmarshalText decodes a single-letter member.
func (m *Member) UnmarshalText(b []byte) error {
	if len(b) != 1 {
		return fmt.Errorf("%w: member %q", ErrInvalidRequest, b)
	}
	*m = Member(b[0])
	return nil
}

// DefaultMembers are the members accepted when no list is configured.
var DefaultMembers = []Member{'A', 'B', 'C', 'D', 'E'}

// ErrInvalidRequest is returned by Request.Validate.
var ErrInvalidRequest = errors.New("invalid request")

// Request is a single booking. It is treated as an immutable value once it
// has been ingested into a ledger.
type Request struct {
	Member     Member        `json:"member"`
	Start      int           `json:"start"`    // minutes since the start of the horizon
	Duration   int           `json:"duration"` // minutes
	Priority   Priority      `json:"priority"`
	Parking    bool          `json:"parking"`
	Essentials EssentialMask `json:"essentials"`
	Order      int           `json:"order"` // 1-based ingestion number, 0 before ingestion
}

// End returns the last occupied minute (inclusive).
func (r Request) End() int { return r.Start + r.Duration - 1 }

// Day returns the horizon day index of the start minute.
func (r Request) Day() int { return r.Start / MinutesPerDay }

// StartOfDay returns the start as minute of day.
func (r Request) StartOfDay() int { return r.Start % MinutesPerDay }

// EndOfDay returns the minute of day at which the booking finishes.
func (r Request) EndOfDay() int { return (r.Start + r.Duration) % MinutesPerDay }

// Categories returns the number of resource categories the request needs.
func (r Request) Categories() int {
	n := r.Essentials.Count()
	if r.Parking {
		n++
	}
	return n
}

// Volume is the number of resource-minutes the request occupies when accepted.
func (r Request) Volume() int { return r.Duration * r.Categories() }

// Needs reports whether the request uses category c.
func (r Request) Needs(c Category) bool {
	if c == CategoryParking {
		return r.Parking
	}
	return r.Essentials.Has(c)
}

// Covers reports whether minute m lies inside the booking.
func (r Request) Covers(m int) bool { return m >= r.Start && m <= r.End() }

// Kind returns the booking type label.
func (r Request) Kind() string { return r.Priority.String() }

// Validate checks the request against the horizon.
func (r Request) Validate(h Horizon) error {
	switch {
	case r.Duration <= 0:
		return fmt.Errorf("%w: duration %d", ErrInvalidRequest, r.Duration)
	case r.Start < 0 || r.Start >= h.Minutes():
		return fmt.Errorf("%w: start %d outside horizon", ErrInvalidRequest, r.Start)
	case r.End() > h.Minutes()-1+h.MarginMinutes:
		return fmt.Errorf("%w: end %d outside horizon", ErrInvalidRequest, r.End())
	case !r.Essentials.Valid():
		return fmt.Errorf("%w: essential mask %03b", ErrInvalidRequest, r.Essentials)
	case r.Priority < PriorityEvent || r.Priority > PriorityEssentials:
		return fmt.Errorf("%w: priority %d", ErrInvalidRequest, r.Priority)
	case r.Categories() == 0:
		return fmt.Errorf("%w: no resource requested", ErrInvalidRequest)
	case r.Order < 0:
		return fmt.Errorf("%w: order %d", ErrInvalidRequest, r.Order)
	}
	return nil
}
