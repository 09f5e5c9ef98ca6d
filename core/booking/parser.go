// Package booking parses the booking command language:
//
//	addParking -member_A 2025-05-10 09:00 2.0 battery cable;
//	addReservation -member_B 2025-05-11 14:00 3.5 locker umbrella;
//	addEvent -member_C 2025-05-12 08:00 8 battery locker valet;
//	bookEssentials -member_D 2025-05-13 10:00 1.5 umbrella;
//	addBatch -batch001.dat;
//	printBookings -ALL;
//	endProgram;
//
// Keywords and essential names are case-insensitive.
package booking

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/spms/core/model"
)

// Kind is the kind of a parsed command.
type Kind int

const (
	KindRequest Kind = iota
	KindBatch
	KindPrint
	KindEnd
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindBatch:
		return "batch"
	case KindPrint:
		return "print"
	case KindEnd:
		return "end"
	default:
		return "unknown"
	}
}

// AlgorithmAll selects every algorithm in printBookings.
const AlgorithmAll = "all"

// Command is one parsed line.
type Command struct {
	Kind Kind
	// Request is set for KindRequest. Its order is left at zero.
	Request model.Request
	// File is set for KindBatch.
	File string
	// Algorithm is set for KindPrint, lower-cased.
	Algorithm string
}

const maxTokens = 8

// Parser turns command lines into Commands for one facility horizon.
type Parser struct {
	horizon    model.Horizon
	origin     time.Time
	members    []model.Member
	algorithms []string
}

// NewParser returns a parser accepting the given members and printBookings
// algorithm names. Nil members selects model.DefaultMembers.
func NewParser(h model.Horizon, members []model.Member, algorithms []string) (*Parser, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	origin, err := h.Origin()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		members = model.DefaultMembers
	}
	return &Parser{horizon: h, origin: origin, members: slices.Clone(members), algorithms: slices.Clone(algorithms)}, nil
}

// Parse parses a single command. A trailing ';' is optional.
func (p *Parser) Parse(line string) (Command, error) {
	line = strings.TrimRight(strings.TrimSpace(line), "; \t\r\n")
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return Command{}, ErrEmpty
	}
	if len(tokens) > maxTokens {
		return Command{}, fmt.Errorf("%w: %d tokens", ErrTooManyArguments, len(tokens))
	}
	kw := strings.ToLower(tokens[0])
	switch kw {
	case "endprogram":
		return Command{Kind: KindEnd}, nil
	case "addbatch":
		arg, err := flagArg(tokens)
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: KindBatch, File: arg}, nil
	case "printbookings":
		arg, err := flagArg(tokens)
		if err != nil {
			return Command{}, err
		}
		algo := strings.ToLower(arg)
		if algo != AlgorithmAll && !slices.Contains(p.algorithms, algo) {
			return Command{}, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, arg)
		}
		return Command{Kind: KindPrint, Algorithm: algo}, nil
	}
	prio, ok := priorities[kw]
	if !ok {
		return Command{}, fmt.Errorf("%w: %s", ErrUnknownCommand, tokens[0])
	}
	r, err := p.request(prio, tokens[1:])
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: KindRequest, Request: r}, nil
}

var priorities = map[string]model.Priority{
	"addevent":       model.PriorityEvent,
	"addreservation": model.PriorityReservation,
	"addparking":     model.PriorityParking,
	"bookessentials": model.PriorityEssentials,
}

// flagArg returns the single "-value" argument of a control command.
func flagArg(tokens []string) (string, error) {
	if len(tokens) < 2 {
		return "", fmt.Errorf("%w: %s", ErrMissingArgument, tokens[0])
	}
	if len(tokens) > 2 {
		return "", fmt.Errorf("%w: %s", ErrTooManyArguments, tokens[0])
	}
	// Accept the en dash some editors substitute for '-'.
	arg := strings.TrimPrefix(strings.TrimPrefix(tokens[1], "-"), "–")
	if arg == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingArgument, tokens[0])
	}
	return arg, nil
}

func (p *Parser) request(prio model.Priority, args []string) (model.Request, error) {
	if len(args) < 4 {
		return model.Request{}, fmt.Errorf("%w: expected member, date, time and duration", ErrMissingArgument)
	}
	member, err := p.member(args[0])
	if err != nil {
		return model.Request{}, err
	}
	start, err := p.start(args[1], args[2])
	if err != nil {
		return model.Request{}, err
	}
	dur, err := duration(args[3])
	if err != nil {
		return model.Request{}, err
	}
	r := model.Request{Member: member, Start: start, Duration: dur, Priority: prio}
	if err := essentialsFor(&r, args[4:]); err != nil {
		return model.Request{}, err
	}
	if err := r.Validate(p.horizon); err != nil {
		return model.Request{}, err
	}
	return r, nil
}

func (p *Parser) member(tok string) (model.Member, error) {
	rest, ok := strings.CutPrefix(tok, "-member_")
	if !ok || len(rest) != 1 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidMember, tok)
	}
	m := model.Member(rest[0])
	if !slices.Contains(p.members, m) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidMember, tok)
	}
	return m, nil
}

// start converts a date and an hh:mm clock into minutes since the horizon
// origin. The date must fall inside the horizon.
func (p *Parser) start(date, clock string) (int, error) {
	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %s", ErrInvalidTime, date, clock)
	}
	c, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %s", ErrInvalidTime, date, clock)
	}
	day := int(d.Sub(p.origin).Hours()) / 24
	if d.Before(p.origin) || day >= p.horizon.Days {
		return 0, fmt.Errorf("%w: %s outside the booking week", ErrInvalidTime, date)
	}
	return day*model.MinutesPerDay + c.Hour()*60 + c.Minute(), nil
}

// duration converts hours such as "2.5" into whole minutes.
func duration(tok string) (int, error) {
	h, err := strconv.ParseFloat(tok, 64)
	if err != nil || math.IsNaN(h) || math.IsInf(h, 0) || h <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidDuration, tok)
	}
	m := int(h * 60)
	if m <= 0 {
		return 0, fmt.Errorf("%w: %s is shorter than a minute", ErrInvalidDuration, tok)
	}
	return m, nil
}

func essentialsFor(r *model.Request, items []string) error {
	for _, it := range items {
		if _, ok := lookupEssential(it); !ok {
			return fmt.Errorf("%w: %s", ErrInvalidEssential, it)
		}
	}
	switch r.Priority {
	case model.PriorityParking:
		// zero or one pair
		r.Parking = true
		switch len(items) {
		case 0:
		case 1:
			e, _ := lookupEssential(items[0])
			r.Essentials = e.mask
		case 2:
			mask, ok := pairOf(items[0], items[1])
			if !ok {
				return fmt.Errorf("%w: %s %s", ErrInvalidPair, items[0], items[1])
			}
			r.Essentials = mask
		default:
			return fmt.Errorf("%w: addParking takes at most one pair", ErrTooManyArguments)
		}
	case model.PriorityReservation:
		r.Parking = true
		if len(items) != 2 {
			return fmt.Errorf("%w: received %d, expected 2", ErrEssentialCount, len(items))
		}
		mask, ok := pairOf(items[0], items[1])
		if !ok {
			return fmt.Errorf("%w: %s %s", ErrInvalidPair, items[0], items[1])
		}
		r.Essentials = mask
	case model.PriorityEvent:
		// up to three items, each selecting its whole pair
		r.Parking = true
		if len(items) > 3 {
			return fmt.Errorf("%w: addEvent takes at most three items", ErrTooManyArguments)
		}
		for _, it := range items {
			e, _ := lookupEssential(it)
			r.Essentials |= e.mask
		}
	case model.PriorityEssentials:
		if len(items) != 1 {
			return fmt.Errorf("%w: bookEssentials takes exactly one item", ErrEssentialCount)
		}
		e, _ := lookupEssential(items[0])
		r.Essentials = e.mask
	}
	return nil
}

// ParseRequest parses line and fails with ErrUnknownCommand unless it is a
// booking request.
func (p *Parser) ParseRequest(line string) (model.Request, error) {
	cmd, err := p.Parse(line)
	if err != nil {
		return model.Request{}, err
	}
	if cmd.Kind != KindRequest {
		return model.Request{}, fmt.Errorf("%w: %s is not a booking", ErrUnknownCommand, cmd.Kind)
	}
	return cmd.Request, nil
}
