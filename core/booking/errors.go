package booking

import "errors"

var (
	// ErrEmpty is returned for a blank line.
	ErrEmpty = errors.New("empty command")
	// ErrUnknownCommand is returned when the keyword is not recognized.
	ErrUnknownCommand = errors.New("unrecognized command")
	// ErrMissingArgument is returned when a mandatory token is absent.
	ErrMissingArgument = errors.New("missing argument")
	// ErrTooManyArguments is returned when trailing tokens are left over.
	ErrTooManyArguments = errors.New("too many arguments")
	ErrInvalidMember    = errors.New("invalid member")
	ErrInvalidTime      = errors.New("invalid time")
	ErrInvalidDuration  = errors.New("invalid duration")
	ErrInvalidEssential = errors.New("invalid essential item")
	ErrInvalidPair      = errors.New("invalid essentials pair")
	// ErrEssentialCount is returned when a reservation does not name exactly
	// one pair.
	ErrEssentialCount   = errors.New("invalid number of essentials")
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
)
