package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kilianp07/spms/core/booking"
	"github.com/kilianp07/spms/core/ledger"
	"github.com/kilianp07/spms/core/logger"
	coremetrics "github.com/kilianp07/spms/core/metrics"
	"github.com/kilianp07/spms/core/model"
	"github.com/kilianp07/spms/core/scheduler"
	"github.com/kilianp07/spms/internal/eventbus"
)

// DefaultMaxBatchDepth bounds addBatch nesting.
const DefaultMaxBatchDepth = 8

// ErrBatchDepth is reported when addBatch nesting exceeds the limit.
var ErrBatchDepth = errors.New("batch nesting too deep")

// SourceConsole marks commands typed at the prompt.
const SourceConsole = "console"

// Session holds the requests ingested from the console and batch files and
// runs the schedulers on printBookings.
type Session struct {
	parser   *booking.Parser
	runner   *Runner
	report   Report
	out      io.Writer
	log      logger.Logger
	bus      *eventbus.Bus
	maxDepth int

	ledger  *ledger.Ledger
	invalid int
	last    []Result
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithSessionLogger sets the session logger.
func WithSessionLogger(l logger.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithInvalidEvents publishes an InvalidCommandEvent on b for every
// rejected command line.
func WithInvalidEvents(b *eventbus.Bus) SessionOption {
	return func(s *Session) { s.bus = b }
}

// WithMaxBatchDepth overrides DefaultMaxBatchDepth.
func WithMaxBatchDepth(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.maxDepth = n
		}
	}
}

// NewSession returns an empty session writing feedback and reports to out.
func NewSession(p *booking.Parser, r *Runner, rp Report, out io.Writer, opts ...SessionOption) *Session {
	s := &Session{
		parser:   p,
		runner:   r,
		report:   rp,
		out:      out,
		log:      logger.Nop{},
		maxDepth: DefaultMaxBatchDepth,
		ledger:   &ledger.Ledger{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Ledger returns the requests ingested so far.
func (s *Session) Ledger() *ledger.Ledger { return s.ledger }

// Invalid returns the number of rejected command lines.
func (s *Session) Invalid() int { return s.invalid }

// LastResults returns the results of the latest printBookings.
func (s *Session) LastResults() []Result { return s.last }

// RunConsole reads commands from in until endProgram, EOF or ctx is done.
func (s *Session) RunConsole(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(s.out, "~~ WELCOME TO SPMS ~~")
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprintln(s.out, "Please enter booking:")
		if !sc.Scan() {
			return sc.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		done, err := s.Execute(ctx, sc.Text())
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// Execute runs one console command. It reports true once endProgram has
// been seen. Malformed commands are counted, not returned.
func (s *Session) Execute(ctx context.Context, line string) (bool, error) {
	return s.exec(ctx, line, SourceConsole, "", 0)
}

// RunBatch executes every command of the file at path.
func (s *Session) RunBatch(ctx context.Context, path string) (bool, error) {
	return s.batch(ctx, path, "", 1)
}

func (s *Session) exec(ctx context.Context, line, source, dir string, depth int) (bool, error) {
	if strings.TrimSpace(line) == "" {
		return false, nil
	}
	cmd, err := s.parser.Parse(line)
	if err != nil {
		s.reject(source, err)
		return false, nil
	}
	switch cmd.Kind {
	case booking.KindEnd:
		s.feedback(source, "Bye!")
		return true, nil
	case booking.KindBatch:
		return s.batch(ctx, cmd.File, dir, depth+1)
	case booking.KindPrint:
		_, err := s.Print(ctx, cmd.Algorithm)
		return false, err
	default:
		r := s.ledger.Ingest(cmd.Request)
		s.feedback(source, fmt.Sprintf("[Pending] #%d %s", r.Order, r.Kind()))
		return false, nil
	}
}

func (s *Session) batch(ctx context.Context, name, dir string, depth int) (bool, error) {
	if depth > s.maxDepth {
		s.reject(name, fmt.Errorf("%w: %s at depth %d", ErrBatchDepth, name, depth))
		return false, nil
	}
	path := name
	if dir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(dir, name)
	}
	f, err := os.Open(path)
	if err != nil {
		s.reject(name, fmt.Errorf("open batch: %w", err))
		return false, nil
	}
	defer func() { _ = f.Close() }()

	before, invalid := s.ledger.Len(), s.invalid
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		done, err := s.exec(ctx, sc.Text(), name, filepath.Dir(path), depth)
		if err != nil || done {
			return done, err
		}
	}
	if err := sc.Err(); err != nil {
		return false, fmt.Errorf("read batch %s: %w", name, err)
	}
	s.feedback(SourceConsole, fmt.Sprintf("[Batch] %s: %d requests added, %d invalid",
		name, s.ledger.Len()-before, s.invalid-invalid))
	return false, nil
}

// Print runs the selected policy, or all of them, over the ingested
// requests and writes the booking tables. The summary report follows when
// every policy was selected.
func (s *Session) Print(ctx context.Context, algorithm string) ([]Result, error) {
	names := []string{algorithm}
	if algorithm == booking.AlgorithmAll {
		names = scheduler.Names()
	}
	for _, n := range names {
		if n == scheduler.NameOptimizer {
			fmt.Fprintln(s.out, "The OPTI scheduler may take some time to run, please be patient!")
			fmt.Fprintln(s.out)
		}
	}
	results, err := s.runner.Run(ctx, s.ledger, names, Meta{Source: SourceConsole, Invalid: s.invalid})
	if err != nil {
		return nil, err
	}
	rp := s.report
	rp.Invalid = s.invalid
	stats := make([]ledger.Statistics, len(results))
	for i, res := range results {
		stats[i] = res.Stats
		if err := rp.WriteBookings(s.out, res.Stats); err != nil {
			return nil, err
		}
	}
	if algorithm == booking.AlgorithmAll {
		if err := rp.WriteSummary(s.out, stats); err != nil {
			return nil, err
		}
	}
	s.last = results
	return results, nil
}

func (s *Session) reject(source string, err error) {
	s.invalid++
	s.log.Debugf("invalid command from %s: %v", source, err)
	if source == SourceConsole {
		fmt.Fprintf(s.out, "-> Invalid: %v\n", err)
	}
	if s.bus != nil {
		s.bus.Publish(coremetrics.InvalidCommandEvent{Reason: reason(err), Source: source, Time: time.Now()})
	}
}

func (s *Session) feedback(source, msg string) {
	if source == SourceConsole {
		fmt.Fprintf(s.out, "-> %s\n", msg)
	}
}

// reason maps err to the sentinel it wraps, for low-cardinality labels.
func reason(err error) string {
	for _, sentinel := range []error{
		booking.ErrEmpty, booking.ErrUnknownCommand, booking.ErrMissingArgument,
		booking.ErrTooManyArguments, booking.ErrInvalidMember, booking.ErrInvalidTime,
		booking.ErrInvalidDuration, booking.ErrInvalidEssential, booking.ErrInvalidPair,
		booking.ErrEssentialCount, booking.ErrUnknownAlgorithm, model.ErrInvalidRequest,
		ErrBatchDepth,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "other"
}
