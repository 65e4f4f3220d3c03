package pipeline

import (
	"context"
	"iter"
	"log/slog"
	"strings"

	"github.com/couchcryptid/igra-sounding-etl/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Predicate decides whether a sounding is kept. It only ever sees header
// fields; levels are attached after the predicate accepts the sounding.
type Predicate func(*domain.Sounding) bool

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger sets the logger used for verbose diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(d *Decoder) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithVerbose logs every rejected line together with its decode error.
func WithVerbose(v bool) Option {
	return func(d *Decoder) { d.verbose = v }
}

// WithClock replaces the clock used to measure Stats.Elapsed.
func WithClock(c clockwork.Clock) Option {
	return func(d *Decoder) {
		if c != nil {
			d.clock = c
		}
	}
}

// WithContext stops decoding once ctx ends. The check runs per line, so a
// predicate rejecting every sounding does not hold off cancellation.
func WithContext(ctx context.Context) Option {
	return func(d *Decoder) { d.ctx = ctx }
}

// Decoder groups the lines of an IGRA archive into soundings. It makes a
// single sequential pass and is not safe for concurrent use.
type Decoder struct {
	lines   iter.Seq[string]
	match   Predicate
	logger  *slog.Logger
	verbose bool
	clock   clockwork.Clock
	ctx     context.Context

	stats   Stats
	started bool
}

// NewDecoder returns a Decoder over lines. A nil match accepts every sounding.
func NewDecoder(lines iter.Seq[string], match Predicate, opts ...Option) *Decoder {
	d := &Decoder{
		lines:  lines,
		match:  match,
		logger: slog.Default(),
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Stats returns a snapshot of the counters. Counters advance while Soundings
// is being iterated; Elapsed is set once iteration ends.
func (d *Decoder) Stats() Stats {
	return d.stats
}

// Soundings lazily yields every accepted sounding in archive order. A sounding
// is yielded when the next header arrives or the input ends. Malformed lines
// are counted in Stats and never stop the stream.
//
// The sequence can be ranged over once; later calls yield nothing.
func (d *Decoder) Soundings() iter.Seq[*domain.Sounding] {
	return func(yield func(*domain.Sounding) bool) {
		if d.started {
			return
		}
		d.started = true

		start := d.clock.Now()
		defer func() { d.stats.Elapsed = d.clock.Since(start) }()

		var current *domain.Sounding
		for line := range d.lines {
			if d.ctx != nil && d.ctx.Err() != nil {
				return
			}
			d.stats.Lines++

			if strings.TrimSpace(line) == "" {
				d.stats.Null++
				continue
			}

			if domain.IsHeader(line) {
				if current != nil {
					s := current
					current = nil
					if !yield(s) {
						return
					}
				}
				current = d.header(line)
				continue
			}

			if current == nil {
				continue
			}
			lvl, err := domain.DecodeLevel(line)
			if err != nil {
				d.stats.Warnings++
				if d.verbose {
					d.logger.Warn("skipping level line",
						"station", current.Station,
						"obs_time", current.ObsTime,
						"line_no", d.stats.Lines,
						"line", line,
						"error", err,
					)
				}
				continue
			}
			current.Add(lvl)
		}

		if current != nil {
			yield(current)
		}
	}
}

// header decodes a header line and applies the predicate. It returns nil when
// the header is malformed or rejected.
func (d *Decoder) header(line string) *domain.Sounding {
	s, err := domain.DecodeHeader(line)
	if err != nil {
		d.stats.Errors++
		if d.verbose {
			d.logger.Warn("skipping header line",
				"line_no", d.stats.Lines,
				"line", line,
				"error", err,
			)
		}
		return nil
	}
	d.stats.Records++

	if d.match != nil && !d.match(s) {
		d.stats.Filtered++
		return nil
	}
	d.stats.Processed++
	return s
}
