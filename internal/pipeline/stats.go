package pipeline

import (
	"fmt"
	"log/slog"
	"time"
)

// Stats are the running counters of one decoding pass.
type Stats struct {
	Lines     int           `json:"lines"`     // lines read, blank ones included
	Null      int           `json:"null"`      // blank lines
	Records   int           `json:"records"`   // headers decoded
	Processed int           `json:"processed"` // soundings accepted by the predicate
	Filtered  int           `json:"filtered"`  // soundings rejected by the predicate
	Errors    int           `json:"errors"`    // malformed headers
	Warnings  int           `json:"warnings"`  // malformed levels
	Elapsed   time.Duration `json:"elapsed"`   // wall time of the pass
}

// Equal compares every counter except Elapsed.
func (s Stats) Equal(o Stats) bool {
	s.Elapsed, o.Elapsed = 0, 0
	return s == o
}

func (s Stats) String() string {
	return fmt.Sprintf("lines=%d null=%d records=%d processed=%d filtered=%d errors=%d warnings=%d elapsed=%s",
		s.Lines, s.Null, s.Records, s.Processed, s.Filtered, s.Errors, s.Warnings, s.Elapsed)
}

// LogValue groups the counters under one slog attribute.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("lines", s.Lines),
		slog.Int("null", s.Null),
		slog.Int("records", s.Records),
		slog.Int("processed", s.Processed),
		slog.Int("filtered", s.Filtered),
		slog.Int("errors", s.Errors),
		slog.Int("warnings", s.Warnings),
		slog.Duration("elapsed", s.Elapsed),
	)
}

// sub returns the counter increase from prev to s.
func (s Stats) sub(prev Stats) Stats {
	return Stats{
		Lines:     s.Lines - prev.Lines,
		Null:      s.Null - prev.Null,
		Records:   s.Records - prev.Records,
		Processed: s.Processed - prev.Processed,
		Filtered:  s.Filtered - prev.Filtered,
		Errors:    s.Errors - prev.Errors,
		Warnings:  s.Warnings - prev.Warnings,
	}
}
