// Command validate performs integrity checks over an IGRA v2 archive: every
// line decodes, every sounding carries the levels its header declares, each
// station's soundings are in chronological order, and every sounding
// serializes for the sink.
//
// Usage:
//
//	go run ./cmd/validate data/mock/igra-synthetic.txt.gz
//	go run ./cmd/validate -max-errors 50 GRM00016622-data.txt.zip
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/couchcryptid/igra-sounding-etl/internal/domain"
	"github.com/couchcryptid/igra-sounding-etl/internal/pipeline"
	"github.com/couchcryptid/igra-sounding-etl/internal/source"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	maxErrors := flag.Int("max-errors", 20, "detailed errors printed per failed phase")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: validate [flags] <archive>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if code := run(flag.Arg(0), *maxErrors, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(path string, maxErrors int, out io.Writer) int {
	fmt.Fprintln(out, "=== IGRA Archive Integrity Validation ===")
	fmt.Fprintln(out)

	src, err := source.Open(path)
	if err != nil {
		fmt.Fprintf(out, "FATAL: open archive: %v\n", err)
		return 1
	}
	defer src.Close()

	lines := source.NewLineReader(src)
	dec := pipeline.NewDecoder(lines.Lines(), nil)

	levels := &phase{name: "Phase 2: Level Counts (declared vs read)"}
	chrono := &phase{name: "Phase 3: Chronology (per station)"}
	serial := &phase{name: "Phase 4: Serialization (sink documents)"}

	var (
		soundings int
		order     = newChronology()
	)
	for s := range dec.Soundings() {
		soundings++
		checkLevels(levels, s)
		order.check(chrono, s)
		checkSerialization(serial, s)
	}

	decode := checkDecode(dec.Stats(), lines.Err())
	phases := []*phase{decode, levels, chrono, serial}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Soundings: %d from %d station(s); %s\n", soundings, len(order.last), dec.Stats())

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if maxErrors > 0 && i == maxErrors {
				fmt.Fprintf(out, "  ... %d more\n", len(p.errors)-maxErrors)
				break
			}
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Phase 1: Clean Decode ──

func checkDecode(st pipeline.Stats, readErr error) *phase {
	p := &phase{name: "Phase 1: Clean Decode (headers and levels)"}
	if readErr != nil {
		p.errorf("read error: %v", readErr)
	}
	if st.Errors > 0 {
		p.errorf("%d malformed header line(s)", st.Errors)
	}
	if st.Warnings > 0 {
		p.errorf("%d malformed level line(s)", st.Warnings)
	}
	if st.Records == 0 && readErr == nil {
		p.errorf("no soundings found")
	}
	return p
}

// ── Phase 2: Level Counts ──

func checkLevels(p *phase, s *domain.Sounding) {
	if !s.Complete() {
		p.errorf("%s (%s): header declares %d levels, read %d",
			s.Station, s.ObsTime.Format(time.RFC3339), s.NumLevels, len(s.Levels))
	}
}

// ── Phase 3: Chronology ──

// chronology tracks, per station, the latest observation time and every
// sounding id seen. Ids keep an hour-absent sounding apart from a real 00Z
// one on the same date.
type chronology struct {
	last map[string]time.Time
	ids  map[string]struct{}
}

func newChronology() *chronology {
	return &chronology{last: map[string]time.Time{}, ids: map[string]struct{}{}}
}

func (c *chronology) check(p *phase, s *domain.Sounding) {
	id := s.ID()
	prev, seen := c.last[s.Station]
	_, dup := c.ids[id]
	switch {
	case dup:
		p.errorf("%s: duplicate observation at %s", s.Station, obsLabel(s))
	case seen && s.ObsTime.Before(prev):
		p.errorf("%s: %s follows %s", s.Station, obsLabel(s), prev.Format(time.RFC3339))
	}
	c.ids[id] = struct{}{}
	if !seen || s.ObsTime.After(prev) {
		c.last[s.Station] = s.ObsTime
	}
}

func obsLabel(s *domain.Sounding) string {
	if s.HourMissing {
		return s.ObsTime.Format(time.DateOnly) + " (hour missing)"
	}
	return s.ObsTime.Format(time.RFC3339)
}

// ── Phase 4: Serialization ──

func checkSerialization(p *phase, s *domain.Sounding) {
	ev, err := domain.SerializeSounding(s)
	if err != nil {
		p.errorf("%s (%s): %v", s.Station, s.ObsTime.Format(time.RFC3339), err)
		return
	}
	if string(ev.Key) != s.Station {
		p.errorf("%s: message key %q does not match station", s.ID(), ev.Key)
	}
}
