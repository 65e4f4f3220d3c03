// Command igra decodes an IGRA v2 sounding archive and prints, summarizes, or
// exports the soundings it contains.
//
// Usage:
//
//	igra [flags] <archive>
//
//	igra -head 5 GRM00016622-data.txt.zip
//	igra -analyze -station USM00072201 USM00072201-data.txt.gz
//	igra -format json -from 2018-01-01T00:00:00Z GRM00016622-data.txt > out.ndjson
//	igra -format parquet -out levels.parquet -bbox 5,45,15,55 GRM00016622-data.txt
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/igra-sounding-etl/internal/adapter/parquet"
	"github.com/couchcryptid/igra-sounding-etl/internal/config"
	"github.com/couchcryptid/igra-sounding-etl/internal/domain"
	"github.com/couchcryptid/igra-sounding-etl/internal/filter"
	"github.com/couchcryptid/igra-sounding-etl/internal/observability"
	"github.com/couchcryptid/igra-sounding-etl/internal/pipeline"
	"github.com/couchcryptid/igra-sounding-etl/internal/source"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	head      int
	analyze   bool
	format    string
	out       string
	from      string
	to        string
	stations  string
	bbox      string
	verbose   bool
	logFormat string
	archive   string
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("igra", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: igra [flags] <archive>")
		fs.PrintDefaults()
	}

	o := &options{}
	fs.IntVar(&o.head, "head", 0, "stop after the first N matching soundings (0 = all)")
	fs.BoolVar(&o.analyze, "analyze", false, "print the stations and time range found instead of soundings")
	fs.StringVar(&o.format, "format", "summary", "output format: summary, json or parquet")
	fs.StringVar(&o.out, "out", "", "output file (default stdout)")
	fs.StringVar(&o.from, "from", "", "keep soundings observed at or after this RFC3339 time")
	fs.StringVar(&o.to, "to", "", "keep soundings observed at or before this RFC3339 time")
	fs.StringVar(&o.stations, "station", "", "comma-separated station ids to keep")
	fs.StringVar(&o.bbox, "bbox", "", "keep stations inside minLon,minLat,maxLon,maxLat")
	fs.BoolVar(&o.verbose, "v", false, "log every skipped line")
	fs.StringVar(&o.logFormat, "log-format", "text", "diagnostic log format: text or json")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errors.New("expected exactly one archive argument")
	}
	o.archive = fs.Arg(0)

	switch o.format {
	case "summary", "json", "parquet":
	default:
		return nil, fmt.Errorf("unknown format %q", o.format)
	}
	if o.head < 0 {
		return nil, fmt.Errorf("invalid -head %d", o.head)
	}
	return o, nil
}

// filters builds the sounding predicate from the filter flags; nil keeps
// everything.
func (o *options) filters() (pipeline.Predicate, error) {
	var cfg config.Config
	if o.from != "" {
		t, err := time.Parse(time.RFC3339, o.from)
		if err != nil {
			return nil, fmt.Errorf("invalid -from: %w", err)
		}
		cfg.FilterFrom = &t
	}
	if o.to != "" {
		t, err := time.Parse(time.RFC3339, o.to)
		if err != nil {
			return nil, fmt.Errorf("invalid -to: %w", err)
		}
		cfg.FilterTo = &t
	}
	if cfg.FilterFrom != nil && cfg.FilterTo != nil && cfg.FilterTo.Before(*cfg.FilterFrom) {
		return nil, errors.New("-to is before -from")
	}
	for _, id := range strings.Split(o.stations, ",") {
		if id = strings.TrimSpace(id); id != "" {
			cfg.FilterStations = append(cfg.FilterStations, id)
		}
	}
	if o.bbox != "" {
		b, err := filter.ParseBBox(o.bbox)
		if err != nil {
			return nil, fmt.Errorf("invalid -bbox: %w", err)
		}
		cfg.FilterBBox = &b
	}
	return cfg.Predicate(), nil
}

func run(args []string, stdout, stderr io.Writer) int {
	o, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "igra: %v\n", err)
		return 2
	}
	if err := decode(o, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "igra: %v\n", err)
		return 1
	}
	return 0
}

func decode(o *options, stdout, stderr io.Writer) (err error) {
	match, err := o.filters()
	if err != nil {
		return err
	}

	src, err := source.Open(o.archive)
	if err != nil {
		return err
	}
	defer src.Close()

	level := "info"
	if o.verbose {
		level = "debug"
	}
	logger := observability.NewCLILogger(level, o.logFormat)

	lines := source.NewLineReader(src)
	dec := pipeline.NewDecoder(lines.Lines(), match,
		pipeline.WithLogger(logger),
		pipeline.WithVerbose(o.verbose),
	)
	defer func() {
		fmt.Fprintln(stderr, dec.Stats())
	}()

	if o.analyze {
		fmt.Fprint(stdout, pipeline.Analyze(dec))
		return lines.Err()
	}

	out := stdout
	if o.out != "" {
		f, cerr := os.Create(o.out)
		if cerr != nil {
			return fmt.Errorf("create output: %w", cerr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close output: %w", cerr)
			}
		}()
		out = f
	}

	var soundings iter.Seq[*domain.Sounding] = dec.Soundings()
	if o.head > 0 {
		soundings = limit(soundings, o.head)
	}

	if err := emit(o.format, out, soundings); err != nil {
		return err
	}
	return lines.Err()
}

func limit(seq iter.Seq[*domain.Sounding], n int) iter.Seq[*domain.Sounding] {
	return func(yield func(*domain.Sounding) bool) {
		for _, s := range pipeline.Head(seq, n) {
			if !yield(s) {
				return
			}
		}
	}
}

func emit(format string, out io.Writer, soundings iter.Seq[*domain.Sounding]) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		for s := range soundings {
			if err := enc.Encode(s); err != nil {
				return fmt.Errorf("encode %s: %w", s.ID(), err)
			}
		}
	case "parquet":
		w := parquet.NewWriter(out)
		for s := range soundings {
			if err := w.LoadBatch(context.Background(), []*domain.Sounding{s}); err != nil {
				_ = w.Close()
				return err
			}
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("finish parquet: %w", err)
		}
	default:
		for s := range soundings {
			if _, err := fmt.Fprintln(out, s.Summary()); err != nil {
				return err
			}
		}
	}
	return nil
}
