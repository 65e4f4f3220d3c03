// Command genmock writes a deterministic synthetic IGRA v2 archive for tests
// and demos. Records are rendered with the same fixed-column formatter the
// decoder round-trips against, so the output decodes cleanly unless -corrupt
// asks for malformed lines.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/igra-synthetic.txt.gz -days 30
//	go run ./cmd/genmock -out internal/pipeline/testdata/mock.txt -stations 1 -days 2 -levels 8
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/pgzip"

	"github.com/couchcryptid/igra-sounding-etl/internal/domain"
)

var baseDate = time.Date(2018, time.January, 1, 0, 0, 0, 0, time.UTC)

type station struct {
	id       string
	lat, lon float64
	elev     int // m
	psrc     domain.PressureSource
	npsrc    domain.NonPressureSource
}

var stations = []station{
	{id: "GRM00016622", lat: 40.5272, lon: 22.9714, elev: 4, psrc: "ncdc-gts"},
	{id: "USM00072201", lat: 24.5544, lon: -81.755, elev: 1, psrc: "ncdc6210", npsrc: "cdmp-us2"},
	{id: "ASM00094610", lat: -31.9275, lon: 115.9764, elev: 20, psrc: "ncdc-gts", npsrc: "ncdc-gts"},
}

type genConfig struct {
	stations int
	days     int
	levels   int
	seed     uint64
	corrupt  int // every Nth sounding gets one malformed level line; 0 disables
}

type genStats struct {
	soundings int
	levels    int
	corrupted int
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path; a .gz suffix writes gzip")
	nStations := flag.Int("stations", len(stations), "number of stations to generate (max 3)")
	days := flag.Int("days", 7, "days of soundings per station, two per day")
	levels := flag.Int("levels", 20, "levels per sounding")
	seed := flag.Uint64("seed", 1, "random seed")
	corrupt := flag.Int("corrupt", 0, "corrupt one level of every Nth sounding (0 = never)")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	cfg := genConfig{stations: *nStations, days: *days, levels: *levels, seed: *seed, corrupt: *corrupt}
	if err := cfg.validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer f.Close()

	var w io.Writer = f
	var gz *pgzip.Writer
	if strings.HasSuffix(*out, ".gz") {
		gz = pgzip.NewWriter(f)
		w = gz
	}

	st, err := generate(w, cfg)
	if err != nil {
		return err
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return fmt.Errorf("finish gzip: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		return err
	}

	log.Printf("wrote %s: %d soundings, %d levels, %d corrupted", *out, st.soundings, st.levels, st.corrupted)
	return nil
}

func (c genConfig) validate() error {
	if c.stations < 1 || c.stations > len(stations) {
		return fmt.Errorf("-stations must be between 1 and %d", len(stations))
	}
	if c.days < 1 {
		return fmt.Errorf("-days must be positive")
	}
	if c.levels < 1 || c.levels > 999 {
		return fmt.Errorf("-levels must be between 1 and 999")
	}
	if c.corrupt < 0 {
		return fmt.Errorf("-corrupt must not be negative")
	}
	return nil
}

// generate writes the archive station by station, each in chronological
// order, the way IGRA distributes per-station files concatenated.
func generate(w io.Writer, cfg genConfig) (genStats, error) {
	rng := rand.New(rand.NewPCG(cfg.seed, cfg.seed^0x9e3779b97f4a7c15))
	bw := bufio.NewWriter(w)

	var st genStats
	for _, stn := range stations[:cfg.stations] {
		for day := range cfg.days {
			for _, hour := range []int{0, 12} {
				obs := baseDate.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour)
				s := sounding(rng, stn, obs, cfg.levels)
				st.soundings++

				if _, err := fmt.Fprintln(bw, domain.FormatHeader(s)); err != nil {
					return st, err
				}
				corrupt := cfg.corrupt > 0 && st.soundings%cfg.corrupt == 0
				for i, l := range s.Levels {
					line := domain.FormatLevel(l)
					if corrupt && i == len(s.Levels)-1 {
						line = line[:len(line)-3]
						st.corrupted++
					}
					if _, err := fmt.Fprintln(bw, line); err != nil {
						return st, err
					}
					st.levels++
				}
			}
		}
	}
	return st, bw.Flush()
}

func sounding(rng *rand.Rand, stn station, obs time.Time, n int) *domain.Sounding {
	s := &domain.Sounding{
		Station:   stn.id,
		ObsTime:   obs,
		NumLevels: n,
		Location:  domain.Location{Lat: stn.lat, Lon: stn.lon},
	}
	if stn.psrc != "" {
		psrc := stn.psrc
		s.PressureSource = &psrc
	}
	if stn.npsrc != "" {
		npsrc := stn.npsrc
		s.NonPressureSource = &npsrc
	}

	// Balloons go up roughly an hour before the nominal time; some archives
	// only kept the hour.
	relHour := (obs.Hour() + 23) % 24
	switch rng.IntN(10) {
	case 0:
		s.Release = nil
	case 1:
		s.Release = &domain.ReleaseTime{Hour: relHour}
	default:
		minute := 15 + rng.IntN(45)
		s.Release = &domain.ReleaseTime{Hour: relHour, Minute: &minute}
	}

	surfaceP := 100500 + rng.IntN(2000)
	surfaceT := 10 + rng.Float64()*15
	top := 16000.0
	for i := range n {
		frac := float64(i) / float64(n)
		height := stn.elev + int(frac*top)
		pressure := int(float64(surfaceP)*math.Exp(-float64(height-stn.elev)/7400)) / 10 * 10
		temp := surfaceT - 6.5*float64(height-stn.elev)/1000 + rng.Float64() - 0.5

		l := domain.Level{
			Major:         domain.MajorOther,
			Minor:         domain.MinorOther,
			Pressure:      domain.Present(pressure, qcFlag(rng)),
			Height:        domain.Present(height, qcFlag(rng)),
			Temperature:   domain.Present(tenths(temp), qcFlag(rng)),
			Humidity:      domain.Present(tenths(20+rng.Float64()*75), domain.FlagPassed),
			DewPoint:      domain.Present(tenths(0.5+rng.Float64()*20), domain.FlagPassed),
			WindDirection: domain.Present(rng.IntN(360), domain.FlagPassed),
			WindSpeed:     domain.Present(tenths(rng.Float64()*40), domain.FlagPassed),
		}
		if i == 0 {
			l.Minor = domain.MinorSurface
			l.Elapsed = domain.Absent[time.Duration](domain.FlagMissing)
		} else {
			l.Elapsed = domain.Present(time.Duration(i*40)*time.Second, domain.FlagPassed)
		}
		if i%5 == 4 {
			l.Humidity = domain.Absent[float64](domain.FlagMissing)
			l.DewPoint = domain.Absent[float64](domain.FlagMissing)
		}
		if rng.IntN(50) == 0 {
			l.Temperature = domain.Absent[float64](domain.FlagRemoved)
		}
		s.Levels = append(s.Levels, l)
	}
	return s
}

func qcFlag(rng *rand.Rand) domain.QualityFlag {
	if rng.IntN(4) == 0 {
		return domain.FlagTier1
	}
	return domain.FlagPassed
}

func tenths(v float64) float64 {
	return math.Round(v*10) / 10
}
