package pipeline

import (
	"fmt"
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/couchcryptid/igra-sounding-etl/internal/domain"
)

// Digest summarizes a full pass over an archive.
type Digest struct {
	Stations  []string // distinct station ids, sorted
	Soundings int      // soundings yielded
	Records   int      // headers decoded, filtered ones included
	First     time.Time
	Last      time.Time
	Stats     Stats
}

func (d Digest) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d station(s): %s.\n", len(d.Stations), strings.Join(d.Stations, " "))
	if d.Soundings == 0 {
		fmt.Fprintf(&b, "Found %d observations.\n", d.Records)
		return b.String()
	}
	fmt.Fprintf(&b, "Found %d observations ranging from %s to %s.\n",
		d.Records, d.First.Format(time.RFC3339), d.Last.Format(time.RFC3339))
	return b.String()
}

// Analyze drains dec and reports which stations it saw and the observation
// time range covered.
func Analyze(dec *Decoder) Digest {
	var (
		d    Digest
		seen = make(map[string]struct{})
	)
	for s := range dec.Soundings() {
		d.Soundings++
		if _, ok := seen[s.Station]; !ok {
			seen[s.Station] = struct{}{}
			d.Stations = append(d.Stations, s.Station)
		}
		if d.First.IsZero() || s.ObsTime.Before(d.First) {
			d.First = s.ObsTime
		}
		if s.ObsTime.After(d.Last) {
			d.Last = s.ObsTime
		}
	}
	slices.Sort(d.Stations)

	d.Stats = dec.Stats()
	d.Records = d.Stats.Records
	return d
}

// Head collects at most n soundings from seq and stops the iteration early.
func Head(seq iter.Seq[*domain.Sounding], n int) []*domain.Sounding {
	if n <= 0 {
		return nil
	}
	out := make([]*domain.Sounding, 0, n)
	for s := range seq {
		out = append(out, s)
		if len(out) == n {
			break
		}
	}
	return out
}
