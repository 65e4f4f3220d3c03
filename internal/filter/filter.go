// Package filter provides sounding predicates for the decoder: observation
// time windows, station sets, and spatial containment.
//
// Predicates only look at header fields, so they can be evaluated before any
// level line is decoded.
package filter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/couchcryptid/igra-sounding-etl/internal/domain"
)

// Predicate reports whether a sounding should be kept.
type Predicate = func(*domain.Sounding) bool

// All accepts every sounding.
func All(*domain.Sounding) bool { return true }

// TimeRange keeps soundings observed within [from, to]. A nil bound is open.
func TimeRange(from, to *time.Time) Predicate {
	return func(s *domain.Sounding) bool {
		if from != nil && s.ObsTime.Before(*from) {
			return false
		}
		if to != nil && s.ObsTime.After(*to) {
			return false
		}
		return true
	}
}

// Stations keeps soundings from the listed station ids.
func Stations(ids ...string) Predicate {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[strings.TrimSpace(id)] = struct{}{}
	}
	return func(s *domain.Sounding) bool {
		_, ok := set[s.Station]
		return ok
	}
}

// WithinBound keeps soundings whose station lies inside b, edges included.
func WithinBound(b orb.Bound) Predicate {
	return func(s *domain.Sounding) bool {
		return b.Contains(s.Location.Point())
	}
}

// WithinPolygon keeps soundings whose station lies inside p.
func WithinPolygon(p orb.Polygon) Predicate {
	bound := p.Bound()
	return func(s *domain.Sounding) bool {
		pt := s.Location.Point()
		if !bound.Contains(pt) {
			return false
		}
		return planar.PolygonContains(p, pt)
	}
}

// And keeps soundings accepted by every predicate.
func And(preds ...Predicate) Predicate {
	return func(s *domain.Sounding) bool {
		for _, p := range preds {
			if !p(s) {
				return false
			}
		}
		return true
	}
}

// Or keeps soundings accepted by at least one predicate.
func Or(preds ...Predicate) Predicate {
	return func(s *domain.Sounding) bool {
		for _, p := range preds {
			if p(s) {
				return true
			}
		}
		return false
	}
}

// Not inverts p.
func Not(p Predicate) Predicate {
	return func(s *domain.Sounding) bool { return !p(s) }
}

// ParseBBox parses "minLon,minLat,maxLon,maxLat".
func ParseBBox(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("bounding box %q: want minLon,minLat,maxLon,maxLat", s)
	}

	var v [4]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("bounding box %q: %w", s, err)
		}
		v[i] = f
	}

	b := orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}
	if b.Min.X() > b.Max.X() || b.Min.Y() > b.Max.Y() {
		return orb.Bound{}, errors.New("bounding box min corner exceeds max corner")
	}
	if b.Min.Y() < -90 || b.Max.Y() > 90 || b.Min.X() < -180 || b.Max.X() > 180 {
		return orb.Bound{}, errors.New("bounding box outside lon/lat range")
	}
	return b, nil
}
