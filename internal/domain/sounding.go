package domain

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/paulmach/orb"
)

// Location is a station position in signed decimal degrees.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Point returns the location as an orb point (lon, lat order).
func (l Location) Point() orb.Point {
	return orb.Point{l.Lon, l.Lat}
}

// ReleaseTime is the balloon release time of day (UTC). Minute is nil when
// the archive only recorded the hour.
type ReleaseTime struct {
	Hour   int  `json:"hour"`
	Minute *int `json:"minute"`
}

func (r ReleaseTime) String() string {
	if r.Minute == nil {
		return fmt.Sprintf("%02d:--", r.Hour)
	}
	return fmt.Sprintf("%02d:%02d", r.Hour, *r.Minute)
}

// Level is one vertical-profile reading of a sounding.
type Level struct {
	Major         MajorLevelType         `json:"major"`
	Minor         MinorLevelType         `json:"minor"`
	Elapsed       Flagged[time.Duration] `json:"elapsed"`
	Pressure      Flagged[int]           `json:"pressure"`    // Pa
	Height        Flagged[int]           `json:"height"`      // geopotential m
	Temperature   Flagged[float64]       `json:"temperature"` // degrees C
	Humidity      Flagged[float64]       `json:"humidity"`    // percent
	DewPoint      Flagged[float64]       `json:"dewpoint"`    // dew-point depression, degrees C
	WindDirection Flagged[int]           `json:"winddir"`     // degrees from north
	WindSpeed     Flagged[float64]       `json:"windspeed"`   // m/s
}

// Sounding is one station observation: a header and its levels.
type Sounding struct {
	Station           string             `json:"station"`
	ObsTime           time.Time          `json:"obstime"`
	HourMissing       bool               `json:"obs_hour_missing"`
	Release           *ReleaseTime       `json:"reltime"`
	NumLevels         int                `json:"nlevels"`
	PressureSource    *PressureSource    `json:"datasource_p"`
	NonPressureSource *NonPressureSource `json:"datasource_np"`
	Location          Location           `json:"location"`
	Levels            []Level            `json:"levels"`
}

// Add appends a level. Levels beyond the declared count are dropped and Add
// reports false.
func (s *Sounding) Add(l Level) bool {
	if len(s.Levels) >= s.NumLevels {
		return false
	}
	s.Levels = append(s.Levels, l)
	return true
}

// Complete reports whether every declared level has been attached.
func (s *Sounding) Complete() bool {
	return len(s.Levels) == s.NumLevels
}

// Summary renders the one-line digest "<station>\t<obs time>\t<n> levels".
func (s *Sounding) Summary() string {
	return fmt.Sprintf("%s\t%s\t%4d levels", s.Station, s.ObsTime.Format(time.RFC3339), s.NumLevels)
}

// ID is a deterministic identifier for the sounding, derived from the station
// and observation time. Replaying an archive yields the same IDs.
func (s *Sounding) ID() string {
	var buf []byte
	buf = append(buf, s.Station...)
	buf = append(buf, '|')
	buf = s.ObsTime.UTC().AppendFormat(buf, time.RFC3339)
	if s.HourMissing {
		buf = append(buf, "|nohour"...)
	}
	return s.Station + "-" + strconv.FormatUint(xxhash.Sum64(buf), 16)
}
