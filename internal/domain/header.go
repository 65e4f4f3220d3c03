package domain

import (
	"strconv"
	"strings"
	"time"
)

const (
	// HeaderMarker starts every header line.
	HeaderMarker = '#'
	// HeaderLen is the width of a header line once trailing blanks are removed.
	HeaderLen = 71
)

// IsHeader reports whether line opens a new sounding.
func IsHeader(line string) bool {
	return len(line) > 0 && line[0] == HeaderMarker
}

// DecodeHeader decodes a header line into a Sounding with no levels.
func DecodeHeader(line string) (*Sounding, error) {
	if line == "" {
		return nil, structuralError("empty header line")
	}
	if line[0] != HeaderMarker {
		return nil, structuralError("missing %q header character", HeaderMarker)
	}
	line = strings.TrimRight(line, " \t\r\n")
	if len(line) != HeaderLen {
		return nil, structuralError("bad header length: got %d, want %d", len(line), HeaderLen)
	}

	obsTime, hourMissing, err := decodeObsTime(line)
	if err != nil {
		return nil, err
	}
	release, err := decodeReleaseTime(line[27:31])
	if err != nil {
		return nil, err
	}
	numLevels, err := parseFixedInt("numlevels", line[32:36])
	if err != nil {
		return nil, err
	}
	if numLevels < 0 {
		return nil, formatError("numlevels", "negative level count", nil)
	}

	s := &Sounding{
		Station:     line[1:12],
		ObsTime:     obsTime,
		HourMissing: hourMissing,
		Release:     release,
		NumLevels:   numLevels,
	}

	if code := strings.TrimSpace(line[37:45]); code != "" {
		src, ok := ParsePressureSource(code)
		if !ok {
			return nil, formatError("datasource_p", "unknown code "+strconv.Quote(code), nil)
		}
		s.PressureSource = &src
	}
	if code := strings.TrimSpace(line[46:54]); code != "" {
		src, ok := ParseNonPressureSource(code)
		if !ok {
			return nil, formatError("datasource_np", "unknown code "+strconv.Quote(code), nil)
		}
		s.NonPressureSource = &src
	}

	if s.Location.Lat, err = decodeCoordinate("lat", line[55:62]); err != nil {
		return nil, err
	}
	if s.Location.Lon, err = decodeCoordinate("lon", line[63:71]); err != nil {
		return nil, err
	}
	return s, nil
}

// decodeObsTime reads YEAR MONTH DAY HOUR from columns [13,26). An hour of 99
// means the hour is unknown: the timestamp falls on 00:00 UTC and the second
// result is true.
func decodeObsTime(line string) (time.Time, bool, error) {
	hourMissing := line[24:26] == "99"
	span := line[13:26]
	if hourMissing {
		span = line[13:23]
	}

	fields := strings.Fields(span)
	want := 4
	if hourMissing {
		want = 3
	}
	if len(fields) != want {
		return time.Time{}, false, formatError("obstime", "expected "+strconv.Itoa(want)+" fields in "+strconv.Quote(span), nil)
	}

	parts := make([]int, 4)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return time.Time{}, false, formatError("obstime", "invalid integer "+strconv.Quote(f), err)
		}
		parts[i] = v
	}
	year, month, day, hour := parts[0], parts[1], parts[2], parts[3]
	if month < 1 || month > 12 || hour < 0 || hour > 23 {
		return time.Time{}, false, formatError("obstime", "out of range "+strconv.Quote(span), nil)
	}
	t := time.Date(year, time.Month(month), day, hour, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false, formatError("obstime", "no such date "+strconv.Quote(span), nil)
	}
	return t, hourMissing, nil
}

// decodeReleaseTime reads the HHMM release column. 9999 means no release
// time; a minute of 99 means only the hour is known.
func decodeReleaseTime(raw string) (*ReleaseTime, error) {
	if raw == "9999" {
		return nil, nil
	}
	hour, err := parseFixedInt("reltime", raw[:2])
	if err != nil {
		return nil, err
	}
	if hour < 0 || hour > 23 {
		return nil, formatError("reltime", "hour out of range "+strconv.Quote(raw), nil)
	}
	r := &ReleaseTime{Hour: hour}
	if raw[2:] == "99" {
		return r, nil
	}
	minute, err := parseFixedInt("reltime", raw[2:])
	if err != nil {
		return nil, err
	}
	if minute < 0 || minute > 59 {
		return nil, formatError("reltime", "minute out of range "+strconv.Quote(raw), nil)
	}
	r.Minute = &minute
	return r, nil
}
