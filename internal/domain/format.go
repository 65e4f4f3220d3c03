package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatHeader renders s back into the fixed-column header layout read by
// DecodeHeader. Levels are not rendered.
func FormatHeader(s *Sounding) string {
	hour := fmt.Sprintf("%02d", s.ObsTime.Hour())
	if s.HourMissing {
		hour = "99"
	}

	release := "9999"
	if s.Release != nil {
		minute := "99"
		if s.Release.Minute != nil {
			minute = fmt.Sprintf("%02d", *s.Release.Minute)
		}
		release = fmt.Sprintf("%02d%s", s.Release.Hour, minute)
	}

	var psrc, npsrc string
	if s.PressureSource != nil {
		psrc = string(*s.PressureSource)
	}
	if s.NonPressureSource != nil {
		npsrc = string(*s.NonPressureSource)
	}

	return fmt.Sprintf("%c%-11.11s %4d %02d %02d %s %s %4d %-8s %-8s %7d %8d",
		HeaderMarker, s.Station,
		s.ObsTime.Year(), int(s.ObsTime.Month()), s.ObsTime.Day(), hour,
		release, s.NumLevels, psrc, npsrc,
		int(math.Round(s.Location.Lat*10000)),
		int(math.Round(s.Location.Lon*10000)),
	)
}

// FormatLevel renders l into the fixed-column level layout read by
// DecodeLevel. FlagError is written as 'Z', so a line carrying an
// unrecognized flag character decodes back with 'Z' in that column.
func FormatLevel(l Level) string {
	var b strings.Builder
	b.Grow(LevelLen)
	fmt.Fprintf(&b, "%d%d ", int(l.Major), int(l.Minor))
	b.WriteString(formatElapsed(l.Elapsed))
	b.WriteByte(' ')
	b.WriteString(formatInt(l.Pressure, 6))
	b.WriteByte(l.Pressure.Flag.char())
	b.WriteString(formatInt(l.Height, 5))
	b.WriteByte(l.Height.Flag.char())
	b.WriteString(formatDecimal(l.Temperature))
	b.WriteByte(l.Temperature.Flag.char())
	b.WriteString(formatDecimal(l.Humidity))
	b.WriteByte(' ')
	b.WriteString(formatDecimal(l.DewPoint))
	b.WriteByte(' ')
	b.WriteString(formatInt(l.WindDirection, 5))
	b.WriteByte(' ')
	b.WriteString(formatDecimal(l.WindSpeed))
	return b.String()
}

func sentinelText(f QualityFlag) string {
	if f == FlagRemoved {
		return sentinelRemoved
	}
	return sentinelMissing
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

func formatInt(f Flagged[int], width int) string {
	v, ok := f.Get()
	if !ok {
		return pad(sentinelText(f.Flag), width)
	}
	return pad(strconv.Itoa(v), width)
}

func formatDecimal(f Flagged[float64]) string {
	v, ok := f.Get()
	if !ok {
		return pad(sentinelText(f.Flag), 5)
	}
	return pad(strconv.Itoa(int(math.Round(v*10))), 5)
}

func formatElapsed(f Flagged[time.Duration]) string {
	d, ok := f.Get()
	if !ok {
		return pad(sentinelText(f.Flag), 5)
	}
	minutes := int(d / time.Minute)
	seconds := int((d % time.Minute) / time.Second)
	return pad(strconv.Itoa(minutes*100+seconds), 5)
}
