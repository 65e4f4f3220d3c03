package domain

import (
	"strconv"
	"strings"
	"time"
)

// Sentinel literals shared by every numeric field of a level line.
const (
	sentinelRemoved = "-8888"
	sentinelMissing = "-9999"
)

// sentinelFlag reports whether raw (blank padded) is one of the sentinel
// literals and which flag it stands for.
func sentinelFlag(raw string) (QualityFlag, bool) {
	switch strings.TrimSpace(raw) {
	case sentinelRemoved:
		return FlagRemoved, true
	case sentinelMissing:
		return FlagMissing, true
	default:
		return 0, false
	}
}

// parseFixedInt parses a right-aligned, blank-padded integer column.
func parseFixedInt(field, raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, formatError(field, "invalid integer "+strconv.Quote(raw), nil)
	}
	return v, nil
}

// decodeFlaggedInt decodes an integer column followed by a one-character flag
// column. Sentinels win over the flag character.
func decodeFlaggedInt(field, raw string, flag byte) (Flagged[int], error) {
	if f, ok := sentinelFlag(raw); ok {
		return Absent[int](f), nil
	}
	v, err := parseFixedInt(field, raw)
	if err != nil {
		return Flagged[int]{}, err
	}
	return Present(v, flagFromChar(flag)), nil
}

// decodeFlaggedDecimal is decodeFlaggedInt for columns carrying one implied
// fractional digit.
func decodeFlaggedDecimal(field, raw string, flag byte) (Flagged[float64], error) {
	if f, ok := sentinelFlag(raw); ok {
		return Absent[float64](f), nil
	}
	v, err := parseFixedInt(field, raw)
	if err != nil {
		return Flagged[float64]{}, err
	}
	return Present(scaleTenths(v), flagFromChar(flag)), nil
}

// decodeInt decodes a column with no flag column: present values are Passed.
func decodeInt(field, raw string) (Flagged[int], error) {
	return decodeFlaggedInt(field, raw, 'B')
}

// decodeDecimal decodes a tenths column with no flag column.
func decodeDecimal(field, raw string) (Flagged[float64], error) {
	return decodeFlaggedDecimal(field, raw, 'B')
}

// decodeElapsed decodes the MMMSS elapsed-time column.
func decodeElapsed(raw string) (Flagged[time.Duration], error) {
	if f, ok := sentinelFlag(raw); ok {
		return Absent[time.Duration](f), nil
	}
	v, err := parseFixedInt("elapsed", raw)
	if err != nil {
		return Flagged[time.Duration]{}, err
	}
	minutes, seconds := v/100, v%100
	if v < 0 || seconds >= 60 {
		return Flagged[time.Duration]{}, formatError("elapsed", "invalid MMMSS value "+strconv.Quote(raw), nil)
	}
	d := time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second
	return Present(d, FlagPassed), nil
}

// decodeCoordinate inserts the decimal point four digits from the right.
func decodeCoordinate(field, raw string) (float64, error) {
	v, err := parseFixedInt(field, raw)
	if err != nil {
		return 0, err
	}
	return float64(v) / 10000, nil
}

func scaleTenths(v int) float64 {
	return float64(v) / 10
}
