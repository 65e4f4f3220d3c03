package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// QualityFlag records the provenance of a single measurement.
type QualityFlag int

const (
	// FlagUnchecked means the value was not checked by any climatology check (' ').
	FlagUnchecked QualityFlag = iota
	// FlagTier1 means the value falls within tier-1 climatological limits ('A').
	FlagTier1
	// FlagPassed means the value passed both tier-1 and tier-2 checks ('B'), or
	// that a field without a flag column carried a real value.
	FlagPassed
	// FlagRemoved means the value was removed by IGRA quality assurance (-8888).
	FlagRemoved
	// FlagMissing means the value was missing prior to quality assurance (-9999).
	FlagMissing
	// FlagError means the flag column held a character outside the documented set.
	FlagError
)

var flagNames = [...]string{
	FlagUnchecked: "unchecked",
	FlagTier1:     "tier1",
	FlagPassed:    "passed",
	FlagRemoved:   "removed",
	FlagMissing:   "missing",
	FlagError:     "error",
}

func (f QualityFlag) String() string {
	if f < 0 || int(f) >= len(flagNames) {
		return fmt.Sprintf("QualityFlag(%d)", int(f))
	}
	return flagNames[f]
}

// MarshalText renders the lowercased flag name.
func (f QualityFlag) MarshalText() ([]byte, error) {
	if f < 0 || int(f) >= len(flagNames) {
		return nil, fmt.Errorf("invalid quality flag %d", int(f))
	}
	return []byte(flagNames[f]), nil
}

// UnmarshalText parses a lowercased flag name.
func (f *QualityFlag) UnmarshalText(b []byte) error {
	for i, name := range flagNames {
		if name == string(b) {
			*f = QualityFlag(i)
			return nil
		}
	}
	return fmt.Errorf("unknown quality flag %q", string(b))
}

// IsSentinel reports whether the flag stands for an absent value.
func (f QualityFlag) IsSentinel() bool {
	return f == FlagRemoved || f == FlagMissing
}

// flagFromChar maps the single-character flag column that follows pressure,
// height and temperature.
func flagFromChar(c byte) QualityFlag {
	switch c {
	case ' ':
		return FlagUnchecked
	case 'A':
		return FlagTier1
	case 'B':
		return FlagPassed
	default:
		return FlagError
	}
}

func (f QualityFlag) char() byte {
	switch f {
	case FlagTier1:
		return 'A'
	case FlagPassed:
		return 'B'
	case FlagError:
		return 'Z'
	default:
		return ' '
	}
}

// Flagged is an optional measurement paired with its quality flag. Value is
// nil exactly when Flag is FlagRemoved or FlagMissing.
type Flagged[T any] struct {
	Value *T
	Flag  QualityFlag
}

// Present builds a Flagged carrying v.
func Present[T any](v T, flag QualityFlag) Flagged[T] {
	return Flagged[T]{Value: &v, Flag: flag}
}

// Absent builds a Flagged with no value.
func Absent[T any](flag QualityFlag) Flagged[T] {
	return Flagged[T]{Flag: flag}
}

// Get returns the value and whether it is present.
func (f Flagged[T]) Get() (T, bool) {
	if f.Value == nil {
		var zero T
		return zero, false
	}
	return *f.Value, true
}

// IsPresent reports whether a value is attached.
func (f Flagged[T]) IsPresent() bool { return f.Value != nil }

type flaggedJSON struct {
	Value any         `json:"value"`
	Flag  QualityFlag `json:"flag"`
}

// MarshalJSON renders {"value": v|null, "flag": "<name>"}. Durations are
// rendered in time.Duration string form.
func (f Flagged[T]) MarshalJSON() ([]byte, error) {
	out := flaggedJSON{Flag: f.Flag}
	if f.Value != nil {
		if d, ok := any(*f.Value).(time.Duration); ok {
			out.Value = d.String()
		} else {
			out.Value = *f.Value
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (f *Flagged[T]) UnmarshalJSON(b []byte) error {
	var in struct {
		Value json.RawMessage `json:"value"`
		Flag  QualityFlag     `json:"flag"`
	}
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	f.Flag = in.Flag
	f.Value = nil
	if len(in.Value) == 0 || string(in.Value) == "null" {
		return nil
	}

	var v T
	if d, ok := any(&v).(*time.Duration); ok {
		var s string
		if err := json.Unmarshal(in.Value, &s); err != nil {
			return err
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*d = parsed
	} else if err := json.Unmarshal(in.Value, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}
