package domain

import (
	"fmt"
	"sort"
	"strings"
)

// MajorLevelType is the first digit of a level line.
type MajorLevelType int

const (
	MajorStandard MajorLevelType = 1 // standard pressure level
	MajorOther    MajorLevelType = 2 // other pressure level
	MajorNon      MajorLevelType = 3 // non-pressure level
)

func (t MajorLevelType) String() string {
	switch t {
	case MajorStandard:
		return "standard"
	case MajorOther:
		return "other"
	case MajorNon:
		return "non"
	default:
		return fmt.Sprintf("MajorLevelType(%d)", int(t))
	}
}

func (t MajorLevelType) valid() bool {
	return t >= MajorStandard && t <= MajorNon
}

// MarshalText renders the lowercased major type name.
func (t MajorLevelType) MarshalText() ([]byte, error) {
	if !t.valid() {
		return nil, fmt.Errorf("invalid major level type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText parses a lowercased major type name.
func (t *MajorLevelType) UnmarshalText(b []byte) error {
	for v := MajorStandard; v <= MajorNon; v++ {
		if v.String() == string(b) {
			*t = v
			return nil
		}
	}
	return fmt.Errorf("unknown major level type %q", string(b))
}

// MinorLevelType is the second digit of a level line.
type MinorLevelType int

const (
	MinorOther      MinorLevelType = 0
	MinorSurface    MinorLevelType = 1
	MinorTropopause MinorLevelType = 2
)

func (t MinorLevelType) String() string {
	switch t {
	case MinorOther:
		return "other"
	case MinorSurface:
		return "surface"
	case MinorTropopause:
		return "tropopause"
	default:
		return fmt.Sprintf("MinorLevelType(%d)", int(t))
	}
}

func (t MinorLevelType) valid() bool {
	return t >= MinorOther && t <= MinorTropopause
}

// MarshalText renders the lowercased minor type name.
func (t MinorLevelType) MarshalText() ([]byte, error) {
	if !t.valid() {
		return nil, fmt.Errorf("invalid minor level type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText parses a lowercased minor type name.
func (t *MinorLevelType) UnmarshalText(b []byte) error {
	for v := MinorOther; v <= MinorTropopause; v++ {
		if v.String() == string(b) {
			*t = v
			return nil
		}
	}
	return fmt.Errorf("unknown minor level type %q", string(b))
}

// PressureSource identifies the dataset that supplied the pressure-level data
// of a sounding. The code set overlaps NonPressureSource textually but the two
// are kept as distinct types.
type PressureSource string

// NonPressureSource identifies the dataset that supplied the non-pressure
// (height) level data of a sounding.
type NonPressureSource string

var pressureSources = map[PressureSource]struct{}{
	"bas-data": {}, "cdmp-amr": {}, "cdmp-awc": {}, "cdmp-mgr": {}, "cdmp-zdm": {},
	"chuan101": {}, "erac-hud": {}, "iorgc-id": {}, "mfwa-ptu": {}, "ncar-ccd": {},
	"ncar-mit": {}, "ncdc6210": {}, "ncdc6301": {}, "ncdc6309": {}, "ncdc6310": {},
	"ncdc6314": {}, "ncdc6315": {}, "ncdc6316": {}, "ncdc6319": {}, "ncdc6322": {},
	"ncdc6323": {}, "ncdc6324": {}, "ncdc6326": {}, "ncdc6355": {}, "ncdc-gts": {},
	"ncdc-nws": {}, "ngdc-har": {}, "usaf-ds3": {},
}

var nonPressureSources = map[NonPressureSource]struct{}{
	"cdmp-adp": {}, "cdmp-awc": {}, "cdmp-us2": {}, "cdmp-us3": {}, "cdmp-usm": {},
	"chuan101": {}, "erac-hud": {}, "mfwa-wnd": {}, "ncdc6301": {}, "ncdc6309": {},
	"ncdc6314": {}, "ncdc-gts": {}, "ncdc-nws": {}, "ngdc-har": {}, "usaf-ds3": {},
}

// ParsePressureSource validates a pressure data-source code as it appears in
// the archive, e.g. "ncdc-gts".
func ParsePressureSource(code string) (PressureSource, bool) {
	_, ok := pressureSources[PressureSource(code)]
	return PressureSource(code), ok
}

// ParseNonPressureSource validates a non-pressure data-source code.
func ParseNonPressureSource(code string) (NonPressureSource, bool) {
	_, ok := nonPressureSources[NonPressureSource(code)]
	return NonPressureSource(code), ok
}

// PressureSources lists every known pressure data-source code, sorted.
func PressureSources() []PressureSource {
	out := make([]PressureSource, 0, len(pressureSources))
	for k := range pressureSources {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NonPressureSources lists every known non-pressure data-source code, sorted.
func NonPressureSources() []NonPressureSource {
	out := make([]NonPressureSource, 0, len(nonPressureSources))
	for k := range nonPressureSources {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Name is the lowercased identifier used in serialized output ("ncdc_gts").
func (s PressureSource) Name() string { return codeName(string(s)) }

// Name is the lowercased identifier used in serialized output.
func (s NonPressureSource) Name() string { return codeName(string(s)) }

// MarshalText renders Name.
func (s PressureSource) MarshalText() ([]byte, error) { return []byte(s.Name()), nil }

// UnmarshalText parses a Name back into its archive code.
func (s *PressureSource) UnmarshalText(b []byte) error {
	v, ok := ParsePressureSource(codeFromName(string(b)))
	if !ok {
		return fmt.Errorf("unknown pressure data source %q", string(b))
	}
	*s = v
	return nil
}

// MarshalText renders Name.
func (s NonPressureSource) MarshalText() ([]byte, error) { return []byte(s.Name()), nil }

// UnmarshalText parses a Name back into its archive code.
func (s *NonPressureSource) UnmarshalText(b []byte) error {
	v, ok := ParseNonPressureSource(codeFromName(string(b)))
	if !ok {
		return fmt.Errorf("unknown non-pressure data source %q", string(b))
	}
	*s = v
	return nil
}

func codeName(code string) string {
	return strings.ReplaceAll(code, "-", "_")
}

func codeFromName(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}
