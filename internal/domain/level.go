package domain

import (
	"strings"
)

// LevelLen is the width of a level line once trailing blanks are removed.
const LevelLen = 51

// DecodeLevel decodes one level line. Columns, 0-indexed and half-open:
//
//	[0,1)   major level type       [1,2)   minor level type
//	[3,8)   elapsed time MMMSS     [9,15)  pressure, flag at 15
//	[16,21) height, flag at 21     [22,27) temperature, flag at 27
//	[28,33) relative humidity      [34,39) dew-point depression
//	[40,45) wind direction         [46,51) wind speed
func DecodeLevel(line string) (Level, error) {
	if line == "" {
		return Level{}, structuralError("empty level line")
	}
	line = strings.TrimRight(line, " \t\r\n")
	if len(line) != LevelLen {
		return Level{}, structuralError("bad level length: got %d, want %d", len(line), LevelLen)
	}

	var (
		lvl Level
		err error
	)

	major, err := parseFixedInt("major", line[0:1])
	if err != nil {
		return Level{}, err
	}
	lvl.Major = MajorLevelType(major)
	if !lvl.Major.valid() {
		return Level{}, formatError("major", "unknown level type "+line[0:1], nil)
	}

	minor, err := parseFixedInt("minor", line[1:2])
	if err != nil {
		return Level{}, err
	}
	lvl.Minor = MinorLevelType(minor)
	if !lvl.Minor.valid() {
		return Level{}, formatError("minor", "unknown level type "+line[1:2], nil)
	}

	if lvl.Elapsed, err = decodeElapsed(line[3:8]); err != nil {
		return Level{}, err
	}
	if lvl.Pressure, err = decodeFlaggedInt("pressure", line[9:15], line[15]); err != nil {
		return Level{}, err
	}
	if lvl.Height, err = decodeFlaggedInt("height", line[16:21], line[21]); err != nil {
		return Level{}, err
	}
	if lvl.Temperature, err = decodeFlaggedDecimal("temperature", line[22:27], line[27]); err != nil {
		return Level{}, err
	}
	if lvl.Humidity, err = decodeDecimal("humidity", line[28:33]); err != nil {
		return Level{}, err
	}
	if lvl.DewPoint, err = decodeDecimal("dewpoint", line[34:39]); err != nil {
		return Level{}, err
	}
	if lvl.WindDirection, err = decodeInt("winddir", line[40:45]); err != nil {
		return Level{}, err
	}
	if lvl.WindSpeed, err = decodeDecimal("windspeed", line[46:51]); err != nil {
		return Level{}, err
	}
	return lvl, nil
}
