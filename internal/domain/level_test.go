package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testLevelSurface = "21 -9999 102000B-9999    30B-9999    50   120    21"
	testLevelTier1   = "20 -9999 101600A-9999    66B-9999    60 -9999 -9999"
	testLevelBlank   = "20 -9999 101000 -9999    74B-9999    31 -9999 -9999"
	testLevelFull    = "10  1230  85000B 1457B  -45A   80    35   270   123"
)

func TestDecodeLevel(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected Level
	}{
		{
			name: "surface level",
			line: testLevelSurface,
			expected: Level{
				Major:         MajorOther,
				Minor:         MinorSurface,
				Elapsed:       Absent[time.Duration](FlagMissing),
				Pressure:      Present(102000, FlagPassed),
				Height:        Absent[int](FlagMissing),
				Temperature:   Present(3.0, FlagPassed),
				Humidity:      Absent[float64](FlagMissing),
				DewPoint:      Present(5.0, FlagPassed),
				WindDirection: Present(120, FlagPassed),
				WindSpeed:     Present(2.1, FlagPassed),
			},
		},
		{
			name: "tier-1 pressure flag",
			line: testLevelTier1,
			expected: Level{
				Major:         MajorOther,
				Minor:         MinorOther,
				Elapsed:       Absent[time.Duration](FlagMissing),
				Pressure:      Present(101600, FlagTier1),
				Height:        Absent[int](FlagMissing),
				Temperature:   Present(6.6, FlagPassed),
				Humidity:      Absent[float64](FlagMissing),
				DewPoint:      Present(6.0, FlagPassed),
				WindDirection: Absent[int](FlagMissing),
				WindSpeed:     Absent[float64](FlagMissing),
			},
		},
		{
			name: "blank pressure flag is unchecked",
			line: testLevelBlank,
			expected: Level{
				Major:         MajorOther,
				Minor:         MinorOther,
				Elapsed:       Absent[time.Duration](FlagMissing),
				Pressure:      Present(101000, FlagUnchecked),
				Height:        Absent[int](FlagMissing),
				Temperature:   Present(7.4, FlagPassed),
				Humidity:      Absent[float64](FlagMissing),
				DewPoint:      Present(3.1, FlagPassed),
				WindDirection: Absent[int](FlagMissing),
				WindSpeed:     Absent[float64](FlagMissing),
			},
		},
		{
			name: "every column populated",
			line: testLevelFull,
			expected: Level{
				Major:         MajorStandard,
				Minor:         MinorOther,
				Elapsed:       Present(12*time.Minute+30*time.Second, FlagPassed),
				Pressure:      Present(85000, FlagPassed),
				Height:        Present(1457, FlagPassed),
				Temperature:   Present(-4.5, FlagTier1),
				Humidity:      Present(8.0, FlagPassed),
				DewPoint:      Present(3.5, FlagPassed),
				WindDirection: Present(270, FlagPassed),
				WindSpeed:     Present(12.3, FlagPassed),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeLevel(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDecodeLevel_Flags(t *testing.T) {
	t.Run("unknown flag character keeps value", func(t *testing.T) {
		lvl, err := DecodeLevel("20 -9999 101600Z-9999    66B-9999    60 -9999 -9999")
		require.NoError(t, err)
		assert.Equal(t, Present(101600, FlagError), lvl.Pressure)
	})

	t.Run("removed sentinel wins over flag", func(t *testing.T) {
		lvl, err := DecodeLevel("20 -9999 101600A-9999 -8888B-9999    60 -9999 -9999")
		require.NoError(t, err)
		assert.Equal(t, Absent[float64](FlagRemoved), lvl.Temperature)
		assert.False(t, lvl.Temperature.IsPresent())
	})

	t.Run("missing sentinel wins over blank flag", func(t *testing.T) {
		lvl, err := DecodeLevel(testLevelTier1)
		require.NoError(t, err)
		assert.Equal(t, FlagMissing, lvl.Height.Flag)
		assert.Nil(t, lvl.Height.Value)
	})
}

func TestDecodeLevel_Errors(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		kind     error
		contains string
	}{
		{"empty", "", ErrStructural, "empty"},
		{"too short", testLevelTier1[:40], ErrStructural, "length"},
		{"too long", testLevelTier1 + "1", ErrStructural, "length"},
		{"bad major type", "40 -9999 101600A-9999    66B-9999    60 -9999 -9999", ErrFormat, "major"},
		{"bad minor type", "27 -9999 101600A-9999    66B-9999    60 -9999 -9999", ErrFormat, "minor"},
		{"bad elapsed seconds", "10  1275  85000B 1457B  -45A   80    35   270   123", ErrFormat, "elapsed"},
		{"non-numeric pressure", "20 -9999 10x600A-9999    66B-9999    60 -9999 -9999", ErrFormat, "pressure"},
		{"non-numeric wind speed", "20 -9999 101600A-9999    66B-9999    60 -9999 -99x9", ErrFormat, "windspeed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeLevel(tt.line)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "unexpected kind: %v", err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestDecodeLevel_TrailingWhitespace(t *testing.T) {
	want, err := DecodeLevel(testLevelSurface)
	require.NoError(t, err)

	got, err := DecodeLevel(testLevelSurface + "   \r\n")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLevel_MarshalJSON(t *testing.T) {
	lvl, err := DecodeLevel(testLevelTier1)
	require.NoError(t, err)

	data, err := json.Marshal(lvl)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"major": "other",
		"minor": "other",
		"elapsed": {"value": null, "flag": "missing"},
		"pressure": {"value": 101600, "flag": "tier1"},
		"height": {"value": null, "flag": "missing"},
		"temperature": {"value": 6.6, "flag": "passed"},
		"humidity": {"value": null, "flag": "missing"},
		"dewpoint": {"value": 6, "flag": "passed"},
		"winddir": {"value": null, "flag": "missing"},
		"windspeed": {"value": null, "flag": "missing"}
	}`, string(data))

	var back Level
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, lvl, back)
}

func TestLevel_MarshalJSONElapsed(t *testing.T) {
	lvl, err := DecodeLevel(testLevelFull)
	require.NoError(t, err)

	data, err := json.Marshal(lvl.Elapsed)
	require.NoError(t, err)
	assert.JSONEq(t, `{"value": "12m30s", "flag": "passed"}`, string(data))

	var back Flagged[time.Duration]
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, lvl.Elapsed, back)
}
