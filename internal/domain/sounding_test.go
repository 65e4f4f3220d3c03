package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeSample(t *testing.T, header string, levels ...string) *Sounding {
	t.Helper()
	s, err := DecodeHeader(header)
	require.NoError(t, err)
	for _, line := range levels {
		lvl, err := DecodeLevel(line)
		require.NoError(t, err)
		s.Add(lvl)
	}
	return s
}

func TestSounding_AddRespectsDeclaredCount(t *testing.T) {
	s, err := DecodeHeader(testHeader1)
	require.NoError(t, err)

	lvl, err := DecodeLevel(testLevelSurface)
	require.NoError(t, err)

	assert.True(t, s.Add(lvl))
	assert.False(t, s.Complete())
	assert.True(t, s.Add(lvl))
	assert.True(t, s.Complete())
	assert.False(t, s.Add(lvl), "third level exceeds declared count")
	assert.Len(t, s.Levels, 2)
}

func TestSounding_AddZeroLevels(t *testing.T) {
	s := &Sounding{Station: testStation}
	assert.True(t, s.Complete())
	assert.False(t, s.Add(Level{}))
	assert.Empty(t, s.Levels)
}

func TestSounding_Summary(t *testing.T) {
	tests := []struct {
		header   string
		expected string
	}{
		{testHeader1, "GRM00016622\t2018-01-01T00:00:00Z\t   2 levels"},
		{testHeader2, "GRM00016622\t2018-01-02T00:00:00Z\t   3 levels"},
		{
			"#GRM00016622 2018 01 01 00 2333   72 ncdc-gts           405272   229714",
			"GRM00016622\t2018-01-01T00:00:00Z\t  72 levels",
		},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			s, err := DecodeHeader(tt.header)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, s.Summary())
		})
	}
}

func TestSounding_ID(t *testing.T) {
	first := decodeSample(t, testHeader1)
	second := decodeSample(t, testHeader2)
	missingHour := decodeSample(t, "#GRM00016622 2018 01 01 99 2333    2 ncdc-gts           405272   229714")

	assert.True(t, strings.HasPrefix(first.ID(), testStation+"-"))
	assert.NotEqual(t, first.ID(), second.ID())
	assert.NotEqual(t, first.ID(), missingHour.ID())
	assert.Equal(t, first.ID(), decodeSample(t, testHeader1).ID())
}

func TestSounding_MarshalJSON(t *testing.T) {
	s := decodeSample(t, testHeader1, testLevelSurface, testLevelTier1)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, "GRM00016622", raw["station"])
	assert.Equal(t, "2018-01-01T00:00:00Z", raw["obstime"])
	assert.Equal(t, "ncdc_gts", raw["datasource_p"])
	assert.Nil(t, raw["datasource_np"])
	assert.Equal(t, false, raw["obs_hour_missing"])
	assert.InDelta(t, 2, raw["nlevels"], 0)
	assert.Equal(t, map[string]any{"hour": float64(23), "minute": float64(33)}, raw["reltime"])
	assert.Equal(t, map[string]any{"lat": 40.5272, "lon": 22.9714}, raw["location"])
	require.Len(t, raw["levels"], 2)

	var back Sounding
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s.Summary(), back.Summary())
	assert.Equal(t, s.Levels, back.Levels)
	assert.Equal(t, *s.PressureSource, *back.PressureSource)
}

func TestSerializeSounding(t *testing.T) {
	s := decodeSample(t, testHeader1, testLevelSurface, testLevelTier1)

	ev, err := SerializeSounding(s)
	require.NoError(t, err)

	assert.Equal(t, []byte(testStation), ev.Key)
	assert.Equal(t, s.ID(), ev.Headers["sounding_id"])
	assert.Equal(t, testStation, ev.Headers["station"])
	assert.Equal(t, "2018-01-01T00:00:00Z", ev.Headers["obs_time"])
	assert.Equal(t, "2", ev.Headers["levels"])
	assert.Contains(t, string(ev.Value), `"station":"GRM00016622"`)
}

func TestFormat_RoundTrip(t *testing.T) {
	headers := []string{
		testHeader1,
		testHeader2,
		"#GRM00016622 2018 01 01 99 2399    2 ncdc-gts           405272   229714",
		"#GRM00016622 2018 01 01 00 9999    2 ncdc-gts           405272   229714",
		"#USM00072201 1995 07 14 12 1103   85 ncdc6210 cdmp-us2  245544  -817550",
	}
	for _, line := range headers {
		t.Run(line, func(t *testing.T) {
			s, err := DecodeHeader(line)
			require.NoError(t, err)
			assert.Equal(t, line, FormatHeader(s))
		})
	}

	levels := []string{
		testLevelSurface,
		testLevelTier1,
		testLevelBlank,
		testLevelFull,
		"20 -9999 101600A-9999 -8888 -9999    60 -9999 -9999",
	}
	for _, line := range levels {
		t.Run(line, func(t *testing.T) {
			lvl, err := DecodeLevel(line)
			require.NoError(t, err)
			assert.Equal(t, line, FormatLevel(lvl))
		})
	}
}

func TestFormatLevel_UnknownFlagRendersZ(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"pressure", "20 -9999 101600X-9999    66B-9999    60 -9999 -9999", "20 -9999 101600Z-9999    66B-9999    60 -9999 -9999"},
		{"height", "20 -9999 101600A  123Q  -45B-9999    60 -9999 -9999", "20 -9999 101600A  123Z  -45B-9999    60 -9999 -9999"},
		{"temperature", "20 -9999 101600A-9999    66*-9999    60 -9999 -9999", "20 -9999 101600A-9999    66Z-9999    60 -9999 -9999"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lvl, err := DecodeLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, FormatLevel(lvl))
		})
	}
}

func TestQualityFlag_Text(t *testing.T) {
	for f := FlagUnchecked; f <= FlagError; f++ {
		text, err := f.MarshalText()
		require.NoError(t, err)

		var back QualityFlag
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, f, back)
	}

	assert.Equal(t, "tier1", FlagTier1.String())
	assert.True(t, FlagRemoved.IsSentinel())
	assert.False(t, FlagError.IsSentinel())

	var bad QualityFlag
	assert.Error(t, bad.UnmarshalText([]byte("TIER1")))
}

func TestDataSources(t *testing.T) {
	assert.Len(t, PressureSources(), 28)
	assert.Len(t, NonPressureSources(), 15)

	_, ok := ParsePressureSource("cdmp-us2")
	assert.False(t, ok, "non-pressure only code")
	_, ok = ParseNonPressureSource("cdmp-us2")
	assert.True(t, ok)

	src, _ := ParsePressureSource("ncdc-gts")
	assert.Equal(t, "ncdc_gts", src.Name())

	var back PressureSource
	require.NoError(t, back.UnmarshalText([]byte("ncdc_gts")))
	assert.Equal(t, src, back)
}
