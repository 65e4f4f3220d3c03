package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/igra-sounding-etl/internal/config"
	"github.com/couchcryptid/igra-sounding-etl/internal/domain"
)

func testSounding(t *testing.T) *domain.Sounding {
	t.Helper()
	s, err := domain.DecodeHeader("#GRM00016622 2018 01 01 00 2333    2 ncdc-gts           405272   229714")
	require.NoError(t, err)
	lvl, err := domain.DecodeLevel("21 -9999 102000B-9999    30B-9999    50   120    21")
	require.NoError(t, err)
	s.Add(lvl)
	return s
}

func TestSerializeToMessage(t *testing.T) {
	s := testSounding(t)

	msg, err := serializeToMessage(s, "run-1")
	require.NoError(t, err)

	assert.Equal(t, []byte("GRM00016622"), msg.Key)
	assert.Contains(t, string(msg.Value), `"datasource_p":"ncdc_gts"`)

	require.Len(t, msg.Headers, 5)
	want := []struct{ key, value string }{
		{"sounding_id", s.ID()},
		{"station", "GRM00016622"},
		{"obs_time", time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)},
		{"levels", "1"},
		{"run_id", "run-1"},
	}
	for i, h := range want {
		assert.Equal(t, h.key, msg.Headers[i].Key)
		assert.Equal(t, []byte(h.value), msg.Headers[i].Value)
	}

	var roundtrip domain.Sounding
	require.NoError(t, json.Unmarshal(msg.Value, &roundtrip))
	assert.Equal(t, s.Summary(), roundtrip.Summary())
	assert.Equal(t, s.Levels, roundtrip.Levels)
}

func TestSerializeToMessage_NoRunID(t *testing.T) {
	msg, err := serializeToMessage(testSounding(t), "")
	require.NoError(t, err)
	assert.Len(t, msg.Headers, 4)
}

func TestWriter_LoadBatchEmpty(t *testing.T) {
	w := NewWriter(&config.Config{KafkaBrokers: []string{"localhost:1"}, KafkaSinkTopic: "igra-soundings"}, slog.Default())
	t.Cleanup(func() { _ = w.Close() })

	assert.NoError(t, w.LoadBatch(context.Background(), nil))
}
