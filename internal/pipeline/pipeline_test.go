package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/igra-sounding-etl/internal/domain"
	"github.com/couchcryptid/igra-sounding-etl/internal/observability"
	"github.com/couchcryptid/igra-sounding-etl/internal/pipeline"
)

// --- mocks ---

type mockLoader struct {
	mu       sync.Mutex
	batches  [][]*domain.Sounding
	runIDs   []string
	failures int // number of leading LoadBatch calls that fail
	calls    int
}

func (m *mockLoader) LoadBatch(ctx context.Context, soundings []*domain.Sounding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failures < 0 || m.calls <= m.failures {
		return errors.New("broker unavailable")
	}
	m.batches = append(m.batches, soundings)
	m.runIDs = append(m.runIDs, domain.RunIDFromContext(ctx))
	return nil
}

func (m *mockLoader) loaded() []*domain.Sounding {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Sounding
	for _, b := range m.batches {
		out = append(out, b...)
	}
	return out
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	ldr := &mockLoader{}
	metrics := newTestMetrics()
	p := pipeline.New(ldr, slog.Default(), metrics, 50)

	require.Error(t, p.CheckReadiness(context.Background()))

	err := p.Run(context.Background(), pipeline.NewDecoder(lines(scenarioB), nil))
	require.NoError(t, err)

	require.Len(t, ldr.batches, 1)
	assert.Len(t, ldr.batches[0], 2)
	assert.NoError(t, p.CheckReadiness(context.Background()))

	assert.InDelta(t, 7, testutil.ToFloat64(metrics.LinesRead), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.SoundingsDecoded), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.SoundingsPublished), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.PipelineRunning), 0)

	st := p.Status()
	assert.Equal(t, p.RunID(), st.RunID)
	assert.False(t, st.Running)
	assert.Equal(t, 2, st.Published)
	assert.True(t, pipeline.Stats{Lines: 7, Records: 2, Processed: 2}.Equal(st.Stats), "got %v", st.Stats)
}

func TestPipeline_Run_Batching(t *testing.T) {
	ldr := &mockLoader{}
	metrics := newTestMetrics()
	p := pipeline.New(ldr, slog.Default(), metrics, 1)

	input := scenarioB + scenarioA
	err := p.Run(context.Background(), pipeline.NewDecoder(lines(input), nil))
	require.NoError(t, err)

	require.Len(t, ldr.batches, 3)
	for _, b := range ldr.batches {
		assert.Len(t, b, 1)
	}
	assert.Equal(t, summaries(ldr.loaded()), []string{
		"GRM00016622\t2018-01-01T00:00:00Z\t   2 levels",
		"GRM00016622\t2018-01-02T00:00:00Z\t   3 levels",
		"GRM00016622\t2018-01-01T00:00:00Z\t   2 levels",
	})

	// Counters are published incrementally but add up to the full pass.
	assert.InDelta(t, 10, testutil.ToFloat64(metrics.LinesRead), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.SoundingsPublished), 0)
}

func TestPipeline_Run_DecodeFailuresCounted(t *testing.T) {
	ldr := &mockLoader{}
	metrics := newTestMetrics()
	p := pipeline.New(ldr, slog.Default(), metrics, 10)

	dec := pipeline.NewDecoder(lines(header1[:60]+"\n"+scenarioB), func(s *domain.Sounding) bool {
		return s.ObsTime.Day() == 1
	})
	require.NoError(t, p.Run(context.Background(), dec))

	assert.Len(t, ldr.loaded(), 1)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.HeaderErrors), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.SoundingsFiltered), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.LevelWarnings), 0)
}

func TestPipeline_Run_NothingToLoad(t *testing.T) {
	ldr := &mockLoader{}
	p := pipeline.New(ldr, slog.Default(), newTestMetrics(), 10)

	reject := func(*domain.Sounding) bool { return false }
	require.NoError(t, p.Run(context.Background(), pipeline.NewDecoder(lines(scenarioB), reject)))

	assert.Zero(t, ldr.calls)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_RetriesFailedLoad(t *testing.T) {
	ldr := &mockLoader{failures: 1}
	metrics := newTestMetrics()
	p := pipeline.New(ldr, slog.Default(), metrics, 50)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, p.Run(ctx, pipeline.NewDecoder(lines(scenarioB), nil)))

	assert.Equal(t, 2, ldr.calls)
	assert.Len(t, ldr.loaded(), 2)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.LoadErrors), 0)
	assert.NoError(t, p.CheckReadiness(ctx))
}

func TestPipeline_Run_GivesUpWhenContextEnds(t *testing.T) {
	ldr := &mockLoader{failures: -1}
	p := pipeline.New(ldr, slog.Default(), newTestMetrics(), 50)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := p.Run(ctx, pipeline.NewDecoder(lines(scenarioB), nil))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, ldr.loaded())
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ldr := &mockLoader{}
	p := pipeline.New(ldr, slog.Default(), newTestMetrics(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	dec := pipeline.NewDecoder(lines(scenarioB), nil)
	err := p.Run(ctx, dec)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ldr.loaded())

	// No line is read once the context has ended.
	assert.Equal(t, 0, dec.Stats().Lines)
}

func TestPipeline_Run_CancelledWhileFiltering(t *testing.T) {
	ldr := &mockLoader{}
	p := pipeline.New(ldr, slog.Default(), newTestMetrics(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reject := func(*domain.Sounding) bool { return false }
	dec := pipeline.NewDecoder(lines(strings.Repeat(scenarioB, 10000)), reject)
	err := p.Run(ctx, dec)

	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, ldr.calls)
	assert.Equal(t, 0, dec.Stats().Lines)
}

func TestPipeline_Run_CancelledMidArchive(t *testing.T) {
	ldr := &mockLoader{}
	p := pipeline.New(ldr, slog.Default(), newTestMetrics(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	headers := 0
	reject := func(*domain.Sounding) bool {
		headers++
		if headers == 3 {
			cancel()
		}
		return false
	}
	dec := pipeline.NewDecoder(lines(strings.Repeat(scenarioB, 10000)), reject)

	require.ErrorIs(t, p.Run(ctx, dec), context.Canceled)
	assert.Equal(t, 3, headers)
	assert.Equal(t, 3, dec.Stats().Filtered)
	// The third header opens the second copy, on line 8.
	assert.Equal(t, 8, dec.Stats().Lines)
	assert.Zero(t, ldr.calls)
}

func TestPipeline_RunIDPropagates(t *testing.T) {
	ldr := &mockLoader{}
	p := pipeline.New(ldr, slog.Default(), newTestMetrics(), 1)
	other := pipeline.New(ldr, slog.Default(), newTestMetrics(), 1)

	require.NoError(t, p.Run(context.Background(), pipeline.NewDecoder(lines(scenarioB), nil)))

	require.Len(t, ldr.runIDs, 2)
	assert.NotEmpty(t, p.RunID())
	assert.NotEqual(t, p.RunID(), other.RunID())
	for _, id := range ldr.runIDs {
		assert.Equal(t, p.RunID(), id)
	}
}
