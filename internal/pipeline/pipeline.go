package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/igra-sounding-etl/internal/domain"
	"github.com/couchcryptid/igra-sounding-etl/internal/observability"
)

// BatchLoader writes decoded soundings to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, soundings []*domain.Sounding) error
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Status is a point-in-time view of a pipeline run.
type Status struct {
	RunID     string `json:"run_id"`
	Running   bool   `json:"running"`
	Published int    `json:"published"`
	Stats     Stats  `json:"stats"`
}

// Pipeline drains a Decoder into batches and hands them to a BatchLoader.
type Pipeline struct {
	loader    BatchLoader
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
	batchSize int
	runID     string

	mu     sync.Mutex
	status Status
}

// New creates a Pipeline with the given sink and observability.
func New(l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	if batchSize < 1 {
		batchSize = 1
	}
	p := &Pipeline{
		loader:    l,
		logger:    logger,
		metrics:   metrics,
		batchSize: batchSize,
		runID:     uuid.NewString(),
	}
	p.status.RunID = p.runID
	return p
}

// RunID identifies this pipeline instance in logs and message headers.
func (p *Pipeline) RunID() string { return p.runID }

// Status reports progress of the current or last run. Safe to call from
// other goroutines.
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Pipeline) setRunning(running bool) {
	p.mu.Lock()
	p.status.Running = running
	p.mu.Unlock()
}

// CheckReadiness returns nil once the pipeline has loaded at least one batch,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not loaded any soundings yet")
	}
	return nil
}

// Run decodes the archive and loads it batch by batch. It returns nil once the
// decoder is drained and ctx.Err() if the context ends first; dec is bound to
// ctx so decoding stops even while the predicate rejects everything. Failed
// loads are retried with exponential backoff until they succeed or ctx ends.
func (p *Pipeline) Run(ctx context.Context, dec *Decoder) error {
	dec.ctx = ctx
	ctx = domain.WithRunID(ctx, p.runID)
	logger := p.logger.With("run_id", p.runID)

	logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	p.setRunning(true)
	defer func() {
		p.metrics.PipelineRunning.Set(0)
		p.setRunning(false)
	}()

	var (
		batch    = make([]*domain.Sounding, 0, p.batchSize)
		reported Stats
	)
	for s := range dec.Soundings() {
		if err := ctx.Err(); err != nil {
			p.recordStats(dec.Stats(), reported)
			logger.Info("pipeline stopping", "reason", err, "stats", dec.Stats())
			return err
		}

		batch = append(batch, s)
		if len(batch) < p.batchSize {
			continue
		}
		reported = p.recordStats(dec.Stats(), reported)
		if err := p.flush(ctx, logger, batch); err != nil {
			logger.Info("pipeline stopping", "reason", err, "stats", dec.Stats())
			return err
		}
		batch = make([]*domain.Sounding, 0, p.batchSize)
	}

	p.recordStats(dec.Stats(), reported)
	if err := ctx.Err(); err != nil {
		logger.Info("pipeline stopping", "reason", err, "stats", dec.Stats())
		return err
	}
	if len(batch) > 0 {
		if err := p.flush(ctx, logger, batch); err != nil {
			logger.Info("pipeline stopping", "reason", err, "stats", dec.Stats())
			return err
		}
	}

	logger.Info("pipeline finished", "stats", dec.Stats())
	return nil
}

// flush loads one batch, retrying until it succeeds or ctx ends.
func (p *Pipeline) flush(ctx context.Context, logger *slog.Logger, batch []*domain.Sounding) error {
	start := time.Now()
	backoff := initialBackoff

	for {
		err := p.loader.LoadBatch(ctx, batch)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		p.metrics.LoadErrors.Inc()
		logger.Error("load batch failed", "error", err, "batch_size", len(batch), "retry_in", backoff)
		if !sleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}

	p.mu.Lock()
	p.status.Published += len(batch)
	p.mu.Unlock()

	p.metrics.SoundingsPublished.Add(float64(len(batch)))
	p.metrics.BatchSize.Observe(float64(len(batch)))
	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	return nil
}

// recordStats publishes the counter increase since prev and returns cur.
func (p *Pipeline) recordStats(cur, prev Stats) Stats {
	d := cur.sub(prev)
	p.metrics.LinesRead.Add(float64(d.Lines))
	p.metrics.SoundingsDecoded.Add(float64(d.Processed))
	p.metrics.SoundingsFiltered.Add(float64(d.Filtered))
	p.metrics.HeaderErrors.Add(float64(d.Errors))
	p.metrics.LevelWarnings.Add(float64(d.Warnings))

	p.mu.Lock()
	p.status.Stats = cur
	p.mu.Unlock()
	return cur
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
