package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/igra-sounding-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/igra-sounding-etl/internal/adapter/kafka"
	"github.com/couchcryptid/igra-sounding-etl/internal/config"
	"github.com/couchcryptid/igra-sounding-etl/internal/observability"
	"github.com/couchcryptid/igra-sounding-etl/internal/pipeline"
	"github.com/couchcryptid/igra-sounding-etl/internal/source"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Source == "" {
		slog.Error("failed to load config", "error", "IGRA_SOURCE is required")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	src, err := source.Open(cfg.Source)
	if err != nil {
		logger.Error("failed to open archive", "source", cfg.Source, "error", err)
		os.Exit(1)
	}
	lines := source.NewLineReader(src)

	dec := pipeline.NewDecoder(lines.Lines(), cfg.Predicate(),
		pipeline.WithLogger(logger),
		pipeline.WithVerbose(cfg.Verbose),
	)

	writer := kafkaadapter.NewWriter(cfg, logger)
	p := pipeline.New(writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Endpoints{
		Ready:  p,
		Status: func() any { return p.Status() },
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Decode the archive once; the service keeps serving health and metrics
	// after the archive is drained.
	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.Info("decoding archive", "source", src.Name())
		if err := p.Run(ctx, dec); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("pipeline error", "error", err)
		}
		if err := lines.Err(); err != nil {
			logger.Error("archive read error", "source", src.Name(), "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-done:
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
		if err := src.Close(); err != nil {
			logger.Error("archive close error", "error", err)
		}
	case <-shutdownCtx.Done():
		// The pipeline still owns the archive and the writer; exiting releases them.
		logger.Warn("pipeline did not stop before shutdown timeout")
	}

	logger.Info("shutdown complete")
}
