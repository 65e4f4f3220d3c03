package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"

	"github.com/couchcryptid/igra-sounding-etl/internal/filter"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	Source          string
	KafkaBrokers    []string
	KafkaSinkTopic  string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	BatchSize       int

	// Decoder settings.
	Verbose        bool
	FilterFrom     *time.Time
	FilterTo       *time.Time
	FilterStations []string
	FilterBBox     *orb.Bound
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	batchSize, err := parseBatchSize()
	if err != nil {
		return nil, err
	}

	verbose, err := parseBool("DECODE_VERBOSE")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Source:          os.Getenv("IGRA_SOURCE"),
		KafkaBrokers:    parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic:  envOrDefault("KAFKA_SINK_TOPIC", "igra-soundings"),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		BatchSize:       batchSize,
		Verbose:         verbose,
		FilterStations:  splitList(os.Getenv("FILTER_STATIONS")),
	}

	if cfg.FilterFrom, err = parseTime("FILTER_FROM"); err != nil {
		return nil, err
	}
	if cfg.FilterTo, err = parseTime("FILTER_TO"); err != nil {
		return nil, err
	}
	if cfg.FilterFrom != nil && cfg.FilterTo != nil && cfg.FilterTo.Before(*cfg.FilterFrom) {
		return nil, errors.New("FILTER_TO is before FILTER_FROM")
	}

	if s := os.Getenv("FILTER_BBOX"); s != "" {
		b, err := filter.ParseBBox(s)
		if err != nil {
			return nil, fmt.Errorf("invalid FILTER_BBOX: %w", err)
		}
		cfg.FilterBBox = &b
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}

	return cfg, nil
}

// Predicate builds the decoder filter described by the FILTER_* settings.
// It returns nil when no filter is configured.
func (c *Config) Predicate() filter.Predicate {
	var preds []filter.Predicate
	if c.FilterFrom != nil || c.FilterTo != nil {
		preds = append(preds, filter.TimeRange(c.FilterFrom, c.FilterTo))
	}
	if len(c.FilterStations) > 0 {
		preds = append(preds, filter.Stations(c.FilterStations...))
	}
	if c.FilterBBox != nil {
		preds = append(preds, filter.WithinBound(*c.FilterBBox))
	}
	if len(preds) == 0 {
		return nil
	}
	return filter.And(preds...)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBrokers(s string) []string {
	return splitList(s)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseBatchSize() (int, error) {
	n, err := strconv.Atoi(envOrDefault("BATCH_SIZE", "50"))
	if err != nil || n < 1 || n > 1000 {
		return 0, errors.New("invalid BATCH_SIZE: must be between 1 and 1000")
	}
	return n, nil
}

func parseBool(key string) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}

func parseTime(key string) (*time.Time, error) {
	s := os.Getenv(key)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	t = t.UTC()
	return &t, nil
}
