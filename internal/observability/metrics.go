package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "igra_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL pipeline.
type Metrics struct {
	LinesRead          prometheus.Counter
	SoundingsDecoded   prometheus.Counter
	SoundingsFiltered  prometheus.Counter
	SoundingsPublished prometheus.Counter
	HeaderErrors       prometheus.Counter
	LevelWarnings      prometheus.Counter
	LoadErrors         prometheus.Counter
	PipelineRunning    prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// repeated calls from tests do not panic with "already registered".
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	counter := func(name, h string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help(h)})
	}

	return &Metrics{
		LinesRead:          counter("lines_read_total", "Total archive lines read, blank lines included."),
		SoundingsDecoded:   counter("soundings_decoded_total", "Soundings whose header decoded and passed the filter."),
		SoundingsFiltered:  counter("soundings_filtered_total", "Soundings rejected by the filter."),
		SoundingsPublished: counter("soundings_published_total", "Soundings written to the sink."),
		HeaderErrors:       counter("header_errors_total", "Header lines that failed to decode."),
		LevelWarnings:      counter("level_warnings_total", "Level lines that failed to decode."),
		LoadErrors:         counter("load_errors_total", "Failed sink writes, retried with backoff."),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      help("1 when the pipeline is active, 0 when shut down."),
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      help("Number of soundings per batch handed to the sink."),
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100, 250, 500, 1000},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      help("Duration of a complete batch load, retries included."),
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.LinesRead,
		m.SoundingsDecoded,
		m.SoundingsFiltered,
		m.SoundingsPublished,
		m.HeaderErrors,
		m.LevelWarnings,
		m.LoadErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
	}
}
