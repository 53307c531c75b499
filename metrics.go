package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RunMetrics collects counters for a single invocation. The process is
// short-lived, so the registry is written out as a textfile instead of
// being served.
type RunMetrics struct {
	registry         *prometheus.Registry
	urlsExtracted    prometheus.Gauge
	imagesDownloaded prometheus.Counter
	downloadErrors   prometheus.Counter
	downloadBytes    prometheus.Counter
	downloadDuration prometheus.Histogram
}

// NewRunMetrics creates metrics registered on a fresh registry
func NewRunMetrics() *RunMetrics {
	m := &RunMetrics{
		registry: prometheus.NewRegistry(),
		urlsExtracted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "logpuzzle_urls_extracted",
			Help: "Puzzle URLs resolved from the log file",
		}),
		imagesDownloaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "logpuzzle_images_downloaded_total",
			Help: "Images retrieved successfully",
		}),
		downloadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "logpuzzle_download_errors_total",
			Help: "Image retrievals that failed",
		}),
		downloadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "logpuzzle_download_bytes_total",
			Help: "Bytes written to image files",
		}),
		downloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "logpuzzle_download_duration_seconds",
			Help:    "Time spent retrieving a single image",
			Buckets: prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(
		m.urlsExtracted,
		m.imagesDownloaded,
		m.downloadErrors,
		m.downloadBytes,
		m.downloadDuration,
	)
	return m
}

// SetExtracted records the number of resolved URLs
func (m *RunMetrics) SetExtracted(n int) {
	if m == nil {
		return
	}
	m.urlsExtracted.Set(float64(n))
}

// ObserveDownload records one retrieval attempt
func (m *RunMetrics) ObserveDownload(bytes int64, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.downloadDuration.Observe(elapsed.Seconds())
	if err != nil {
		m.downloadErrors.Inc()
		return
	}
	m.imagesDownloaded.Inc()
	m.downloadBytes.Add(float64(bytes))
}

// WriteTextfile writes the registry in the node exporter textfile format
func (m *RunMetrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
