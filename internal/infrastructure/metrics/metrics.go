package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mycodedstuff/pibot/internal/domain/media/entities"
)

// Metrics holds all Prometheus metrics for the media pipeline.
// Implements deps.Metrics interface.
type Metrics struct {
	// Download metrics
	DownloadsStarted  prometheus.Counter
	DownloadsFinished *prometheus.CounterVec
	ActiveDownloads   prometheus.Gauge
	BytesTotal        prometheus.Counter

	// Pipeline metrics
	OriginResolutions         *prometheus.CounterVec
	ClassificationResolutions *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance registered on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		DownloadsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "pibot_downloads_started_total",
			Help: "Total number of downloads started",
		}),
		DownloadsFinished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pibot_downloads_finished_total",
				Help: "Total number of downloads that reached a terminal status",
			},
			[]string{"status"},
		),
		ActiveDownloads: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pibot_active_downloads",
			Help: "Current number of downloads in progress",
		}),
		BytesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "pibot_downloaded_bytes_total",
			Help: "Total number of media bytes downloaded",
		}),
		OriginResolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pibot_origin_resolutions_total",
				Help: "Origin message lookups by result",
			},
			[]string{"result"},
		),
		ClassificationResolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pibot_classification_resolutions_total",
				Help: "Classified downloads by resolution path",
			},
			[]string{"path"},
		),
	}
}

// DownloadStarted records a download entering STARTING
func (m *Metrics) DownloadStarted() {
	m.DownloadsStarted.Inc()
	m.ActiveDownloads.Inc()
}

// DownloadFinished records a download reaching status
func (m *Metrics) DownloadFinished(status entities.DownloadStatus) {
	m.DownloadsFinished.WithLabelValues(string(status)).Inc()
	m.ActiveDownloads.Dec()
}

// BytesDownloaded adds n bytes to the transfer counter
func (m *Metrics) BytesDownloaded(n int64) {
	// Only add positive values to prevent counter from going backwards
	if n > 0 {
		m.BytesTotal.Add(float64(n))
	}
}

// OriginResolved records an origin lookup result
func (m *Metrics) OriginResolved(result string) {
	if result == "" {
		result = "unknown"
	}
	m.OriginResolutions.WithLabelValues(result).Inc()
}

// ClassificationResolved records how a download got its category
func (m *Metrics) ClassificationResolved(path string) {
	if path == "" {
		path = "unknown"
	}
	m.ClassificationResolutions.WithLabelValues(path).Inc()
}
