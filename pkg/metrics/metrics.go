// Package metrics exposes Prometheus counters for a running assistant.
//
// Every Record method is safe to call on a nil *Metrics so components can be
// constructed without instrumentation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the assistant.
type Metrics struct {
	registry *prometheus.Registry

	// Session metrics
	TurnsTotal       *prometheus.CounterVec
	TransitionsTotal *prometheus.CounterVec
	ListenDuration   prometheus.Histogram

	// Chat metrics
	ChatAttemptsTotal *prometheus.CounterVec
	ChatDuration      *prometheus.HistogramVec

	// Music metrics
	SearchesTotal         *prometheus.CounterVec
	DownloadAttemptsTotal *prometheus.CounterVec
	DownloadBytesTotal    *prometheus.CounterVec
	PlaybacksTotal        *prometheus.CounterVec

	// Error metrics
	ErrorsTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all Prometheus metrics registered.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "assistant"
	}

	registry := prometheus.NewRegistry()

	turnsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Total number of handled utterances by intent",
		},
		[]string{"intent"},
	)

	transitionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_transitions_total",
			Help:      "Total number of session state transitions",
		},
		[]string{"from", "to"},
	)

	listenDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "listen_duration_seconds",
			Help:      "Time spent waiting for one utterance",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30},
		},
	)

	chatAttemptsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_attempts_total",
			Help:      "Total number of completion backend attempts",
		},
		[]string{"backend", "outcome"},
	)

	chatDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chat_duration_seconds",
			Help:      "Completion duration including retries",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"backend"},
	)

	searchesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total number of music searches",
		},
		[]string{"provider", "outcome"},
	)

	downloadAttemptsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "download_attempts_total",
			Help:      "Total number of download provider attempts",
		},
		[]string{"provider", "outcome"},
	)

	downloadBytesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "download_bytes_total",
			Help:      "Total audio bytes downloaded",
		},
		[]string{"provider"},
	)

	playbacksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playbacks_total",
			Help:      "Total number of track playbacks",
		},
		[]string{"outcome"},
	)

	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total number of errors surfaced to the user",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(
		turnsTotal,
		transitionsTotal,
		listenDuration,
		chatAttemptsTotal,
		chatDuration,
		searchesTotal,
		downloadAttemptsTotal,
		downloadBytesTotal,
		playbacksTotal,
		errorsTotal,
	)

	return &Metrics{
		registry:              registry,
		TurnsTotal:            turnsTotal,
		TransitionsTotal:      transitionsTotal,
		ListenDuration:        listenDuration,
		ChatAttemptsTotal:     chatAttemptsTotal,
		ChatDuration:          chatDuration,
		SearchesTotal:         searchesTotal,
		DownloadAttemptsTotal: downloadAttemptsTotal,
		DownloadBytesTotal:    downloadBytesTotal,
		PlaybacksTotal:        playbacksTotal,
		ErrorsTotal:           errorsTotal,
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordTurn records one handled utterance.
func (m *Metrics) RecordTurn(intent string) {
	if m == nil {
		return
	}
	m.TurnsTotal.WithLabelValues(intent).Inc()
}

// RecordTransition records a state change.
func (m *Metrics) RecordTransition(from, to string) {
	if m == nil {
		return
	}
	m.TransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordListen records how long the listener blocked.
func (m *Metrics) RecordListen(duration time.Duration) {
	if m == nil {
		return
	}
	m.ListenDuration.Observe(duration.Seconds())
}

// RecordChatAttempt records one completion attempt.
func (m *Metrics) RecordChatAttempt(backend, outcome string) {
	if m == nil {
		return
	}
	m.ChatAttemptsTotal.WithLabelValues(backend, outcome).Inc()
}

// RecordChat records a finished completion including retries.
func (m *Metrics) RecordChat(backend string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ChatDuration.WithLabelValues(backend).Observe(duration.Seconds())
}

// RecordSearch records a search call.
func (m *Metrics) RecordSearch(provider, outcome string) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(provider, outcome).Inc()
}

// RecordDownloadAttempt records one provider attempt in the fallback chain.
func (m *Metrics) RecordDownloadAttempt(provider, outcome string, bytes int) {
	if m == nil {
		return
	}
	m.DownloadAttemptsTotal.WithLabelValues(provider, outcome).Inc()
	if bytes > 0 {
		m.DownloadBytesTotal.WithLabelValues(provider).Add(float64(bytes))
	}
}

// RecordPlayback records a playback result.
func (m *Metrics) RecordPlayback(outcome string) {
	if m == nil {
		return
	}
	m.PlaybacksTotal.WithLabelValues(outcome).Inc()
}

// RecordError records an error surfaced to the user.
func (m *Metrics) RecordError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
