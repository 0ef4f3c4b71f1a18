package app

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"spinwatch/clients/notifier"
	"spinwatch/clients/telemetry"
	"spinwatch/internal/view"
	"spinwatch/internal/window"
)

// Metrics collects Prometheus metrics for the poller and dashboard.
type Metrics struct {
	pollsTotal      *prometheus.CounterVec
	pollDuration    prometheus.Histogram
	patternDistance *prometheus.GaugeVec
	patternPhase    *prometheus.GaugeVec
	alertsSent      *prometheus.CounterVec
	wsClients       prometheus.Gauge
}

var (
	metricsOnce sync.Once
	metricsInst *Metrics
)

// NewMetrics returns the process-wide collector, registering it on first use.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInst = &Metrics{
			pollsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "spinwatch_polls_total",
					Help: "Telemetry endpoint fetches by outcome",
				},
				[]string{"endpoint", "status"},
			),
			pollDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "spinwatch_poll_duration_seconds",
					Help:    "Wall time of a full dashboard poll",
					Buckets: prometheus.DefBuckets,
				},
			),
			patternDistance: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "spinwatch_pattern_distance",
					Help: "Spins since each pattern last landed",
				},
				[]string{"pattern"},
			),
			patternPhase: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "spinwatch_pattern_phase",
					Help: "Window phase per pattern (0 waiting, 1 warming, 2 in window, 3 missed)",
				},
				[]string{"pattern"},
			),
			alertsSent: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "spinwatch_alerts_sent_total",
					Help: "Window alerts handed to notifiers",
				},
				[]string{"kind"},
			),
			wsClients: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "spinwatch_ws_clients",
					Help: "Connected dashboard WebSocket clients",
				},
			),
		}
	})
	return metricsInst
}

// RecordPoll counts every attempted endpoint as ok or error.
func (m *Metrics) RecordPoll(d *telemetry.Dashboard) {
	if m == nil || d == nil {
		return
	}
	for _, endpoint := range d.Attempted {
		status := "ok"
		if d.Failed(endpoint) {
			status = "error"
		}
		m.pollsTotal.WithLabelValues(endpointLabel(endpoint), status).Inc()
	}
	m.pollDuration.Observe(d.Elapsed.Seconds())
}

func (m *Metrics) RecordCards(cards []view.PatternCard) {
	if m == nil {
		return
	}
	for _, c := range cards {
		m.patternDistance.WithLabelValues(c.PatternID).Set(float64(c.Distance))
		m.patternPhase.WithLabelValues(c.PatternID).Set(phaseValue(c.Status.Phase))
	}
}

func (m *Metrics) RecordAlert(kind notifier.AlertKind) {
	if m == nil {
		return
	}
	m.alertsSent.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) SetWSClients(n int) {
	if m == nil {
		return
	}
	m.wsClients.Set(float64(n))
}

// endpointLabel folds per-pattern distance keys into one label value.
func endpointLabel(endpoint string) string {
	if strings.HasPrefix(endpoint, telemetry.EndpointDistances+":") {
		return telemetry.EndpointDistances
	}
	return endpoint
}

func phaseValue(p window.Phase) float64 {
	switch p {
	case window.Waiting:
		return 0
	case window.Warming:
		return 1
	case window.InWindow:
		return 2
	default:
		return 3
	}
}
