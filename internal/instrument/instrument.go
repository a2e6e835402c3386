// Package instrument exposes Prometheus collectors for the polling loop and
// the data source.
package instrument

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dashmon"

// Fetch results
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	// FetchTotal counts data source fetches by resource (metrics, logs) and result
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "fetch_total",
			Help:      "Total data source fetches",
		},
		[]string{"resource", "result"},
	)

	// FetchDuration tracks fetch latency per resource
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "fetch_duration_seconds",
			Help:      "Data source fetch duration",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"resource"},
	)

	// PollTicks counts refresh attempts by trigger (timer, manual) and result
	PollTicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "refresh_total",
			Help:      "Total refresh attempts",
		},
		[]string{"trigger", "result"},
	)

	// PollConsecutiveErrors mirrors the poller's consecutive failure count
	PollConsecutiveErrors = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "consecutive_errors",
			Help:      "Consecutive failed refreshes since the last success",
		},
	)

	// PollActive is 1 while the polling timer is running
	PollActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "active",
			Help:      "Whether automatic polling is running (1) or suspended (0)",
		},
	)

	// PollSuspensions counts how often polling stopped after reaching max errors
	PollSuspensions = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "suspensions_total",
			Help:      "Times polling was suspended after consecutive failures",
		},
	)

	// MetricStatus holds the current threshold tier per card
	// 0 = normal, 1 = warning, 2 = critical
	MetricStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "card",
			Name:      "status",
			Help:      "Threshold tier per metric card (0 normal, 1 warning, 2 critical)",
		},
		[]string{"kind"},
	)

	// AlertsShown counts alerts raised by kind
	AlertsShown = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alert",
			Name:      "shown_total",
			Help:      "Alerts raised on the alert surface",
		},
		[]string{"kind"},
	)
)

// BoolGauge converts b to a gauge value
func BoolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
