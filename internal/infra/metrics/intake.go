package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		updatesReceivedTotal,
		updatesDroppedTotal,
		applicationsSubmittedTotal,
		webhookLatencySeconds,
	)
}

var (
	updatesReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_updates_received_total",
			Help: "Inbound updates by kind (command, text, callback).",
		},
		[]string{"kind"},
	)

	updatesDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_updates_dropped_total",
			Help: "Updates that matched no transition rule, by reason.",
		},
		[]string{"reason"},
	)

	applicationsSubmittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_applications_submitted_total",
			Help: "Completed questionnaires forwarded for moderation.",
		},
	)

	webhookLatencySeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "intake_webhook_latency_seconds",
			Help:    "Webhook ingress handling latency.",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		},
	)
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncUpdateReceived(kind string) {
	updatesReceivedTotal.WithLabelValues(norm(kind)).Inc()
}

func IncUpdateDropped(reason string) {
	updatesDroppedTotal.WithLabelValues(norm(reason)).Inc()
}

func IncApplicationSubmitted() {
	applicationsSubmittedTotal.Inc()
}

func ObserveWebhookLatency(seconds float64) {
	webhookLatencySeconds.Observe(seconds)
}
