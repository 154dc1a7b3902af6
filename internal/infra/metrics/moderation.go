package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		decisionsTotal,
		malformedTokensTotal,
		unauthorizedDecisionsTotal,
	)
}

var (
	decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_decisions_total",
			Help: "Moderation decisions by outcome (approved/rejected/duplicate).",
		},
		[]string{"outcome"},
	)

	malformedTokensTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_malformed_tokens_total",
			Help: "Decision callbacks whose token failed to decode.",
		},
	)

	unauthorizedDecisionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_unauthorized_decisions_total",
			Help: "Decision callbacks from users outside the moderator allow-list.",
		},
	)
)

func IncDecision(outcome string) {
	decisionsTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncMalformedToken() {
	malformedTokensTotal.Inc()
}

func IncUnauthorizedDecision() {
	unauthorizedDecisionsTotal.Inc()
}
