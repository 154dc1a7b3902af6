package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once       sync.Once
	collectors []prometheus.Collector
)

// register queues collectors for later registration. The intake and
// moderation files call it from init(), so importing this package is enough
// to stage every intake_* metric family.
func register(cs ...prometheus.Collector) {
	collectors = append(collectors, cs...)
}

// MustRegister registers every staged collector with the default Prometheus
// registry exactly once. Called from main before the /metrics endpoint is up;
// safe to call again from tests.
func MustRegister() {
	once.Do(func() {
		if len(collectors) > 0 {
			prometheus.MustRegister(collectors...)
		}
	})
}
