package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hype_revenue",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of dashboard API endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	APIErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hype_revenue",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by dashboard API endpoint and error code",
		},
		[]string{"endpoint", "code"},
	)
)

// Register adds the API collectors to reg once per process.
func Register(reg prometheus.Registerer) {
	once.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		reg.MustRegister(APILatency, APIErrors)
	})
}
