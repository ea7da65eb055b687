package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hype_revenue"

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	errorsTotal *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	mergedRows  prometheus.Gauge
	liveOI      prometheus.Gauge
	cache       *prometheus.CounterVec
}

// New creates a recorder registered on reg; nil means the default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of errors encountered, by kind",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of upstream fetches and dashboard builds in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		mergedRows: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "merged_rows",
			Help:      "Number of rows in the last merged dashboard",
		}),
		liveOI: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_open_interest_usd",
			Help:      "Last observed aggregate notional open interest",
		}),
		cache: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dashboard_cache_total",
				Help:      "Dashboard cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) RecordMergedRows(n int) {
	r.mergedRows.Set(float64(n))
}

func (r *Recorder) RecordLiveOpenInterest(usd float64) {
	r.liveOI.Set(usd)
}

// RecordCache counts a cache lookup; result is "hit", "miss" or "error".
func (r *Recorder) RecordCache(result string) {
	r.cache.WithLabelValues(result).Inc()
}
