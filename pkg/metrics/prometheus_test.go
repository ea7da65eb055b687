package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.RecordError("fetch_prices")
	r.RecordError("fetch_prices")
	r.RecordMergedRows(365)
	r.RecordLiveOpenInterest(2.5e9)
	r.RecordCache("hit")
	r.RecordLatency("build_dashboard", 0.2)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("fetch_prices")))
	assert.Equal(t, 365.0, testutil.ToFloat64(r.mergedRows))
	assert.Equal(t, 2.5e9, testutil.ToFloat64(r.liveOI))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cache.WithLabelValues("hit")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.latency))
}
