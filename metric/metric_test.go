package metric_test

import (
	"testing"
	"time"

	"github.com/c360studio/belhisfirm/metric"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metric.NewMetrics(reg)

	m.RecordQuery("stocksGraphOpenClose", metric.StatusOK, 120*time.Millisecond)
	m.RecordCache("HIT")
	m.RecordRetry("stocksGraphOpenClose")
	m.RecordRows("stocksGraphOpenClose", 42)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"belhisfirm_sparql_queries_total",
		"belhisfirm_sparql_query_duration_seconds",
		"belhisfirm_cache_results_total",
		"belhisfirm_sparql_retries_total",
		"belhisfirm_sparql_result_rows",
	}, names)
}

func TestMetrics_Counters(t *testing.T) {
	m := metric.NewMetrics(nil)

	m.RecordQuery("q", metric.StatusOK, time.Second)
	m.RecordQuery("q", metric.StatusOK, time.Second)
	m.RecordQuery("q", metric.StatusError, time.Second)
	m.RecordCache("")
	m.RecordCache("MISS")
	m.RecordCache("MISS")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("q", metric.StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("q", metric.StatusError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheResults.WithLabelValues("none")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheResults.WithLabelValues("MISS")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *metric.Metrics
	assert.NotPanics(t, func() {
		m.RecordQuery("q", metric.StatusOK, time.Second)
		m.RecordCache("HIT")
		m.RecordRetry("q")
		m.RecordRows("q", 1)
	})
}
