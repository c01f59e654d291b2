package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetricsLabelsByRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("GET", "/api/brand/{id}", 200, 10*time.Millisecond)
	m.Observe("GET", "/api/brand/{id}", 200, 20*time.Millisecond)
	m.Observe("POST", "", 404, time.Millisecond)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := fetchCounterValue(mfs, "catalog_http_requests_total", map[string]string{"route": "/api/brand/{id}", "status": "200"})
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	_, err = fetchCounterValue(mfs, "catalog_http_requests_total", map[string]string{"route": "unknown", "method": "POST"})
	require.NoError(t, err, "empty route should be labelled unknown")

	sum, err := fetchHistogramSum(mfs, "catalog_http_request_duration_seconds", map[string]string{"route": "/api/brand/{id}"})
	require.NoError(t, err)
	assert.InDelta(t, 0.03, sum, 0.0001)
}

func TestNilHTTPMetricsIsNoop(t *testing.T) {
	var nilMetrics *HTTPMetrics
	assert.NotPanics(t, func() {
		NewHTTPMetrics(nil).Observe("GET", "/", 200, time.Millisecond)
		nilMetrics.Observe("GET", "/", 200, time.Millisecond)
	})
}
