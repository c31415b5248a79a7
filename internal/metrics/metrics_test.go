package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveUpstream(t *testing.T) {
	m := New()

	m.ObserveUpstream("yahoo", nil, 10*time.Millisecond)
	m.ObserveUpstream("yahoo", errors.New("boom"), 10*time.Millisecond)
	m.ObserveUpstream("yahoo", nil, 10*time.Millisecond)
	m.ObserveRetry("gemini")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.upstreamRequests.WithLabelValues("yahoo", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamRequests.WithLabelValues("yahoo", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamRetries.WithLabelValues("gemini")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveUpstream("yahoo", nil, time.Second)
		m.ObserveRetry("yahoo")
	})
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveUpstream("gemini", nil, time.Millisecond)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `stockinsight_upstream_requests_total{outcome="success",service="gemini"} 1`)
}
