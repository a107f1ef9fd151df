package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/resilience"
)

func TestObserveStorage(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveStorage("get", "ok", resilience.StateClosed)
	m.ObserveStorage("get", "ok", resilience.StateClosed)
	m.ObserveStorage("put", "persist", resilience.StateOpen)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StorageOpsTotal.WithLabelValues("get", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StorageOpsTotal.WithLabelValues("put", "persist")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CircuitBreakerState.WithLabelValues("object-store")))
}

func TestNewServerServesMetrics(t *testing.T) {
	srv := NewServer(9191)
	assert.Equal(t, ":9191", srv.Addr)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
