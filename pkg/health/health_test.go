package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error   { return nil }
func fail(context.Context) error { return errors.New("unreachable") }

func TestRunAggregatesWorstStatus(t *testing.T) {
	c := NewChecker()
	c.Register("object_store", Ping(ok, StatusDown))
	c.Register("redis", Ping(fail, StatusDegraded))

	report := c.Run(context.Background())
	assert.Equal(t, StatusDegraded, report.Status)
	assert.Equal(t, "unreachable", report.Components["redis"].Message)

	c.Register("object_store", Ping(fail, StatusDown))
	assert.Equal(t, StatusDown, c.Run(context.Background()).Status)
}

func TestReadyHandler(t *testing.T) {
	c := NewChecker()
	c.Register("redis", Ping(fail, StatusDegraded))

	rec := httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	c.Register("object_store", Ping(fail, StatusDown))
	rec = httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var report Report
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, StatusDown, report.Components["object_store"].Status)
}

func TestLiveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewChecker().LiveHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"alive"}`, rec.Body.String())
}
