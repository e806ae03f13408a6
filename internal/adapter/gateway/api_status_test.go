package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio-assistant/internal/domain"
	"folio-assistant/internal/usecase/eventbus"
)

func TestHealthAndMetrics(t *testing.T) {
	bus := eventbus.New(newTestLogger())
	deps := HandlerDeps{Sessions: newTestSessions(bus), Logger: newTestLogger()}
	metrics := &Metrics{}
	unsub := metrics.Observe(bus)
	defer unsub()

	srv := NewServer(bus, nil, "", newTestLogger())
	RegisterStatusRoutes(srv, deps, metrics, func() string { return "default.yaml" })
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	sess, err := deps.Sessions.GetOrCreate(context.Background(), "s1")
	require.NoError(t, err)
	_, err = sess.Send(context.Background(), "contact")
	require.NoError(t, err)
	bus.Publish(context.Background(), domain.NewEvent(domain.EventKnowledgeReload, "", nil))

	require.Eventually(t, func() bool {
		return metrics.ToolCallsTotal.Load() == 1 && metrics.ReloadsTotal.Load() == 1 && metrics.SessionsTotal.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get(ts.URL + "/api/v1/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, Version, health.Version)
	assert.Equal(t, 1, health.Sessions.Active)
	assert.Equal(t, int64(1), health.Sessions.Total)
	assert.Equal(t, "default.yaml", health.Knowledge)

	mresp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer mresp.Body.Close()
	body, err := io.ReadAll(mresp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "folio_sessions_active 1\n")
	assert.Contains(t, string(body), "folio_tool_calls_total 1\n")
	assert.Contains(t, string(body), "# TYPE go_goroutines gauge")
}

func TestHealthMethodNotAllowed(t *testing.T) {
	srv := NewServer(nil, nil, "", newTestLogger())
	RegisterStatusRoutes(srv, HandlerDeps{Sessions: newTestSessions(nil)}, &Metrics{}, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
