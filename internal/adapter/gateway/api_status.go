package gateway

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"folio-assistant/internal/domain"
)

// Version is reported by the health endpoint; set at build time.
var Version = "dev"

// HealthResponse is the JSON body returned by GET /api/v1/health.
type HealthResponse struct {
	Status        string        `json:"status"`
	Version       string        `json:"version"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	Sessions      SessionStatus `json:"sessions"`
	Knowledge     string        `json:"knowledge,omitempty"`
}

// SessionStatus holds session counts.
type SessionStatus struct {
	Active int   `json:"active"`
	Total  int64 `json:"total"`
}

// Metrics tracks counters for the health and metrics endpoints.
type Metrics struct {
	MessagesTotal  atomic.Int64
	ToolCallsTotal atomic.Int64
	ErrorsTotal    atomic.Int64
	SessionsTotal  atomic.Int64
	ReloadsTotal   atomic.Int64
}

// Observe subscribes the counters to bus events and returns the unsubscribe
// function.
func (m *Metrics) Observe(bus domain.EventBus) func() {
	counters := map[domain.EventType]*atomic.Int64{
		domain.EventMessageAppended: &m.MessagesTotal,
		domain.EventToolRequested:   &m.ToolCallsTotal,
		domain.EventSendFailed:      &m.ErrorsTotal,
		domain.EventSessionCreated:  &m.SessionsTotal,
		domain.EventKnowledgeReload: &m.ReloadsTotal,
	}
	var unsubs []func()
	for typ, c := range counters {
		c := c
		unsubs = append(unsubs, bus.Subscribe(typ, func(_ context.Context, _ domain.Event) {
			c.Add(1)
		}))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// RegisterStatusRoutes registers /api/v1/health and /metrics. knowledge
// names the loaded knowledge base and may be nil.
func RegisterStatusRoutes(s *Server, deps HandlerDeps, metrics *Metrics, knowledge func() string) {
	startTime := time.Now()
	s.RegisterHTTPRoute("/api/v1/health", healthHandler(deps, startTime, metrics, knowledge))
	s.RegisterHTTPRoute("/metrics", metricsHandler(deps, startTime, metrics))
}

func healthHandler(deps HandlerDeps, startTime time.Time, metrics *Metrics, knowledge func() string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		resp := HealthResponse{
			Status:        "ok",
			Version:       Version,
			UptimeSeconds: int64(time.Since(startTime).Seconds()),
			Sessions: SessionStatus{
				Active: len(deps.Sessions.ListSessions()),
				Total:  metrics.SessionsTotal.Load(),
			},
		}
		if knowledge != nil {
			resp.Knowledge = knowledge()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
