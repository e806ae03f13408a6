package gateway

import (
	"fmt"
	"io"
	"net/http"
	"runtime"
	"time"
)

// writeMetric emits one metric in Prometheus text format.
func writeMetric(w io.Writer, name, kind, help string, value any) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
	fmt.Fprintf(w, "%s %v\n", name, value)
}

// metricsHandler returns an HTTP handler for GET /metrics in Prometheus text format.
// This uses the lightweight text format to avoid pulling in the full prometheus client.
func metricsHandler(deps HandlerDeps, startTime time.Time, metrics *Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

		writeMetric(w, "folio_sessions_active", "gauge", "Number of live chat sessions.", len(deps.Sessions.ListSessions()))
		writeMetric(w, "folio_sessions_total", "counter", "Total chat sessions created.", metrics.SessionsTotal.Load())
		writeMetric(w, "folio_messages_total", "counter", "Total assistant replies.", metrics.MessagesTotal.Load())
		writeMetric(w, "folio_tool_calls_total", "counter", "Total UI actions requested.", metrics.ToolCallsTotal.Load())
		writeMetric(w, "folio_errors_total", "counter", "Total failed sends.", metrics.ErrorsTotal.Load())
		writeMetric(w, "folio_knowledge_reloads_total", "counter", "Total knowledge base reloads.", metrics.ReloadsTotal.Load())
		writeMetric(w, "folio_uptime_seconds", "gauge", "Seconds since the server started.", fmt.Sprintf("%.0f", time.Since(startTime).Seconds()))

		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)
		writeMetric(w, "go_goroutines", "gauge", "Number of goroutines.", runtime.NumGoroutine())
		writeMetric(w, "go_memstats_alloc_bytes", "gauge", "Bytes of allocated heap objects.", mem.Alloc)
		writeMetric(w, "go_memstats_sys_bytes", "gauge", "Total bytes of memory obtained from the OS.", mem.Sys)
	}
}
