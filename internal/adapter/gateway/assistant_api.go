package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"folio-assistant/internal/domain"
	"folio-assistant/internal/infra/middleware"
	"folio-assistant/internal/infra/tracer"
)

type assistantRequest struct {
	Messages []domain.Message `json:"messages"`
}

// AssistantHandler serves POST /api/assistant: one model-backed ToolCall
// per request, rate limited per client identity.
type AssistantHandler struct {
	classifier domain.Classifier // nil when no API key is configured
	limiter    *middleware.RateLimiter
	logger     *slog.Logger
}

// NewAssistantHandler builds the endpoint. A nil classifier answers every
// valid request with the missing-key error; a nil limiter disables limiting.
func NewAssistantHandler(classifier domain.Classifier, limiter *middleware.RateLimiter, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &AssistantHandler{classifier: classifier, limiter: limiter, logger: logger}

	var inner http.Handler = http.HandlerFunc(h.serve)
	if limiter != nil {
		inner = limiter.Middleware(inner)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		inner.ServeHTTP(w, r)
	})
}

func (h *AssistantHandler) serve(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.StartSpan(r.Context(), "http.assistant",
		trace.WithAttributes(tracer.StringAttr("http.path", r.URL.Path)),
	)
	defer span.End()

	var req assistantRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil || len(req.Messages) == 0 {
		writeJSONError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	if h.classifier == nil {
		writeJSONError(w, http.StatusInternalServerError, "Missing GEMINI_API_KEY")
		return
	}

	tc, err := h.classifier.Classify(ctx, req.Messages)
	if err != nil || tc == nil {
		if err != nil {
			tracer.RecordError(span, err)
		}
		h.logger.Error("assistant error", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Assistant failed")
		return
	}

	body, err := domain.MarshalToolCall(tc)
	if err != nil {
		h.logger.Error("assistant error", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Assistant failed")
		return
	}
	tracer.SetOK(span)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// RegisterAssistantRoute mounts the endpoint at /api/assistant.
func RegisterAssistantRoute(s *Server, h http.Handler) {
	s.RegisterHTTPRoute("/api/assistant", h)
}
