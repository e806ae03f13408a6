package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio-assistant/internal/domain"
	"folio-assistant/internal/infra/middleware"
)

func postAssistant(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/assistant", strings.NewReader(body))
	req.RemoteAddr = "203.0.113.7:5000"
	req.Header.Set("User-Agent", "test-agent")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out["error"]
}

const validMessages = `{"messages":[{"role":"user","content":"hi"}]}`

func TestAssistantEndpointSuccess(t *testing.T) {
	var got []domain.Message
	cls := domain.ClassifierFunc(func(_ context.Context, history []domain.Message) (domain.ToolCall, error) {
		got = history
		return domain.FilterProjects{Tag: "react"}, nil
	})
	h := NewAssistantHandler(cls, nil, newTestLogger())

	rec := postAssistant(h, validMessages)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"type":"tool","name":"filter_projects","args":{"tag":"react"}}`, rec.Body.String())
	require.Len(t, got, 1)
	assert.Equal(t, "hi", got[0].Content)
}

func TestAssistantEndpointMethodNotAllowed(t *testing.T) {
	h := NewAssistantHandler(nil, nil, newTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/assistant", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestAssistantEndpointInvalidRequest(t *testing.T) {
	h := NewAssistantHandler(nil, nil, newTestLogger())

	for _, body := range []string{``, `{`, `{}`, `{"messages":[]}`, `{"messages":"hi"}`} {
		rec := postAssistant(h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		assert.Equal(t, "Invalid request", errorBody(t, rec))
	}
}

func TestAssistantEndpointMissingKey(t *testing.T) {
	h := NewAssistantHandler(nil, nil, newTestLogger())

	rec := postAssistant(h, validMessages)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Missing GEMINI_API_KEY", errorBody(t, rec))
}

func TestAssistantEndpointProviderFailure(t *testing.T) {
	cls := domain.ClassifierFunc(func(context.Context, []domain.Message) (domain.ToolCall, error) {
		return nil, errors.New("upstream down")
	})
	h := NewAssistantHandler(cls, nil, newTestLogger())

	rec := postAssistant(h, validMessages)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Assistant failed", errorBody(t, rec))
}

func TestAssistantEndpointRateLimited(t *testing.T) {
	cls := domain.ClassifierFunc(func(context.Context, []domain.Message) (domain.ToolCall, error) {
		return domain.TextReply{Text: "ok"}, nil
	})
	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{Requests: 20, Window: time.Minute})
	h := NewAssistantHandler(cls, limiter, newTestLogger())

	for i := 0; i < 20; i++ {
		rec := postAssistant(h, validMessages)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	rec := postAssistant(h, validMessages)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests", errorBody(t, rec))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// A different User-Agent is a different client.
	req := httptest.NewRequest(http.MethodPost, "/api/assistant", strings.NewReader(validMessages))
	req.RemoteAddr = "203.0.113.7:5000"
	req.Header.Set("User-Agent", "other-agent")
	other := httptest.NewRecorder()
	h.ServeHTTP(other, req)
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestAssistantEndpointMethodCheckedBeforeLimit(t *testing.T) {
	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{Requests: 1, Window: time.Minute})
	h := NewAssistantHandler(nil, limiter, newTestLogger())

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/assistant", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	}
	assert.Zero(t, limiter.Len())
}
