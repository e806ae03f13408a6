package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket/wsjson"

	"folio-assistant/internal/domain"
	"folio-assistant/internal/usecase/eventbus"
)

func newChatAPI(t *testing.T) (*httptest.Server, HandlerDeps) {
	t.Helper()
	bus := eventbus.New(newTestLogger())
	deps := HandlerDeps{Sessions: newTestSessions(bus), Logger: newTestLogger()}
	srv := NewServer(bus, newTestAuth(), "", newTestLogger())
	RegisterChatRoutes(srv, deps)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, deps
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer test-token")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestChatPostCreatesSession(t *testing.T) {
	ts, deps := newChatAPI(t)

	resp := do(t, http.MethodPost, ts.URL+"/api/v1/chat", `{"content":"contact"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out ChatReply
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.NotEmpty(t, out.SessionID)
	assert.Equal(t, "Opening contact form… 📬", out.Reply)
	assert.Equal(t, domain.OpenContact{}, out.ToolCall.ToolCall)

	assert.Equal(t, []string{out.SessionID}, deps.Sessions.ListSessions())
}

func TestChatPostContinuesSession(t *testing.T) {
	ts, _ := newChatAPI(t)

	do(t, http.MethodPost, ts.URL+"/api/v1/chat", `{"session_id":"visitor-1","content":"one"}`)
	resp := do(t, http.MethodPost, ts.URL+"/api/v1/chat", `{"session_id":"visitor-1","content":"two"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, ts.URL+"/api/v1/chat/history?session_id=visitor-1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var hist HistoryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&hist))
	require.Len(t, hist.Messages, 5)
	assert.Equal(t, "Hi there 👋", hist.Messages[0].Content)
	assert.Equal(t, "echo: two", hist.Messages[4].Content)
}

func TestChatPostErrors(t *testing.T) {
	ts, _ := newChatAPI(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"blank content", `{"content":"   "}`, http.StatusBadRequest},
		{"bad session id", `{"session_id":"../etc","content":"hi"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, ts.URL+"/api/v1/chat", tt.body)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestChatRequiresAuth(t *testing.T) {
	ts, _ := newChatAPI(t)

	resp, err := http.Post(ts.URL+"/api/v1/chat", "application/json", bytes.NewBufferString(`{"content":"hi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChatDelete(t *testing.T) {
	ts, deps := newChatAPI(t)

	do(t, http.MethodPost, ts.URL+"/api/v1/chat", `{"session_id":"gone","content":"hi"}`)

	resp := do(t, http.MethodDelete, ts.URL+"/api/v1/chat?session_id=gone", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, deps.Sessions.ListSessions())

	resp = do(t, http.MethodDelete, ts.URL+"/api/v1/chat?session_id=gone", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestChatMethodNotAllowed(t *testing.T) {
	ts, _ := newChatAPI(t)

	resp := do(t, http.MethodPut, ts.URL+"/api/v1/chat", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "POST, DELETE", resp.Header.Get("Allow"))

	resp = do(t, http.MethodPost, ts.URL+"/api/v1/chat/history", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestChatHistoryMissingID(t *testing.T) {
	ts, _ := newChatAPI(t)
	resp := do(t, http.MethodGet, ts.URL+"/api/v1/chat/history", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRPCChatFlow(t *testing.T) {
	bus := eventbus.New(newTestLogger())
	srv := startTestServer(t, bus)
	deps := HandlerDeps{Sessions: newTestSessions(bus), Logger: newTestLogger()}
	RegisterDefaultHandlers(srv, deps)

	ws := dialWS(t, srv.BoundAddr(), "token=test-token")

	resp := call(t, ws, 1, MethodChatSend, map[string]string{"session_id": "rpc-1", "content": "contact"})
	require.Empty(t, resp.Error)
	var reply ChatReply
	require.NoError(t, json.Unmarshal(resp.Payload, &reply))
	assert.Equal(t, "rpc-1", reply.SessionID)
	assert.Equal(t, domain.OpenContact{}, reply.ToolCall.ToolCall)

	resp = call(t, ws, 2, MethodChatHistory, map[string]string{"session_id": "rpc-1"})
	require.Empty(t, resp.Error)
	var hist HistoryResponse
	require.NoError(t, json.Unmarshal(resp.Payload, &hist))
	assert.Len(t, hist.Messages, 3)

	resp = call(t, ws, 3, MethodChatReset, map[string]string{"session_id": "rpc-1"})
	require.Empty(t, resp.Error)
	require.NoError(t, json.Unmarshal(resp.Payload, &hist))
	assert.Len(t, hist.Messages, 1)

	resp = call(t, ws, 4, MethodChatSend, map[string]string{"session_id": "rpc-1", "content": " "})
	assert.Equal(t, domain.ErrEmptyMessage.Error(), resp.Error)

	resp = call(t, ws, 5, MethodChatReset, map[string]string{})
	assert.Equal(t, domain.ErrRPCInvalidPayload.Error(), resp.Error)
}

func TestRPCChatSendPushesEvents(t *testing.T) {
	bus := eventbus.New(newTestLogger())
	srv := startTestServer(t, bus)
	RegisterDefaultHandlers(srv, HandlerDeps{Sessions: newTestSessions(bus), Logger: newTestLogger()})

	ws := dialWS(t, srv.BoundAddr(), "token=test-token")
	call(t, ws, 1, MethodChatSend, map[string]string{"session_id": "pushed", "content": "contact"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	seen := map[domain.EventType]bool{}
	for !seen[domain.EventToolRequested] {
		var frame Frame
		require.NoError(t, wsjson.Read(ctx, ws, &frame))
		if frame.Type != FrameTypeEvent {
			continue
		}
		var ev domain.Event
		require.NoError(t, json.Unmarshal(frame.Payload, &ev))
		assert.Equal(t, "pushed", ev.SessionID)
		seen[ev.Type] = true
	}
}
