package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio-assistant/internal/domain"
)

func TestRemoteClientClassify(t *testing.T) {
	var got assistantRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"type":"tool","name":"navigate","args":{"page":"about"}}`))
	}))
	defer srv.Close()

	c := NewRemoteClient(srv.URL, srv.Client(), newTestLogger())
	tc, err := c.Classify(context.Background(), []domain.Message{domain.UserMessage("about you")})
	require.NoError(t, err)
	assert.Equal(t, domain.Navigate{Page: domain.PageAbout}, tc)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "about you", got.Messages[0].Content)
}

func TestRemoteClientDegradesToText(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":"Too many requests"}`},
		{"server error", http.StatusInternalServerError, `{"error":"Assistant failed"}`},
		{"bad body", http.StatusOK, `not json`},
		{"unknown shape", http.StatusOK, `{"type":"mystery"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewRemoteClient(srv.URL, nil, newTestLogger())
			tc, err := c.Classify(context.Background(), []domain.Message{domain.UserMessage("hi")})
			require.NoError(t, err)
			assert.Equal(t, domain.TextReply{Text: remoteUnavailable}, tc)
		})
	}
}

func TestRemoteClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewRemoteClient(url, nil, newTestLogger())
	_, err := c.Classify(context.Background(), []domain.Message{domain.UserMessage("hi")})
	assert.ErrorIs(t, err, domain.ErrProviderError)
}
