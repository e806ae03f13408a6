package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"folio-assistant/internal/domain"
	"folio-assistant/internal/infra/tracer"
	"folio-assistant/internal/usecase"
)

// maxRequestBody caps JSON request bodies.
const maxRequestBody = 64 << 10

// HandlerDeps holds dependencies needed by chat handlers.
type HandlerDeps struct {
	Sessions *usecase.SessionManager
	Logger   *slog.Logger
}

// RegisterDefaultHandlers registers the chat RPC methods on the server.
func RegisterDefaultHandlers(s *Server, deps HandlerDeps) {
	s.RegisterHandler(MethodChatSend, chatSendHandler(deps))
	s.RegisterHandler(MethodChatHistory, chatHistoryHandler(deps))
	s.RegisterHandler(MethodChatReset, chatResetHandler(deps))
}

// --- chat ---

type chatSendRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Content   string `json:"content"`
}

// ChatReply is returned for every accepted message.
type ChatReply struct {
	SessionID string              `json:"session_id"`
	Reply     string              `json:"reply"`
	ToolCall  domain.ToolCallJSON `json:"tool_call"`
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
}

// HistoryResponse is the transcript of one session.
type HistoryResponse struct {
	SessionID string           `json:"session_id"`
	Messages  []domain.Message `json:"messages"`
}

// sendChat runs one message through the session. A failed classification
// still yields a reply because the transcript already holds it.
func sendChat(ctx context.Context, deps HandlerDeps, client *ClientInfo, req chatSendRequest) (*ChatReply, error) {
	sess, err := deps.Sessions.GetOrCreate(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	client.Watch(sess.ID())

	tc, err := sess.Send(ctx, req.Content)
	if err != nil && !errors.Is(err, domain.ErrClassification) {
		return nil, err
	}
	return &ChatReply{
		SessionID: sess.ID(),
		Reply:     usecase.Label(tc),
		ToolCall:  domain.ToolCallJSON{ToolCall: tc},
	}, nil
}

func history(ctx context.Context, deps HandlerDeps, id string) (*HistoryResponse, error) {
	if id == "" {
		return nil, domain.NewDomainError("gateway.history", domain.ErrInvalidInput, "missing session_id")
	}
	sess, err := deps.Sessions.GetOrCreate(ctx, id)
	if err != nil {
		return nil, err
	}
	return &HistoryResponse{SessionID: sess.ID(), Messages: sess.Messages()}, nil
}

func chatSendHandler(deps HandlerDeps) RPCHandler {
	return func(ctx context.Context, client *ClientInfo, payload json.RawMessage) (json.RawMessage, error) {
		var req chatSendRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, domain.ErrRPCInvalidPayload
		}
		out, err := sendChat(ctx, deps, client, req)
		if err != nil {
			return nil, err
		}
		return json.Marshal(out)
	}
}

func chatHistoryHandler(deps HandlerDeps) RPCHandler {
	return func(ctx context.Context, client *ClientInfo, payload json.RawMessage) (json.RawMessage, error) {
		var req sessionRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, domain.ErrRPCInvalidPayload
		}
		out, err := history(ctx, deps, req.SessionID)
		if err != nil {
			return nil, err
		}
		client.Watch(out.SessionID)
		return json.Marshal(out)
	}
}

func chatResetHandler(deps HandlerDeps) RPCHandler {
	return func(ctx context.Context, _ *ClientInfo, payload json.RawMessage) (json.RawMessage, error) {
		var req sessionRequest
		if err := json.Unmarshal(payload, &req); err != nil || req.SessionID == "" {
			return nil, domain.ErrRPCInvalidPayload
		}
		sess, err := deps.Sessions.GetOrCreate(ctx, req.SessionID)
		if err != nil {
			return nil, err
		}
		if err := sess.Reset(ctx); err != nil {
			return nil, err
		}
		return json.Marshal(HistoryResponse{SessionID: sess.ID(), Messages: sess.Messages()})
	}
}

// --- REST ---

// RegisterChatRoutes registers the REST chat endpoints behind the server's
// authenticator.
func RegisterChatRoutes(s *Server, deps HandlerDeps) {
	authed := func(next http.HandlerFunc) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := s.auth.Authenticate(requestToken(r)); err != nil {
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next(w, r)
		})
	}

	s.RegisterHTTPRoute("/api/v1/chat", authed(chatHandler(deps)))
	s.RegisterHTTPRoute("/api/v1/chat/history", authed(chatHistoryHTTPHandler(deps)))
}

func chatHandler(deps HandlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			ctx, span := tracer.StartSpan(r.Context(), "http.chat",
				trace.WithAttributes(tracer.StringAttr("http.method", r.Method)),
			)
			defer span.End()

			var req chatSendRequest
			if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
				writeJSONError(w, http.StatusBadRequest, "Invalid request")
				return
			}
			out, err := sendChat(ctx, deps, nil, req)
			if err != nil {
				tracer.RecordError(span, err)
				writeDomainError(w, deps.Logger, err)
				return
			}
			tracer.SetOK(span)
			writeJSON(w, http.StatusOK, out)

		case http.MethodDelete:
			id := r.URL.Query().Get("session_id")
			if err := deps.Sessions.Delete(r.Context(), id); err != nil {
				writeDomainError(w, deps.Logger, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)

		default:
			w.Header().Set("Allow", "POST, DELETE")
			writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

func chatHistoryHTTPHandler(deps HandlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		out, err := history(r.Context(), deps, r.URL.Query().Get("session_id"))
		if err != nil {
			writeDomainError(w, deps.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps domain sentinels to HTTP statuses.
func writeDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyMessage), errors.Is(err, domain.ErrInvalidInput):
		writeJSONError(w, http.StatusBadRequest, "Invalid request")
	case errors.Is(err, domain.ErrSessionBusy):
		writeJSONError(w, http.StatusConflict, "Session is busy")
	case errors.Is(err, domain.ErrSessionNotFound):
		writeJSONError(w, http.StatusNotFound, "Session not found")
	default:
		if logger != nil {
			logger.Error("chat request failed", "error", err)
		}
		writeJSONError(w, http.StatusInternalServerError, "Internal error")
	}
}
