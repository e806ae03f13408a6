package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"folio-assistant/internal/domain"
	"folio-assistant/internal/infra/middleware"
)

// RPCHandler handles a single RPC method call.
type RPCHandler func(ctx context.Context, client *ClientInfo, payload json.RawMessage) (json.RawMessage, error)

// SessionSubscriber is implemented by buses that can deliver the events of a
// single session.
type SessionSubscriber interface {
	SubscribeSession(sessionID string, handler domain.EventHandler) func()
}

// clientConn tracks a single WebSocket connection.
type clientConn struct {
	info      *ClientInfo
	ws        *websocket.Conn
	sendCh    chan Frame // buffered outbound queue
	done      chan struct{}
	closeOnce sync.Once

	subsMu sync.Mutex
	subs   map[string]func() // sessionID -> unsubscribe
}

// Server is the HTTP and WebSocket gateway in front of the chat sessions.
type Server struct {
	bus         domain.EventBus
	clients     sync.Map // connID (uint64) -> *clientConn
	auth        Authenticator
	handlersMu  sync.RWMutex
	handlers    map[string]RPCHandler
	logger      *slog.Logger
	addr        string
	origins     []string
	httpSrv     *http.Server
	boundMu     sync.RWMutex
	boundAddr   string
	nextID      atomic.Uint64
	httpRoutes  []httpRoute
	middlewares []func(http.Handler) http.Handler
}

type httpRoute struct {
	pattern string
	handler http.Handler
}

// NewServer creates a gateway server. A nil auth admits every client.
func NewServer(bus domain.EventBus, auth Authenticator, addr string, logger *slog.Logger) *Server {
	if auth == nil {
		auth = OpenAuth{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		bus:      bus,
		auth:     auth,
		handlers: make(map[string]RPCHandler),
		logger:   logger,
		addr:     addr,
	}
}

// SetAllowedOrigins lists extra origins accepted for WebSocket upgrades and
// CORS. Must be called before Start().
func (s *Server) SetAllowedOrigins(origins []string) {
	s.origins = origins
}

// Use appends middleware applied to every route. The first registered is
// outermost. Must be called before Start().
func (s *Server) Use(mws ...func(http.Handler) http.Handler) {
	s.middlewares = append(s.middlewares, mws...)
}

// RegisterHandler adds an RPC handler for the given method name.
// Safe to call concurrently with active connections.
func (s *Server) RegisterHandler(method string, handler RPCHandler) {
	s.handlersMu.Lock()
	s.handlers[method] = handler
	s.handlersMu.Unlock()
}

// RegisterHTTPRoute adds an HTTP handler to the gateway's mux.
// Must be called before Start().
func (s *Server) RegisterHTTPRoute(pattern string, handler http.Handler) {
	s.httpRoutes = append(s.httpRoutes, httpRoute{pattern: pattern, handler: handler})
}

// Handler builds the routed handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleUpgrade)
	for _, route := range s.httpRoutes {
		mux.Handle(route.pattern, route.handler)
	}
	return middleware.Chain(mux, s.middlewares...)
}

// Start begins serving. Blocks until context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("gateway listen: %w", err)
	}
	s.boundMu.Lock()
	s.boundAddr = listener.Addr().String()
	s.boundMu.Unlock()

	s.httpSrv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("gateway started", "addr", s.BoundAddr())

	go func() {
		<-ctx.Done()
		s.Stop(context.Background())
	}()

	if err := s.httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("gateway serve: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the gateway server.
func (s *Server) Stop(ctx context.Context) error {
	s.clients.Range(func(key, value any) bool {
		cc := value.(*clientConn)
		s.closeClient(cc)
		cc.ws.Close(websocket.StatusGoingAway, "server shutting down")
		s.clients.Delete(key)
		return true
	})

	if s.httpSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	}
	return nil
}

// BoundAddr returns the actual address the server bound to. Only valid after Start.
func (s *Server) BoundAddr() string {
	s.boundMu.RLock()
	defer s.boundMu.RUnlock()
	return s.boundAddr
}

func (s *Server) originPatterns() []string {
	patterns := []string{
		"localhost",
		"localhost:*",
		"127.0.0.1",
		"127.0.0.1:*",
		"[::1]",
		"[::1]:*",
	}
	return append(patterns, s.origins...)
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	clientInfo, err := s.auth.Authenticate(requestToken(r))
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.originPatterns(),
	})
	if err != nil {
		s.logger.Warn("websocket accept failed", "error", err)
		return
	}

	connID := s.nextID.Add(1)
	cc := &clientConn{
		ws:     ws,
		sendCh: make(chan Frame, 64),
		done:   make(chan struct{}),
		subs:   make(map[string]func()),
	}
	// Each connection gets its own copy so Watch binds to this socket.
	info := *clientInfo
	info.watch = func(sessionID string) { s.watch(cc, sessionID) }
	cc.info = &info
	s.clients.Store(connID, cc)

	if sid := r.URL.Query().Get("session_id"); sid != "" {
		s.watch(cc, sid)
	}

	s.logger.Info("gateway client connected", "conn_id", connID, "client", info.Name)

	go s.writeLoop(cc)

	s.readLoop(r.Context(), cc)

	s.closeClient(cc)
	s.clients.Delete(connID)
	ws.Close(websocket.StatusNormalClosure, "")
	s.logger.Info("gateway client disconnected", "conn_id", connID)
}

// watch forwards the events of sessionID to cc. Repeated calls are no-ops.
func (s *Server) watch(cc *clientConn, sessionID string) {
	if s.bus == nil || sessionID == "" {
		return
	}
	cc.subsMu.Lock()
	defer cc.subsMu.Unlock()
	if _, ok := cc.subs[sessionID]; ok {
		return
	}
	select {
	case <-cc.done:
		return
	default:
	}

	forward := func(_ context.Context, event domain.Event) {
		payload, err := json.Marshal(event)
		if err != nil {
			return
		}
		select {
		case cc.sendCh <- Frame{Type: FrameTypeEvent, Payload: payload}:
		default:
			s.logger.Warn("gateway: dropped event for slow client", "session_id", sessionID)
		}
	}

	if ss, ok := s.bus.(SessionSubscriber); ok {
		cc.subs[sessionID] = ss.SubscribeSession(sessionID, forward)
		return
	}
	cc.subs[sessionID] = s.bus.SubscribeAll(func(ctx context.Context, event domain.Event) {
		if event.SessionID == sessionID {
			forward(ctx, event)
		}
	})
}

func (s *Server) closeClient(cc *clientConn) {
	cc.closeOnce.Do(func() {
		close(cc.done)
		cc.subsMu.Lock()
		for id, unsub := range cc.subs {
			unsub()
			delete(cc.subs, id)
		}
		cc.subsMu.Unlock()
	})
}

func (s *Server) readLoop(ctx context.Context, cc *clientConn) {
	for {
		select {
		case <-cc.done:
			return
		default:
		}

		var frame Frame
		err := wsjson.Read(ctx, cc.ws, &frame)
		if err != nil {
			return // connection closed or error
		}

		if frame.Type != FrameTypeRequest {
			continue
		}

		go s.dispatchRPC(ctx, cc, frame)
	}
}

func (s *Server) writeLoop(cc *clientConn) {
	for {
		select {
		case <-cc.done:
			return
		case frame := <-cc.sendCh:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := wsjson.Write(ctx, cc.ws, frame)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

func (s *Server) dispatchRPC(ctx context.Context, cc *clientConn, req Frame) {
	s.handlersMu.RLock()
	handler, ok := s.handlers[req.Method]
	s.handlersMu.RUnlock()
	if !ok {
		s.sendResponse(cc, req.ID, nil, domain.ErrRPCMethodNotFound)
		return
	}

	result, err := handler(ctx, cc.info, req.Payload)
	s.sendResponse(cc, req.ID, result, err)
}

func (s *Server) sendResponse(cc *clientConn, id uint64, result json.RawMessage, err error) {
	resp := Frame{
		Type:    FrameTypeResponse,
		ID:      id,
		Payload: result,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	select {
	case cc.sendCh <- resp:
	default:
		s.logger.Warn("gateway: dropped RPC response for slow client", "frame_id", id)
	}
}
