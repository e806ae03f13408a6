package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"

	"folio-assistant/internal/domain"
	"folio-assistant/internal/infra/tracer"
)

const (
	// DefaultThinkingDelay paces replies so the UI can show a typing state.
	DefaultThinkingDelay = 150 * time.Millisecond

	// GenericErrorText is the only failure text a visitor ever sees.
	GenericErrorText = "Sorry, something went wrong."
)

// SessionState is the send state of a ChatSession.
type SessionState int32

const (
	StateIdle SessionState = iota
	StateSending
)

func (s SessionState) String() string {
	if s == StateSending {
		return "sending"
	}
	return "idle"
}

// ChatSessionConfig wires a ChatSession.
type ChatSessionConfig struct {
	ID         string
	Key        string // persisted key; DefaultStorageKey when empty
	Store      domain.KVStore
	Classifier domain.Classifier
	Greeting   func() string
	Delay      time.Duration // 0 means DefaultThinkingDelay, negative disables
	Bus        domain.EventBus
	Logger     *slog.Logger
}

// ChatSession owns one transcript: it sequences send, classify and respond,
// and persists the whole list after every append. At most one Send runs at a
// time; others are rejected, never queued.
type ChatSession struct {
	id         string
	key        string
	store      domain.KVStore
	classifier domain.Classifier
	greeting   func() string
	delay      time.Duration
	bus        domain.EventBus
	logger     *slog.Logger

	sending atomic.Bool

	// persistMu orders writes against close so nothing lands after it.
	persistMu sync.Mutex
	closed    atomic.Bool

	mu        sync.RWMutex
	msgs      []domain.Message
	createdAt time.Time
	updatedAt time.Time
}

// NewChatSession restores the transcript stored under cfg.Key, or seeds it
// with the greeting when nothing usable is stored.
func NewChatSession(ctx context.Context, cfg ChatSessionConfig) *ChatSession {
	if cfg.Key == "" {
		cfg.Key = DefaultStorageKey
	}
	if cfg.Delay == 0 {
		cfg.Delay = DefaultThinkingDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	now := time.Now()
	s := &ChatSession{
		id:         cfg.ID,
		key:        cfg.Key,
		store:      cfg.Store,
		classifier: cfg.Classifier,
		greeting:   cfg.Greeting,
		delay:      cfg.Delay,
		bus:        cfg.Bus,
		logger:     cfg.Logger.With("session_id", cfg.ID),
		createdAt:  now,
		updatedAt:  now,
	}

	if msgs, ok := s.restore(ctx); ok {
		s.msgs = msgs
		return s
	}
	s.msgs = []domain.Message{domain.AssistantMessage(s.greetingText())}
	s.persist(ctx, domain.CloneMessages(s.msgs))
	return s
}

// ID returns the session identifier.
func (s *ChatSession) ID() string { return s.id }

// State reports whether a send is in flight.
func (s *ChatSession) State() SessionState {
	if s.sending.Load() {
		return StateSending
	}
	return StateIdle
}

// Messages returns a copy of the transcript.
func (s *ChatSession) Messages() []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneMessages(s.msgs)
}

// UpdatedAt returns the time of the last append.
func (s *ChatSession) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// Send appends text as a user message, waits the thinking delay, classifies
// the full history and appends the labelled reply. The raw ToolCall is
// returned for the caller to execute.
//
// Blank text returns ErrEmptyMessage and a send while another is in flight
// returns ErrSessionBusy; neither touches the transcript. If classification
// fails the generic error text is appended and returned as a TextReply
// together with an error wrapping ErrClassification.
func (s *ChatSession) Send(ctx context.Context, text string) (domain.ToolCall, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyMessage
	}
	if !s.sending.CompareAndSwap(false, true) {
		return nil, domain.ErrSessionBusy
	}
	defer s.sending.Store(false)
	if s.closed.Load() {
		return nil, domain.NewDomainError("ChatSession.Send", domain.ErrSessionNotFound, s.id)
	}

	ctx, span := tracer.StartSpan(ctx, "chat.send",
		trace.WithAttributes(tracer.StringAttr("session.id", s.id)),
	)
	defer span.End()

	history := s.append(ctx, domain.UserMessage(text))
	s.think(ctx)

	tc, err := s.classify(ctx, history)
	if err != nil {
		tracer.RecordError(span, err)
		s.logger.Error("assistant reply failed", "error", err)
		s.append(ctx, domain.AssistantMessage(GenericErrorText))
		s.publish(ctx, domain.EventSendFailed, map[string]string{"error": GenericErrorText})
		return domain.TextReply{Text: GenericErrorText},
			domain.NewDomainError("ChatSession.Send", domain.ErrClassification, err.Error())
	}

	reply := Label(tc)
	s.append(ctx, domain.AssistantMessage(reply))
	s.publish(ctx, domain.EventMessageAppended, domain.AssistantMessage(reply))
	if action, ok := tc.(domain.ToolAction); ok {
		s.publish(ctx, domain.EventToolRequested, domain.ToolCallJSON{ToolCall: action})
	}
	tracer.SetOK(span)
	return tc, nil
}

// Reset clears the persisted transcript and reseeds the greeting. It is
// rejected while a send is in flight.
func (s *ChatSession) Reset(ctx context.Context) error {
	if !s.sending.CompareAndSwap(false, true) {
		return domain.ErrSessionBusy
	}
	defer s.sending.Store(false)
	if s.closed.Load() {
		return domain.NewDomainError("ChatSession.Reset", domain.ErrSessionNotFound, s.id)
	}

	if s.store != nil {
		if err := s.store.Delete(ctx, s.key); err != nil {
			s.logger.Warn("failed to clear chat history", "key", s.key, "error", err)
		}
	}
	seed := []domain.Message{domain.AssistantMessage(s.greetingText())}
	s.mu.Lock()
	s.msgs = seed
	s.updatedAt = time.Now()
	s.mu.Unlock()
	s.persist(ctx, domain.CloneMessages(seed))
	s.publish(ctx, domain.EventSessionReset, nil)
	return nil
}

// close stops all further writes to the store. A send already in flight
// still finishes in memory but its transcript is not persisted.
func (s *ChatSession) close() {
	s.persistMu.Lock()
	s.closed.Store(true)
	s.persistMu.Unlock()
}

// retire closes an idle session and reports whether it was idle.
func (s *ChatSession) retire() bool {
	if !s.sending.CompareAndSwap(false, true) {
		return false
	}
	defer s.sending.Store(false)
	s.close()
	return true
}

// append adds msg, persists the whole list and returns a copy of it.
func (s *ChatSession) append(ctx context.Context, msg domain.Message) []domain.Message {
	s.mu.Lock()
	s.msgs = append(s.msgs, msg)
	s.updatedAt = time.Now()
	snapshot := domain.CloneMessages(s.msgs)
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return snapshot
}

// persist writes msgs; failures are logged and the session carries on in
// memory.
func (s *ChatSession) persist(ctx context.Context, msgs []domain.Message) {
	if s.store == nil {
		return
	}
	data, err := encodeHistory(msgs)
	if err != nil {
		s.logger.Warn("failed to encode chat history", "error", err)
		return
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if s.closed.Load() {
		return
	}
	if err := s.store.Set(ctx, s.key, data); err != nil {
		s.logger.Warn("failed to persist chat history", "key", s.key, "error", err)
	}
}

func (s *ChatSession) restore(ctx context.Context) ([]domain.Message, bool) {
	if s.store == nil {
		return nil, false
	}
	data, err := s.store.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			s.logger.Warn("failed to read chat history", "key", s.key, "error", err)
		}
		return nil, false
	}
	msgs, err := decodeHistory(data)
	if err != nil {
		s.logger.Warn("discarding stored chat history", "key", s.key, "error", err)
		return nil, false
	}
	if len(msgs) == 0 {
		return nil, false
	}
	return msgs, true
}

// think waits out the thinking delay. Cancellation shortens the wait but the
// send still completes.
func (s *ChatSession) think(ctx context.Context) {
	if s.delay <= 0 {
		return
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

func (s *ChatSession) classify(ctx context.Context, history []domain.Message) (tc domain.ToolCall, err error) {
	defer func() {
		if r := recover(); r != nil {
			tc, err = nil, fmt.Errorf("classifier panic: %v", r)
		}
	}()
	if s.classifier == nil {
		return nil, errors.New("no classifier configured")
	}
	tc, err = s.classifier.Classify(context.WithoutCancel(ctx), history)
	if err == nil && tc == nil {
		err = errors.New("classifier returned no result")
	}
	return tc, err
}

func (s *ChatSession) greetingText() string {
	if s.greeting == nil {
		return ""
	}
	return s.greeting()
}

func (s *ChatSession) publish(ctx context.Context, typ domain.EventType, payload any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, domain.NewEvent(typ, s.id, payload))
}
