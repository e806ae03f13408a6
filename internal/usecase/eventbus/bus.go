// Package eventbus fans assistant events out to in-process subscribers such
// as the WebSocket gateway and the terminal chat panel.
package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"folio-assistant/internal/domain"
)

type subscription struct {
	id        uint64
	sessionID string // empty matches every session
	handler   domain.EventHandler
}

func (s subscription) matches(e domain.Event) bool {
	return s.sessionID == "" || s.sessionID == e.SessionID
}

// Bus is an in-process, goroutine-safe event bus. Handlers run on their own
// goroutines; a panicking handler is logged and does not affect others.
type Bus struct {
	mu      sync.RWMutex
	typed   map[domain.EventType][]subscription
	allSubs []subscription
	nextID  atomic.Uint64
	logger  *slog.Logger
	wg      sync.WaitGroup
	closed  atomic.Bool
}

var _ domain.EventBus = (*Bus)(nil)

// New creates an event bus.
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		typed:  make(map[domain.EventType][]subscription),
		logger: logger,
	}
}

// Publish delivers event to matching typed subscribers, then to catch-all
// subscribers. Publishing on a closed bus is a no-op.
func (b *Bus) Publish(ctx context.Context, event domain.Event) {
	if b.closed.Load() {
		return
	}

	b.mu.RLock()
	targets := make([]subscription, 0, len(b.typed[event.Type])+len(b.allSubs))
	for _, sub := range b.typed[event.Type] {
		if sub.matches(event) {
			targets = append(targets, sub)
		}
	}
	for _, sub := range b.allSubs {
		if sub.matches(event) {
			targets = append(targets, sub)
		}
	}
	b.mu.RUnlock()

	for _, sub := range targets {
		b.dispatch(ctx, event, sub)
	}
}

func (b *Bus) dispatch(ctx context.Context, event domain.Event, sub subscription) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("event handler panicked",
					"event", string(event.Type),
					"session_id", event.SessionID,
					"panic", r,
				)
			}
		}()
		sub.handler(ctx, event)
	}()
}

// Subscribe registers a handler for one event type and returns its
// unsubscribe function.
func (b *Bus) Subscribe(eventType domain.EventType, handler domain.EventHandler) func() {
	return b.add(subscription{handler: handler}, eventType, false)
}

// SubscribeAll registers a handler that receives every event.
func (b *Bus) SubscribeAll(handler domain.EventHandler) func() {
	return b.add(subscription{handler: handler}, "", true)
}

// SubscribeSession registers a handler that receives every event of one
// session. Used to push replies to the connection that owns the session.
func (b *Bus) SubscribeSession(sessionID string, handler domain.EventHandler) func() {
	return b.add(subscription{sessionID: sessionID, handler: handler}, "", true)
}

func (b *Bus) add(sub subscription, eventType domain.EventType, all bool) func() {
	sub.id = b.nextID.Add(1)

	b.mu.Lock()
	if all {
		b.allSubs = append(b.allSubs, sub)
	} else {
		b.typed[eventType] = append(b.typed[eventType], sub)
	}
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if all {
				b.allSubs = remove(b.allSubs, sub.id)
				return
			}
			b.typed[eventType] = remove(b.typed[eventType], sub.id)
		})
	}
}

func remove(subs []subscription, id uint64) []subscription {
	for i, s := range subs {
		if s.id == id {
			out := make([]subscription, 0, len(subs)-1)
			out = append(out, subs[:i]...)
			return append(out, subs[i+1:]...)
		}
	}
	return subs
}

// Drain waits for in-flight handlers without closing the bus.
func (b *Bus) Drain() {
	b.wg.Wait()
}

// Close stops new publishes and waits for in-flight handlers. It is
// idempotent.
func (b *Bus) Close() {
	if b.closed.Swap(true) {
		return
	}
	b.wg.Wait()
}
