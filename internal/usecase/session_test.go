package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio-assistant/internal/domain"
)

func newTestManager(store domain.KVStore, bus domain.EventBus) *SessionManager {
	return NewSessionManager(SessionManagerConfig{
		Store:      store,
		Classifier: staticClassifier(domain.TextReply{Text: "ok"}),
		Greeting:   testGreeting,
		Delay:      -1,
		Bus:        bus,
		Logger:     newTestLogger(),
	})
}

func TestSessionManagerGetOrCreate(t *testing.T) {
	store := newMemStore()
	bus := &recordingBus{}
	sm := newTestManager(store, bus)

	s1, err := sm.GetOrCreate(context.Background(), "visitor-1")
	require.NoError(t, err)
	assert.Equal(t, "visitor-1", s1.ID())

	s2, err := sm.GetOrCreate(context.Background(), "visitor-1")
	require.NoError(t, err)
	assert.Same(t, s1, s2)

	_, ok := store.raw("assistant_chat_v1:visitor-1")
	assert.True(t, ok)
	assert.Equal(t, []domain.EventType{domain.EventSessionCreated}, bus.types())
}

func TestSessionManagerAllocatesULID(t *testing.T) {
	sm := newTestManager(newMemStore(), nil)

	s, err := sm.GetOrCreate(context.Background(), "")
	require.NoError(t, err)
	_, err = ulid.ParseStrict(s.ID())
	assert.NoError(t, err)
	assert.Equal(t, []string{s.ID()}, sm.ListSessions())
}

func TestSessionManagerRejectsInvalidID(t *testing.T) {
	sm := newTestManager(newMemStore(), nil)
	for _, id := range []string{"a:b", "../etc", "a/b", string(make([]byte, 200))} {
		_, err := sm.GetOrCreate(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "id %q", id)
	}
	assert.Empty(t, sm.ListSessions())
}

func TestSessionManagerRestoresAcrossInstances(t *testing.T) {
	store := newMemStore()
	first := newTestManager(store, nil)
	s, err := first.GetOrCreate(context.Background(), "returning")
	require.NoError(t, err)
	_, err = s.Send(context.Background(), "hello")
	require.NoError(t, err)

	second := newTestManager(store, nil)
	restored, err := second.GetOrCreate(context.Background(), "returning")
	require.NoError(t, err)
	assert.Equal(t, s.Messages(), restored.Messages())
}

func TestSessionManagerGet(t *testing.T) {
	sm := newTestManager(newMemStore(), nil)
	_, err := sm.Get("missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	created, err := sm.GetOrCreate(context.Background(), "here")
	require.NoError(t, err)
	got, err := sm.Get("here")
	require.NoError(t, err)
	assert.Same(t, created, got)
}

func TestSessionManagerDelete(t *testing.T) {
	store := newMemStore()
	bus := &recordingBus{}
	sm := newTestManager(store, bus)

	_, err := sm.GetOrCreate(context.Background(), "gone")
	require.NoError(t, err)
	require.NoError(t, sm.Delete(context.Background(), "gone"))

	_, ok := store.raw("assistant_chat_v1:gone")
	assert.False(t, ok)
	assert.Empty(t, sm.ListSessions())
	assert.Contains(t, bus.types(), domain.EventSessionDeleted)

	assert.ErrorIs(t, sm.Delete(context.Background(), "gone"), domain.ErrSessionNotFound)
	assert.ErrorIs(t, sm.Delete(context.Background(), "x:y"), domain.ErrInvalidInput)
}

func TestSessionManagerDeleteDuringSend(t *testing.T) {
	store := newMemStore()
	sm := NewSessionManager(SessionManagerConfig{
		Store:      store,
		Classifier: staticClassifier(domain.TextReply{Text: "reply"}),
		Greeting:   testGreeting,
		Delay:      150 * time.Millisecond,
		Logger:     newTestLogger(),
	})
	ctx := context.Background()

	old, err := sm.GetOrCreate(ctx, "private")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := old.Send(ctx, "secret")
		done <- err
	}()
	require.Eventually(t, func() bool { return len(old.Messages()) == 2 }, time.Second, time.Millisecond)
	require.Equal(t, StateSending, old.State())

	require.NoError(t, sm.Delete(ctx, "private"))
	fresh, err := sm.GetOrCreate(ctx, "private")
	require.NoError(t, err)
	assert.NotSame(t, old, fresh)

	require.NoError(t, <-done)
	assert.Len(t, old.Messages(), 3, "the in-flight send still completes in memory")

	restored := newTestManager(store, nil)
	again, err := restored.GetOrCreate(ctx, "private")
	require.NoError(t, err)
	assert.Equal(t, []domain.Message{domain.AssistantMessage("Hi there 👋")}, again.Messages())
	assert.Equal(t, again.Messages(), fresh.Messages())
}

func TestDeletedSessionRejectsWrites(t *testing.T) {
	store := newMemStore()
	sm := newTestManager(store, nil)
	ctx := context.Background()

	s, err := sm.GetOrCreate(ctx, "closed")
	require.NoError(t, err)
	require.NoError(t, sm.Delete(ctx, "closed"))

	_, err = s.Send(ctx, "hello")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, s.Reset(ctx), domain.ErrSessionNotFound)
	_, ok := store.raw("assistant_chat_v1:closed")
	assert.False(t, ok)
}

func TestRetireSkipsBusySession(t *testing.T) {
	sm := newTestManager(newMemStore(), nil)
	busy, err := sm.GetOrCreate(context.Background(), "busy")
	require.NoError(t, err)

	busy.sending.Store(true)
	assert.False(t, busy.retire())
	assert.False(t, busy.closed.Load())

	busy.sending.Store(false)
	assert.True(t, busy.retire())
	assert.True(t, busy.closed.Load())
	assert.Equal(t, StateIdle, busy.State())
}

func TestSessionManagerListSorted(t *testing.T) {
	sm := newTestManager(nil, nil)
	for _, id := range []string{"c", "a", "b"} {
		_, err := sm.GetOrCreate(context.Background(), id)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"a", "b", "c"}, sm.ListSessions())
}

func TestSessionManagerReapStaleSessions(t *testing.T) {
	store := newMemStore()
	sm := newTestManager(store, nil)

	_, err := sm.GetOrCreate(context.Background(), "old")
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	fresh, err := sm.GetOrCreate(context.Background(), "fresh")
	require.NoError(t, err)
	_, err = fresh.Send(context.Background(), "hi")
	require.NoError(t, err)

	assert.Equal(t, 1, sm.ReapStaleSessions(10*time.Millisecond))
	assert.Equal(t, []string{"fresh"}, sm.ListSessions())

	// transcript survives eviction
	_, ok := store.raw("assistant_chat_v1:old")
	assert.True(t, ok)

	assert.Equal(t, 0, sm.ReapStaleSessions(time.Hour))
}

func TestGenerateULIDIsSortable(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := generateULID(t0)
	b := generateULID(t0.Add(time.Millisecond))
	assert.Less(t, a, b)
}
