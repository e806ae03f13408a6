package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"folio-assistant/internal/domain"
)

// SessionManagerConfig wires the sessions created by a SessionManager.
type SessionManagerConfig struct {
	Store      domain.KVStore
	Classifier domain.Classifier
	Greeting   func() string
	Delay      time.Duration
	KeyPrefix  string // defaults to DefaultStorageKey
	Bus        domain.EventBus
	Logger     *slog.Logger
}

// SessionManager keeps the live chat sessions of remote visitors, keyed by
// session ID. Transcripts persist in the store independently of this cache.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*ChatSession
	cfg      SessionManagerConfig
}

// NewSessionManager creates a session manager.
func NewSessionManager(cfg SessionManagerConfig) *SessionManager {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultStorageKey
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &SessionManager{
		sessions: make(map[string]*ChatSession),
		cfg:      cfg,
	}
}

// NewSessionID returns a fresh ULID.
func NewSessionID() string {
	return generateULID(time.Now())
}

func generateULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// validateSessionID rejects IDs that are empty, too long, or unsafe to embed
// in storage keys and file names.
func validateSessionID(id string) error {
	if id == "" {
		return fmt.Errorf("session ID cannot be empty")
	}
	if len(id) > 128 {
		return fmt.Errorf("session ID too long: %d bytes", len(id))
	}
	if strings.ContainsAny(id, "/\\:\x00") {
		return fmt.Errorf("session ID contains reserved characters: %q", id)
	}
	if strings.Contains(id, "..") {
		return fmt.Errorf("session ID contains parent directory reference: %q", id)
	}
	if clean := filepath.Clean(id); clean != id {
		return fmt.Errorf("session ID not clean path: %q vs %q", id, clean)
	}
	return nil
}

// storageKey returns the persisted key of session id.
func (sm *SessionManager) storageKey(id string) string {
	return sm.cfg.KeyPrefix + ":" + id
}

// GetOrCreate returns the live session for id, restoring it from the store
// or creating it when needed. An empty id allocates a new ULID.
func (sm *SessionManager) GetOrCreate(ctx context.Context, id string) (*ChatSession, error) {
	if id == "" {
		id = NewSessionID()
	}
	if err := validateSessionID(id); err != nil {
		return nil, domain.NewDomainError("SessionManager.GetOrCreate", domain.ErrInvalidInput, err.Error())
	}

	sm.mu.RLock()
	s, ok := sm.sessions[id]
	sm.mu.RUnlock()
	if ok {
		return s, nil
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	if s, ok := sm.sessions[id]; ok {
		return s, nil
	}
	s = NewChatSession(ctx, ChatSessionConfig{
		ID:         id,
		Key:        sm.storageKey(id),
		Store:      sm.cfg.Store,
		Classifier: sm.cfg.Classifier,
		Greeting:   sm.cfg.Greeting,
		Delay:      sm.cfg.Delay,
		Bus:        sm.cfg.Bus,
		Logger:     sm.cfg.Logger,
	})
	sm.sessions[id] = s
	if sm.cfg.Bus != nil {
		sm.cfg.Bus.Publish(ctx, domain.NewEvent(domain.EventSessionCreated, id, nil))
	}
	return s, nil
}

// Get returns a live session or ErrSessionNotFound.
func (sm *SessionManager) Get(id string) (*ChatSession, error) {
	sm.mu.RLock()
	s, ok := sm.sessions[id]
	sm.mu.RUnlock()
	if !ok {
		return nil, domain.NewDomainError("SessionManager.Get", domain.ErrSessionNotFound, id)
	}
	return s, nil
}

// Delete drops a session from memory and erases its persisted transcript.
// A send in flight on the session completes but is never written back. The
// store key is erased under the manager lock so a concurrent GetOrCreate
// cannot restore the old transcript.
func (sm *SessionManager) Delete(ctx context.Context, id string) error {
	if err := validateSessionID(id); err != nil {
		return domain.NewDomainError("SessionManager.Delete", domain.ErrInvalidInput, err.Error())
	}

	sm.mu.Lock()
	s, ok := sm.sessions[id]
	if !ok {
		sm.mu.Unlock()
		return domain.NewDomainError("SessionManager.Delete", domain.ErrSessionNotFound, id)
	}
	delete(sm.sessions, id)
	s.close()
	var err error
	if sm.cfg.Store != nil {
		err = sm.cfg.Store.Delete(ctx, sm.storageKey(id))
	}
	sm.mu.Unlock()

	if err != nil {
		return domain.WrapOp("SessionManager.Delete", err)
	}
	if sm.cfg.Bus != nil {
		sm.cfg.Bus.Publish(ctx, domain.NewEvent(domain.EventSessionDeleted, id, nil))
	}
	return nil
}

// ListSessions returns all live session IDs in sorted order.
func (sm *SessionManager) ListSessions() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	ids := make([]string, 0, len(sm.sessions))
	for id := range sm.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ReapStaleSessions evicts idle sessions not updated within maxAge from
// memory and returns how many were evicted. Persisted transcripts are kept so
// a returning visitor gets their history back.
func (sm *SessionManager) ReapStaleSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	sm.mu.RLock()
	var staleIDs []string
	for id, s := range sm.sessions {
		if s.State() == StateIdle && s.UpdatedAt().Before(cutoff) {
			staleIDs = append(staleIDs, id)
		}
	}
	sm.mu.RUnlock()

	if len(staleIDs) == 0 {
		return 0
	}

	// A send may have started since the scan; retire only what is still idle
	// and stale.
	reaped := 0
	sm.mu.Lock()
	for _, id := range staleIDs {
		s, ok := sm.sessions[id]
		if !ok || !s.UpdatedAt().Before(cutoff) || !s.retire() {
			continue
		}
		delete(sm.sessions, id)
		reaped++
	}
	sm.mu.Unlock()

	if reaped > 0 {
		sm.cfg.Logger.Debug("reaped stale sessions", "count", reaped)
	}
	return reaped
}
