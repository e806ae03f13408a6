package knowledge

import (
	"context"
	"log/slog"
	"sync/atomic"

	"folio-assistant/internal/domain"
)

// Store holds the current snapshot. Readers always see a complete snapshot;
// Reload swaps in a new one and never mutates the old.
type Store struct {
	current atomic.Pointer[domain.KnowledgeBase]
	path    string
	bus     domain.EventBus
	logger  *slog.Logger
}

var _ domain.KnowledgeSource = (*Store)(nil)

// NewStore wraps a fixed snapshot.
func NewStore(kb *domain.KnowledgeBase, logger *slog.Logger) *Store {
	s := &Store{logger: logger}
	s.current.Store(kb)
	return s
}

// Open loads path, or the built-in dataset when path is empty.
func Open(path string, bus domain.EventBus, logger *slog.Logger) (*Store, error) {
	var (
		kb  *domain.KnowledgeBase
		err error
	)
	if path == "" {
		kb, err = Default()
	} else {
		kb, err = LoadFile(path)
	}
	if err != nil {
		return nil, err
	}
	s := NewStore(kb, logger)
	s.path = path
	s.bus = bus
	logger.Info("knowledge base loaded",
		"path", displayPath(path),
		"projects", len(kb.Projects),
		"skill_groups", len(kb.Skills),
		"experience", len(kb.Experience),
	)
	return s, nil
}

// Snapshot implements domain.KnowledgeSource.
func (s *Store) Snapshot() *domain.KnowledgeBase {
	return s.current.Load()
}

// Path returns the backing file, or "" for the built-in dataset.
func (s *Store) Path() string { return s.path }

// Reload re-reads the backing file. On error the current snapshot is kept.
func (s *Store) Reload(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	kb, err := LoadFile(s.path)
	if err != nil {
		s.logger.Warn("knowledge reload failed, keeping previous snapshot", "path", s.path, "error", err)
		return err
	}
	s.current.Store(kb)
	s.logger.Info("knowledge base reloaded", "path", s.path, "projects", len(kb.Projects))
	if s.bus != nil {
		s.bus.Publish(ctx, domain.NewEvent(domain.EventKnowledgeReload, "", map[string]any{
			"path":     s.path,
			"projects": len(kb.Projects),
		}))
	}
	return nil
}

func displayPath(path string) string {
	if path == "" {
		return "(built-in)"
	}
	return path
}
