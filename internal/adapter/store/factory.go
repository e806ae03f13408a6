package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"folio-assistant/internal/domain"
)

// Backend names accepted by New.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Backend     string
	Path        string // directory for file, database file for sqlite
	RedisURL    string
	RedisPrefix string
	TTL         time.Duration
}

// New opens the backend named by opts.Backend. An empty backend means memory.
func New(ctx context.Context, opts Options) (domain.KVStore, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		return NewFileStore(opts.Path)
	case BackendSQLite:
		path := opts.Path
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "chat.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, domain.NewDomainError("store.New", domain.ErrStore, err.Error())
		}
		return NewSQLiteStore(path)
	case BackendRedis:
		client, err := DialRedis(ctx, opts.RedisURL)
		if err != nil {
			return nil, domain.NewDomainError("store.New", domain.ErrStore, err.Error())
		}
		return NewRedisStore(client, opts.RedisPrefix, opts.TTL), nil
	default:
		return nil, domain.NewDomainError("store.New", domain.ErrInvalidInput, fmt.Sprintf("unknown store backend %q", opts.Backend))
	}
}
