package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"folio-assistant/internal/domain"
)

// FileStore keeps one file per key under a directory. Writes go through a
// temp file and rename so a crash never leaves a torn value.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

var _ domain.KVStore = (*FileStore)(nil)

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, domain.NewDomainError("store.NewFileStore", domain.ErrStore, err.Error())
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+".json")
}

func (f *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrKeyNotFound
	}
	if err != nil {
		return nil, domain.NewDomainError("FileStore.Get", domain.ErrStore, err.Error())
	}
	return data, nil
}

func (f *FileStore) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, ".kv-*")
	if err != nil {
		return domain.NewDomainError("FileStore.Set", domain.ErrStore, err.Error())
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return domain.NewDomainError("FileStore.Set", domain.ErrStore, err.Error())
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return domain.NewDomainError("FileStore.Set", domain.ErrStore, err.Error())
	}
	if err := os.Rename(tmpName, f.path(key)); err != nil {
		os.Remove(tmpName)
		return domain.NewDomainError("FileStore.Set", domain.ErrStore, fmt.Sprintf("rename: %v", err))
	}
	return nil
}

func (f *FileStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return domain.NewDomainError("FileStore.Delete", domain.ErrStore, err.Error())
	}
	return nil
}

func (f *FileStore) Close() error { return nil }
