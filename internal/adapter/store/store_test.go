package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio-assistant/internal/domain"
)

// exerciseKVStore runs the behaviour every backend must share.
func exerciseKVStore(t *testing.T, s domain.KVStore) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.Set(ctx, "assistant_chat_v1", []byte(`{"version":1}`)))
	got, err := s.Get(ctx, "assistant_chat_v1")
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, string(got))

	require.NoError(t, s.Set(ctx, "assistant_chat_v1", []byte(`{"version":1,"messages":[]}`)))
	got, err = s.Get(ctx, "assistant_chat_v1")
	require.NoError(t, err)
	assert.Equal(t, `{"version":1,"messages":[]}`, string(got))

	require.NoError(t, s.Set(ctx, "assistant_chat_v1:01J0ABC", []byte("other")))
	require.NoError(t, s.Delete(ctx, "assistant_chat_v1"))
	_, err = s.Get(ctx, "assistant_chat_v1")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)

	got, err = s.Get(ctx, "assistant_chat_v1:01J0ABC")
	require.NoError(t, err)
	assert.Equal(t, "other", string(got))

	assert.NoError(t, s.Delete(ctx, "never-set"))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	exerciseKVStore(t, s)
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	s := NewMemoryStore()
	buf := []byte("abc")
	require.NoError(t, s.Set(context.Background(), "k", buf))
	buf[0] = 'x'

	got, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
	got[1] = 'y'

	again, _ := s.Get(context.Background(), "k")
	assert.Equal(t, "abc", string(again))
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "chats"))
	require.NoError(t, err)
	defer s.Close()
	exerciseKVStore(t, s)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), "a/b:c", []byte("v")))

	reopened, err := NewFileStore(dir)
	require.NoError(t, err)
	got, err := reopened.Get(context.Background(), "a/b:c")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))

	matches, _ := filepath.Glob(filepath.Join(dir, ".kv-*"))
	assert.Empty(t, matches, "temp files left behind")
}

func TestFileStoreConcurrentWrites(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Set(context.Background(), "k", []byte("value")))
		}()
	}
	wg.Wait()

	got, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "value", string(got))
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer s.Close()
	exerciseKVStore(t, s)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), "k", []byte("persisted")))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(got))
}

// fakeRedis is an in-memory RedisClient.
type fakeRedis struct {
	mu     sync.Mutex
	data   map[string][]byte
	ttls   map[string]time.Duration
	err    error
	closed bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.data[key]
	if !ok {
		return nil, ErrRedisNil
	}
	return v, nil
}

func (f *fakeRedis) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.data[key] = append([]byte(nil), value...)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeRedis) Del(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func TestRedisStore(t *testing.T) {
	fake := newFakeRedis()
	s := NewRedisStore(fake, "folio:", 24*time.Hour)
	exerciseKVStore(t, s)

	_, ok := fake.data["folio:assistant_chat_v1:01J0ABC"]
	assert.True(t, ok)
	assert.Equal(t, 24*time.Hour, fake.ttls["folio:assistant_chat_v1:01J0ABC"])

	require.NoError(t, s.Close())
	assert.True(t, fake.closed)
}

func TestRedisStoreErrors(t *testing.T) {
	fake := newFakeRedis()
	fake.err = errors.New("connection refused")
	s := NewRedisStore(fake, "", 0)

	_, err := s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, domain.ErrStore)
	assert.NotErrorIs(t, err, domain.ErrKeyNotFound)
	assert.ErrorIs(t, s.Set(context.Background(), "k", nil), domain.ErrStore)
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, Options{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = New(ctx, Options{Backend: BackendFile, Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = New(ctx, Options{Backend: BackendSQLite, Path: filepath.Join(t.TempDir(), "nested")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = New(ctx, Options{Backend: "etcd"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = New(ctx, Options{Backend: BackendRedis, RedisURL: "not a url"})
	assert.ErrorIs(t, err, domain.ErrStore)
}
