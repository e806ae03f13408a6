package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"folio-assistant/internal/domain"
)

// RedisClient is the subset of Redis commands the store needs, so a go-redis
// client or a fake can be used interchangeably.
type RedisClient interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Close() error
}

// ErrRedisNil is returned by a RedisClient when a key does not exist.
var ErrRedisNil = errors.New("redis: nil")

// RedisStore persists values in Redis under a key prefix with an optional
// TTL refreshed on every write.
type RedisStore struct {
	client RedisClient
	prefix string
	ttl    time.Duration
}

var _ domain.KVStore = (*RedisStore)(nil)

// NewRedisStore wraps client.
func NewRedisStore(client RedisClient, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// DialRedis connects to the Redis server at rawURL and verifies it with PING.
func DialRedis(ctx context.Context, rawURL string) (RedisClient, error) {
	opts, err := goredis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &goRedisClient{client: rdb}, nil
}

func (r *RedisStore) key(k string) string { return r.prefix + k }

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, r.key(key))
	if errors.Is(err, ErrRedisNil) {
		return nil, domain.ErrKeyNotFound
	}
	if err != nil {
		return nil, domain.NewDomainError("RedisStore.Get", domain.ErrStore, err.Error())
	}
	return v, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, r.ttl); err != nil {
		return domain.NewDomainError("RedisStore.Set", domain.ErrStore, err.Error())
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)); err != nil {
		return domain.NewDomainError("RedisStore.Delete", domain.ErrStore, err.Error())
	}
	return nil
}

func (r *RedisStore) Close() error { return r.client.Close() }

// goRedisClient adapts *goredis.Client to RedisClient.
type goRedisClient struct {
	client *goredis.Client
}

func (g *goRedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := g.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrRedisNil
	}
	return v, err
}

func (g *goRedisClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return g.client.Set(ctx, key, value, ttl).Err()
}

func (g *goRedisClient) Del(ctx context.Context, key string) error {
	return g.client.Del(ctx, key).Err()
}

func (g *goRedisClient) Close() error { return g.client.Close() }
