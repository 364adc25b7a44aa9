package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/guzmanes/routeboard/internal/domain"
)

// opTimeout bounds each Redis round trip so the Store interface stays
// effectively synchronous for callers.
const opTimeout = 2 * time.Second

// RedisStore keeps the cache in Redis, for deployments where the server
// itself has no durable disk. Enabled when REDIS_ADDR is set.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore returns a store backed by the Redis server at addr.
// The connection is lazy: the first operation dials.
func NewRedisStore(addr, password string) *RedisStore {
	return &RedisStore{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

// ReadRoutes returns the cached route list, or nil when the key is absent.
func (s *RedisStore) ReadRoutes() ([]domain.Route, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	data, err := s.rdb.Get(ctx, routesKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache.RedisStore.ReadRoutes: %w", err)
	}

	var routes []domain.Route
	if err := json.Unmarshal(data, &routes); err != nil {
		return nil, fmt.Errorf("cache.RedisStore.ReadRoutes: decode: %w", err)
	}
	return routes, nil
}

// WriteRoutes replaces the cached route list wholesale. No TTL: the cache
// is a last-known-good fallback, not an expiring view.
func (s *RedisStore) WriteRoutes(routes []domain.Route) error {
	data, err := json.Marshal(routes)
	if err != nil {
		return fmt.Errorf("cache.RedisStore.WriteRoutes: encode: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := s.rdb.Set(ctx, routesKey, data, 0).Err(); err != nil {
		return fmt.Errorf("cache.RedisStore.WriteRoutes: %w", err)
	}
	return nil
}

// ReadCurrentUser returns the stored display name, or "" when none is set.
func (s *RedisStore) ReadCurrentUser() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	name, err := s.rdb.Get(ctx, userKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("cache.RedisStore.ReadCurrentUser: %w", err)
	}
	return name, nil
}

// WriteCurrentUser replaces the stored display name.
func (s *RedisStore) WriteCurrentUser(name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := s.rdb.Set(ctx, userKey, name, 0).Err(); err != nil {
		return fmt.Errorf("cache.RedisStore.WriteCurrentUser: %w", err)
	}
	return nil
}

// compile-time check: RedisStore must satisfy Store.
var _ Store = (*RedisStore)(nil)
