// Package idempotency records processed delivery keys so replays can be
// detected.
package idempotency

import (
	"context"
	"log"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "idempotency:"

type Store interface {
	// Claim returns true the first time key is seen within ttl.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release forgets key so a later delivery is processed again.
	Release(ctx context.Context, key string) error
}

type MemoryStore struct {
	cache *gocache.Cache
}

func NewMemoryStore(defaultTTL time.Duration) *MemoryStore {
	return &MemoryStore{cache: gocache.New(defaultTTL, 10*time.Minute)}
}

func (s *MemoryStore) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	// Add fails when the key is already present and unexpired.
	if err := s.cache.Add(keyPrefix+key, time.Now(), ttl); err != nil {
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.cache.Delete(keyPrefix + key)
	return nil
}

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, keyPrefix+key, time.Now().Unix(), ttl).Result()
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, keyPrefix+key).Err()
}

// FallbackStore prefers Redis and degrades to process memory while Redis is
// unreachable. Replays spanning a Redis outage may be processed twice.
type FallbackStore struct {
	primary  Store
	fallback Store
}

func NewFallbackStore(rdb *redis.Client, defaultTTL time.Duration) *FallbackStore {
	s := &FallbackStore{fallback: NewMemoryStore(defaultTTL)}
	if rdb != nil {
		s.primary = NewRedisStore(rdb)
	}
	return s
}

func (s *FallbackStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if s.primary != nil {
		ok, err := s.primary.Claim(ctx, key, ttl)
		if err == nil {
			return ok, nil
		}
		log.Printf("[WARN] idempotency: redis claim failed, using memory: %v", err)
	}
	return s.fallback.Claim(ctx, key, ttl)
}

func (s *FallbackStore) Release(ctx context.Context, key string) error {
	_ = s.fallback.Release(ctx, key)
	if s.primary != nil {
		return s.primary.Release(ctx, key)
	}
	return nil
}
