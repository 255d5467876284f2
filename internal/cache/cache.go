package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Store is the cache-aside layer over a Backend. The backend is an
// optimization, never a dependency: every backend failure is logged and
// treated as a miss (reads) or a no-op (writes), so a down cache
// degrades to direct store reads instead of failing requests.
type Store struct {
	backend Backend
	logger  *zap.Logger
}

// NewStore creates a cache-aside store.
func NewStore(backend Backend, logger *zap.Logger) *Store {
	return &Store{backend: backend, logger: logger}
}

// GetOrPopulate returns the cached value under key if present, else
// invokes compute, caches the result with ttl and returns it. Compute
// errors are returned as-is and never cached.
func GetOrPopulate[T any](ctx context.Context, s *Store, key string, ttl time.Duration, compute func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	raw, err := s.backend.Get(ctx, key)
	if err == nil {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		// Undecodable entry: drop it and recompute.
		s.logger.Warn("dropping undecodable cache entry", zap.String("key", key))
		_ = s.backend.Delete(ctx, key)
	} else if !errors.Is(err, ErrMiss) {
		s.logger.Warn("cache read failed, falling through to store",
			zap.String("key", key),
			zap.Error(err),
		)
	}

	value, err := compute(ctx)
	if err != nil {
		return zero, err
	}

	raw, err = json.Marshal(value)
	if err != nil {
		s.logger.Warn("failed to encode value for cache", zap.String("key", key), zap.Error(err))
		return value, nil
	}
	if err := s.backend.Set(ctx, key, raw, ttl); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}

	return value, nil
}

// Get decodes the cached value under key into dest, returning false on
// miss or any backend failure.
func (s *Store) Get(ctx context.Context, key string, dest interface{}) bool {
	raw, err := s.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			s.logger.Warn("cache read failed, treating as miss",
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		s.logger.Warn("dropping undecodable cache entry", zap.String("key", key))
		_ = s.backend.Delete(ctx, key)
		return false
	}
	return true
}

// Set caches value under key with ttl, swallowing backend failures.
func (s *Store) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("failed to encode value for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.backend.Set(ctx, key, raw, ttl); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete removes the given keys, swallowing backend failures. Entries
// that survive a failed delete expire by TTL.
func (s *Store) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := s.backend.Delete(ctx, keys...); err != nil {
		s.logger.Warn("cache invalidation failed",
			zap.Int("keys", len(keys)),
			zap.Error(err),
		)
	}
}
