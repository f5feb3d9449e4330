package services

import (
	"context"
	"strings"
	"time"

	"github.com/moklgydocs/mokpermissions/internal/entities"
	"github.com/moklgydocs/mokpermissions/internal/tenant"
	"github.com/moklgydocs/mokpermissions/pkg/cache"
)

const (
	// DefaultCacheTTL is the absolute lifetime of a cached status.
	DefaultCacheTTL = 30 * time.Minute

	// DefaultCacheSlidingWindow expires a status unread for this long.
	DefaultCacheSlidingWindow = 10 * time.Minute
)

// CachedStore decorates a GrantStore with a read-through cache keyed by
// (permission, provider, key, tenant). Mutations write through and then
// evict exactly the affected key, so a read after a known mutation never
// sees the pre-mutation status; TTL expiry bounds staleness from writes
// this process never saw.
type CachedStore struct {
	inner GrantStore
	cache cache.Cache
	ttl   time.Duration
}

type batchCachedStore struct {
	CachedStore
	batch BatchGrantStore
}

// NewCachedStore wraps inner with c. A non-positive ttl falls back to
// DefaultCacheTTL. The inner store's batch capability, when present, is
// preserved on the returned store (bulk mutations evict every affected key).
func NewCachedStore(inner GrantStore, c cache.Cache, ttl time.Duration) GrantStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	base := CachedStore{inner: inner, cache: c, ttl: ttl}
	if batch, ok := BatchCapability(inner); ok {
		return &batchCachedStore{CachedStore: base, batch: batch}
	}
	return &base
}

func cacheKey(ctx context.Context, permissionName, providerName, providerKey string) string {
	return strings.Join([]string{permissionName, providerName, providerKey, tenant.CurrentID(ctx)}, "|")
}

// Get answers from cache when possible, reading through on a miss. The
// Undefined status is cached too: the absence of a record is as expensive
// to re-establish as its presence.
func (s *CachedStore) Get(ctx context.Context, permissionName, providerName, providerKey string) (entities.GrantStatus, error) {
	key := cacheKey(ctx, permissionName, providerName, providerKey)
	if value, ok := s.cache.Get(ctx, key); ok {
		return entities.ParseGrantStatus(value), nil
	}

	status, err := s.inner.Get(ctx, permissionName, providerName, providerKey)
	if err != nil {
		return entities.StatusUndefined, err
	}

	if err := s.cache.Set(ctx, key, status.String(), s.ttl); err != nil {
		// A failed cache fill costs a future read, nothing else.
		return status, nil
	}
	return status, nil
}

// GetAll bypasses the cache; holder-wide listings are an administrative
// surface, not the hot path.
func (s *CachedStore) GetAll(ctx context.Context, providerName, providerKey string) ([]*entities.PermissionGrant, error) {
	return s.inner.GetAll(ctx, providerName, providerKey)
}

// Set writes through, then evicts the affected key.
func (s *CachedStore) Set(ctx context.Context, permissionName, providerName, providerKey string, status entities.GrantStatus) error {
	if err := s.inner.Set(ctx, permissionName, providerName, providerKey, status); err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey(ctx, permissionName, providerName, providerKey))
}

// Delete writes through, then evicts the affected key.
func (s *CachedStore) Delete(ctx context.Context, permissionName, providerName, providerKey string) error {
	if err := s.inner.Delete(ctx, permissionName, providerName, providerKey); err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey(ctx, permissionName, providerName, providerKey))
}

// SetMany writes through in one round-trip, then evicts every affected key.
func (s *batchCachedStore) SetMany(ctx context.Context, permissionNames []string, providerName, providerKey string, status entities.GrantStatus) error {
	if err := s.batch.SetMany(ctx, permissionNames, providerName, providerKey, status); err != nil {
		return err
	}
	for _, name := range permissionNames {
		if err := s.cache.Delete(ctx, cacheKey(ctx, name, providerName, providerKey)); err != nil {
			return err
		}
	}
	return nil
}

// DeleteMany writes through in one round-trip, then evicts every affected
// key.
func (s *batchCachedStore) DeleteMany(ctx context.Context, permissionNames []string, providerName, providerKey string) error {
	if err := s.batch.DeleteMany(ctx, permissionNames, providerName, providerKey); err != nil {
		return err
	}
	for _, name := range permissionNames {
		if err := s.cache.Delete(ctx, cacheKey(ctx, name, providerName, providerKey)); err != nil {
			return err
		}
	}
	return nil
}
