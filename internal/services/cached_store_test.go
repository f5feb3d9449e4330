package services

import (
	"context"
	"testing"
	"time"

	"github.com/moklgydocs/mokpermissions/internal/entities"
	"github.com/moklgydocs/mokpermissions/internal/repositories/memory"
	"github.com/moklgydocs/mokpermissions/internal/tenant"
	"github.com/moklgydocs/mokpermissions/pkg/cache/memorycache"
)

// countingStore counts reads reaching the wrapped store.
type countingStore struct {
	GrantStore
	gets int
}

func (s *countingStore) Get(ctx context.Context, permissionName, providerName, providerKey string) (entities.GrantStatus, error) {
	s.gets++
	return s.GrantStore.Get(ctx, permissionName, providerName, providerKey)
}

func newTestCache(t *testing.T) *memorycache.Cache {
	t.Helper()
	c, err := memorycache.New(&memorycache.Config{DefaultTTL: time.Minute})
	if err != nil {
		t.Fatalf("memorycache.New() error = %v", err)
	}
	return c
}

func TestCachedStore_ReadThrough(t *testing.T) {
	inner := &countingStore{GrantStore: NewTenantScopedStore(memory.NewGrantRepository())}
	store := NewCachedStore(inner, newTestCache(t), 0)
	ctx := tenant.Change(context.Background(), "acme")

	if err := store.Set(ctx, "Docs.Edit", entities.UserProviderName, "alice", entities.StatusGranted); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// First read fills the cache, the second is served from it.
	for i := 0; i < 2; i++ {
		status, err := store.Get(ctx, "Docs.Edit", entities.UserProviderName, "alice")
		if err != nil {
			t.Fatalf("Get() #%d error = %v", i, err)
		}
		if status != entities.StatusGranted {
			t.Errorf("Get() #%d = %v, want granted", i, status)
		}
	}
	if inner.gets != 1 {
		t.Errorf("inner reads = %d, want 1", inner.gets)
	}
}

func TestCachedStore_CachesUndefined(t *testing.T) {
	inner := &countingStore{GrantStore: NewTenantScopedStore(memory.NewGrantRepository())}
	store := NewCachedStore(inner, newTestCache(t), 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		status, err := store.Get(ctx, "Docs.Edit", entities.UserProviderName, "nobody")
		if err != nil {
			t.Fatalf("Get() #%d error = %v", i, err)
		}
		if status != entities.StatusUndefined {
			t.Errorf("Get() #%d = %v, want undefined", i, status)
		}
	}
	// The absence of a record is cached like its presence.
	if inner.gets != 1 {
		t.Errorf("inner reads = %d, want 1", inner.gets)
	}
}

func TestCachedStore_MutationEvicts(t *testing.T) {
	store := NewCachedStore(NewTenantScopedStore(memory.NewGrantRepository()), newTestCache(t), 0)
	ctx := tenant.Change(context.Background(), "acme")

	// Prime the cache with the absence of the record.
	if status, _ := store.Get(ctx, "Docs.Edit", entities.UserProviderName, "alice"); status != entities.StatusUndefined {
		t.Fatalf("initial status = %v, want undefined", status)
	}

	if err := store.Set(ctx, "Docs.Edit", entities.UserProviderName, "alice", entities.StatusProhibited); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if status, _ := store.Get(ctx, "Docs.Edit", entities.UserProviderName, "alice"); status != entities.StatusProhibited {
		t.Errorf("status after Set = %v, want prohibited", status)
	}

	if err := store.Delete(ctx, "Docs.Edit", entities.UserProviderName, "alice"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if status, _ := store.Get(ctx, "Docs.Edit", entities.UserProviderName, "alice"); status != entities.StatusUndefined {
		t.Errorf("status after Delete = %v, want undefined", status)
	}
}

func TestCachedStore_TenantKeysAreDistinct(t *testing.T) {
	store := NewCachedStore(NewTenantScopedStore(memory.NewGrantRepository()), newTestCache(t), 0)

	acme := tenant.Change(context.Background(), "acme")
	globex := tenant.Change(context.Background(), "globex")

	if err := store.Set(acme, "Docs.Edit", entities.UserProviderName, "alice", entities.StatusGranted); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// Warm both tenants' cache entries.
	if status, _ := store.Get(acme, "Docs.Edit", entities.UserProviderName, "alice"); status != entities.StatusGranted {
		t.Fatal("expected granted in acme")
	}
	if status, _ := store.Get(globex, "Docs.Edit", entities.UserProviderName, "alice"); status != entities.StatusUndefined {
		t.Error("a cached status leaked across tenants")
	}
}

func TestCachedStore_PreservesBatchCapability(t *testing.T) {
	// Plain inner: the decorated store has no batch capability either.
	plain := NewCachedStore(NewTenantScopedStore(memory.NewGrantRepository()), newTestCache(t), 0)
	if _, ok := BatchCapability(plain); ok {
		t.Error("expected no batch capability over a plain inner store")
	}

	repo := newBatchRecordingRepo()
	store := NewCachedStore(NewTenantScopedStore(repo), newTestCache(t), 0)
	batch, ok := BatchCapability(store)
	if !ok {
		t.Fatal("expected batch capability to be preserved")
	}

	ctx := tenant.Change(context.Background(), "acme")
	names := []string{"Docs.Edit", "Docs.Delete"}

	// Prime cache entries for every name, then mutate in bulk.
	for _, name := range names {
		store.Get(ctx, name, entities.UserProviderName, "alice")
	}
	if err := batch.SetMany(ctx, names, entities.UserProviderName, "alice", entities.StatusGranted); err != nil {
		t.Fatalf("SetMany() error = %v", err)
	}
	if repo.setManyCalls != 1 {
		t.Errorf("SetMany round-trips = %d, want 1", repo.setManyCalls)
	}

	// Every affected key was evicted: reads see the new status.
	for _, name := range names {
		status, err := store.Get(ctx, name, entities.UserProviderName, "alice")
		if err != nil {
			t.Fatalf("Get(%s) error = %v", name, err)
		}
		if status != entities.StatusGranted {
			t.Errorf("%s: status after SetMany = %v, want granted", name, status)
		}
	}

	if err := batch.DeleteMany(ctx, names, entities.UserProviderName, "alice"); err != nil {
		t.Fatalf("DeleteMany() error = %v", err)
	}
	for _, name := range names {
		status, _ := store.Get(ctx, name, entities.UserProviderName, "alice")
		if status != entities.StatusUndefined {
			t.Errorf("%s: status after DeleteMany = %v, want undefined", name, status)
		}
	}
}
