package services

import (
	"context"

	"github.com/moklgydocs/mokpermissions/internal/entities"
	"github.com/moklgydocs/mokpermissions/internal/repositories"
	"github.com/moklgydocs/mokpermissions/internal/tenant"
)

// GrantStore is the tenant-free persistence contract consumed by the manager
// and checker. The ambient tenant of the calling operation scopes every
// read and write; implementations resolve it from ctx.
type GrantStore interface {
	// Get retrieves the explicit status for one permission and holder.
	// Returns StatusUndefined when no record exists.
	Get(ctx context.Context, permissionName, providerName, providerKey string) (entities.GrantStatus, error)

	// GetAll retrieves every grant record for a holder.
	GetAll(ctx context.Context, providerName, providerKey string) ([]*entities.PermissionGrant, error)

	// Set upserts a grant record.
	Set(ctx context.Context, permissionName, providerName, providerKey string, status entities.GrantStatus) error

	// Delete removes a grant record. Absent records are not an error.
	Delete(ctx context.Context, permissionName, providerName, providerKey string) error
}

// BatchGrantStore is the optional bulk-mutation capability of a GrantStore.
type BatchGrantStore interface {
	GrantStore

	// SetMany upserts one record per permission name in one round-trip.
	SetMany(ctx context.Context, permissionNames []string, providerName, providerKey string, status entities.GrantStatus) error

	// DeleteMany removes the records for the given names in one round-trip.
	DeleteMany(ctx context.Context, permissionNames []string, providerName, providerKey string) error
}

// BatchCapability reports whether the store supports bulk mutation. It is
// meant to be resolved once at composition time, not per call.
func BatchCapability(store GrantStore) (BatchGrantStore, bool) {
	batch, ok := store.(BatchGrantStore)
	return batch, ok
}

// TenantScopedStore adapts a GrantRepository (explicit tenant id on every
// call) to the GrantStore contract by injecting the ambient tenant from ctx.
type TenantScopedStore struct {
	repo repositories.GrantRepository
}

// batchTenantScopedStore adds the bulk capability when the wrapped
// repository provides it.
type batchTenantScopedStore struct {
	TenantScopedStore
	batch repositories.BatchGrantRepository
}

// NewTenantScopedStore wraps repo. The returned store implements
// BatchGrantStore exactly when repo implements
// repositories.BatchGrantRepository; the capability is fixed here, at
// composition time.
func NewTenantScopedStore(repo repositories.GrantRepository) GrantStore {
	base := TenantScopedStore{repo: repo}
	if batch, ok := repo.(repositories.BatchGrantRepository); ok {
		return &batchTenantScopedStore{TenantScopedStore: base, batch: batch}
	}
	return &base
}

// Get retrieves the status within the ambient tenant.
func (s *TenantScopedStore) Get(ctx context.Context, permissionName, providerName, providerKey string) (entities.GrantStatus, error) {
	return s.repo.Get(ctx, tenant.CurrentID(ctx), permissionName, providerName, providerKey)
}

// GetAll retrieves the holder's grants within the ambient tenant.
func (s *TenantScopedStore) GetAll(ctx context.Context, providerName, providerKey string) ([]*entities.PermissionGrant, error) {
	return s.repo.GetAll(ctx, tenant.CurrentID(ctx), providerName, providerKey)
}

// Set upserts a grant record within the ambient tenant.
func (s *TenantScopedStore) Set(ctx context.Context, permissionName, providerName, providerKey string, status entities.GrantStatus) error {
	tenantID := tenant.CurrentID(ctx)
	return s.repo.Set(ctx, tenantID, &entities.PermissionGrant{
		PermissionName: permissionName,
		ProviderName:   providerName,
		ProviderKey:    providerKey,
		TenantID:       tenantID,
		Status:         status,
	})
}

// Delete removes a grant record within the ambient tenant.
func (s *TenantScopedStore) Delete(ctx context.Context, permissionName, providerName, providerKey string) error {
	return s.repo.Delete(ctx, tenant.CurrentID(ctx), permissionName, providerName, providerKey)
}

// SetMany upserts records within the ambient tenant in one round-trip.
func (s *batchTenantScopedStore) SetMany(ctx context.Context, permissionNames []string, providerName, providerKey string, status entities.GrantStatus) error {
	return s.batch.SetMany(ctx, tenant.CurrentID(ctx), permissionNames, providerName, providerKey, status)
}

// DeleteMany removes records within the ambient tenant in one round-trip.
func (s *batchTenantScopedStore) DeleteMany(ctx context.Context, permissionNames []string, providerName, providerKey string) error {
	return s.batch.DeleteMany(ctx, tenant.CurrentID(ctx), permissionNames, providerName, providerKey)
}
