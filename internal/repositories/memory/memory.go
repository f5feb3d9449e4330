// Package memory provides in-process repository implementations for tests
// and single-node deployments.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/moklgydocs/mokpermissions/internal/entities"
	"github.com/moklgydocs/mokpermissions/internal/repositories"
)

func grantKey(tenantID, permissionName, providerName, providerKey string) string {
	return strings.Join([]string{tenantID, permissionName, providerName, providerKey}, "\x00")
}

// GrantRepository is a map-backed GrantRepository guarded by an RWMutex.
type GrantRepository struct {
	mu     sync.RWMutex
	grants map[string]*entities.PermissionGrant
}

// NewGrantRepository creates an empty in-memory grant repository.
func NewGrantRepository() *GrantRepository {
	return &GrantRepository{grants: make(map[string]*entities.PermissionGrant)}
}

// Get retrieves the explicit status for one permission and holder.
func (r *GrantRepository) Get(ctx context.Context, tenantID, permissionName, providerName, providerKey string) (entities.GrantStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	grant, ok := r.grants[grantKey(tenantID, permissionName, providerName, providerKey)]
	if !ok {
		return entities.StatusUndefined, nil
	}
	return grant.Status, nil
}

// GetAll retrieves every grant record for a holder.
func (r *GrantRepository) GetAll(ctx context.Context, tenantID, providerName, providerKey string) ([]*entities.PermissionGrant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var grants []*entities.PermissionGrant
	for _, grant := range r.grants {
		if grant.TenantID == tenantID && grant.ProviderName == providerName && grant.ProviderKey == providerKey {
			copied := *grant
			grants = append(grants, &copied)
		}
	}
	return grants, nil
}

// Set upserts a grant record.
func (r *GrantRepository) Set(ctx context.Context, tenantID string, grant *entities.PermissionGrant) error {
	if err := grant.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *grant
	stored.TenantID = tenantID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	r.grants[grantKey(tenantID, grant.PermissionName, grant.ProviderName, grant.ProviderKey)] = &stored
	return nil
}

// Delete removes a grant record. Absent records are not an error.
func (r *GrantRepository) Delete(ctx context.Context, tenantID, permissionName, providerName, providerKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.grants, grantKey(tenantID, permissionName, providerName, providerKey))
	return nil
}

// Len returns the number of stored grant records.
func (r *GrantRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.grants)
}

// DefinitionRepository is a map-backed DefinitionRepository.
type DefinitionRepository struct {
	mu      sync.RWMutex
	records map[string]*entities.PermissionDefinitionRecord
}

// NewDefinitionRepository creates an empty in-memory definition repository.
func NewDefinitionRepository() *DefinitionRepository {
	return &DefinitionRepository{records: make(map[string]*entities.PermissionDefinitionRecord)}
}

// List retrieves all definition records.
func (r *DefinitionRepository) List(ctx context.Context) ([]*entities.PermissionDefinitionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*entities.PermissionDefinitionRecord, 0, len(r.records))
	for _, rec := range r.records {
		copied := *rec
		records = append(records, &copied)
	}
	return records, nil
}

// Save upserts the given records by name.
func (r *DefinitionRepository) Save(ctx context.Context, records []*entities.PermissionDefinitionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, rec := range records {
		stored := *rec
		if existing, ok := r.records[rec.Name]; ok {
			stored.CreatedAt = existing.CreatedAt
		} else if stored.CreatedAt.IsZero() {
			stored.CreatedAt = now
		}
		stored.UpdatedAt = now
		r.records[rec.Name] = &stored
	}
	return nil
}

// UserRoleRepository is a map-backed read-only user-role view. Tests and
// single-node setups populate it through AddRole.
type UserRoleRepository struct {
	mu    sync.RWMutex
	roles map[string][]string // tenant\x00user -> role ids in insertion order
}

// NewUserRoleRepository creates an empty in-memory user-role repository.
func NewUserRoleRepository() *UserRoleRepository {
	return &UserRoleRepository{roles: make(map[string][]string)}
}

// AddRole records that the user holds the role within the tenant.
func (r *UserRoleRepository) AddRole(tenantID, userID, roleID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := tenantID + "\x00" + userID
	for _, existing := range r.roles[key] {
		if existing == roleID {
			return
		}
	}
	r.roles[key] = append(r.roles[key], roleID)
}

// RolesOf returns the role ids held by the user within the tenant.
func (r *UserRoleRepository) RolesOf(ctx context.Context, tenantID, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.roles[tenantID+"\x00"+userID]
	roles := make([]string, len(stored))
	copy(roles, stored)
	return roles, nil
}

var (
	_ repositories.GrantRepository      = (*GrantRepository)(nil)
	_ repositories.DefinitionRepository = (*DefinitionRepository)(nil)
	_ repositories.UserRoleRepository   = (*UserRoleRepository)(nil)
)
