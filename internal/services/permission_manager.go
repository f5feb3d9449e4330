package services

import (
	"context"
	"fmt"

	"github.com/moklgydocs/mokpermissions/internal/catalog"
	"github.com/moklgydocs/mokpermissions/internal/entities"
)

// PermissionManagerInterface defines the mutation API over the grant store.
// Grant and Prohibit are idempotent upserts; Revoke is an idempotent delete.
type PermissionManagerInterface interface {
	Grant(ctx context.Context, permissionName, providerName, providerKey string) error
	Prohibit(ctx context.Context, permissionName, providerName, providerKey string) error
	Revoke(ctx context.Context, permissionName, providerName, providerKey string) error
	GetAll(ctx context.Context, providerName, providerKey string) ([]*entities.PermissionGrant, error)
}

// PermissionManager validates mutations against the catalog and delegates
// them to the grant store.
type PermissionManager struct {
	defs  catalog.DefinitionServiceInterface
	store GrantStore
}

// NewPermissionManager creates a manager over the given catalog and store.
func NewPermissionManager(defs catalog.DefinitionServiceInterface, store GrantStore) *PermissionManager {
	return &PermissionManager{defs: defs, store: store}
}

// checkArgs rejects unknown permissions and malformed holder keys before
// the store is touched.
func (m *PermissionManager) checkArgs(permissionName, providerKey string) error {
	if _, err := m.defs.GetPermission(permissionName); err != nil {
		return err
	}
	if providerKey == "" {
		return fmt.Errorf("%w: provider key is required", entities.ErrInvalidHolderKey)
	}
	return nil
}

// Grant records an explicit grant, replacing any existing record for the
// same holder and permission.
func (m *PermissionManager) Grant(ctx context.Context, permissionName, providerName, providerKey string) error {
	if err := m.checkArgs(permissionName, providerKey); err != nil {
		return err
	}
	if err := m.store.Set(ctx, permissionName, providerName, providerKey, entities.StatusGranted); err != nil {
		return fmt.Errorf("failed to grant %q: %w", permissionName, err)
	}
	return nil
}

// Prohibit records an explicit prohibition, replacing any existing record
// for the same holder and permission.
func (m *PermissionManager) Prohibit(ctx context.Context, permissionName, providerName, providerKey string) error {
	if err := m.checkArgs(permissionName, providerKey); err != nil {
		return err
	}
	if err := m.store.Set(ctx, permissionName, providerName, providerKey, entities.StatusProhibited); err != nil {
		return fmt.Errorf("failed to prohibit %q: %w", permissionName, err)
	}
	return nil
}

// Revoke deletes the holder's record for the permission. Revoking an absent
// record is not an error.
func (m *PermissionManager) Revoke(ctx context.Context, permissionName, providerName, providerKey string) error {
	if err := m.checkArgs(permissionName, providerKey); err != nil {
		return err
	}
	if err := m.store.Delete(ctx, permissionName, providerName, providerKey); err != nil {
		return fmt.Errorf("failed to revoke %q: %w", permissionName, err)
	}
	return nil
}

// GetAll returns every grant record for a holder.
func (m *PermissionManager) GetAll(ctx context.Context, providerName, providerKey string) ([]*entities.PermissionGrant, error) {
	if providerKey == "" {
		return nil, fmt.Errorf("%w: provider key is required", entities.ErrInvalidHolderKey)
	}
	return m.store.GetAll(ctx, providerName, providerKey)
}

var _ PermissionManagerInterface = (*PermissionManager)(nil)
