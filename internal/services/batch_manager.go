package services

import (
	"context"
	"fmt"

	"github.com/moklgydocs/mokpermissions/internal/catalog"
	"github.com/moklgydocs/mokpermissions/internal/entities"
)

// BatchPermissionManager adds bulk mutation on top of a
// PermissionManagerInterface. When the store advertises the batch
// capability, a bulk call is a single round-trip; otherwise it falls back
// to a per-item loop through the inner manager.
//
// The fallback has no atomicity: a mid-loop failure leaves the preceding
// items committed. The returned error names the failing item so callers can
// report the partial result instead of silently retrying.
type BatchPermissionManager struct {
	inner PermissionManagerInterface
	defs  catalog.DefinitionServiceInterface
	batch BatchGrantStore // Nil when the store has no bulk capability
}

// NewBatchPermissionManager wraps inner. The store's batch capability is
// resolved here, once, not per call.
func NewBatchPermissionManager(inner PermissionManagerInterface, defs catalog.DefinitionServiceInterface, store GrantStore) *BatchPermissionManager {
	m := &BatchPermissionManager{inner: inner, defs: defs}
	if batch, ok := BatchCapability(store); ok {
		m.batch = batch
	}
	return m
}

// checkNames rejects the whole batch before any store access when a name is
// unknown or the holder key is malformed.
func (m *BatchPermissionManager) checkNames(permissionNames []string, providerKey string) error {
	if providerKey == "" {
		return fmt.Errorf("%w: provider key is required", entities.ErrInvalidHolderKey)
	}
	for _, name := range permissionNames {
		if _, err := m.defs.GetPermission(name); err != nil {
			return err
		}
	}
	return nil
}

// GrantMany grants every named permission to the holder.
func (m *BatchPermissionManager) GrantMany(ctx context.Context, permissionNames []string, providerName, providerKey string) error {
	if err := m.checkNames(permissionNames, providerKey); err != nil {
		return err
	}
	if m.batch != nil {
		if err := m.batch.SetMany(ctx, permissionNames, providerName, providerKey, entities.StatusGranted); err != nil {
			return fmt.Errorf("failed to grant %d permissions: %w", len(permissionNames), err)
		}
		return nil
	}
	for i, name := range permissionNames {
		if err := m.inner.Grant(ctx, name, providerName, providerKey); err != nil {
			return fmt.Errorf("batch grant stopped at item %d (%q), %d items already committed: %w", i, name, i, err)
		}
	}
	return nil
}

// RevokeMany revokes every named permission from the holder.
func (m *BatchPermissionManager) RevokeMany(ctx context.Context, permissionNames []string, providerName, providerKey string) error {
	if err := m.checkNames(permissionNames, providerKey); err != nil {
		return err
	}
	if m.batch != nil {
		if err := m.batch.DeleteMany(ctx, permissionNames, providerName, providerKey); err != nil {
			return fmt.Errorf("failed to revoke %d permissions: %w", len(permissionNames), err)
		}
		return nil
	}
	for i, name := range permissionNames {
		if err := m.inner.Revoke(ctx, name, providerName, providerKey); err != nil {
			return fmt.Errorf("batch revoke stopped at item %d (%q), %d items already committed: %w", i, name, i, err)
		}
	}
	return nil
}

// Grant delegates to the inner manager.
func (m *BatchPermissionManager) Grant(ctx context.Context, permissionName, providerName, providerKey string) error {
	return m.inner.Grant(ctx, permissionName, providerName, providerKey)
}

// Prohibit delegates to the inner manager.
func (m *BatchPermissionManager) Prohibit(ctx context.Context, permissionName, providerName, providerKey string) error {
	return m.inner.Prohibit(ctx, permissionName, providerName, providerKey)
}

// Revoke delegates to the inner manager.
func (m *BatchPermissionManager) Revoke(ctx context.Context, permissionName, providerName, providerKey string) error {
	return m.inner.Revoke(ctx, permissionName, providerName, providerKey)
}

// GetAll delegates to the inner manager.
func (m *BatchPermissionManager) GetAll(ctx context.Context, providerName, providerKey string) ([]*entities.PermissionGrant, error) {
	return m.inner.GetAll(ctx, providerName, providerKey)
}

var _ PermissionManagerInterface = (*BatchPermissionManager)(nil)
