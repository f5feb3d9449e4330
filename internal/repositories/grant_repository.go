package repositories

import (
	"context"

	"github.com/moklgydocs/mokpermissions/internal/entities"
)

// GrantRepository defines the interface for permission grant persistence.
// Every operation is scoped by an explicit tenant id; the empty tenant id is
// the host/global tenant. Last write wins on concurrent upserts of the same
// key; callers needing stronger consistency serialize at a higher layer.
type GrantRepository interface {
	// Get retrieves the explicit status for one permission and holder.
	// Returns StatusUndefined when no record exists.
	Get(ctx context.Context, tenantID, permissionName, providerName, providerKey string) (entities.GrantStatus, error)

	// GetAll retrieves every grant record for a holder.
	GetAll(ctx context.Context, tenantID, providerName, providerKey string) ([]*entities.PermissionGrant, error)

	// Set upserts a grant record, replacing any existing record for the
	// same (permission, provider, key) within the tenant.
	Set(ctx context.Context, tenantID string, grant *entities.PermissionGrant) error

	// Delete removes a grant record. Deleting an absent record is not an
	// error.
	Delete(ctx context.Context, tenantID, permissionName, providerName, providerKey string) error
}

// BatchGrantRepository is the optional bulk-mutation capability. Postgres
// implements it in a single transaction; implementations without a cheaper
// path than per-item calls simply do not implement it.
type BatchGrantRepository interface {
	// SetMany upserts one record per permission name for the holder.
	SetMany(ctx context.Context, tenantID string, permissionNames []string, providerName, providerKey string, status entities.GrantStatus) error

	// DeleteMany removes the records for the given permission names.
	DeleteMany(ctx context.Context, tenantID string, permissionNames []string, providerName, providerKey string) error
}
