package repositories

import (
	"context"

	"github.com/moklgydocs/mokpermissions/internal/entities"
)

// DefinitionRepository defines the interface for persisted permission
// definition records. Definitions are process-wide (not tenant-scoped): the
// catalog built from them is shared by all tenants.
type DefinitionRepository interface {
	// List retrieves all definition records, in no particular order.
	List(ctx context.Context) ([]*entities.PermissionDefinitionRecord, error)

	// Save upserts the given records by name.
	Save(ctx context.Context, records []*entities.PermissionDefinitionRecord) error
}

// UserRoleRepository is the read-only view of the identity subsystem's
// user-role join, consumed by the checker to expand a user's provider chain.
type UserRoleRepository interface {
	// RolesOf returns the role ids held by the user within the tenant, in
	// the order the identity source returns them.
	RolesOf(ctx context.Context, tenantID, userID string) ([]string, error)
}
