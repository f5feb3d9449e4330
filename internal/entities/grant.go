package entities

import (
	"fmt"
	"time"
)

// GrantStatus is the explicit decision recorded for one permission and one
// holder. Undefined is the absence of a record and is never persisted.
type GrantStatus int

const (
	StatusUndefined GrantStatus = iota
	StatusGranted
	StatusProhibited
)

// String returns a human-readable status name.
func (s GrantStatus) String() string {
	switch s {
	case StatusGranted:
		return "granted"
	case StatusProhibited:
		return "prohibited"
	default:
		return "undefined"
	}
}

// ParseGrantStatus is the inverse of GrantStatus.String. Unknown input maps
// to StatusUndefined.
func ParseGrantStatus(s string) GrantStatus {
	switch s {
	case "granted":
		return StatusGranted
	case "prohibited":
		return StatusProhibited
	default:
		return StatusUndefined
	}
}

// Provider names identify the kind of holder a grant belongs to.
const (
	UserProviderName   = "U"
	RoleProviderName   = "R"
	ClientProviderName = "C"
)

// PermissionGrant represents a persisted authorization decision.
// Example: UserManagement.Create#U@alice (tenant t1) -> granted
// At most one record exists per (permission, provider, key, tenant).
type PermissionGrant struct {
	PermissionName string      // Permission name (e.g., "UserManagement.Create")
	ProviderName   string      // Holder kind ("U", "R", "C")
	ProviderKey    string      // Holder identifier (e.g., user id, role name)
	TenantID       string      // Tenant id (empty = host/global tenant)
	Status         GrantStatus // Granted or Prohibited
	CreatedAt      time.Time
}

// String returns a string representation of the grant.
// Format: permission#provider@key[/tenant]=status
func (g *PermissionGrant) String() string {
	if g.TenantID != "" {
		return fmt.Sprintf("%s#%s@%s/%s=%s",
			g.PermissionName, g.ProviderName, g.ProviderKey, g.TenantID, g.Status)
	}
	return fmt.Sprintf("%s#%s@%s=%s",
		g.PermissionName, g.ProviderName, g.ProviderKey, g.Status)
}

// Validate checks if the grant identifies a concrete permission and holder.
func (g *PermissionGrant) Validate() error {
	if g.PermissionName == "" {
		return fmt.Errorf("permission name is required")
	}
	if g.ProviderName == "" {
		return fmt.Errorf("provider name is required")
	}
	if g.ProviderKey == "" {
		return fmt.Errorf("%w: provider key is required", ErrInvalidHolderKey)
	}
	if g.Status != StatusGranted && g.Status != StatusProhibited {
		return fmt.Errorf("status must be granted or prohibited, got %s", g.Status)
	}
	return nil
}
