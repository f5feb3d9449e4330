package entities

// Principal is the view of the current caller required by the checker:
// holder id, role ids, and authentication status. Nothing else is consumed
// from the identity subsystem.
type Principal struct {
	UserID        string   // Current user id (empty if not a user)
	Roles         []string // Role ids held by the user, in identity-source order
	ClientID      string   // Client id for machine callers (empty if none)
	Authenticated bool
}

// UserRole is the (user, role, tenant) join owned by the identity subsystem.
// The checker consumes it read-only to expand a user's provider chain.
type UserRole struct {
	UserID   string
	RoleID   string
	TenantID string // Empty = host/global tenant
}
