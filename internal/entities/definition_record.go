package entities

import "time"

// PermissionDefinitionRecord is the persisted flat form of a dynamically
// defined permission. The dynamic definition provider turns an unordered set
// of these rows into catalog nodes at startup.
type PermissionDefinitionRecord struct {
	Name               string // Unique permission name (e.g., "UserManagement.Create")
	DisplayName        string
	Description        string
	ParentName         string // Empty for root-level permissions
	GroupName          string // Empty falls back to the configured default group
	IsGrantedByDefault bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
