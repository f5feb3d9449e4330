package entities

import "errors"

// Sentinel errors shared across the permission subsystem.
// Callers match them with errors.Is; lower layers wrap them with context.
var (
	// ErrUnknownPermission indicates a permission name that is not defined
	// in the catalog. It is checked before any store access.
	ErrUnknownPermission = errors.New("unknown permission")

	// ErrDuplicateDefinition indicates an attempt to define a permission or
	// group under a name that is already taken.
	ErrDuplicateDefinition = errors.New("duplicate permission definition")

	// ErrStoreUnavailable indicates a transient failure of the backing
	// store. It is propagated as-is; retrying is the caller's concern.
	ErrStoreUnavailable = errors.New("grant store unavailable")

	// ErrInvalidHolderKey indicates an empty or malformed provider key.
	ErrInvalidHolderKey = errors.New("invalid holder key")
)
