// Package events carries the domain events emitted after permission
// mutations. Delivery is write-then-notify: a publish failure never rolls
// back the store write that preceded it.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind identifies what happened to a grant.
type Kind string

const (
	PermissionGranted    Kind = "permission.granted"
	PermissionProhibited Kind = "permission.prohibited"
	PermissionRevoked    Kind = "permission.revoked"
)

// Event describes one committed permission mutation.
type Event struct {
	ID             uuid.UUID
	Kind           Kind
	PermissionName string
	ProviderName   string
	ProviderKey    string
	TenantID       string // Empty = host/global tenant
	OccurredAt     time.Time
}

// NewEvent creates an event with a fresh id and timestamp.
func NewEvent(kind Kind, permissionName, providerName, providerKey, tenantID string) Event {
	return Event{
		ID:             uuid.New(),
		Kind:           kind,
		PermissionName: permissionName,
		ProviderName:   providerName,
		ProviderKey:    providerKey,
		TenantID:       tenantID,
		OccurredAt:     time.Now(),
	}
}

// Publisher delivers events to interested subscribers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
