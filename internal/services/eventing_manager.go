package services

import (
	"context"
	"log"

	"github.com/moklgydocs/mokpermissions/internal/entities"
	"github.com/moklgydocs/mokpermissions/internal/events"
	"github.com/moklgydocs/mokpermissions/internal/tenant"
)

// EventingManager decorates a PermissionManagerInterface, publishing a
// domain event after each successful mutation. The store write commits
// regardless of event delivery: a publish failure is logged, not rolled
// back (at-least-once intent, no transactional coupling).
type EventingManager struct {
	inner     PermissionManagerInterface
	publisher events.Publisher
}

// NewEventingManager wraps inner with publisher.
func NewEventingManager(inner PermissionManagerInterface, publisher events.Publisher) *EventingManager {
	return &EventingManager{inner: inner, publisher: publisher}
}

func (m *EventingManager) publish(ctx context.Context, kind events.Kind, permissionName, providerName, providerKey string) {
	event := events.NewEvent(kind, permissionName, providerName, providerKey, tenant.CurrentID(ctx))
	if err := m.publisher.Publish(ctx, event); err != nil {
		log.Printf("WARN: failed to publish %s for %s: %v", kind, permissionName, err)
	}
}

// Grant delegates to the inner manager and publishes PermissionGranted.
func (m *EventingManager) Grant(ctx context.Context, permissionName, providerName, providerKey string) error {
	if err := m.inner.Grant(ctx, permissionName, providerName, providerKey); err != nil {
		return err
	}
	m.publish(ctx, events.PermissionGranted, permissionName, providerName, providerKey)
	return nil
}

// Prohibit delegates to the inner manager and publishes
// PermissionProhibited.
func (m *EventingManager) Prohibit(ctx context.Context, permissionName, providerName, providerKey string) error {
	if err := m.inner.Prohibit(ctx, permissionName, providerName, providerKey); err != nil {
		return err
	}
	m.publish(ctx, events.PermissionProhibited, permissionName, providerName, providerKey)
	return nil
}

// Revoke delegates to the inner manager and publishes PermissionRevoked.
func (m *EventingManager) Revoke(ctx context.Context, permissionName, providerName, providerKey string) error {
	if err := m.inner.Revoke(ctx, permissionName, providerName, providerKey); err != nil {
		return err
	}
	m.publish(ctx, events.PermissionRevoked, permissionName, providerName, providerKey)
	return nil
}

// GetAll delegates to the inner manager.
func (m *EventingManager) GetAll(ctx context.Context, providerName, providerKey string) ([]*entities.PermissionGrant, error) {
	return m.inner.GetAll(ctx, providerName, providerKey)
}

var _ PermissionManagerInterface = (*EventingManager)(nil)
