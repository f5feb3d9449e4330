package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/moklgydocs/mokpermissions/internal/entities"
	"github.com/moklgydocs/mokpermissions/internal/events"
	"github.com/moklgydocs/mokpermissions/internal/repositories/memory"
	"github.com/moklgydocs/mokpermissions/internal/tenant"
)

// capturingPublisher records published events and optionally fails.
type capturingPublisher struct {
	events []events.Event
	err    error
}

func (p *capturingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.events = append(p.events, event)
	return p.err
}

func TestEventingManager_PublishesAfterMutation(t *testing.T) {
	publisher := &capturingPublisher{}
	store := NewTenantScopedStore(memory.NewGrantRepository())
	manager := NewEventingManager(NewPermissionManager(newTestDefs(t), store), publisher)
	ctx := tenant.Change(context.Background(), "acme")

	if err := manager.Grant(ctx, "Docs.Edit", entities.UserProviderName, "alice"); err != nil {
		t.Fatalf("Grant() error = %v", err)
	}
	if err := manager.Prohibit(ctx, "Docs.View", entities.UserProviderName, "alice"); err != nil {
		t.Fatalf("Prohibit() error = %v", err)
	}
	if err := manager.Revoke(ctx, "Docs.Edit", entities.UserProviderName, "alice"); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}

	if len(publisher.events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(publisher.events))
	}
	wantKinds := []events.Kind{events.PermissionGranted, events.PermissionProhibited, events.PermissionRevoked}
	for i, want := range wantKinds {
		got := publisher.events[i]
		if got.Kind != want {
			t.Errorf("event %d kind = %s, want %s", i, got.Kind, want)
		}
		if got.TenantID != "acme" {
			t.Errorf("event %d tenant = %q, want acme", i, got.TenantID)
		}
		if got.ProviderName != entities.UserProviderName || got.ProviderKey != "alice" {
			t.Errorf("event %d holder = %s:%s, want U:alice", i, got.ProviderName, got.ProviderKey)
		}
		if got.ID == uuid.Nil {
			t.Errorf("event %d has no id", i)
		}
		if got.OccurredAt.IsZero() {
			t.Errorf("event %d has no timestamp", i)
		}
	}
}

func TestEventingManager_NoEventOnFailedMutation(t *testing.T) {
	publisher := &capturingPublisher{}
	store := NewTenantScopedStore(memory.NewGrantRepository())
	manager := NewEventingManager(NewPermissionManager(newTestDefs(t), store), publisher)

	err := manager.Grant(context.Background(), "Nope", entities.UserProviderName, "alice")
	if !errors.Is(err, entities.ErrUnknownPermission) {
		t.Fatalf("expected ErrUnknownPermission, got %v", err)
	}
	if len(publisher.events) != 0 {
		t.Errorf("expected no events after a failed mutation, got %d", len(publisher.events))
	}
}

func TestEventingManager_PublishFailureNotPropagated(t *testing.T) {
	publisher := &capturingPublisher{err: errors.New("broker down")}
	store := NewTenantScopedStore(memory.NewGrantRepository())
	manager := NewEventingManager(NewPermissionManager(newTestDefs(t), store), publisher)
	ctx := context.Background()

	// The store write committed; the delivery failure is logged, not returned.
	if err := manager.Grant(ctx, "Docs.Edit", entities.UserProviderName, "alice"); err != nil {
		t.Fatalf("Grant() error = %v", err)
	}
	status, _ := store.Get(ctx, "Docs.Edit", entities.UserProviderName, "alice")
	if status != entities.StatusGranted {
		t.Errorf("status = %v, want granted despite publish failure", status)
	}
}
