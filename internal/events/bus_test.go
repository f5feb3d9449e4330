package events

import (
	"context"
	"errors"
	"testing"
)

func TestBus_FanOut(t *testing.T) {
	bus := NewBus()

	var first, second []Event
	bus.Subscribe(func(ctx context.Context, event Event) error {
		first = append(first, event)
		return nil
	})
	bus.Subscribe(func(ctx context.Context, event Event) error {
		second = append(second, event)
		return nil
	})

	event := NewEvent(PermissionGranted, "Docs.Edit", "U", "alice", "acme")
	if err := bus.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected every subscriber to receive the event, got %d/%d", len(first), len(second))
	}
	if first[0].ID != event.ID {
		t.Error("subscriber received a different event")
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	var received int
	unsubscribe := bus.Subscribe(func(ctx context.Context, event Event) error {
		received++
		return nil
	})

	event := NewEvent(PermissionRevoked, "Docs.Edit", "U", "alice", "")
	bus.Publish(context.Background(), event)
	unsubscribe()
	bus.Publish(context.Background(), event)

	if received != 1 {
		t.Errorf("expected 1 delivery after unsubscribe, got %d", received)
	}
}

func TestBus_HandlerErrorDoesNotStopFanOut(t *testing.T) {
	bus := NewBus()

	bus.Subscribe(func(ctx context.Context, event Event) error {
		return errors.New("handler failed")
	})
	var received int
	bus.Subscribe(func(ctx context.Context, event Event) error {
		received++
		return nil
	})

	// A failing handler is logged; the publisher and the other subscribers
	// are unaffected.
	if err := bus.Publish(context.Background(), NewEvent(PermissionProhibited, "Docs.Edit", "U", "alice", "")); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if received != 1 {
		t.Errorf("expected the second subscriber to receive the event, got %d", received)
	}
}

func TestNewEvent(t *testing.T) {
	a := NewEvent(PermissionGranted, "Docs.Edit", "U", "alice", "acme")
	b := NewEvent(PermissionGranted, "Docs.Edit", "U", "alice", "acme")

	if a.ID == b.ID {
		t.Error("expected distinct event ids")
	}
	if a.Kind != PermissionGranted || a.PermissionName != "Docs.Edit" || a.TenantID != "acme" {
		t.Errorf("unexpected event fields: %+v", a)
	}
	if a.OccurredAt.IsZero() {
		t.Error("expected a timestamp")
	}
}
