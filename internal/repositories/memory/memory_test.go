package memory

import (
	"context"
	"testing"

	"github.com/moklgydocs/mokpermissions/internal/entities"
)

func TestGrantRepository_GetSet(t *testing.T) {
	repo := NewGrantRepository()
	ctx := context.Background()

	status, err := repo.Get(ctx, "t1", "Docs.Edit", "U", "alice")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if status != entities.StatusUndefined {
		t.Errorf("missing record: status = %v, want undefined", status)
	}

	if err := repo.Set(ctx, "t1", &entities.PermissionGrant{
		PermissionName: "Docs.Edit",
		ProviderName:   "U",
		ProviderKey:    "alice",
		Status:         entities.StatusGranted,
	}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	status, _ = repo.Get(ctx, "t1", "Docs.Edit", "U", "alice")
	if status != entities.StatusGranted {
		t.Errorf("status = %v, want granted", status)
	}

	// Upsert replaces the record in place.
	repo.Set(ctx, "t1", &entities.PermissionGrant{
		PermissionName: "Docs.Edit",
		ProviderName:   "U",
		ProviderKey:    "alice",
		Status:         entities.StatusProhibited,
	})
	status, _ = repo.Get(ctx, "t1", "Docs.Edit", "U", "alice")
	if status != entities.StatusProhibited {
		t.Errorf("status after upsert = %v, want prohibited", status)
	}
	if repo.Len() != 1 {
		t.Errorf("Len() = %d, want 1", repo.Len())
	}
}

func TestGrantRepository_SetValidates(t *testing.T) {
	repo := NewGrantRepository()

	err := repo.Set(context.Background(), "t1", &entities.PermissionGrant{
		PermissionName: "Docs.Edit",
		ProviderName:   "U",
		ProviderKey:    "alice",
		Status:         entities.StatusUndefined, // Never persisted
	})
	if err == nil {
		t.Error("expected an error persisting the undefined status")
	}
}

func TestGrantRepository_TenantIsolation(t *testing.T) {
	repo := NewGrantRepository()
	ctx := context.Background()

	grant := &entities.PermissionGrant{
		PermissionName: "Docs.Edit",
		ProviderName:   "U",
		ProviderKey:    "alice",
		Status:         entities.StatusGranted,
	}
	repo.Set(ctx, "t1", grant)

	status, _ := repo.Get(ctx, "t2", "Docs.Edit", "U", "alice")
	if status != entities.StatusUndefined {
		t.Errorf("other tenant: status = %v, want undefined", status)
	}
	// Deleting in the wrong tenant leaves the record alone.
	repo.Delete(ctx, "t2", "Docs.Edit", "U", "alice")
	status, _ = repo.Get(ctx, "t1", "Docs.Edit", "U", "alice")
	if status != entities.StatusGranted {
		t.Errorf("own tenant after foreign delete: status = %v, want granted", status)
	}
}

func TestGrantRepository_GetAll(t *testing.T) {
	repo := NewGrantRepository()
	ctx := context.Background()

	for _, name := range []string{"Docs.Edit", "Docs.View"} {
		repo.Set(ctx, "t1", &entities.PermissionGrant{
			PermissionName: name,
			ProviderName:   "U",
			ProviderKey:    "alice",
			Status:         entities.StatusGranted,
		})
	}
	repo.Set(ctx, "t1", &entities.PermissionGrant{
		PermissionName: "Docs.Edit",
		ProviderName:   "U",
		ProviderKey:    "bob",
		Status:         entities.StatusGranted,
	})

	grants, err := repo.GetAll(ctx, "t1", "U", "alice")
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(grants) != 2 {
		t.Fatalf("expected 2 grants for alice, got %d", len(grants))
	}
	for _, g := range grants {
		if g.ProviderKey != "alice" || g.TenantID != "t1" {
			t.Errorf("unexpected grant in listing: %v", g)
		}
	}

	// Returned records are copies; mutating one leaves the store intact.
	grants[0].Status = entities.StatusProhibited
	status, _ := repo.Get(ctx, "t1", grants[0].PermissionName, "U", "alice")
	if status != entities.StatusGranted {
		t.Error("mutating a returned grant changed the stored record")
	}
}

func TestDefinitionRepository_SaveAndList(t *testing.T) {
	repo := NewDefinitionRepository()
	ctx := context.Background()

	records := []*entities.PermissionDefinitionRecord{
		{Name: "Docs", GroupName: "Docs"},
		{Name: "Docs.Edit", ParentName: "Docs", GroupName: "Docs"},
	}
	if err := repo.Save(ctx, records); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	listed, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 records, got %d", len(listed))
	}

	// Re-saving upserts by name instead of duplicating.
	if err := repo.Save(ctx, []*entities.PermissionDefinitionRecord{
		{Name: "Docs.Edit", ParentName: "Docs", GroupName: "Docs", DisplayName: "Edit documents"},
	}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	listed, _ = repo.List(ctx)
	if len(listed) != 2 {
		t.Errorf("expected upsert, got %d records", len(listed))
	}
	for _, rec := range listed {
		if rec.Name == "Docs.Edit" && rec.DisplayName != "Edit documents" {
			t.Errorf("expected updated display name, got %q", rec.DisplayName)
		}
	}
}

func TestUserRoleRepository(t *testing.T) {
	repo := NewUserRoleRepository()
	ctx := context.Background()

	repo.AddRole("t1", "alice", "editor")
	repo.AddRole("t1", "alice", "viewer")
	repo.AddRole("t1", "alice", "editor") // Duplicate, ignored
	repo.AddRole("t2", "alice", "admin")

	roles, err := repo.RolesOf(ctx, "t1", "alice")
	if err != nil {
		t.Fatalf("RolesOf() error = %v", err)
	}
	if len(roles) != 2 || roles[0] != "editor" || roles[1] != "viewer" {
		t.Errorf("RolesOf(t1, alice) = %v, want [editor viewer]", roles)
	}

	roles, _ = repo.RolesOf(ctx, "t2", "alice")
	if len(roles) != 1 || roles[0] != "admin" {
		t.Errorf("RolesOf(t2, alice) = %v, want [admin]", roles)
	}

	roles, _ = repo.RolesOf(ctx, "t1", "bob")
	if len(roles) != 0 {
		t.Errorf("RolesOf(t1, bob) = %v, want empty", roles)
	}
}
