package catalog

import (
	"context"
	"testing"

	"github.com/moklgydocs/mokpermissions/internal/entities"
	"github.com/moklgydocs/mokpermissions/internal/repositories/memory"
)

func rec(name, parent, group string) *entities.PermissionDefinitionRecord {
	return &entities.PermissionDefinitionRecord{Name: name, ParentName: parent, GroupName: group}
}

func TestBuildFromRecords_OutOfOrder(t *testing.T) {
	// Children listed before their parents; the loader must still attach them.
	records := []*entities.PermissionDefinitionRecord{
		rec("Docs.Edit.Publish", "Docs.Edit", "Docs"),
		rec("Docs.Edit", "Docs", "Docs"),
		rec("Docs", "", "Docs"),
		rec("Reports", "", "Reports"),
	}

	defs := NewContext()
	orphans, err := BuildFromRecords(defs, records, "")
	if err != nil {
		t.Fatalf("BuildFromRecords() error = %v", err)
	}
	if len(orphans) != 0 {
		t.Fatalf("expected no orphans, got %d", len(orphans))
	}

	publish := defs.GetPermissionOrNil("Docs.Edit.Publish")
	if publish == nil {
		t.Fatal("expected Docs.Edit.Publish to be defined")
	}
	if publish.Parent() == nil || publish.Parent().Name != "Docs.Edit" {
		t.Errorf("expected parent Docs.Edit, got %v", publish.Parent())
	}
	if publish.Parent().Parent() == nil || publish.Parent().Parent().Name != "Docs" {
		t.Error("expected grandparent Docs")
	}
	if got := len(defs.Groups()); got != 2 {
		t.Errorf("expected 2 groups, got %d", got)
	}
}

func TestBuildFromRecords_Orphans(t *testing.T) {
	tests := []struct {
		name        string
		records     []*entities.PermissionDefinitionRecord
		wantOrphans []string
		wantDefined []string
	}{
		{
			name: "missing parent",
			records: []*entities.PermissionDefinitionRecord{
				rec("Docs", "", ""),
				rec("Docs.Edit", "Docs", ""),
				rec("Lost.Child", "Lost", ""),
			},
			wantOrphans: []string{"Lost.Child"},
			wantDefined: []string{"Docs", "Docs.Edit"},
		},
		{
			name: "cycle",
			records: []*entities.PermissionDefinitionRecord{
				rec("A", "B", ""),
				rec("B", "A", ""),
				rec("C", "", ""),
			},
			wantOrphans: []string{"A", "B"},
			wantDefined: []string{"C"},
		},
		{
			name: "subtree under missing parent",
			records: []*entities.PermissionDefinitionRecord{
				rec("Gone.Child", "Gone", ""),
				rec("Gone.Child.Leaf", "Gone.Child", ""),
			},
			wantOrphans: []string{"Gone.Child", "Gone.Child.Leaf"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs := NewContext()
			orphans, err := BuildFromRecords(defs, tt.records, "")
			if err != nil {
				t.Fatalf("BuildFromRecords() error = %v", err)
			}

			got := make(map[string]bool, len(orphans))
			for _, o := range orphans {
				got[o.Name] = true
			}
			if len(orphans) != len(tt.wantOrphans) {
				t.Errorf("expected %d orphans, got %d", len(tt.wantOrphans), len(orphans))
			}
			for _, name := range tt.wantOrphans {
				if !got[name] {
					t.Errorf("expected %q to be reported as orphan", name)
				}
				if defs.GetPermissionOrNil(name) != nil {
					t.Errorf("orphan %q must not appear in the catalog", name)
				}
			}
			for _, name := range tt.wantDefined {
				if defs.GetPermissionOrNil(name) == nil {
					t.Errorf("expected %q to be defined", name)
				}
			}
		})
	}
}

func TestBuildFromRecords_DefaultGroup(t *testing.T) {
	defs := NewContext()
	orphans, err := BuildFromRecords(defs, []*entities.PermissionDefinitionRecord{
		rec("Ungrouped", "", ""),
	}, "")
	if err != nil {
		t.Fatalf("BuildFromRecords() error = %v", err)
	}
	if len(orphans) != 0 {
		t.Fatalf("expected no orphans, got %d", len(orphans))
	}

	node := defs.GetPermissionOrNil("Ungrouped")
	if node == nil || node.GroupName != DefaultGroupName {
		t.Errorf("expected record to land in group %q, got %v", DefaultGroupName, node)
	}
}

func TestDynamicDefinitionProvider_Define(t *testing.T) {
	repo := memory.NewDefinitionRepository()
	if err := repo.Save(context.Background(), []*entities.PermissionDefinitionRecord{
		rec("Docs", "", "Docs"),
		rec("Docs.Edit", "Docs", "Docs"),
		rec("Stray", "Missing", "Docs"),
	}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	defs := NewContext()
	provider := NewDynamicDefinitionProvider(repo, "")
	if err := provider.Define(context.Background(), defs); err != nil {
		t.Fatalf("Define() error = %v", err)
	}

	if defs.GetPermissionOrNil("Docs.Edit") == nil {
		t.Error("expected Docs.Edit to be defined")
	}
	// Orphans are logged and skipped, never a hard failure.
	if defs.GetPermissionOrNil("Stray") != nil {
		t.Error("expected Stray to be skipped")
	}
}

func TestDefinitionSeeder_RoundTrip(t *testing.T) {
	source := NewContext()
	admin, _ := source.AddGroup("Admin", "Administration")
	userMgmt, _ := admin.AddPermission("UserManagement", "User management", "manage users", false)
	userMgmt.AddChild("UserManagement.Create", "", "", false)
	userMgmt.AddChild("UserManagement.Delete", "", "", false)

	repo := memory.NewDefinitionRepository()
	seeder := NewDefinitionSeeder(repo)
	if err := seeder.Seed(context.Background(), source); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	// Rebuilding from the persisted records yields the same tree.
	rebuilt := NewContext()
	provider := NewDynamicDefinitionProvider(repo, "")
	if err := provider.Define(context.Background(), rebuilt); err != nil {
		t.Fatalf("Define() error = %v", err)
	}

	for _, name := range []string{"UserManagement", "UserManagement.Create", "UserManagement.Delete"} {
		node := rebuilt.GetPermissionOrNil(name)
		if node == nil {
			t.Fatalf("expected %q after round trip", name)
		}
		if node.GroupName != "Admin" {
			t.Errorf("%q: group = %q, want Admin", name, node.GroupName)
		}
	}
	create := rebuilt.GetPermissionOrNil("UserManagement.Create")
	if create.Parent() == nil || create.Parent().Name != "UserManagement" {
		t.Error("expected UserManagement.Create to keep its parent after round trip")
	}
}
