package catalog

import (
	"context"
	"fmt"
	"log"

	"github.com/moklgydocs/mokpermissions/internal/entities"
	"github.com/moklgydocs/mokpermissions/internal/repositories"
)

// DefaultGroupName receives dynamic records that name no group.
const DefaultGroupName = "Default"

// DynamicDefinitionProvider materializes catalog nodes from persisted flat
// definition records.
type DynamicDefinitionProvider struct {
	repo             repositories.DefinitionRepository
	defaultGroupName string
}

// NewDynamicDefinitionProvider creates a provider reading records from repo.
// defaultGroupName may be empty, in which case DefaultGroupName is used.
func NewDynamicDefinitionProvider(repo repositories.DefinitionRepository, defaultGroupName string) *DynamicDefinitionProvider {
	if defaultGroupName == "" {
		defaultGroupName = DefaultGroupName
	}
	return &DynamicDefinitionProvider{repo: repo, defaultGroupName: defaultGroupName}
}

// Define loads all persisted records and adds the resolvable ones to the
// catalog. Records whose parent chain never resolves are skipped; they are
// logged rather than silently discarded.
func (p *DynamicDefinitionProvider) Define(ctx context.Context, defs *Context) error {
	records, err := p.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list permission definition records: %w", err)
	}

	orphans, err := BuildFromRecords(defs, records, p.defaultGroupName)
	if err != nil {
		return err
	}
	for _, rec := range orphans {
		log.Printf("WARN: skipping permission definition %q: parent %q cannot be resolved", rec.Name, rec.ParentName)
	}
	return nil
}

// BuildFromRecords turns an unordered record set into catalog nodes.
//
// Roots are added first; the remaining records are then scanned repeatedly,
// attaching every record whose parent already exists. Each full scan either
// creates at least one node or stops the loop, so the construction is
// bounded by the record count. Records whose parent chain never resolves
// (parent absent from the set, or a cycle) are returned as orphans.
func BuildFromRecords(defs *Context, records []*entities.PermissionDefinitionRecord, defaultGroupName string) ([]*entities.PermissionDefinitionRecord, error) {
	if defaultGroupName == "" {
		defaultGroupName = DefaultGroupName
	}

	created := make(map[string]*Node, len(records))
	var pending []*entities.PermissionDefinitionRecord

	for _, rec := range records {
		groupName := rec.GroupName
		if groupName == "" {
			groupName = defaultGroupName
		}
		group, err := defs.GetGroupOrAdd(groupName, groupName)
		if err != nil {
			return nil, err
		}

		if rec.ParentName != "" {
			pending = append(pending, rec)
			continue
		}
		node, err := group.AddPermission(rec.Name, rec.DisplayName, rec.Description, rec.IsGrantedByDefault)
		if err != nil {
			return nil, err
		}
		created[rec.Name] = node
	}

	for len(pending) > 0 {
		var remaining []*entities.PermissionDefinitionRecord
		progressed := false
		for _, rec := range pending {
			parentNode, ok := created[rec.ParentName]
			if !ok {
				remaining = append(remaining, rec)
				continue
			}
			node, err := parentNode.AddChild(rec.Name, rec.DisplayName, rec.Description, rec.IsGrantedByDefault)
			if err != nil {
				return nil, err
			}
			created[rec.Name] = node
			progressed = true
		}
		if !progressed {
			return remaining, nil
		}
		pending = remaining
	}

	return nil, nil
}

// DefinitionSeeder persists a code-defined catalog into the definition
// table, so deployments that manage permissions dynamically can bootstrap
// from the static providers.
type DefinitionSeeder struct {
	repo repositories.DefinitionRepository
}

// NewDefinitionSeeder creates a seeder writing through repo.
func NewDefinitionSeeder(repo repositories.DefinitionRepository) *DefinitionSeeder {
	return &DefinitionSeeder{repo: repo}
}

// Seed flattens the catalog into definition records and upserts them.
func (s *DefinitionSeeder) Seed(ctx context.Context, defs *Context) error {
	nodes := defs.Permissions()
	records := make([]*entities.PermissionDefinitionRecord, 0, len(nodes))
	for _, node := range nodes {
		rec := &entities.PermissionDefinitionRecord{
			Name:               node.Name,
			DisplayName:        node.DisplayName,
			Description:        node.Description,
			GroupName:          node.GroupName,
			IsGrantedByDefault: node.IsGrantedByDefault,
		}
		if parent := node.Parent(); parent != nil {
			rec.ParentName = parent.Name
		}
		records = append(records, rec)
	}
	if err := s.repo.Save(ctx, records); err != nil {
		return fmt.Errorf("failed to seed permission definitions: %w", err)
	}
	return nil
}
