package catalog

import (
	"context"
	"fmt"
)

// DefinitionServiceInterface is the read surface of the built catalog.
type DefinitionServiceInterface interface {
	GetPermissionOrNil(name string) *Node
	GetPermission(name string) (*Node, error)
	Groups() []*Group
}

// DefinitionService builds the catalog from its providers once and serves
// reads from the sealed result.
type DefinitionService struct {
	providers []DefinitionProvider
	defs      *Context
}

// NewDefinitionService creates a service over the given providers. Providers
// run in registration order; later providers see (and must not collide with)
// earlier definitions.
func NewDefinitionService(providers ...DefinitionProvider) *DefinitionService {
	return &DefinitionService{providers: providers}
}

// Build runs every provider and seals the catalog. It must complete before
// any read method is called; after it returns, the catalog never changes
// and reads are safe without synchronization.
func (s *DefinitionService) Build(ctx context.Context) error {
	defs := NewContext()
	for _, provider := range s.providers {
		if err := provider.Define(ctx, defs); err != nil {
			return fmt.Errorf("failed to build permission catalog: %w", err)
		}
	}
	s.defs = defs
	return nil
}

// GetPermissionOrNil returns the named node, or nil if undefined.
func (s *DefinitionService) GetPermissionOrNil(name string) *Node {
	return s.defs.GetPermissionOrNil(name)
}

// GetPermission returns the named node or entities.ErrUnknownPermission.
func (s *DefinitionService) GetPermission(name string) (*Node, error) {
	return s.defs.GetPermission(name)
}

// GetGroup returns the named group, or nil.
func (s *DefinitionService) GetGroup(name string) *Group {
	return s.defs.GetGroup(name)
}

// Groups returns all groups in definition order.
func (s *DefinitionService) Groups() []*Group {
	return s.defs.Groups()
}

// Permissions returns every defined node.
func (s *DefinitionService) Permissions() []*Node {
	return s.defs.Permissions()
}
