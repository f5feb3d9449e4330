// Package catalog holds the process-wide tree of defined permissions. The
// tree is built once at startup by definition providers and treated as
// immutable afterwards, so concurrent reads need no synchronization.
package catalog

import (
	"context"
	"fmt"

	"github.com/moklgydocs/mokpermissions/internal/entities"
)

// Node is one permission definition. Its identity is the globally unique
// dotted name; the parent pointer is a back-reference, never an ownership
// edge — the group or parent node exclusively owns its children.
type Node struct {
	Name               string // Unique name (e.g., "UserManagement.Create")
	DisplayName        string
	Description        string
	GroupName          string
	IsGrantedByDefault bool

	parent   *Node
	children []*Node
	defs     *Context
}

// Parent returns the parent node, or nil for a root-level permission.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the child nodes in insertion order. The returned slice is
// a copy; insertion order matters for display only, never for checking.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// AddChild defines a child permission under this node.
// Returns entities.ErrDuplicateDefinition if the name is already taken
// anywhere in the catalog.
func (n *Node) AddChild(name, displayName, description string, grantedByDefault bool) (*Node, error) {
	child, err := n.defs.newNode(name, displayName, description, n.GroupName, grantedByDefault)
	if err != nil {
		return nil, err
	}
	child.parent = n
	n.children = append(n.children, child)
	return child, nil
}

// Group owns the root-level permission nodes defined under one group name.
type Group struct {
	Name        string
	DisplayName string

	roots []*Node
	defs  *Context
}

// AddPermission defines a root-level permission in this group.
func (g *Group) AddPermission(name, displayName, description string, grantedByDefault bool) (*Node, error) {
	node, err := g.defs.newNode(name, displayName, description, g.Name, grantedByDefault)
	if err != nil {
		return nil, err
	}
	g.roots = append(g.roots, node)
	return node, nil
}

// Permissions returns the group's root-level nodes in insertion order.
func (g *Group) Permissions() []*Node {
	out := make([]*Node, len(g.roots))
	copy(out, g.roots)
	return out
}

// Context collects permission definitions during catalog construction.
// Construction is not thread-safe by design: it must complete fully before
// the catalog is exposed to readers.
type Context struct {
	groups     map[string]*Group
	groupOrder []string
	index      map[string]*Node // global name index across all groups
}

// NewContext creates an empty definition context.
func NewContext() *Context {
	return &Context{
		groups: make(map[string]*Group),
		index:  make(map[string]*Node),
	}
}

// AddGroup defines a permission group. Group names are unique.
func (c *Context) AddGroup(name, displayName string) (*Group, error) {
	if name == "" {
		return nil, fmt.Errorf("group name is required")
	}
	if _, exists := c.groups[name]; exists {
		return nil, fmt.Errorf("%w: group %q", entities.ErrDuplicateDefinition, name)
	}
	if displayName == "" {
		displayName = name
	}
	group := &Group{Name: name, DisplayName: displayName, defs: c}
	c.groups[name] = group
	c.groupOrder = append(c.groupOrder, name)
	return group, nil
}

// GetGroup returns the group with the given name, or nil.
func (c *Context) GetGroup(name string) *Group {
	return c.groups[name]
}

// GetGroupOrAdd returns the existing group or defines it.
func (c *Context) GetGroupOrAdd(name, displayName string) (*Group, error) {
	if group := c.groups[name]; group != nil {
		return group, nil
	}
	return c.AddGroup(name, displayName)
}

// Groups returns all groups in definition order.
func (c *Context) Groups() []*Group {
	out := make([]*Group, 0, len(c.groupOrder))
	for _, name := range c.groupOrder {
		out = append(out, c.groups[name])
	}
	return out
}

// GetPermissionOrNil returns the node with the given name from any group,
// or nil when the name is not defined.
func (c *Context) GetPermissionOrNil(name string) *Node {
	return c.index[name]
}

// GetPermission returns the node with the given name, or
// entities.ErrUnknownPermission.
func (c *Context) GetPermission(name string) (*Node, error) {
	node := c.index[name]
	if node == nil {
		return nil, fmt.Errorf("%w: %q", entities.ErrUnknownPermission, name)
	}
	return node, nil
}

// Permissions returns every node in the catalog, groups in definition order,
// nodes in pre-order within each group.
func (c *Context) Permissions() []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		out = append(out, n)
		for _, child := range n.children {
			walk(child)
		}
	}
	for _, name := range c.groupOrder {
		for _, root := range c.groups[name].roots {
			walk(root)
		}
	}
	return out
}

func (c *Context) newNode(name, displayName, description, groupName string, grantedByDefault bool) (*Node, error) {
	if name == "" {
		return nil, fmt.Errorf("permission name is required")
	}
	if _, exists := c.index[name]; exists {
		return nil, fmt.Errorf("%w: permission %q", entities.ErrDuplicateDefinition, name)
	}
	if displayName == "" {
		displayName = name
	}
	node := &Node{
		Name:               name,
		DisplayName:        displayName,
		Description:        description,
		GroupName:          groupName,
		IsGrantedByDefault: grantedByDefault,
		defs:               c,
	}
	c.index[name] = node
	return node, nil
}

// DefinitionProvider populates the catalog. Providers are invoked once at
// process start, before the catalog is exposed to readers.
type DefinitionProvider interface {
	Define(ctx context.Context, defs *Context) error
}

// DefinitionProviderFunc adapts a function to the DefinitionProvider
// interface, for code-defined catalogs.
type DefinitionProviderFunc func(ctx context.Context, defs *Context) error

// Define calls f.
func (f DefinitionProviderFunc) Define(ctx context.Context, defs *Context) error {
	return f(ctx, defs)
}
