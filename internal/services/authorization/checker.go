// Package authorization answers "is this principal granted that
// permission" from the catalog defaults and the grant store.
package authorization

import (
	"context"
	"fmt"

	"github.com/moklgydocs/mokpermissions/internal/catalog"
	"github.com/moklgydocs/mokpermissions/internal/entities"
	"github.com/moklgydocs/mokpermissions/internal/repositories"
	"github.com/moklgydocs/mokpermissions/internal/services"
	"github.com/moklgydocs/mokpermissions/internal/tenant"
)

// CheckerInterface defines the interface for permission checking. It is the
// entire surface exposed to request-handling middleware.
type CheckerInterface interface {
	IsGranted(ctx context.Context, principal *entities.Principal, permissionName string) (bool, error)
	IsGrantedMany(ctx context.Context, principal *entities.Principal, permissionNames []string) (map[string]bool, error)
}

// Checker resolves access decisions across the principal's provider chain:
// the user's own grants, then each role in identity-source order, then the
// client. The policy is deny-overrides, then grant-any, then the catalog
// default: an explicit prohibition anywhere in the chain vetoes every
// grant, and with no explicit record at all the node's IsGrantedByDefault
// decides.
type Checker struct {
	defs      catalog.DefinitionServiceInterface
	store     services.GrantStore
	userRoles repositories.UserRoleRepository // Optional role expansion
}

// NewChecker creates a checker. userRoles may be nil; the checker then
// relies solely on the roles carried by the principal.
func NewChecker(defs catalog.DefinitionServiceInterface, store services.GrantStore, userRoles repositories.UserRoleRepository) *Checker {
	return &Checker{defs: defs, store: store, userRoles: userRoles}
}

// holder is one (providerName, providerKey) step of the provider chain.
type holder struct {
	providerName string
	providerKey  string
}

// providerChain builds the ordered holder list for the principal.
func (c *Checker) providerChain(ctx context.Context, principal *entities.Principal) ([]holder, error) {
	var chain []holder

	if principal.UserID != "" {
		chain = append(chain, holder{entities.UserProviderName, principal.UserID})

		roles := principal.Roles
		if len(roles) == 0 && c.userRoles != nil {
			expanded, err := c.userRoles.RolesOf(ctx, tenant.CurrentID(ctx), principal.UserID)
			if err != nil {
				return nil, fmt.Errorf("failed to expand roles for %q: %w", principal.UserID, err)
			}
			roles = expanded
		}
		for _, role := range roles {
			chain = append(chain, holder{entities.RoleProviderName, role})
		}
	}

	if principal.ClientID != "" {
		chain = append(chain, holder{entities.ClientProviderName, principal.ClientID})
	}

	return chain, nil
}

// IsGranted answers the access decision for one permission name.
// An unknown name fails with entities.ErrUnknownPermission before the store
// is queried.
func (c *Checker) IsGranted(ctx context.Context, principal *entities.Principal, permissionName string) (bool, error) {
	node, err := c.defs.GetPermission(permissionName)
	if err != nil {
		return false, err
	}

	chain, err := c.providerChain(ctx, principal)
	if err != nil {
		return false, err
	}

	granted := false
	for _, h := range chain {
		status, err := c.store.Get(ctx, permissionName, h.providerName, h.providerKey)
		if err != nil {
			return false, fmt.Errorf("failed to check %q for %s:%s: %w", permissionName, h.providerName, h.providerKey, err)
		}
		switch status {
		case entities.StatusProhibited:
			// Prohibition is absolute; nothing later in the chain can
			// override it.
			return false, nil
		case entities.StatusGranted:
			granted = true
		}
	}
	if granted {
		return true, nil
	}

	return node.IsGrantedByDefault, nil
}

// IsGrantedMany resolves several permission names over a single provider
// chain construction. The result has one entry per distinct name.
func (c *Checker) IsGrantedMany(ctx context.Context, principal *entities.Principal, permissionNames []string) (map[string]bool, error) {
	nodes := make(map[string]*catalog.Node, len(permissionNames))
	for _, name := range permissionNames {
		if _, seen := nodes[name]; seen {
			continue
		}
		node, err := c.defs.GetPermission(name)
		if err != nil {
			return nil, err
		}
		nodes[name] = node
	}

	chain, err := c.providerChain(ctx, principal)
	if err != nil {
		return nil, err
	}

	results := make(map[string]bool, len(nodes))
	for name, node := range nodes {
		granted := false
		prohibited := false
		for _, h := range chain {
			status, err := c.store.Get(ctx, name, h.providerName, h.providerKey)
			if err != nil {
				return nil, fmt.Errorf("failed to check %q for %s:%s: %w", name, h.providerName, h.providerKey, err)
			}
			if status == entities.StatusProhibited {
				prohibited = true
				break
			}
			if status == entities.StatusGranted {
				granted = true
			}
		}
		switch {
		case prohibited:
			results[name] = false
		case granted:
			results[name] = true
		default:
			results[name] = node.IsGrantedByDefault
		}
	}

	return results, nil
}

var _ CheckerInterface = (*Checker)(nil)
