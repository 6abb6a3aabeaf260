// Package resolver computes effective capability sets from held role names.
// It performs no I/O; callers fetch role names from the assignment store and
// hand them in together with the immutable catalog.
package resolver

import (
	"github.com/certa-platform/certa-permissions/internal/catalog"
)

// EffectivePermissionSet is the derived, never-persisted capability record for
// one user in one tenant/module scope. Actions carries a boolean for every
// action the module declares.
type EffectivePermissionSet struct {
	Module        catalog.ModuleType            `json:"module"`
	Actions       map[catalog.ModuleAction]bool `json:"actions"`
	AssignedRoles []string                      `json:"assigned_roles"`
}

// Can reports whether the set grants the action.
func (s EffectivePermissionSet) Can(action catalog.ModuleAction) bool {
	return s.Actions[action]
}

// Resolve unions the granted actions of every held role. Membership implies
// visibility: holding at least one role the catalog defines grants
// catalog.ActionRead even when no role lists it explicitly. Role names the
// catalog does not define are skipped entirely, including for baseline read
// (grants are validated on assignment, so such names only appear when a
// catalog shrank after the grant was written). AssignedRoles echoes the input
// names.
func Resolve(c *catalog.Catalog, module catalog.ModuleType, roleNames []string) EffectivePermissionSet {
	set := EffectivePermissionSet{
		Module:        module,
		Actions:       make(map[catalog.ModuleAction]bool),
		AssignedRoles: append([]string{}, roleNames...),
	}
	for _, action := range c.Actions(module) {
		set.Actions[action] = false
	}

	defined := 0
	for _, name := range roleNames {
		def, ok := c.RoleDefinition(module, name)
		if !ok {
			continue
		}
		defined++
		for _, action := range def.GrantedActions {
			set.Actions[action] = true
		}
	}
	if defined > 0 {
		set.Actions[catalog.ActionRead] = true
	}
	return set
}

// HasAction answers a single capability query without materialising the full
// set. Read is granted to any holder of at least one defined role.
func HasAction(c *catalog.Catalog, module catalog.ModuleType, roleNames []string, action catalog.ModuleAction) bool {
	for _, name := range roleNames {
		def, ok := c.RoleDefinition(module, name)
		if !ok {
			continue
		}
		if action == catalog.ActionRead || def.Grants(action) {
			return true
		}
	}
	return false
}
