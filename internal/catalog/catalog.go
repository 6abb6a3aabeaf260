package catalog

import (
	"fmt"
	"sort"
)

// Catalog is the read-only registry of module catalogs. It is built once at
// startup and safe for unguarded concurrent reads afterwards.
type Catalog struct {
	modules map[ModuleType]moduleEntry
}

type moduleEntry struct {
	actions []ModuleAction
	roles   []RoleDefinition
	byName  map[string]RoleDefinition
}

// New assembles a catalog from per-module declarations. Duplicate modules,
// duplicate role names within a module, or a role granting an action the module
// never declared are configuration errors and abort startup.
func New(modules ...ModuleCatalog) (*Catalog, error) {
	c := &Catalog{modules: make(map[ModuleType]moduleEntry, len(modules))}
	for _, mc := range modules {
		if mc.Module == "" {
			return nil, fmt.Errorf("catalog: module type required")
		}
		if _, ok := c.modules[mc.Module]; ok {
			return nil, fmt.Errorf("catalog: module %q registered twice", mc.Module)
		}
		actions := make(map[ModuleAction]struct{}, len(mc.Actions))
		for _, a := range mc.Actions {
			if _, ok := actions[a]; ok {
				return nil, fmt.Errorf("catalog: module %q declares action %q twice", mc.Module, a)
			}
			actions[a] = struct{}{}
		}
		entry := moduleEntry{
			actions: append([]ModuleAction(nil), mc.Actions...),
			roles:   make([]RoleDefinition, 0, len(mc.Roles)),
			byName:  make(map[string]RoleDefinition, len(mc.Roles)),
		}
		for _, role := range mc.Roles {
			if role.Name == "" {
				return nil, fmt.Errorf("catalog: module %q has a role without a name", mc.Module)
			}
			if _, ok := entry.byName[role.Name]; ok {
				return nil, fmt.Errorf("catalog: module %q defines role %q twice", mc.Module, role.Name)
			}
			for _, a := range role.GrantedActions {
				if _, ok := actions[a]; !ok {
					return nil, fmt.Errorf("catalog: role %q grants unknown action %q in module %q", role.Name, a, mc.Module)
				}
			}
			role.Module = mc.Module
			role.GrantedActions = append([]ModuleAction(nil), role.GrantedActions...)
			entry.byName[role.Name] = role
			entry.roles = append(entry.roles, role)
		}
		sort.SliceStable(entry.roles, func(i, j int) bool {
			return entry.roles[i].Priority > entry.roles[j].Priority
		})
		c.modules[mc.Module] = entry
	}
	return c, nil
}

// MustNew is New for fixed built-in declarations; it panics on configuration errors.
func MustNew(modules ...ModuleCatalog) *Catalog {
	c, err := New(modules...)
	if err != nil {
		panic(err)
	}
	return c
}

// RoleDefinitions returns the module's roles ordered by priority descending.
// Unknown modules yield an empty slice, never an error.
func (c *Catalog) RoleDefinitions(module ModuleType) []RoleDefinition {
	entry, ok := c.modules[module]
	if !ok {
		return []RoleDefinition{}
	}
	out := make([]RoleDefinition, len(entry.roles))
	for i, role := range entry.roles {
		role.GrantedActions = append([]ModuleAction(nil), role.GrantedActions...)
		out[i] = role
	}
	return out
}

// RoleDefinition looks up one role by name within a module.
func (c *Catalog) RoleDefinition(module ModuleType, name string) (RoleDefinition, bool) {
	entry, ok := c.modules[module]
	if !ok {
		return RoleDefinition{}, false
	}
	def, ok := entry.byName[name]
	return def, ok
}

// Actions returns the module's declared action list in registration order.
func (c *Catalog) Actions(module ModuleType) []ModuleAction {
	entry, ok := c.modules[module]
	if !ok {
		return []ModuleAction{}
	}
	out := make([]ModuleAction, len(entry.actions))
	copy(out, entry.actions)
	return out
}

// Modules lists registered module types sorted by name.
func (c *Catalog) Modules() []ModuleType {
	out := make([]ModuleType, 0, len(c.modules))
	for m := range c.modules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
