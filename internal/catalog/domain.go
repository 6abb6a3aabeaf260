package catalog

// ModuleType identifies a protected business module.
type ModuleType string

// ModuleAction is a fine-grained capability within one module. Action names are
// scoped to their module; two modules may reuse a spelling without sharing meaning.
type ModuleAction string

// ActionRead is the baseline visibility action every module catalog carries.
// Holding any defined role in a module implies it.
const ActionRead ModuleAction = "read"

// RoleDefinition is a system-defined, immutable bundle of granted actions.
// Priority orders role listings for display; it does not affect resolution.
type RoleDefinition struct {
	Name           string
	Module         ModuleType
	Priority       int
	GrantedActions []ModuleAction
}

// Grants reports whether the definition explicitly grants the action.
func (d RoleDefinition) Grants(action ModuleAction) bool {
	for _, a := range d.GrantedActions {
		if a == action {
			return true
		}
	}
	return false
}

// ModuleCatalog declares one module's action set and assignable roles.
type ModuleCatalog struct {
	Module  ModuleType
	Actions []ModuleAction
	Roles   []RoleDefinition
}
