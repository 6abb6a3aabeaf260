package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsDuplicateModule(t *testing.T) {
	_, err := New(TestingLab(), TestingLab())
	require.Error(t, err)
	require.Contains(t, err.Error(), "registered twice")
}

func TestNewRejectsDuplicateRole(t *testing.T) {
	_, err := New(ModuleCatalog{
		Module:  "demo",
		Actions: []ModuleAction{ActionRead},
		Roles: []RoleDefinition{
			{Name: "Admin", GrantedActions: []ModuleAction{ActionRead}},
			{Name: "Admin"},
		},
	})
	require.Error(t, err)
}

func TestNewRejectsUndeclaredAction(t *testing.T) {
	_, err := New(ModuleCatalog{
		Module:  "demo",
		Actions: []ModuleAction{ActionRead},
		Roles: []RoleDefinition{
			{Name: "Admin", GrantedActions: []ModuleAction{"not_declared"}},
		},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown action")
}

func TestRoleDefinitionsOrderedByPriority(t *testing.T) {
	c := Default()

	defs := c.RoleDefinitions(ModuleTestingLab)
	require.Len(t, defs, 4)
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
	}
	require.Equal(t, []string{"Admin", "Manager", "Coordinator", "Tester"}, names)
}

func TestUnknownModuleYieldsEmptyResults(t *testing.T) {
	c := Default()

	require.Empty(t, c.RoleDefinitions("nonexistent"))
	require.Empty(t, c.Actions("nonexistent"))
	_, found := c.RoleDefinition("nonexistent", "Admin")
	require.False(t, found)
}

func TestCatalogStableAcrossCalls(t *testing.T) {
	c := Default()

	first := c.RoleDefinitions(ModuleTestingLab)
	// Mutating a returned slice must not leak into the catalog.
	first[0].GrantedActions[0] = "tampered"
	first[0].Name = "tampered"

	second := c.RoleDefinitions(ModuleTestingLab)
	require.Equal(t, "Admin", second[0].Name)
	require.Equal(t, ActionRead, second[0].GrantedActions[0])
	require.Equal(t, second, c.RoleDefinitions(ModuleTestingLab))
}

func TestRoleDefinitionLookup(t *testing.T) {
	c := Default()

	def, found := c.RoleDefinition(ModuleTestingLab, "Coordinator")
	require.True(t, found)
	require.Equal(t, ModuleTestingLab, def.Module)
	require.True(t, def.Grants(ActionCreateSessions))
	require.True(t, def.Grants(ActionManageTesters))
	require.False(t, def.Grants(ActionDeleteSessions))

	_, found = c.RoleDefinition(ModuleTestingLab, "NotARole")
	require.False(t, found)
}

func TestEveryBuiltinModuleDeclaresRead(t *testing.T) {
	c := Default()
	for _, module := range c.Modules() {
		actions := c.Actions(module)
		require.Contains(t, actions, ActionRead, "module %s", module)
	}
}
