package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/certa-platform/certa-permissions/internal/catalog"
)

func testingLabCatalog() *catalog.Catalog {
	return catalog.Default()
}

func TestNoRolesNoAccess(t *testing.T) {
	c := testingLabCatalog()

	set := Resolve(c, catalog.ModuleTestingLab, nil)
	require.Empty(t, set.AssignedRoles)
	for action, allowed := range set.Actions {
		require.False(t, allowed, "action %s", action)
	}
	require.False(t, HasAction(c, catalog.ModuleTestingLab, nil, catalog.ActionRead))
}

func TestAdminHoldsEverything(t *testing.T) {
	c := testingLabCatalog()

	set := Resolve(c, catalog.ModuleTestingLab, []string{"Admin"})
	require.Equal(t, []string{"Admin"}, set.AssignedRoles)
	for action, allowed := range set.Actions {
		require.True(t, allowed, "action %s", action)
	}
}

func TestManagerSubset(t *testing.T) {
	c := testingLabCatalog()
	roles := []string{"Manager"}

	require.True(t, HasAction(c, catalog.ModuleTestingLab, roles, catalog.ActionCreateSessions))
	require.True(t, HasAction(c, catalog.ModuleTestingLab, roles, catalog.ActionViewReports))
	require.False(t, HasAction(c, catalog.ModuleTestingLab, roles, catalog.ActionDeleteSessions))
	require.False(t, HasAction(c, catalog.ModuleTestingLab, roles, catalog.ActionExportData))
}

func TestBaselineReadForEmptyRole(t *testing.T) {
	c := testingLabCatalog()

	// Tester grants no explicit actions at all.
	set := Resolve(c, catalog.ModuleTestingLab, []string{"Tester"})
	require.True(t, set.Can(catalog.ActionRead))
	for action, allowed := range set.Actions {
		if action == catalog.ActionRead {
			continue
		}
		require.False(t, allowed, "action %s", action)
	}
}

func TestMultipleRolesUnion(t *testing.T) {
	c := testingLabCatalog()
	roles := []string{"Tester", "Coordinator"}

	set := Resolve(c, catalog.ModuleTestingLab, roles)
	require.True(t, set.Can(catalog.ActionCreateSessions))
	require.True(t, set.Can(catalog.ActionManageTesters))
	require.False(t, set.Can(catalog.ActionDeleteSessions))
	require.ElementsMatch(t, roles, set.AssignedRoles)
}

func TestUnionMonotonicity(t *testing.T) {
	c := testingLabCatalog()
	defs := c.RoleDefinitions(catalog.ModuleTestingLab)

	for _, a := range defs {
		for _, b := range defs {
			both := Resolve(c, catalog.ModuleTestingLab, []string{a.Name, b.Name})
			alone := Resolve(c, catalog.ModuleTestingLab, []string{a.Name})
			for action, allowed := range alone.Actions {
				if allowed {
					require.True(t, both.Actions[action],
						"%s+%s lost action %s held by %s alone", a.Name, b.Name, action, a.Name)
				}
			}
		}
	}
}

func TestUndefinedRoleGrantsNothing(t *testing.T) {
	c := testingLabCatalog()

	// A name the catalog never defined, such as a grant left behind after a
	// catalog shrank, contributes no actions and no baseline read.
	set := Resolve(c, catalog.ModuleTestingLab, []string{"Ghost"})
	require.False(t, set.Can(catalog.ActionRead))
	require.False(t, set.Can(catalog.ActionCreateSessions))
	require.Equal(t, []string{"Ghost"}, set.AssignedRoles)

	require.False(t, HasAction(c, catalog.ModuleTestingLab, []string{"Ghost"}, catalog.ActionRead))
}

func TestBaselineReadRequiresDefinedRole(t *testing.T) {
	c := testingLabCatalog()

	// One defined role alongside undefined names still grants baseline read.
	set := Resolve(c, catalog.ModuleTestingLab, []string{"Ghost", "Tester"})
	require.True(t, set.Can(catalog.ActionRead))

	// Viewer exists in the programs module only; in the testing lab it is
	// undefined and must not grant read here.
	require.False(t, HasAction(c, catalog.ModuleTestingLab, []string{"Viewer"}, catalog.ActionRead))
}

func TestUnknownModuleResolvesEmpty(t *testing.T) {
	c := testingLabCatalog()

	set := Resolve(c, "nonexistent", nil)
	require.Empty(t, set.AssignedRoles)
	require.Empty(t, set.Actions)
}

func TestResolveCoversEveryCatalogAction(t *testing.T) {
	c := testingLabCatalog()

	set := Resolve(c, catalog.ModuleTestingLab, []string{"Coordinator"})
	require.Len(t, set.Actions, len(c.Actions(catalog.ModuleTestingLab)))
	for _, action := range c.Actions(catalog.ModuleTestingLab) {
		_, present := set.Actions[action]
		require.True(t, present, "action %s missing from resolved set", action)
	}
}
