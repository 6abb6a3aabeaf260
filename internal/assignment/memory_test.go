package assignment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/certa-platform/certa-permissions/internal/catalog"
)

func grantFor(user, tenant uuid.UUID, role string) RoleAssignment {
	return RoleAssignment{
		UserID:   user,
		TenantID: tenant,
		Module:   catalog.ModuleTestingLab,
		RoleName: role,
	}
}

func TestAssignIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	user := uuid.New()
	tenant := uuid.New()

	first := grantFor(user, tenant, "Manager")
	first.AssignedAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	inserted, err := store.Assign(ctx, first)
	require.NoError(t, err)
	require.True(t, inserted)

	second := grantFor(user, tenant, "Manager")
	second.AssignedAt = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	inserted, err = store.Assign(ctx, second)
	require.NoError(t, err)
	require.False(t, inserted)

	roles, err := store.UserRoles(ctx, user, tenant, catalog.ModuleTestingLab)
	require.NoError(t, err)
	require.Equal(t, []string{"Manager"}, roles)

	holders, err := store.UsersWithRole(ctx, tenant, catalog.ModuleTestingLab, "Manager")
	require.NoError(t, err)
	require.Len(t, holders, 1)
	// The original assignment timestamp survives a repeated assign.
	require.Equal(t, first.AssignedAt, holders[0].AssignedAt)
}

func TestRevokeReportsRemoval(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	user := uuid.New()
	tenant := uuid.New()

	grant := grantFor(user, tenant, "Tester")
	_, err := store.Assign(ctx, grant)
	require.NoError(t, err)

	removed, err := store.Revoke(ctx, grant.Key())
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = store.Revoke(ctx, grant.Key())
	require.NoError(t, err)
	require.False(t, removed)

	roles, err := store.UserRoles(ctx, user, tenant, catalog.ModuleTestingLab)
	require.NoError(t, err)
	require.Empty(t, roles)
}

func TestUsersWithRoleExactMembership(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	tenant := uuid.New()
	other := uuid.New()
	manager := uuid.New()
	coordinator := uuid.New()

	for _, grant := range []RoleAssignment{
		grantFor(manager, tenant, "Manager"),
		grantFor(coordinator, tenant, "Coordinator"),
		grantFor(manager, other, "Coordinator"),
	} {
		_, err := store.Assign(ctx, grant)
		require.NoError(t, err)
	}

	holders, err := store.UsersWithRole(ctx, tenant, catalog.ModuleTestingLab, "Coordinator")
	require.NoError(t, err)
	require.Len(t, holders, 1)
	require.Equal(t, coordinator, holders[0].UserID)

	// Revocation is visible immediately.
	removed, err := store.Revoke(ctx, grantFor(coordinator, tenant, "Coordinator").Key())
	require.NoError(t, err)
	require.True(t, removed)

	holders, err = store.UsersWithRole(ctx, tenant, catalog.ModuleTestingLab, "Coordinator")
	require.NoError(t, err)
	require.Empty(t, holders)
}

func TestTenantIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	user := uuid.New()
	tenantA := uuid.New()
	tenantB := uuid.New()

	_, err := store.Assign(ctx, grantFor(user, tenantA, "Admin"))
	require.NoError(t, err)

	roles, err := store.UserRoles(ctx, user, tenantB, catalog.ModuleTestingLab)
	require.NoError(t, err)
	require.Empty(t, roles)
}

func TestConcurrentAssignSingleGrant(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	user := uuid.New()
	tenant := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Assign(ctx, grantFor(user, tenant, "Manager"))
		}()
	}
	wg.Wait()

	holders, err := store.UsersWithRole(ctx, tenant, catalog.ModuleTestingLab, "Manager")
	require.NoError(t, err)
	require.Len(t, holders, 1)
}

func TestConcurrentAssignRevokeKeepsInvariant(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	user := uuid.New()
	tenant := uuid.New()
	key := grantFor(user, tenant, "Tester").Key()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = store.Assign(ctx, grantFor(user, tenant, "Tester"))
		}()
		go func() {
			defer wg.Done()
			_, _ = store.Revoke(ctx, key)
		}()
	}
	wg.Wait()

	holders, err := store.UsersWithRole(ctx, tenant, catalog.ModuleTestingLab, "Tester")
	require.NoError(t, err)
	require.LessOrEqual(t, len(holders), 1)
}

func TestCancelledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Assign(ctx, grantFor(uuid.New(), uuid.New(), "Tester"))
	require.ErrorIs(t, err, context.Canceled)
}
