package assignment

import (
	"context"

	"github.com/google/uuid"

	"github.com/certa-platform/certa-permissions/internal/catalog"
)

// Store is the sole holder of "who has which role". Implementations must keep
// writes linearizable per grant key: concurrent Assign calls for one key never
// produce duplicates, and Assign/Revoke on one key serialize.
type Store interface {
	// Assign idempotently records a grant and reports whether a new row was
	// written (false when the identical grant already existed). The role must
	// already have been validated against the catalog by the caller.
	Assign(ctx context.Context, grant RoleAssignment) (bool, error)

	// Revoke removes a grant if present and reports whether one was removed.
	// Revoking an absent grant is not an error.
	Revoke(ctx context.Context, key Key) (bool, error)

	// UserRoles returns the user's current role names in the tenant/module
	// scope; empty when the user holds nothing there.
	UserRoles(ctx context.Context, userID, tenantID uuid.UUID, module catalog.ModuleType) ([]string, error)

	// UsersWithRole lists current holders of exactly the named role, ordered
	// by assignment time then user ID.
	UsersWithRole(ctx context.Context, tenantID uuid.UUID, module catalog.ModuleType, roleName string) ([]RoleHolder, error)
}
