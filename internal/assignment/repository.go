package assignment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/certa-platform/certa-permissions/internal/catalog"
)

const uniqueViolation = "23505"

// Repository provides PostgreSQL backed persistence for role grants. The
// role_assignments table carries a unique index over the four-part key, so
// the database enforces the at-most-one-grant invariant under concurrency.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Assign inserts the grant, treating an existing identical grant as a no-op.
func (r *Repository) Assign(ctx context.Context, grant RoleAssignment) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO role_assignments (user_id, tenant_id, module, role_name, assigned_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, tenant_id, module, role_name) DO NOTHING
	`, grant.UserID, grant.TenantID, string(grant.Module), grant.RoleName, grant.AssignedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		// A concurrent insert can still surface the constraint before the
		// conflict target resolves; both outcomes mean the grant exists.
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return false, nil
		}
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Revoke deletes the grant and reports whether a row was removed.
func (r *Repository) Revoke(ctx context.Context, key Key) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM role_assignments
		WHERE user_id = $1 AND tenant_id = $2 AND module = $3 AND role_name = $4
	`, key.UserID, key.TenantID, string(key.Module), key.RoleName)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// UserRoles returns the user's role names in the tenant/module scope.
func (r *Repository) UserRoles(ctx context.Context, userID, tenantID uuid.UUID, module catalog.ModuleType) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT role_name
		FROM role_assignments
		WHERE user_id = $1 AND tenant_id = $2 AND module = $3
		ORDER BY role_name
	`, userID, tenantID, string(module))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		roles = append(roles, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}

// UsersWithRole lists current holders of the exact role.
func (r *Repository) UsersWithRole(ctx context.Context, tenantID uuid.UUID, module catalog.ModuleType, roleName string) ([]RoleHolder, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, assigned_at
		FROM role_assignments
		WHERE tenant_id = $1 AND module = $2 AND role_name = $3
		ORDER BY assigned_at, user_id
	`, tenantID, string(module), roleName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holders := []RoleHolder{}
	for rows.Next() {
		var h RoleHolder
		if err := rows.Scan(&h.UserID, &h.AssignedAt); err != nil {
			return nil, err
		}
		holders = append(holders, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return holders, nil
}
