package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for role events.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert appends one role event to the audit log.
func (r *Repository) Insert(ctx context.Context, ev RoleEvent) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO role_audit_events (event, user_id, tenant_id, module, role_name, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, ev.Event, ev.UserID, ev.TenantID, string(ev.Module), ev.RoleName, ev.OccurredAt)
	if err != nil {
		return fmt.Errorf("audit: insert event: %w", err)
	}
	return nil
}

// Timeline returns events newest first within the requested window. The limit
// is expected to be pageSize+1 so the service can detect a next page.
func (r *Repository) Timeline(ctx context.Context, filters TimelineFilters, limit, offset int) ([]Entry, error) {
	var (
		conditions []string
		args       []any
	)
	if filters.TenantID != nil {
		args = append(args, *filters.TenantID)
		conditions = append(conditions, fmt.Sprintf("tenant_id = $%d", len(args)))
	}
	if filters.UserID != nil {
		args = append(args, *filters.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filters.Module != "" {
		args = append(args, string(filters.Module))
		conditions = append(conditions, fmt.Sprintf("module = $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT id, event, user_id, tenant_id, module, role_name, occurred_at, recorded_at
		FROM role_audit_events
		%s
		ORDER BY occurred_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var module string
		if err := rows.Scan(&e.ID, &e.Event, &e.UserID, &e.TenantID, &module, &e.RoleName, &e.OccurredAt, &e.RecordedAt); err != nil {
			return nil, err
		}
		e.Module = moduleType(module)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
