// Package testinglab binds the permission façade to the testing-lab module's
// action set, giving callers one typed wrapper per capability instead of
// stringly-typed checks at every call site.
package testinglab

import (
	"context"

	"github.com/google/uuid"

	"github.com/certa-platform/certa-permissions/internal/catalog"
	"github.com/certa-platform/certa-permissions/internal/permission"
	"github.com/certa-platform/certa-permissions/internal/resolver"
)

// Permissions is the testing-lab view of the permission service.
type Permissions struct {
	client permission.ModuleClient
}

// NewPermissions binds the service to the testing-lab module.
func NewPermissions(svc *permission.Service) Permissions {
	return Permissions{client: svc.Module(catalog.ModuleTestingLab)}
}

// CanRead reports baseline visibility (any defined held role grants it).
func (p Permissions) CanRead(ctx context.Context, userID, tenantID uuid.UUID) (bool, error) {
	return p.client.Can(ctx, userID, tenantID, catalog.ActionRead)
}

// CanCreateSessions reports the create-sessions capability.
func (p Permissions) CanCreateSessions(ctx context.Context, userID, tenantID uuid.UUID) (bool, error) {
	return p.client.Can(ctx, userID, tenantID, catalog.ActionCreateSessions)
}

// CanEditSessions reports the edit-sessions capability.
func (p Permissions) CanEditSessions(ctx context.Context, userID, tenantID uuid.UUID) (bool, error) {
	return p.client.Can(ctx, userID, tenantID, catalog.ActionEditSessions)
}

// CanDeleteSessions reports the delete-sessions capability.
func (p Permissions) CanDeleteSessions(ctx context.Context, userID, tenantID uuid.UUID) (bool, error) {
	return p.client.Can(ctx, userID, tenantID, catalog.ActionDeleteSessions)
}

// CanManageTesters reports the manage-testers capability.
func (p Permissions) CanManageTesters(ctx context.Context, userID, tenantID uuid.UUID) (bool, error) {
	return p.client.Can(ctx, userID, tenantID, catalog.ActionManageTesters)
}

// CanViewReports reports the view-reports capability.
func (p Permissions) CanViewReports(ctx context.Context, userID, tenantID uuid.UUID) (bool, error) {
	return p.client.Can(ctx, userID, tenantID, catalog.ActionViewReports)
}

// CanExportData reports the export-data capability.
func (p Permissions) CanExportData(ctx context.Context, userID, tenantID uuid.UUID) (bool, error) {
	return p.client.Can(ctx, userID, tenantID, catalog.ActionExportData)
}

// CanAdminister reports the administer capability.
func (p Permissions) CanAdminister(ctx context.Context, userID, tenantID uuid.UUID) (bool, error) {
	return p.client.Can(ctx, userID, tenantID, catalog.ActionAdminister)
}

// Effective resolves the full testing-lab permission set in one round trip.
func (p Permissions) Effective(ctx context.Context, userID, tenantID uuid.UUID) (resolver.EffectivePermissionSet, error) {
	return p.client.Permissions(ctx, userID, tenantID)
}
