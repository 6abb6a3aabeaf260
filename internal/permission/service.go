// Package permission is the façade every other subsystem depends on. It wires
// the role catalog, the assignment store and the resolver into the public
// permission API and layers the optional cache, audit trail and metrics on top.
package permission

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/certa-platform/certa-permissions/internal/assignment"
	"github.com/certa-platform/certa-permissions/internal/audit"
	"github.com/certa-platform/certa-permissions/internal/catalog"
	"github.com/certa-platform/certa-permissions/internal/observability"
	"github.com/certa-platform/certa-permissions/internal/resolver"
)

// AuditRecorder receives grant mutation events. Recording is best effort;
// failures are logged and never fail the mutation itself.
type AuditRecorder interface {
	RoleEvent(ctx context.Context, ev audit.RoleEvent) error
}

// ServiceConfig carries the optional collaborators of the service.
type ServiceConfig struct {
	Cache    Cache
	CacheTTL time.Duration
	Audit    AuditRecorder
	Metrics  *observability.Metrics
	Logger   *slog.Logger
}

// Service resolves module-scoped permissions over externally owned state.
// It is stateless apart from the optional cache.
type Service struct {
	catalog *catalog.Catalog
	store   assignment.Store
	cache   Cache
	ttl     time.Duration
	audit   AuditRecorder
	metrics *observability.Metrics
	logger  *slog.Logger
	group   singleflight.Group
	clock   func() time.Time
}

// NewService constructs the façade.
func NewService(cat *catalog.Catalog, store assignment.Store, cfg ServiceConfig) *Service {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Service{
		catalog: cat,
		store:   store,
		cache:   cfg.Cache,
		ttl:     ttl,
		audit:   cfg.Audit,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
		clock:   func() time.Time { return time.Now().UTC() },
	}
}

// AssignRole grants a role to a user in a tenant/module scope. Assigning an
// already-held role is a no-op. Unknown role names fail with ErrInvalidRole.
func (s *Service) AssignRole(ctx context.Context, userID, tenantID uuid.UUID, module catalog.ModuleType, roleName string) error {
	if _, ok := s.catalog.RoleDefinition(module, roleName); !ok {
		return fmt.Errorf("%w: %q in module %q", assignment.ErrInvalidRole, roleName, module)
	}
	grant := assignment.RoleAssignment{
		UserID:     userID,
		TenantID:   tenantID,
		Module:     module,
		RoleName:   roleName,
		AssignedAt: s.clock(),
	}
	inserted, err := s.store.Assign(ctx, grant)
	if err != nil {
		return err
	}
	if inserted {
		s.invalidate(ctx, userID, tenantID, module)
		s.metrics.RoleMutation(string(module), "assign")
		s.recordEvent(ctx, audit.EventRoleAssigned, userID, tenantID, module, roleName)
	}
	return nil
}

// RevokeRole removes a grant and reports whether one existed.
func (s *Service) RevokeRole(ctx context.Context, userID, tenantID uuid.UUID, module catalog.ModuleType, roleName string) (bool, error) {
	removed, err := s.store.Revoke(ctx, assignment.Key{
		UserID:   userID,
		TenantID: tenantID,
		Module:   module,
		RoleName: roleName,
	})
	if err != nil {
		return false, err
	}
	if removed {
		s.invalidate(ctx, userID, tenantID, module)
		s.metrics.RoleMutation(string(module), "revoke")
		s.recordEvent(ctx, audit.EventRoleRevoked, userID, tenantID, module, roleName)
	}
	return removed, nil
}

// GetUserRoles returns the user's current role names in the scope.
func (s *Service) GetUserRoles(ctx context.Context, userID, tenantID uuid.UUID, module catalog.ModuleType) ([]string, error) {
	return s.store.UserRoles(ctx, userID, tenantID, module)
}

// GetUsersWithRole lists current holders of the exact role.
func (s *Service) GetUsersWithRole(ctx context.Context, tenantID uuid.UUID, module catalog.ModuleType, roleName string) ([]assignment.RoleHolder, error) {
	return s.store.UsersWithRole(ctx, tenantID, module, roleName)
}

// GetModuleRoleDefinitions returns the module's assignable roles ordered by
// priority descending.
func (s *Service) GetModuleRoleDefinitions(module catalog.ModuleType) []catalog.RoleDefinition {
	return s.catalog.RoleDefinitions(module)
}

// GetUserModulePermissions resolves the full effective permission set for a
// user in one tenant/module scope. Concurrent identical lookups are collapsed
// and the result may be served from the cache.
func (s *Service) GetUserModulePermissions(ctx context.Context, userID, tenantID uuid.UUID, module catalog.ModuleType) (resolver.EffectivePermissionSet, error) {
	key := cacheKey(tenantID, userID, module)
	if s.cache != nil {
		payload, hit, err := s.cache.Get(ctx, key)
		if err != nil && s.logger != nil {
			s.logger.Warn("permission cache get", slog.Any("error", err))
		}
		s.metrics.CacheLookup(hit)
		if hit {
			var set resolver.EffectivePermissionSet
			if err := json.Unmarshal(payload, &set); err == nil {
				return set, nil
			}
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		roles, err := s.store.UserRoles(ctx, userID, tenantID, module)
		if err != nil {
			return resolver.EffectivePermissionSet{}, err
		}
		set := resolver.Resolve(s.catalog, module, roles)
		if s.cache != nil {
			if payload, err := json.Marshal(set); err == nil {
				if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil && s.logger != nil {
					s.logger.Warn("permission cache set", slog.Any("error", err))
				}
			}
		}
		return set, nil
	})
	if err != nil {
		return resolver.EffectivePermissionSet{}, err
	}
	return v.(resolver.EffectivePermissionSet), nil
}

// HasModulePermission answers one capability query.
func (s *Service) HasModulePermission(ctx context.Context, userID, tenantID uuid.UUID, module catalog.ModuleType, action catalog.ModuleAction) (bool, error) {
	set, err := s.GetUserModulePermissions(ctx, userID, tenantID, module)
	if err != nil {
		return false, err
	}
	allowed := set.Can(action)
	s.metrics.PermissionCheck(string(module), string(action), allowed)
	return allowed, nil
}

// Module returns a client bound to one module, so call sites hold a handle
// that cannot drift to another module's action namespace.
func (s *Service) Module(module catalog.ModuleType) ModuleClient {
	return ModuleClient{service: s, module: module}
}

// ModuleClient is the per-module view of the service.
type ModuleClient struct {
	service *Service
	module  catalog.ModuleType
}

// Can answers one capability query within the bound module.
func (c ModuleClient) Can(ctx context.Context, userID, tenantID uuid.UUID, action catalog.ModuleAction) (bool, error) {
	return c.service.HasModulePermission(ctx, userID, tenantID, c.module, action)
}

// Permissions resolves the full effective set within the bound module.
func (c ModuleClient) Permissions(ctx context.Context, userID, tenantID uuid.UUID) (resolver.EffectivePermissionSet, error) {
	return c.service.GetUserModulePermissions(ctx, userID, tenantID, c.module)
}

// Assign grants a role within the bound module.
func (c ModuleClient) Assign(ctx context.Context, userID, tenantID uuid.UUID, roleName string) error {
	return c.service.AssignRole(ctx, userID, tenantID, c.module, roleName)
}

// Revoke removes a grant within the bound module.
func (c ModuleClient) Revoke(ctx context.Context, userID, tenantID uuid.UUID, roleName string) (bool, error) {
	return c.service.RevokeRole(ctx, userID, tenantID, c.module, roleName)
}

// Roles lists the bound module's role definitions.
func (c ModuleClient) Roles() []catalog.RoleDefinition {
	return c.service.GetModuleRoleDefinitions(c.module)
}

func (s *Service) invalidate(ctx context.Context, userID, tenantID uuid.UUID, module catalog.ModuleType) {
	key := cacheKey(tenantID, userID, module)
	s.group.Forget(key)
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, key); err != nil && s.logger != nil {
		s.logger.Warn("permission cache invalidate", slog.Any("error", err))
	}
}

func (s *Service) recordEvent(ctx context.Context, event string, userID, tenantID uuid.UUID, module catalog.ModuleType, roleName string) {
	if s.audit == nil {
		return
	}
	ev := audit.RoleEvent{
		Event:      event,
		UserID:     userID,
		TenantID:   tenantID,
		Module:     module,
		RoleName:   roleName,
		OccurredAt: s.clock(),
	}
	if err := s.audit.RoleEvent(ctx, ev); err != nil && s.logger != nil {
		s.logger.Warn("enqueue role event",
			slog.String("event", event),
			slog.String("role", roleName),
			slog.Any("error", err),
		)
	}
}
