package permission

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/certa-platform/certa-permissions/internal/catalog"
	"github.com/certa-platform/certa-permissions/internal/platform/httpx"
)

// Handler exposes the permission service over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers the permission routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/tenants/{tenantID}/modules/{module}", func(r chi.Router) {
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Put("/roles/{role}", h.assignRole)
			r.Delete("/roles/{role}", h.revokeRole)
			r.Get("/roles", h.userRoles)
			r.Get("/permissions", h.userPermissions)
			r.Get("/permissions/{action}", h.checkAction)
		})
		r.Get("/roles/{role}/holders", h.roleHolders)
	})
	r.Get("/modules/{module}/roles", h.moduleRoles)
	r.Post("/permissions/check", h.batchCheck)
}

type scopeParams struct {
	userID   uuid.UUID
	tenantID uuid.UUID
	module   catalog.ModuleType
}

func (h *Handler) scope(w http.ResponseWriter, r *http.Request, withUser bool) (scopeParams, bool) {
	var params scopeParams
	tenantID, err := uuid.Parse(chi.URLParam(r, "tenantID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Tenant", "tenantID must be a UUID")
		return params, false
	}
	params.tenantID = tenantID
	params.module = catalog.ModuleType(chi.URLParam(r, "module"))
	if withUser {
		userID, err := uuid.Parse(chi.URLParam(r, "userID"))
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid User", "userID must be a UUID")
			return params, false
		}
		params.userID = userID
	}
	return params, true
}

func (h *Handler) assignRole(w http.ResponseWriter, r *http.Request) {
	params, ok := h.scope(w, r, true)
	if !ok {
		return
	}
	role := chi.URLParam(r, "role")
	if err := h.service.AssignRole(r.Context(), params.userID, params.tenantID, params.module, role); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) revokeRole(w http.ResponseWriter, r *http.Request) {
	params, ok := h.scope(w, r, true)
	if !ok {
		return
	}
	role := chi.URLParam(r, "role")
	removed, err := h.service.RevokeRole(r.Context(), params.userID, params.tenantID, params.module, role)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

func (h *Handler) userRoles(w http.ResponseWriter, r *http.Request) {
	params, ok := h.scope(w, r, true)
	if !ok {
		return
	}
	roles, err := h.service.GetUserRoles(r.Context(), params.userID, params.tenantID, params.module)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string][]string{"roles": roles})
}

func (h *Handler) userPermissions(w http.ResponseWriter, r *http.Request) {
	params, ok := h.scope(w, r, true)
	if !ok {
		return
	}
	set, err := h.service.GetUserModulePermissions(r.Context(), params.userID, params.tenantID, params.module)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, set)
}

func (h *Handler) checkAction(w http.ResponseWriter, r *http.Request) {
	params, ok := h.scope(w, r, true)
	if !ok {
		return
	}
	action := catalog.ModuleAction(chi.URLParam(r, "action"))
	allowed, err := h.service.HasModulePermission(r.Context(), params.userID, params.tenantID, params.module, action)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"allowed": allowed})
}

type roleHolderResponse struct {
	UserID     uuid.UUID `json:"user_id"`
	AssignedAt time.Time `json:"assigned_at"`
}

func (h *Handler) roleHolders(w http.ResponseWriter, r *http.Request) {
	params, ok := h.scope(w, r, false)
	if !ok {
		return
	}
	role := chi.URLParam(r, "role")
	holders, err := h.service.GetUsersWithRole(r.Context(), params.tenantID, params.module, role)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]roleHolderResponse, 0, len(holders))
	for _, holder := range holders {
		out = append(out, roleHolderResponse{UserID: holder.UserID, AssignedAt: holder.AssignedAt})
	}
	httpx.JSON(w, http.StatusOK, map[string][]roleHolderResponse{"holders": out})
}

type roleDefinitionResponse struct {
	Name           string                 `json:"name"`
	Priority       int                    `json:"priority"`
	GrantedActions []catalog.ModuleAction `json:"granted_actions"`
}

func (h *Handler) moduleRoles(w http.ResponseWriter, r *http.Request) {
	module := catalog.ModuleType(chi.URLParam(r, "module"))
	defs := h.service.GetModuleRoleDefinitions(module)
	out := make([]roleDefinitionResponse, 0, len(defs))
	for _, def := range defs {
		actions := def.GrantedActions
		if actions == nil {
			actions = []catalog.ModuleAction{}
		}
		out = append(out, roleDefinitionResponse{
			Name:           def.Name,
			Priority:       def.Priority,
			GrantedActions: actions,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string][]roleDefinitionResponse{"roles": out})
}

type permissionCheck struct {
	UserID   string `json:"user_id" validate:"required,uuid"`
	TenantID string `json:"tenant_id" validate:"required,uuid"`
	Module   string `json:"module" validate:"required"`
	Action   string `json:"action" validate:"required"`
}

type batchCheckRequest struct {
	Checks []permissionCheck `json:"checks" validate:"required,min=1,max=50,dive"`
}

type permissionCheckResult struct {
	permissionCheck
	Allowed bool `json:"allowed"`
}

func (h *Handler) batchCheck(w http.ResponseWriter, r *http.Request) {
	var req batchCheckRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	results := make([]permissionCheckResult, 0, len(req.Checks))
	for _, check := range req.Checks {
		userID, _ := uuid.Parse(check.UserID)
		tenantID, _ := uuid.Parse(check.TenantID)
		allowed, err := h.service.HasModulePermission(r.Context(), userID, tenantID,
			catalog.ModuleType(check.Module), catalog.ModuleAction(check.Action))
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		results = append(results, permissionCheckResult{permissionCheck: check, Allowed: allowed})
	}
	httpx.JSON(w, http.StatusOK, map[string][]permissionCheckResult{"results": results})
}
