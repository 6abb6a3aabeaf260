package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/certa-platform/certa-permissions/internal/catalog"
)

// Role event kinds.
const (
	EventRoleAssigned = "role_assigned"
	EventRoleRevoked  = "role_revoked"
)

// RoleEvent describes one grant mutation as emitted by the permission service.
type RoleEvent struct {
	Event      string             `json:"event"`
	UserID     uuid.UUID          `json:"user_id"`
	TenantID   uuid.UUID          `json:"tenant_id"`
	Module     catalog.ModuleType `json:"module"`
	RoleName   string             `json:"role_name"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// Entry is a persisted role event.
type Entry struct {
	ID         int64              `json:"id"`
	Event      string             `json:"event"`
	UserID     uuid.UUID          `json:"user_id"`
	TenantID   uuid.UUID          `json:"tenant_id"`
	Module     catalog.ModuleType `json:"module"`
	RoleName   string             `json:"role_name"`
	OccurredAt time.Time          `json:"occurred_at"`
	RecordedAt time.Time          `json:"recorded_at"`
}

// TimelineFilters narrows and pages the audit timeline.
type TimelineFilters struct {
	TenantID *uuid.UUID
	UserID   *uuid.UUID
	Module   catalog.ModuleType
	Page     int
	PageSize int
}

// PagingInfo reports the window returned by a timeline query.
type PagingInfo struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasNext  bool `json:"has_next"`
}

// Result bundles timeline rows with paging information.
type Result struct {
	Entries []Entry    `json:"entries"`
	Paging  PagingInfo `json:"paging"`
}
