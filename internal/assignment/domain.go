package assignment

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/certa-platform/certa-permissions/internal/catalog"
)

var (
	// ErrInvalidRole indicates an assignment referenced a role the module
	// catalog does not define.
	ErrInvalidRole = errors.New("assignment: role not defined for module")
)

// RoleAssignment is one grant of a role to a user within a tenant and module.
type RoleAssignment struct {
	UserID     uuid.UUID
	TenantID   uuid.UUID
	Module     catalog.ModuleType
	RoleName   string
	AssignedAt time.Time
}

// Key returns the four-part identity of the grant.
func (a RoleAssignment) Key() Key {
	return Key{UserID: a.UserID, TenantID: a.TenantID, Module: a.Module, RoleName: a.RoleName}
}

// Key uniquely identifies a grant. At most one assignment exists per key.
type Key struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Module   catalog.ModuleType
	RoleName string
}

// RoleHolder is one current holder of a role, for membership listings.
type RoleHolder struct {
	UserID     uuid.UUID
	AssignedAt time.Time
}
