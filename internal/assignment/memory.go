package assignment

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/certa-platform/certa-permissions/internal/catalog"
)

// MemoryStore keeps grants in a mutex-guarded map keyed by the four-part
// tuple. It mirrors the Postgres repository's semantics and backs tests and
// local development.
type MemoryStore struct {
	mu     sync.RWMutex
	grants map[Key]RoleAssignment
	clock  func() time.Time
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		grants: make(map[Key]RoleAssignment),
		clock:  func() time.Time { return time.Now().UTC() },
	}
}

// Assign records the grant unless an identical one already exists.
func (s *MemoryStore) Assign(ctx context.Context, grant RoleAssignment) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := grant.Key()
	if _, ok := s.grants[key]; ok {
		return false, nil
	}
	if grant.AssignedAt.IsZero() {
		grant.AssignedAt = s.clock()
	}
	s.grants[key] = grant
	return true, nil
}

// Revoke removes the grant if present.
func (s *MemoryStore) Revoke(ctx context.Context, key Key) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.grants[key]; !ok {
		return false, nil
	}
	delete(s.grants, key)
	return true, nil
}

// UserRoles returns the user's role names in the tenant/module scope.
func (s *MemoryStore) UserRoles(ctx context.Context, userID, tenantID uuid.UUID, module catalog.ModuleType) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	roles := []string{}
	for key := range s.grants {
		if key.UserID == userID && key.TenantID == tenantID && key.Module == module {
			roles = append(roles, key.RoleName)
		}
	}
	sort.Strings(roles)
	return roles, nil
}

// UsersWithRole lists current holders of the exact role.
func (s *MemoryStore) UsersWithRole(ctx context.Context, tenantID uuid.UUID, module catalog.ModuleType, roleName string) ([]RoleHolder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	holders := []RoleHolder{}
	for key, grant := range s.grants {
		if key.TenantID == tenantID && key.Module == module && key.RoleName == roleName {
			holders = append(holders, RoleHolder{UserID: key.UserID, AssignedAt: grant.AssignedAt})
		}
	}
	sort.Slice(holders, func(i, j int) bool {
		if !holders[i].AssignedAt.Equal(holders[j].AssignedAt) {
			return holders[i].AssignedAt.Before(holders[j].AssignedAt)
		}
		return holders[i].UserID.String() < holders[j].UserID.String()
	})
	return holders, nil
}
