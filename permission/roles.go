package permission

import (
	"errors"
	"sync"
)

// RoleSet maps role names to the permission mask they grant.
//
// RoleSet instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RoleSet struct {
	registry *Registry

	mu     sync.RWMutex
	roles  map[string]Mask
	frozen bool
}

// NewRoleSet returns an empty RoleSet resolving names through registry.
func NewRoleSet(registry *Registry) *RoleSet {
	return &RoleSet{
		registry: registry,
		roles:    make(map[string]Mask),
	}
}

// Define registers role with the named permissions. Every permission must
// already be registered.
func (rs *RoleSet) Define(role string, permissions ...string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.frozen {
		return errors.New("role set frozen")
	}
	if role == "" {
		return errors.New("role name empty")
	}
	if _, exists := rs.roles[role]; exists {
		return errors.New("role already defined")
	}

	var mask Mask
	for _, perm := range permissions {
		bit, ok := rs.registry.Bit(perm)
		if !ok {
			return errors.New("permission not registered: " + perm)
		}
		mask.Set(bit)
	}

	rs.roles[role] = mask
	return nil
}

// Mask returns the mask granted to role.
func (rs *RoleSet) Mask(role string) (Mask, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	mask, ok := rs.roles[role]
	return mask, ok
}

// Permissions returns the permission names granted to role, in registration
// order, or nil for an unknown role.
func (rs *RoleSet) Permissions(role string) []string {
	mask, ok := rs.Mask(role)
	if !ok {
		return nil
	}
	return rs.registry.Names(mask)
}

// Allows reports whether role grants permission.
func (rs *RoleSet) Allows(role, permission string) bool {
	mask, ok := rs.Mask(role)
	if !ok {
		return false
	}
	bit, ok := rs.registry.Bit(permission)
	return ok && mask.Has(bit)
}

// Freeze prevents further definitions.
func (rs *RoleSet) Freeze() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.frozen = true
}

// Count returns the number of defined roles.
func (rs *RoleSet) Count() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.roles)
}
