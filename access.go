package goAuthClient

import "slices"

// AccessRequirement describes what a guarded view needs. An empty Roles list
// admits any role; every listed permission must be held.
type AccessRequirement struct {
	Roles       []Role
	Permissions []string
}

// GuardDecision is the outcome of [Manager.Guard].
type GuardDecision uint8

const (
	// GuardPending means the session is still being restored or a sign-in is
	// in flight; callers show a loading state.
	GuardPending GuardDecision = iota
	// GuardUnauthenticated means no session; callers redirect to sign-in.
	GuardUnauthenticated
	// GuardForbidden means the session lacks a required role or permission.
	GuardForbidden
	// GuardAllowed means the view may be shown.
	GuardAllowed
)

func (d GuardDecision) String() string {
	switch d {
	case GuardPending:
		return "pending"
	case GuardUnauthenticated:
		return "unauthenticated"
	case GuardForbidden:
		return "forbidden"
	case GuardAllowed:
		return "allowed"
	default:
		return "unknown"
	}
}

// HasPermission reports whether the signed-in user holds permission.
func (m *Manager) HasPermission(permission string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return userHasPermission(m.state.User, permission)
}

// HasRole reports whether the signed-in user has one of roles.
func (m *Manager) HasRole(roles ...Role) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return userHasRole(m.state.User, roles)
}

// CanAccess reports whether the current session satisfies req.
func (m *Manager) CanAccess(req AccessRequirement) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.IsAuthenticated && satisfies(m.state.User, req)
}

// Guard evaluates req against the current session.
func (m *Manager) Guard(req AccessRequirement) GuardDecision {
	m.mu.Lock()
	defer m.mu.Unlock()
	return guard(m.state, req)
}

func guard(s State, req AccessRequirement) GuardDecision {
	switch {
	case !s.IsInitialized || s.IsLoading:
		return GuardPending
	case !s.IsAuthenticated:
		return GuardUnauthenticated
	case !satisfies(s.User, req):
		return GuardForbidden
	default:
		return GuardAllowed
	}
}

func satisfies(u *User, req AccessRequirement) bool {
	if u == nil {
		return false
	}
	if len(req.Roles) > 0 && !userHasRole(u, req.Roles) {
		return false
	}
	for _, p := range req.Permissions {
		if !userHasPermission(u, p) {
			return false
		}
	}
	return true
}

func userHasPermission(u *User, permission string) bool {
	return u != nil && slices.Contains(u.Permissions, permission)
}

func userHasRole(u *User, roles []Role) bool {
	return u != nil && slices.Contains(roles, u.Role)
}
