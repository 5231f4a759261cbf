package goAuthClient

import (
	"testing"
	"time"
)

func sampleUser() *User {
	return &User{ID: "u1", Name: "Jane", Email: "jane@example.com", Role: RoleSeller, Permissions: []string{"products:write"}}
}

func TestReduceTransitions(t *testing.T) {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	authed := State{
		User:            sampleUser(),
		AccessToken:     "a",
		RefreshToken:    "r",
		IsAuthenticated: true,
		IsInitialized:   true,
		SessionID:       "sid",
	}

	tests := []struct {
		name  string
		start State
		event Event
		check func(t *testing.T, s State)
	}{
		{
			name:  "initialize start sets loading",
			event: Event{Kind: EventInitializeStart},
			check: func(t *testing.T, s State) {
				if !s.IsLoading || s.IsInitialized {
					t.Fatalf("unexpected state %+v", s)
				}
			},
		},
		{
			name:  "initialize success adopts triple",
			start: State{IsLoading: true},
			event: Event{Kind: EventInitializeSuccess, User: sampleUser(), AccessToken: "a", RefreshToken: "r", SessionID: "sid"},
			check: func(t *testing.T, s State) {
				if !s.IsAuthenticated || s.IsLoading || !s.IsInitialized || s.SessionID != "sid" {
					t.Fatalf("unexpected state %+v", s)
				}
			},
		},
		{
			name:  "initialize failure clears",
			start: State{IsLoading: true, AccessToken: "stale"},
			event: Event{Kind: EventInitializeFailure},
			check: func(t *testing.T, s State) {
				if s.IsAuthenticated || s.IsLoading || !s.IsInitialized || s.AccessToken != "" {
					t.Fatalf("unexpected state %+v", s)
				}
			},
		},
		{
			name:  "login success resets attempts",
			start: State{IsInitialized: true, IsLoading: true, LoginAttempts: 4, LastLoginAttempt: at},
			event: Event{Kind: EventLoginSuccess, User: sampleUser(), AccessToken: "a", RefreshToken: "r", SessionID: "sid"},
			check: func(t *testing.T, s State) {
				if !s.IsAuthenticated || s.LoginAttempts != 0 || !s.LastLoginAttempt.IsZero() || s.IsLoading {
					t.Fatalf("unexpected state %+v", s)
				}
			},
		},
		{
			name:  "login failure counts and clears",
			start: authed,
			event: Event{Kind: EventLoginFailure, At: at},
			check: func(t *testing.T, s State) {
				if s.IsAuthenticated || s.User != nil || s.LoginAttempts != 1 || !s.LastLoginAttempt.Equal(at) {
					t.Fatalf("unexpected state %+v", s)
				}
			},
		},
		{
			name:  "logout resets to initialized",
			start: State{User: sampleUser(), AccessToken: "a", RefreshToken: "r", IsAuthenticated: true, IsInitialized: true, LoginAttempts: 3},
			event: Event{Kind: EventLogout},
			check: func(t *testing.T, s State) {
				if s != (State{IsInitialized: true}) {
					t.Fatalf("unexpected state %+v", s)
				}
			},
		},
		{
			name:  "refresh success replaces tokens only",
			start: authed,
			event: Event{Kind: EventTokenRefreshSuccess, AccessToken: "a2", RefreshToken: "r2"},
			check: func(t *testing.T, s State) {
				if s.AccessToken != "a2" || s.RefreshToken != "r2" || s.User == nil || s.SessionID != "sid" || !s.IsAuthenticated {
					t.Fatalf("unexpected state %+v", s)
				}
			},
		},
		{
			name:  "refresh failure resets",
			start: authed,
			event: Event{Kind: EventTokenRefreshFailure},
			check: func(t *testing.T, s State) {
				if s != (State{IsInitialized: true}) {
					t.Fatalf("unexpected state %+v", s)
				}
			},
		},
		{
			name:  "set user replaces user only",
			start: authed,
			event: Event{Kind: EventSetUser, User: &User{ID: "u1", Name: "Janet"}},
			check: func(t *testing.T, s State) {
				if s.User.Name != "Janet" || s.AccessToken != "a" || !s.IsAuthenticated {
					t.Fatalf("unexpected state %+v", s)
				}
			},
		},
		{
			name:  "reset login attempts",
			start: State{IsInitialized: true, LoginAttempts: 5, LastLoginAttempt: at},
			event: Event{Kind: EventResetLoginAttempts},
			check: func(t *testing.T, s State) {
				if s.LoginAttempts != 0 || !s.LastLoginAttempt.IsZero() {
					t.Fatalf("unexpected state %+v", s)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := reduce(tc.start, tc.event)
			assertTriple(t, got)
			tc.check(t, got)
		})
	}
}

func TestReduceDoesNotAliasUser(t *testing.T) {
	u := sampleUser()
	s := reduce(State{}, Event{Kind: EventLoginSuccess, User: u, AccessToken: "a", RefreshToken: "r"})
	u.Permissions[0] = "mutated"
	if s.User.Permissions[0] != "products:write" {
		t.Fatalf("state shares user slice with event payload")
	}
}

func TestReduceInitializedIsMonotonic(t *testing.T) {
	kinds := []EventKind{
		EventInitializeStart, EventInitializeSuccess, EventInitializeFailure,
		EventLoginStart, EventLoginSuccess, EventLoginFailure, EventLogout,
		EventTokenRefreshSuccess, EventTokenRefreshFailure, EventSetUser,
		EventResetLoginAttempts,
	}
	s := reduce(State{}, Event{Kind: EventInitializeFailure})
	for i := 0; i < 3; i++ {
		for _, k := range kinds {
			s = reduce(s, Event{Kind: k, User: sampleUser(), AccessToken: "a", RefreshToken: "r"})
			if !s.IsInitialized {
				t.Fatalf("IsInitialized reverted after %s", k)
			}
			assertTriple(t, s)
		}
	}
}

func TestEventKindString(t *testing.T) {
	if got := EventTokenRefreshFailure.String(); got != "token_refresh_failure" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := EventKind(0).String(); got != "unknown" {
		t.Fatalf("unexpected name %q", got)
	}
}
