package goAuthClient

import "time"

// State is a snapshot of the session.
//
// IsAuthenticated is true exactly when User, AccessToken and RefreshToken are
// all set. IsInitialized never reverts to false once set.
type State struct {
	User             *User
	AccessToken      string
	RefreshToken     string
	IsLoading        bool
	IsAuthenticated  bool
	IsInitialized    bool
	LoginAttempts    int
	LastLoginAttempt time.Time

	// SessionID correlates audit events for one authenticated session. It is
	// empty while unauthenticated.
	SessionID string
}

func (s State) clone() State {
	s.User = s.User.Clone()
	return s
}

// EventKind identifies a state transition.
type EventKind uint8

const (
	EventInitializeStart EventKind = iota + 1
	EventInitializeSuccess
	EventInitializeFailure
	EventLoginStart
	EventLoginSuccess
	EventLoginFailure
	EventLogout
	EventTokenRefreshSuccess
	EventTokenRefreshFailure
	EventSetUser
	EventResetLoginAttempts
)

var eventKindNames = [...]string{
	EventInitializeStart:     "initialize_start",
	EventInitializeSuccess:   "initialize_success",
	EventInitializeFailure:   "initialize_failure",
	EventLoginStart:          "login_start",
	EventLoginSuccess:        "login_success",
	EventLoginFailure:        "login_failure",
	EventLogout:              "logout",
	EventTokenRefreshSuccess: "token_refresh_success",
	EventTokenRefreshFailure: "token_refresh_failure",
	EventSetUser:             "set_user",
	EventResetLoginAttempts:  "reset_login_attempts",
}

func (k EventKind) String() string {
	if int(k) < len(eventKindNames) && eventKindNames[k] != "" {
		return eventKindNames[k]
	}
	return "unknown"
}

// Event is one transition with its payload. Only the fields relevant to Kind
// are read.
type Event struct {
	Kind         EventKind
	User         *User
	AccessToken  string
	RefreshToken string
	SessionID    string
	At           time.Time
}

// reduce applies e to s and returns the next state. It never mutates s.
func reduce(s State, e Event) State {
	switch e.Kind {
	case EventInitializeStart, EventLoginStart:
		s.IsLoading = true

	case EventInitializeSuccess:
		s = adopt(s, e)
		s.IsLoading = false
		s.IsInitialized = true

	case EventInitializeFailure:
		s = clearSession(s)
		s.IsLoading = false
		s.IsInitialized = true

	case EventLoginSuccess:
		s = adopt(s, e)
		s.IsLoading = false
		s.LoginAttempts = 0
		s.LastLoginAttempt = time.Time{}

	case EventLoginFailure:
		s = clearSession(s)
		s.IsLoading = false
		s.LoginAttempts++
		s.LastLoginAttempt = e.At

	case EventLogout, EventTokenRefreshFailure:
		s = State{IsInitialized: true}

	case EventTokenRefreshSuccess:
		s.AccessToken = e.AccessToken
		s.RefreshToken = e.RefreshToken
		s.IsAuthenticated = s.User != nil && s.AccessToken != "" && s.RefreshToken != ""

	case EventSetUser:
		s.User = e.User.Clone()
		s.IsAuthenticated = s.User != nil && s.AccessToken != "" && s.RefreshToken != ""

	case EventResetLoginAttempts:
		s.LoginAttempts = 0
		s.LastLoginAttempt = time.Time{}
	}

	return s
}

func adopt(s State, e Event) State {
	s.User = e.User.Clone()
	s.AccessToken = e.AccessToken
	s.RefreshToken = e.RefreshToken
	s.IsAuthenticated = s.User != nil && s.AccessToken != "" && s.RefreshToken != ""
	if s.IsAuthenticated {
		s.SessionID = e.SessionID
	} else {
		s.SessionID = ""
	}
	return s
}

func clearSession(s State) State {
	s.User = nil
	s.AccessToken = ""
	s.RefreshToken = ""
	s.IsAuthenticated = false
	s.SessionID = ""
	return s
}
