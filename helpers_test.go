package goAuthClient

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/goAuthClient/jwt"
	"github.com/MrEthical07/goAuthClient/storage"
)

const (
	testEmail    = "john@example.com"
	testPassword = "secret1"
)

var testSigningKey = []byte("test-signing-key-0123456789abcdef")

// fakeClock drives both the Manager clock and its refresh timer.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

// Advance moves the clock forward and runs every timer that came due, in
// order, outside the clock lock.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

// live returns the timers that are armed and have not fired.
func (c *fakeClock) live() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// fakeService is an in-package CredentialService with scripted answers.
type fakeService struct {
	mu    sync.Mutex
	clock *fakeClock
	ttl   time.Duration
	user  *User

	loginErr    error
	registerErr error
	logoutErr   error
	refreshErr  error
	profileErr  error

	// refreshGate, when set, blocks Refresh until it is closed. Each blocked
	// call first sends on refreshEntered.
	refreshGate    chan struct{}
	refreshEntered chan struct{}

	loginCalls    int
	registerCalls int
	logoutCalls   int
	refreshCalls  int
	profileCalls  int
	changeCalls   int
	forgotCalls   int
	resetCalls    int
	issued        int
}

func newFakeService(clock *fakeClock) *fakeService {
	return &fakeService{
		clock: clock,
		ttl:   10 * time.Minute,
		user: &User{
			ID:          "user-1",
			Name:        "John Doe",
			Email:       testEmail,
			Role:        RoleCustomer,
			Permissions: []string{"orders:read", "profile:write"},
			IsActive:    true,
		},
	}
}

func (s *fakeService) authResponseLocked() *AuthResponse {
	s.issued++
	return &AuthResponse{
		User:         s.user.Clone(),
		Token:        issueTestToken(s.clock.Now(), s.ttl, s.issued),
		RefreshToken: fmt.Sprintf("refresh-%d", s.issued),
		ExpiresIn:    int64(s.ttl / time.Second),
	}
}

func (s *fakeService) Login(_ context.Context, req LoginRequest) (*AuthResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginCalls++
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	if req.Password != testPassword {
		return nil, fmt.Errorf("%w: invalid email or password", ErrCredentialRejected)
	}
	return s.authResponseLocked(), nil
}

func (s *fakeService) Register(_ context.Context, req RegisterRequest) (*AuthResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registerCalls++
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	u := s.user.Clone()
	u.Name = req.Name
	u.Email = req.Email
	s.user = u
	return s.authResponseLocked(), nil
}

func (s *fakeService) Logout(context.Context, string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoutCalls++
	return s.logoutErr
}

func (s *fakeService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	s.mu.Lock()
	gate, entered := s.refreshGate, s.refreshEntered
	s.mu.Unlock()
	if gate != nil {
		if entered != nil {
			entered <- struct{}{}
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshCalls++
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}
	resp := s.authResponseLocked()
	resp.User = nil
	return resp, nil
}

func (s *fakeService) GetProfile(context.Context, string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profileCalls++
	if s.profileErr != nil {
		return nil, s.profileErr
	}
	return s.user.Clone(), nil
}

func (s *fakeService) UpdateProfile(_ context.Context, _ string, update ProfileUpdate) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profileCalls++
	if s.profileErr != nil {
		return nil, s.profileErr
	}
	u := s.user.Clone()
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	if update.Avatar != nil {
		u.Avatar = *update.Avatar
	}
	s.user = u
	return u.Clone(), nil
}

func (s *fakeService) ChangePassword(_ context.Context, _ string, req ChangePasswordRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changeCalls++
	if req.CurrentPassword != testPassword {
		return fmt.Errorf("%w: current password is incorrect", ErrCredentialRejected)
	}
	return nil
}

func (s *fakeService) ForgotPassword(context.Context, ForgotPasswordRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forgotCalls++
	return nil
}

func (s *fakeService) ResetPassword(context.Context, ResetPasswordRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetCalls++
	return nil
}

func (s *fakeService) calls() (login, refresh, logout int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loginCalls, s.refreshCalls, s.logoutCalls
}

func (s *fakeService) set(fn func(s *fakeService)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

// issueTestToken signs an HS256 access token expiring ttl after now.
func issueTestToken(now time.Time, ttl time.Duration, seq int) string {
	jm, err := jwt.NewManager(jwt.Config{
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    testSigningKey,
		Now:           func() time.Time { return now },
	})
	if err != nil {
		panic(err)
	}
	token, err := jm.IssueWithTTL("user-1", fmt.Sprintf("sid-%d", seq), string(RoleCustomer), nil, ttl)
	if err != nil {
		panic(err)
	}
	return token
}

type harness struct {
	t         *testing.T
	clock     *fakeClock
	svc       *fakeService
	durable   *storage.Memory
	ephemeral *storage.Memory
	probe     *ToggleProbe
	notes     *ChannelNotifier
	audit     *ChannelSink
	manager   *Manager
	cfg       Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clock := newFakeClock()
	h := &harness{
		t:         t,
		clock:     clock,
		svc:       newFakeService(clock),
		durable:   storage.NewMemory(),
		ephemeral: storage.NewMemory(),
		probe:     NewToggleProbe(true),
		cfg:       DefaultConfig(),
	}
	h.cfg.Metrics.Enabled = true
	h.manager = h.build()
	return h
}

// build returns a new Manager over the harness areas, as after a restart.
func (h *harness) build() *Manager {
	h.t.Helper()
	h.notes = NewChannelNotifier(64)
	h.audit = NewChannelSink(64)
	m, err := New().
		WithConfig(h.cfg).
		WithCredentialService(h.svc).
		WithDurableArea(h.durable).
		WithEphemeralArea(h.ephemeral).
		WithNetworkProbe(h.probe).
		WithNotifier(h.notes).
		WithAuditSink(h.audit).
		WithClock(h.clock.Now).
		WithAfterFunc(h.clock.AfterFunc).
		Build()
	if err != nil {
		h.t.Fatalf("Build failed: %v", err)
	}
	h.t.Cleanup(m.Close)
	return m
}

// restart discards the ephemeral area and builds a fresh Manager, like a full
// application restart.
func (h *harness) restart() *Manager {
	h.t.Helper()
	h.manager.Close()
	h.ephemeral = storage.NewMemory()
	h.manager = h.build()
	return h.manager
}

func (h *harness) initialize() {
	h.t.Helper()
	if err := h.manager.Initialize(context.Background()); err != nil {
		h.t.Fatalf("Initialize failed: %v", err)
	}
}

func (h *harness) login(rememberMe bool) {
	h.t.Helper()
	err := h.manager.Login(context.Background(), LoginRequest{
		Email:      testEmail,
		Password:   testPassword,
		RememberMe: rememberMe,
	})
	if err != nil {
		h.t.Fatalf("Login failed: %v", err)
	}
}

func (h *harness) failLogin() error {
	h.t.Helper()
	return h.manager.Login(context.Background(), LoginRequest{
		Email:    testEmail,
		Password: "wrong-password",
	})
}

// expectNotification waits for a notification with the given message.
func (h *harness) expectNotification(message string) Notification {
	h.t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case n := <-h.notes.Notifications():
			if n.Message == message {
				return n
			}
		case <-timeout:
			h.t.Fatalf("notification %q not delivered", message)
			return Notification{}
		}
	}
}

func (h *harness) expectAudit(eventType string, success bool) AuditEvent {
	h.t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case e := <-h.audit.Events():
			if e.EventType == eventType && e.Success == success {
				return e
			}
		case <-timeout:
			h.t.Fatalf("audit event %s success=%v not delivered", eventType, success)
			return AuditEvent{}
		}
	}
}

func (h *harness) storedIn(area *storage.Memory) bool {
	h.t.Helper()
	ctx := context.Background()
	for _, key := range []string{"auth_token", "refresh_token", "user"} {
		if _, ok, err := area.Get(ctx, key); err != nil || !ok {
			return false
		}
	}
	return true
}

func assertTriple(t *testing.T, s State) {
	t.Helper()
	full := s.User != nil && s.AccessToken != "" && s.RefreshToken != ""
	if s.IsAuthenticated != full {
		t.Fatalf("IsAuthenticated=%v but triple complete=%v: %+v", s.IsAuthenticated, full, s)
	}
}

type failingArea struct {
	err error
}

func (a failingArea) Get(context.Context, string) (string, bool, error) { return "", false, a.err }
func (a failingArea) Set(context.Context, string, string) error         { return a.err }
func (a failingArea) SetMany(context.Context, map[string]string) error  { return a.err }
func (a failingArea) Remove(context.Context, ...string) error           { return a.err }

var errAreaDown = errors.New("area down")
