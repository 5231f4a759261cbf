package memory

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/jwt"
	"github.com/MrEthical07/goAuthClient/password"
	"github.com/MrEthical07/goAuthClient/permission"
)

var testKey = []byte("memory-backend-test-key-0123456789")

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func fastPasswords() password.Config {
	cfg := password.DefaultConfig()
	cfg.Memory = 8 * 1024
	cfg.Time = 1
	return cfg
}

func newTestService(t *testing.T) (*Service, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	cfg := DefaultConfig(testKey)
	cfg.Password = fastPasswords()
	cfg.Now = clock.Now
	s, err := NewDemo(cfg)
	if err != nil {
		t.Fatalf("NewDemo: %v", err)
	}
	return s, clock
}

func login(t *testing.T, s *Service, email, pass string) *goAuthClient.AuthResponse {
	t.Helper()
	resp, err := s.Login(context.Background(), goAuthClient.LoginRequest{Email: email, Password: pass})
	if err != nil {
		t.Fatalf("Login(%s): %v", email, err)
	}
	return resp
}

func TestDemoAccountsCarryRolePermissions(t *testing.T) {
	s, _ := newTestService(t)
	roles := permission.Storefront()

	for _, a := range DemoAccounts {
		resp := login(t, s, a.Email, a.Password)
		if resp.User.Role != a.Role {
			t.Fatalf("%s: role %q, want %q", a.Email, resp.User.Role, a.Role)
		}
		if !slices.Equal(resp.User.Permissions, roles.Permissions(string(a.Role))) {
			t.Fatalf("%s: permissions %v", a.Email, resp.User.Permissions)
		}
		if resp.ExpiresIn != int64((15 * time.Minute).Seconds()) {
			t.Fatalf("unexpected ExpiresIn %d", resp.ExpiresIn)
		}
		if resp.User.LastLoginAt == nil {
			t.Fatalf("expected LastLoginAt set")
		}
	}
}

func TestAccessTokenIsSignedAndDecodable(t *testing.T) {
	s, clock := newTestService(t)
	resp := login(t, s, "seller@example.com", "seller123")

	claims, ok := jwt.Decode(resp.Token)
	if !ok || claims.Subject() != resp.User.ID {
		t.Fatalf("expected decodable token with subject, got %v", claims)
	}
	exp, ok := claims.ExpiresAt()
	if !ok || !exp.Equal(clock.Now().Add(15*time.Minute).Truncate(time.Second)) {
		t.Fatalf("unexpected expiry %v", exp)
	}

	verifier, err := jwt.NewManager(jwt.Config{SigningMethod: jwt.MethodHS256, PrivateKey: testKey, Now: clock.Now})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := verifier.VerifySignature(resp.Token); err != nil {
		t.Fatalf("signature check failed: %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	cases := []goAuthClient.LoginRequest{
		{Email: "customer@example.com", Password: "wrong-one"},
		{Email: "nobody@example.com", Password: "customer123"},
	}
	for _, req := range cases {
		if _, err := s.Login(ctx, req); !errors.Is(err, goAuthClient.ErrCredentialRejected) {
			t.Fatalf("Login(%s) = %v, want ErrCredentialRejected", req.Email, err)
		}
	}

	s.SetActive("customer@example.com", false)
	if _, err := s.Login(ctx, goAuthClient.LoginRequest{Email: "customer@example.com", Password: "customer123"}); !errors.Is(err, goAuthClient.ErrCredentialRejected) {
		t.Fatalf("disabled account must be rejected, got %v", err)
	}
}

func TestLoginEmailIsCaseInsensitive(t *testing.T) {
	s, _ := newTestService(t)
	login(t, s, "  Admin@Example.com", "admin123")
}

func TestRefreshRotatesToken(t *testing.T) {
	s, clock := newTestService(t)
	ctx := context.Background()
	first := login(t, s, "customer@example.com", "customer123")

	clock.Advance(time.Minute)
	second, err := s.Refresh(ctx, first.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if second.RefreshToken == first.RefreshToken || second.Token == first.Token {
		t.Fatalf("expected rotated tokens")
	}
	if second.User == nil || second.User.ID != first.User.ID {
		t.Fatalf("refresh must return the same user")
	}

	third, err := s.Refresh(ctx, second.RefreshToken)
	if err != nil {
		t.Fatalf("second Refresh: %v", err)
	}
	if third.RefreshToken == second.RefreshToken {
		t.Fatalf("expected another rotation")
	}
}

func TestRefreshReuseRevokesSession(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	first := login(t, s, "customer@example.com", "customer123")

	second, err := s.Refresh(ctx, first.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if _, err := s.Refresh(ctx, first.RefreshToken); !errors.Is(err, goAuthClient.ErrCredentialRejected) {
		t.Fatalf("reused token must be rejected, got %v", err)
	}
	if _, err := s.Refresh(ctx, second.RefreshToken); !errors.Is(err, goAuthClient.ErrCredentialRejected) {
		t.Fatalf("reuse must revoke the whole session, got %v", err)
	}
	if s.SessionCount() != 0 {
		t.Fatalf("expected no live sessions, got %d", s.SessionCount())
	}
}

func TestRefreshExpires(t *testing.T) {
	s, clock := newTestService(t)
	resp := login(t, s, "customer@example.com", "customer123")

	clock.Advance(7*24*time.Hour + time.Second)
	if _, err := s.Refresh(context.Background(), resp.RefreshToken); !errors.Is(err, goAuthClient.ErrCredentialRejected) {
		t.Fatalf("expected expired refresh rejected, got %v", err)
	}
	if _, err := s.Refresh(context.Background(), "garbage"); !errors.Is(err, goAuthClient.ErrCredentialRejected) {
		t.Fatalf("expected malformed refresh rejected, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	resp := login(t, s, "customer@example.com", "customer123")

	if err := s.Logout(ctx, resp.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := s.GetProfile(ctx, resp.Token); !errors.Is(err, goAuthClient.ErrCredentialRejected) {
		t.Fatalf("profile after logout must be rejected, got %v", err)
	}
	if _, err := s.Refresh(ctx, resp.RefreshToken); !errors.Is(err, goAuthClient.ErrCredentialRejected) {
		t.Fatalf("refresh after logout must be rejected, got %v", err)
	}
	if err := s.Logout(ctx, resp.Token); err != nil {
		t.Fatalf("second Logout must be a no-op, got %v", err)
	}
}

func TestExpiredAccessTokenRejected(t *testing.T) {
	s, clock := newTestService(t)
	resp := login(t, s, "customer@example.com", "customer123")

	clock.Advance(16 * time.Minute)
	if _, err := s.GetProfile(context.Background(), resp.Token); !errors.Is(err, goAuthClient.ErrCredentialRejected) {
		t.Fatalf("expected expired access token rejected, got %v", err)
	}
}

func TestRegisterCreatesCustomer(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	resp, err := s.Register(ctx, goAuthClient.RegisterRequest{Name: "Jo", Email: "jo@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if resp.User.Role != goAuthClient.RoleCustomer || resp.RefreshToken == "" {
		t.Fatalf("unexpected registration response %+v", resp.User)
	}

	_, err = s.Register(ctx, goAuthClient.RegisterRequest{Name: "Jo", Email: "JO@example.com", Password: "secret1"})
	if !errors.Is(err, goAuthClient.ErrCredentialRejected) {
		t.Fatalf("duplicate email must be rejected, got %v", err)
	}
	_, err = s.Register(ctx, goAuthClient.RegisterRequest{Name: "Al", Email: "al@example.com", Password: "secret1", PasswordConfirmation: "secret2"})
	if !errors.Is(err, goAuthClient.ErrCredentialRejected) {
		t.Fatalf("mismatched confirmation must be rejected, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	resp := login(t, s, "customer@example.com", "customer123")

	name, email := "Casey C.", "casey@example.com"
	user, err := s.UpdateProfile(ctx, resp.Token, goAuthClient.ProfileUpdate{Name: &name, Email: &email})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if user.Name != name || user.Email != email || user.IsEmailVerified {
		t.Fatalf("unexpected user %+v", user)
	}
	login(t, s, email, "customer123")

	taken := "admin@example.com"
	if _, err := s.UpdateProfile(ctx, resp.Token, goAuthClient.ProfileUpdate{Email: &taken}); !errors.Is(err, goAuthClient.ErrCredentialRejected) {
		t.Fatalf("taken email must be rejected, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	resp := login(t, s, "customer@example.com", "customer123")

	err := s.ChangePassword(ctx, resp.Token, goAuthClient.ChangePasswordRequest{CurrentPassword: "nope-nope", NewPassword: "another1"})
	if !errors.Is(err, goAuthClient.ErrCredentialRejected) {
		t.Fatalf("wrong current password must be rejected, got %v", err)
	}
	if err := s.ChangePassword(ctx, resp.Token, goAuthClient.ChangePasswordRequest{CurrentPassword: "customer123", NewPassword: "another1"}); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	login(t, s, "customer@example.com", "another1")
}

func TestPasswordResetFlow(t *testing.T) {
	clock := &testClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	var delivered string
	cfg := DefaultConfig(testKey)
	cfg.Password = fastPasswords()
	cfg.Now = clock.Now
	cfg.ResetDelivery = func(_, token string) { delivered = token }
	s, err := NewDemo(cfg)
	if err != nil {
		t.Fatalf("NewDemo: %v", err)
	}
	ctx := context.Background()
	session := login(t, s, "seller@example.com", "seller123")

	if err := s.ForgotPassword(ctx, goAuthClient.ForgotPasswordRequest{Email: "ghost@example.com"}); err != nil || delivered != "" {
		t.Fatalf("unknown address must succeed silently, got %v %q", err, delivered)
	}
	if err := s.ForgotPassword(ctx, goAuthClient.ForgotPasswordRequest{Email: "seller@example.com"}); err != nil || delivered == "" {
		t.Fatalf("expected reset token delivered, got %v", err)
	}

	wrongEmail := goAuthClient.ResetPasswordRequest{Token: delivered, Email: "admin@example.com", Password: "fresh-pass", PasswordConfirmation: "fresh-pass"}
	if err := s.ResetPassword(ctx, wrongEmail); !errors.Is(err, goAuthClient.ErrCredentialRejected) {
		t.Fatalf("reset for another address must be rejected, got %v", err)
	}

	req := goAuthClient.ResetPasswordRequest{Token: delivered, Email: "seller@example.com", Password: "fresh-pass", PasswordConfirmation: "fresh-pass"}
	if err := s.ResetPassword(ctx, req); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if err := s.ResetPassword(ctx, req); !errors.Is(err, goAuthClient.ErrCredentialRejected) {
		t.Fatalf("reset token must be single use, got %v", err)
	}
	if _, err := s.Refresh(ctx, session.RefreshToken); !errors.Is(err, goAuthClient.ErrCredentialRejected) {
		t.Fatalf("reset must revoke existing sessions, got %v", err)
	}
	login(t, s, "seller@example.com", "fresh-pass")
}

func TestResetTokenExpires(t *testing.T) {
	clock := &testClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	var delivered string
	cfg := DefaultConfig(testKey)
	cfg.Password = fastPasswords()
	cfg.Now = clock.Now
	cfg.ResetDelivery = func(_, token string) { delivered = token }
	s, _ := NewDemo(cfg)

	_ = s.ForgotPassword(context.Background(), goAuthClient.ForgotPasswordRequest{Email: "admin@example.com"})
	clock.Advance(31 * time.Minute)

	req := goAuthClient.ResetPasswordRequest{Token: delivered, Email: "admin@example.com", Password: "fresh-pass", PasswordConfirmation: "fresh-pass"}
	if err := s.ResetPassword(context.Background(), req); !errors.Is(err, goAuthClient.ErrCredentialRejected) {
		t.Fatalf("expired reset must be rejected, got %v", err)
	}
}

func TestNewRequiresSigningKey(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected missing key rejected")
	}
}
