package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/internal"
	"github.com/MrEthical07/goAuthClient/jwt"
	"github.com/MrEthical07/goAuthClient/password"
	"github.com/MrEthical07/goAuthClient/permission"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	errBadCredentials = fmt.Errorf("%w: invalid email or password", goAuthClient.ErrCredentialRejected)
	errEmailTaken     = fmt.Errorf("%w: email already registered", goAuthClient.ErrCredentialRejected)
	errInactive       = fmt.Errorf("%w: account disabled", goAuthClient.ErrCredentialRejected)
	errSession        = fmt.Errorf("%w: session not found", goAuthClient.ErrCredentialRejected)
	errRefresh        = fmt.Errorf("%w: invalid refresh token", goAuthClient.ErrCredentialRejected)
	errResetToken     = fmt.Errorf("%w: invalid or expired reset token", goAuthClient.ErrCredentialRejected)
)

// Config tunes the backend. Zero durations fall back to defaults.
type Config struct {
	// SigningKey is the HS256 secret for access tokens. Required.
	SigningKey []byte
	Issuer     string

	AccessTTL  time.Duration
	RefreshTTL time.Duration
	ResetTTL   time.Duration

	Password password.Config
	Roles    *permission.RoleSet

	// ResetDelivery receives the reset token issued by ForgotPassword. Nil
	// drops it.
	ResetDelivery func(email, token string)

	Now func() time.Time
}

// DefaultConfig returns a configuration signing with key.
func DefaultConfig(key []byte) Config {
	return Config{
		SigningKey: key,
		Issuer:     "goauthclient-demo",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
		ResetTTL:   30 * time.Minute,
		Password:   password.DefaultConfig(),
	}
}

type account struct {
	user goAuthClient.User
	hash string
}

type session struct {
	userID  string
	digest  [32]byte
	expires time.Time
}

type resetChallenge struct {
	email   string
	digest  [32]byte
	expires time.Time
}

// Service is an in-process [goAuthClient.CredentialService]. It holds
// accounts, sessions and reset challenges in maps guarded by one mutex.
type Service struct {
	cfg      Config
	hasher   *password.Hasher
	tokens   *jwt.Manager
	roles    *permission.RoleSet
	validate *validator.Validate

	mu       sync.Mutex
	byEmail  map[string]*account
	byID     map[string]*account
	sessions map[internal.TokenID]*session
	resets   map[internal.TokenID]*resetChallenge
}

var _ goAuthClient.CredentialService = (*Service)(nil)

// New returns an empty backend.
func New(cfg Config) (*Service, error) {
	def := DefaultConfig(cfg.SigningKey)
	if cfg.Issuer == "" {
		cfg.Issuer = def.Issuer
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = def.AccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = def.RefreshTTL
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = def.ResetTTL
	}
	if cfg.Password == (password.Config{}) {
		cfg.Password = def.Password
	}
	if cfg.Roles == nil {
		cfg.Roles = permission.Storefront()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if len(cfg.SigningKey) == 0 {
		return nil, errors.New("memory: signing key required")
	}

	hasher, err := password.NewHasher(cfg.Password)
	if err != nil {
		return nil, err
	}
	tokens, err := jwt.NewManager(jwt.Config{
		AccessTTL:     cfg.AccessTTL,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    cfg.SigningKey,
		Issuer:        cfg.Issuer,
		Now:           cfg.Now,
	})
	if err != nil {
		return nil, err
	}

	return &Service{
		cfg:      cfg,
		hasher:   hasher,
		tokens:   tokens,
		roles:    cfg.Roles,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		byEmail:  make(map[string]*account),
		byID:     make(map[string]*account),
		sessions: make(map[internal.TokenID]*session),
		resets:   make(map[internal.TokenID]*resetChallenge),
	}, nil
}

// AddUser creates an account directly, bypassing registration. It is how
// demo accounts are seeded.
func (s *Service) AddUser(name, email, pass string, role goAuthClient.Role) (*goAuthClient.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("memory: unknown role %q", role)
	}
	hash, err := s.hasher.Hash(pass)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeEmail(email)
	if _, exists := s.byEmail[key]; exists {
		return nil, errEmailTaken
	}
	now := s.cfg.Now().UTC()
	acct := &account{
		user: goAuthClient.User{
			ID:              uuid.NewString(),
			Name:            name,
			Email:           email,
			JoinDate:        now.Format(time.DateOnly),
			Role:            role,
			Permissions:     s.roles.Permissions(string(role)),
			IsEmailVerified: true,
			IsActive:        true,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		hash: hash,
	}
	s.byEmail[key] = acct
	s.byID[acct.user.ID] = acct
	return acct.user.Clone(), nil
}

// Login implements [goAuthClient.CredentialService].
func (s *Service) Login(ctx context.Context, req goAuthClient.LoginRequest) (*goAuthClient.AuthResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	acct, ok := s.byEmail[normalizeEmail(req.Email)]
	var hash string
	if ok {
		hash = acct.hash
	}
	s.mu.Unlock()

	if !ok {
		return nil, errBadCredentials
	}
	match, err := s.hasher.Verify(req.Password, hash)
	if err != nil || !match {
		return nil, errBadCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !acct.user.IsActive {
		return nil, errInactive
	}
	if again, _ := s.hasher.NeedsRehash(acct.hash); again {
		if rehashed, err := s.hasher.Hash(req.Password); err == nil {
			acct.hash = rehashed
		}
	}
	now := s.cfg.Now().UTC()
	acct.user.LastLoginAt = &now
	return s.openSessionLocked(acct)
}

// Register implements [goAuthClient.CredentialService]. New accounts are
// customers.
func (s *Service) Register(ctx context.Context, req goAuthClient.RegisterRequest) (*goAuthClient.AuthResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.PasswordConfirmation == "" {
		req.PasswordConfirmation = req.Password
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", goAuthClient.ErrCredentialRejected, err)
	}
	if _, err := s.AddUser(req.Name, req.Email, req.Password, goAuthClient.RoleCustomer); err != nil {
		if errors.Is(err, password.ErrPasswordLength) {
			return nil, fmt.Errorf("%w: %v", goAuthClient.ErrCredentialRejected, err)
		}
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openSessionLocked(s.byEmail[normalizeEmail(req.Email)])
}

// Logout revokes the session behind accessToken. A session that is
// already gone is not an error; an expired access token is.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	claims, err := s.tokens.Verify(accessToken)
	if err != nil {
		return fmt.Errorf("%w: %v", goAuthClient.ErrCredentialRejected, err)
	}
	sid, err := internal.ParseTokenID(claims.SID)
	if err != nil {
		return errSession
	}

	s.mu.Lock()
	delete(s.sessions, sid)
	s.mu.Unlock()
	return nil
}

// Refresh rotates refreshToken. Presenting a superseded token revokes the
// whole session.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*goAuthClient.AuthResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sid, secret, err := internal.DecodeToken(refreshToken)
	if err != nil {
		return nil, errRefresh
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sid]
	if !ok {
		return nil, errRefresh
	}
	if !secret.Matches(sess.digest) {
		delete(s.sessions, sid)
		return nil, fmt.Errorf("%w: refresh token reuse detected", goAuthClient.ErrCredentialRejected)
	}
	if !s.cfg.Now().Before(sess.expires) {
		delete(s.sessions, sid)
		return nil, errRefresh
	}
	acct, ok := s.byID[sess.userID]
	if !ok || !acct.user.IsActive {
		delete(s.sessions, sid)
		return nil, errInactive
	}

	next, err := internal.NewSecret()
	if err != nil {
		return nil, err
	}
	sess.digest = next.Digest()
	sess.expires = s.cfg.Now().Add(s.cfg.RefreshTTL)

	access, err := s.tokens.Issue(acct.user.ID, sid.String(), string(acct.user.Role), acct.user.Permissions)
	if err != nil {
		return nil, err
	}
	return &goAuthClient.AuthResponse{
		User:         acct.user.Clone(),
		Token:        access,
		RefreshToken: internal.EncodeToken(sid, next),
		ExpiresIn:    int64(s.cfg.AccessTTL / time.Second),
	}, nil
}

// GetProfile implements [goAuthClient.CredentialService].
func (s *Service) GetProfile(ctx context.Context, accessToken string) (*goAuthClient.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, err := s.authorizeLocked(accessToken)
	if err != nil {
		return nil, err
	}
	return acct.user.Clone(), nil
}

// UpdateProfile implements [goAuthClient.CredentialService].
func (s *Service) UpdateProfile(ctx context.Context, accessToken string, update goAuthClient.ProfileUpdate) (*goAuthClient.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(update); err != nil {
		return nil, fmt.Errorf("%w: %v", goAuthClient.ErrCredentialRejected, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, err := s.authorizeLocked(accessToken)
	if err != nil {
		return nil, err
	}
	if update.Email != nil && normalizeEmail(*update.Email) != normalizeEmail(acct.user.Email) {
		key := normalizeEmail(*update.Email)
		if _, taken := s.byEmail[key]; taken {
			return nil, errEmailTaken
		}
		delete(s.byEmail, normalizeEmail(acct.user.Email))
		s.byEmail[key] = acct
		acct.user.Email = *update.Email
		acct.user.IsEmailVerified = false
	}
	if update.Name != nil {
		acct.user.Name = *update.Name
	}
	if update.Avatar != nil {
		acct.user.Avatar = *update.Avatar
	}
	acct.user.UpdatedAt = s.cfg.Now().UTC()
	return acct.user.Clone(), nil
}

// ChangePassword implements [goAuthClient.CredentialService]. Other
// sessions of the account stay valid.
func (s *Service) ChangePassword(ctx context.Context, accessToken string, req goAuthClient.ChangePasswordRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	acct, err := s.authorizeLocked(accessToken)
	var hash string
	if err == nil {
		hash = acct.hash
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if ok, err := s.hasher.Verify(req.CurrentPassword, hash); err != nil || !ok {
		return fmt.Errorf("%w: current password is incorrect", goAuthClient.ErrCredentialRejected)
	}
	next, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("%w: %v", goAuthClient.ErrCredentialRejected, err)
	}

	s.mu.Lock()
	acct.hash = next
	acct.user.UpdatedAt = s.cfg.Now().UTC()
	s.mu.Unlock()
	return nil
}

// ForgotPassword issues a reset challenge when the address is known. The
// response never reveals whether it was.
func (s *Service) ForgotPassword(ctx context.Context, req goAuthClient.ForgotPasswordRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	_, known := s.byEmail[normalizeEmail(req.Email)]
	s.mu.Unlock()
	if !known {
		return nil
	}

	id, token, digest, err := internal.NewOpaqueToken()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.resets[id] = &resetChallenge{
		email:   normalizeEmail(req.Email),
		digest:  digest,
		expires: s.cfg.Now().Add(s.cfg.ResetTTL),
	}
	s.mu.Unlock()

	if s.cfg.ResetDelivery != nil {
		s.cfg.ResetDelivery(req.Email, token)
	}
	return nil
}

// ResetPassword consumes a reset challenge and revokes every session of
// the account.
func (s *Service) ResetPassword(ctx context.Context, req goAuthClient.ResetPasswordRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", goAuthClient.ErrCredentialRejected, err)
	}
	id, secret, err := internal.DecodeToken(req.Token)
	if err != nil {
		return errResetToken
	}
	next, err := s.hasher.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("%w: %v", goAuthClient.ErrCredentialRejected, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.resets[id]
	if !ok || !secret.Matches(ch.digest) || ch.email != normalizeEmail(req.Email) {
		return errResetToken
	}
	delete(s.resets, id)
	if !s.cfg.Now().Before(ch.expires) {
		return errResetToken
	}
	acct, ok := s.byEmail[ch.email]
	if !ok {
		return errResetToken
	}

	acct.hash = next
	acct.user.UpdatedAt = s.cfg.Now().UTC()
	for sid, sess := range s.sessions {
		if sess.userID == acct.user.ID {
			delete(s.sessions, sid)
		}
	}
	return nil
}

// SessionCount returns the number of live sessions.
func (s *Service) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// SetActive enables or disables an account. Disabled accounts cannot sign
// in or refresh.
func (s *Service) SetActive(email string, active bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.byEmail[normalizeEmail(email)]
	if ok {
		acct.user.IsActive = active
	}
	return ok
}

func (s *Service) openSessionLocked(acct *account) (*goAuthClient.AuthResponse, error) {
	sid, refresh, digest, err := internal.NewOpaqueToken()
	if err != nil {
		return nil, err
	}
	access, err := s.tokens.Issue(acct.user.ID, sid.String(), string(acct.user.Role), acct.user.Permissions)
	if err != nil {
		return nil, err
	}
	s.sessions[sid] = &session{
		userID:  acct.user.ID,
		digest:  digest,
		expires: s.cfg.Now().Add(s.cfg.RefreshTTL),
	}
	return &goAuthClient.AuthResponse{
		User:         acct.user.Clone(),
		Token:        access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.cfg.AccessTTL / time.Second),
	}, nil
}

func (s *Service) authorizeLocked(accessToken string) (*account, error) {
	claims, err := s.tokens.Verify(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", goAuthClient.ErrCredentialRejected, err)
	}
	sid, err := internal.ParseTokenID(claims.SID)
	if err != nil {
		return nil, errSession
	}
	sess, ok := s.sessions[sid]
	if !ok || sess.userID != claims.UID {
		return nil, errSession
	}
	acct, ok := s.byID[claims.UID]
	if !ok || !acct.user.IsActive {
		return nil, errInactive
	}
	return acct, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
