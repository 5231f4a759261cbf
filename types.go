package goAuthClient

import (
	"context"
	"time"
)

// Role defines a public type used by goAuthClient APIs.
type Role string

const (
	// RoleCustomer is an exported constant or variable used by the session manager.
	RoleCustomer Role = "customer"
	// RoleSeller is an exported constant or variable used by the session manager.
	RoleSeller Role = "seller"
	// RoleAdmin is an exported constant or variable used by the session manager.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleSeller, RoleAdmin:
		return true
	default:
		return false
	}
}

// User is the account record returned by the credential service and
// persisted next to the tokens.
type User struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Avatar          string     `json:"avatar,omitempty"`
	JoinDate        string     `json:"joinDate,omitempty"`
	Role            Role       `json:"role"`
	Permissions     []string   `json:"permissions"`
	IsEmailVerified bool       `json:"isEmailVerified"`
	IsActive        bool       `json:"isActive"`
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Permissions = append([]string(nil), u.Permissions...)
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}

// AuthResponse is the result of a successful login, registration or refresh.
// User may be nil on refresh.
type AuthResponse struct {
	User         *User  `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn,omitempty"`
}

// LoginRequest defines a public type used by goAuthClient APIs.
type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	RememberMe bool   `json:"-"`
}

// RegisterRequest defines a public type used by goAuthClient APIs.
//
// An empty PasswordConfirmation is filled from Password before the request is
// validated and sent.
type RegisterRequest struct {
	Name                 string `json:"name" validate:"required"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=6"`
	PasswordConfirmation string `json:"password_confirmation" validate:"eqfield=Password"`
	RememberMe           bool   `json:"-"`
}

// ProfileUpdate carries a partial user update. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Email  *string `json:"email,omitempty" validate:"omitempty,email"`
	Avatar *string `json:"avatar,omitempty"`
}

// ChangePasswordRequest defines a public type used by goAuthClient APIs.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// ForgotPasswordRequest defines a public type used by goAuthClient APIs.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest defines a public type used by goAuthClient APIs.
type ResetPasswordRequest struct {
	Token                string `json:"token" validate:"required"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=6"`
	PasswordConfirmation string `json:"password_confirmation" validate:"eqfield=Password"`
}

// CredentialService is the remote authority that issues and revokes tokens.
//
// Implementations wrap ErrCredentialRejected when the authority refused the
// request and ErrTransportFailure when it could not be reached. Any other
// error is treated as a transport failure.
type CredentialService interface {
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Logout(ctx context.Context, accessToken string) error
	Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error)
	GetProfile(ctx context.Context, accessToken string) (*User, error)
	UpdateProfile(ctx context.Context, accessToken string, update ProfileUpdate) (*User, error)
	ChangePassword(ctx context.Context, accessToken string, req ChangePasswordRequest) error
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
}
