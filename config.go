package goAuthClient

import (
	"errors"
	"time"

	"github.com/MrEthical07/goAuthClient/jwt"
)

// Config defines a public type used by goAuthClient APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	RateLimit      RateLimitConfig
	Refresh        RefreshConfig
	Storage        StorageConfig
	Token          TokenConfig
	Audit          AuditConfig
	Metrics        MetricsConfig
	Notifications  NotificationConfig
	Messages       MessagesConfig
	ServiceTimeout time.Duration
}

// RateLimitConfig defines the local login throttle.
type RateLimitConfig struct {
	MaxLoginAttempts      int
	LoginCooldownDuration time.Duration
}

// RefreshConfig defines the proactive refresh schedule. The timer fires
// Lead before the access token expires, but never sooner than MinDelay.
type RefreshConfig struct {
	Enabled  bool
	Lead     time.Duration
	MinDelay time.Duration
}

// StorageConfig names the entries written to the storage areas.
type StorageConfig struct {
	KeyPrefix       string
	AccessTokenKey  string
	RefreshTokenKey string
	UserKey         string
}

// TokenConfig enables an optional signature check of stored access tokens
// before their expiry is trusted at boot. Key is the HS256 secret or the
// Ed25519 public key.
type TokenConfig struct {
	VerifySignature bool
	SigningMethod   jwt.SigningMethod
	Key             []byte
}

// AuditConfig defines a public type used by goAuthClient APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goAuthClient APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// NotificationConfig controls delivery of user-facing notifications.
type NotificationConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MessagesConfig holds the user-facing notification texts.
type MessagesConfig struct {
	LoginSuccess         string
	RegisterSuccess      string
	LogoutSuccess        string
	SessionExpired       string
	PasswordResetSent    string
	PasswordResetSuccess string
	ProfileUpdated       string
	PasswordChanged      string
	LoginFailed          string
	RegisterFailed       string
	RequestFailed        string
	ServiceUnavailable   string
	RateLimited          string
	Offline              string
}

// DefaultConfig returns the default configuration: five failed logins trigger
// a fifteen-minute cooldown, and refresh runs five minutes before expiry with
// a one-minute floor.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		RateLimit: RateLimitConfig{
			MaxLoginAttempts:      5,
			LoginCooldownDuration: 15 * time.Minute,
		},
		Refresh: RefreshConfig{
			Enabled:  true,
			Lead:     5 * time.Minute,
			MinDelay: time.Minute,
		},
		Storage: StorageConfig{
			AccessTokenKey:  "auth_token",
			RefreshTokenKey: "refresh_token",
			UserKey:         "user",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Notifications: NotificationConfig{
			Enabled:    true,
			BufferSize: 64,
			DropIfFull: true,
		},
		Messages: MessagesConfig{
			LoginSuccess:         "Login successful!",
			RegisterSuccess:      "Registration successful!",
			LogoutSuccess:        "Logged out successfully",
			SessionExpired:       "Session expired. Please login again.",
			PasswordResetSent:    "Password reset email sent!",
			PasswordResetSuccess: "Password reset successful!",
			ProfileUpdated:       "Profile updated successfully!",
			PasswordChanged:      "Password changed successfully!",
			LoginFailed:          "Login failed. Please check your credentials.",
			RegisterFailed:       "Registration failed. Please try again.",
			RequestFailed:        "Request failed. Please try again.",
			ServiceUnavailable:   "Unable to reach the server. Please try again later.",
			RateLimited:          "Too many failed login attempts. Please try again later.",
			Offline:              "No internet connection. Please check your connection and try again.",
		},
		ServiceTimeout: 10 * time.Second,
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.Key = cloneBytes(cfg.Token.Key)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Validate describes the validate operation and its observable behavior.
//
// Validate returns the first configuration error found, or nil.
func (c *Config) Validate() error {
	// Rate limit
	if c.RateLimit.MaxLoginAttempts <= 0 {
		return errors.New("RateLimit MaxLoginAttempts must be > 0")
	}
	if c.RateLimit.LoginCooldownDuration <= 0 {
		return errors.New("RateLimit LoginCooldownDuration must be > 0")
	}

	// Refresh
	if c.Refresh.Lead < 0 {
		return errors.New("Refresh Lead must be >= 0")
	}
	if c.Refresh.Enabled && c.Refresh.MinDelay <= 0 {
		return errors.New("Refresh MinDelay must be > 0 when refresh is enabled")
	}

	// Storage
	if c.Storage.AccessTokenKey == "" || c.Storage.RefreshTokenKey == "" || c.Storage.UserKey == "" {
		return errors.New("Storage key names must be non-empty")
	}
	if c.Storage.AccessTokenKey == c.Storage.RefreshTokenKey ||
		c.Storage.AccessTokenKey == c.Storage.UserKey ||
		c.Storage.RefreshTokenKey == c.Storage.UserKey {
		return errors.New("Storage key names must be distinct")
	}

	// Token
	if c.Token.VerifySignature {
		if c.Token.SigningMethod != jwt.MethodHS256 && c.Token.SigningMethod != jwt.MethodEd25519 {
			return errors.New("unsupported Token SigningMethod")
		}
		if len(c.Token.Key) == 0 {
			return errors.New("Token VerifySignature requires Key")
		}
	}

	// Audit / notifications
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}
	if c.Notifications.Enabled && c.Notifications.BufferSize <= 0 {
		return errors.New("Notifications BufferSize must be > 0 when notifications are enabled")
	}

	if c.ServiceTimeout < 0 {
		return errors.New("ServiceTimeout must be >= 0")
	}

	return nil
}

func (s StorageConfig) key(name string) string {
	if s.KeyPrefix == "" {
		return name
	}
	return s.KeyPrefix + name
}
