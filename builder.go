package goAuthClient

import (
	"context"
	"errors"
	"log/slog"
	"time"

	internalaudit "github.com/MrEthical07/goAuthClient/internal/audit"
	"github.com/MrEthical07/goAuthClient/internal/rate"
	"github.com/MrEthical07/goAuthClient/internal/schedule"
	"github.com/MrEthical07/goAuthClient/internal/stores"
	"github.com/MrEthical07/goAuthClient/jwt"
	"github.com/MrEthical07/goAuthClient/storage"
)

// Timer is the handle of an armed refresh timer, as returned by the func
// passed to [Builder.WithAfterFunc].
type Timer = schedule.Timer

// Builder defines a public type used by goAuthClient APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	service   CredentialService
	durable   storage.Area
	ephemeral storage.Area
	probe     NetworkProbe
	notifier  Notifier
	auditSink AuditSink
	logger    *slog.Logger
	now       func() time.Time
	afterFunc schedule.AfterFunc

	built bool
}

// New returns a Builder holding the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig replaces the whole configuration; it is validated by Build.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithCredentialService sets the remote authority. It is required.
func (b *Builder) WithCredentialService(svc CredentialService) *Builder {
	b.service = svc
	return b
}

// WithDurableArea sets the storage area used for remember-me sessions.
// Defaults to an in-process map.
func (b *Builder) WithDurableArea(area storage.Area) *Builder {
	b.durable = area
	return b
}

// WithEphemeralArea sets the storage area used for ordinary sessions.
// Defaults to an in-process map.
func (b *Builder) WithEphemeralArea(area storage.Area) *Builder {
	b.ephemeral = area
	return b
}

// WithNetworkProbe describes the withnetworkprobe operation and its observable behavior.
func (b *Builder) WithNetworkProbe(probe NetworkProbe) *Builder {
	b.probe = probe
	return b
}

// WithNotifier sets where user-facing notifications go.
func (b *Builder) WithNotifier(n Notifier) *Builder {
	b.notifier = n
	return b
}

// WithAuditSink sets the audit sink and enables audit dispatch.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	if sink != nil {
		b.config.Audit.Enabled = true
	}
	return b
}

// WithLogger describes the withlogger operation and its observable behavior.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithClock overrides the time source. Used by tests.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithAfterFunc overrides how the refresh timer is armed. Used by tests.
func (b *Builder) WithAfterFunc(after func(d time.Duration, f func()) Timer) *Builder {
	b.afterFunc = after
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a Manager in its initial,
// uninitialized state. A Builder can be used once.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.service == nil {
		return nil, errors.New("credential service required")
	}

	durable := b.durable
	if durable == nil {
		durable = storage.NewMemory()
	}
	ephemeral := b.ephemeral
	if ephemeral == nil {
		ephemeral = storage.NewMemory()
	}

	probe := b.probe
	if probe == nil {
		probe = AlwaysOnline{}
	}
	notifier := b.notifier
	if notifier == nil {
		notifier = NoOpNotifier{}
	}
	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	now := b.now
	if now == nil {
		now = time.Now
	}

	var verifier *jwt.Manager
	if cfg.Token.VerifySignature {
		jc := jwt.Config{
			SigningMethod: cfg.Token.SigningMethod,
			Now:           now,
		}
		if cfg.Token.SigningMethod == jwt.MethodHS256 {
			jc.PrivateKey = cloneBytes(cfg.Token.Key)
		} else {
			jc.PublicKey = cloneBytes(cfg.Token.Key)
		}
		jm, err := jwt.NewManager(jc)
		if err != nil {
			return nil, err
		}
		verifier = jm
	}

	baseCtx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		config:  cfg,
		service: b.service,
		creds: stores.NewCredentialStore(durable, ephemeral, stores.Keys{
			AccessToken:  cfg.Storage.key(cfg.Storage.AccessTokenKey),
			RefreshToken: cfg.Storage.key(cfg.Storage.RefreshTokenKey),
			User:         cfg.Storage.key(cfg.Storage.UserKey),
		}),
		probe:  probe,
		logger: logger,
		now:    now,
		policy: rate.Policy{
			MaxAttempts: cfg.RateLimit.MaxLoginAttempts,
			Cooldown:    cfg.RateLimit.LoginCooldownDuration,
		},
		scheduler:  schedule.New(b.afterFunc),
		verifier:   verifier,
		baseCtx:    baseCtx,
		cancelBase: cancel,
	}

	m.audit = internalaudit.NewSinkDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)
	m.notices = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Notifications.Enabled,
		BufferSize: cfg.Notifications.BufferSize,
		DropIfFull: cfg.Notifications.DropIfFull,
	}, notifier.Notify)
	m.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return m, nil
}
