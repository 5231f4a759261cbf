package goAuthClient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrEthical07/goAuthClient/internal/stores"
	"github.com/MrEthical07/goAuthClient/storage"
	"github.com/google/uuid"
)

// Login signs in with email and password.
//
// The request is validated first. While the login cooldown is active it fails
// with ErrRateLimited, and while offline with ErrOffline; neither contacts the
// credential service nor changes the attempt counter. On success the
// credentials are stored durably when RememberMe is set, otherwise in the
// ephemeral area. A failure counts towards the cooldown and clears any
// previous session; the returned error wraps ErrCredentialRejected or
// ErrTransportFailure.
func (m *Manager) Login(ctx context.Context, req LoginRequest) error {
	if err := m.ready(); err != nil {
		return err
	}
	if err := validateRequest(req); err != nil {
		m.metricInc(MetricValidationRejected)
		return err
	}

	online := m.online()

	m.mu.Lock()
	now := m.now()
	attempts, last := m.state.LoginAttempts, m.state.LastLoginAttempt
	if m.policy.Blocked(attempts, last, now) {
		retryAfter := m.policy.RetryAfter(attempts, last, now)
		m.mu.Unlock()

		m.metricInc(MetricLoginRateLimited)
		m.emitAudit(ctx, AuditLoginRateLimited, false, "", "", ErrRateLimited, func() map[string]string {
			return map[string]string{"retry_after": retryAfter.String()}
		})
		m.notify(ctx, SeverityError, m.config.Messages.RateLimited)
		return fmt.Errorf("%w: retry in %s", ErrRateLimited, retryAfter.Round(time.Second))
	}
	if m.policy.Lapsed(attempts, last, now) {
		m.dispatchLocked(Event{Kind: EventResetLoginAttempts})
	}
	if !online {
		m.mu.Unlock()
		return m.rejectOffline(ctx, AuditLogin)
	}
	m.dispatchLocked(Event{Kind: EventLoginStart})
	epoch := m.epoch
	m.mu.Unlock()

	var resp *AuthResponse
	err := m.serviceCall(ctx, func(ctx context.Context) error {
		var err error
		resp, err = m.service.Login(ctx, req)
		return err
	})
	if err == nil {
		err = checkAuthResponse(resp, true)
	}

	return m.completeSignIn(ctx, signIn{
		epoch:          epoch,
		resp:           resp,
		err:            err,
		durable:        req.RememberMe,
		auditType:      AuditLogin,
		successMetric:  MetricLoginSuccess,
		failureMetric:  MetricLoginFailure,
		successMessage: m.config.Messages.LoginSuccess,
		failureMessage: m.config.Messages.LoginFailed,
	})
}

// Register creates an account and signs in with it. It is not subject to the
// login cooldown. A failure is recorded like a failed login.
func (m *Manager) Register(ctx context.Context, req RegisterRequest) error {
	if err := m.ready(); err != nil {
		return err
	}
	if req.PasswordConfirmation == "" {
		req.PasswordConfirmation = req.Password
	}
	if err := validateRequest(req); err != nil {
		m.metricInc(MetricValidationRejected)
		return err
	}

	if !m.online() {
		return m.rejectOffline(ctx, AuditRegister)
	}

	m.mu.Lock()
	m.dispatchLocked(Event{Kind: EventLoginStart})
	epoch := m.epoch
	m.mu.Unlock()

	var resp *AuthResponse
	err := m.serviceCall(ctx, func(ctx context.Context) error {
		var err error
		resp, err = m.service.Register(ctx, req)
		return err
	})
	if err == nil {
		err = checkAuthResponse(resp, true)
	}

	return m.completeSignIn(ctx, signIn{
		epoch:          epoch,
		resp:           resp,
		err:            err,
		durable:        req.RememberMe,
		auditType:      AuditRegister,
		successMetric:  MetricRegisterSuccess,
		failureMetric:  MetricRegisterFailure,
		successMessage: m.config.Messages.RegisterSuccess,
		failureMessage: m.config.Messages.RegisterFailed,
	})
}

type signIn struct {
	epoch          uint64
	resp           *AuthResponse
	err            error
	durable        bool
	auditType      string
	successMetric  MetricID
	failureMetric  MetricID
	successMessage string
	failureMessage string
}

// completeSignIn commits the outcome of a login or registration call.
func (m *Manager) completeSignIn(ctx context.Context, in signIn) error {
	m.mu.Lock()
	defer m.unlock()

	if m.staleLocked(in.epoch) {
		m.logger.Debug("goAuthClient: sign-in result discarded, session changed", slog.String("operation", in.auditType))
		return ErrSessionChanged
	}

	if in.err != nil {
		if m.state.IsAuthenticated {
			m.clearStorageLocked(ctx)
		}
		m.dispatchLocked(Event{Kind: EventLoginFailure})
		m.metricInc(in.failureMetric)
		m.emitAuditLocked(ctx, in.auditType, false, "", "", in.err, func() map[string]string {
			return map[string]string{"attempts": fmt.Sprint(m.state.LoginAttempts)}
		})

		message := in.failureMessage
		if errors.Is(in.err, ErrTransportFailure) {
			message = m.config.Messages.ServiceUnavailable
		}
		m.notifyLocked(ctx, SeverityError, message)
		return in.err
	}

	scope := storage.ScopeEphemeral
	if in.durable {
		scope = storage.ScopeDurable
	}
	m.persistLocked(ctx, in.resp, scope)

	sessionID := uuid.NewString()
	m.dispatchLocked(Event{
		Kind:         EventLoginSuccess,
		User:         in.resp.User,
		AccessToken:  in.resp.Token,
		RefreshToken: in.resp.RefreshToken,
		SessionID:    sessionID,
	})
	m.metricInc(in.successMetric)
	m.emitAuditLocked(ctx, in.auditType, true, in.resp.User.ID, sessionID, nil, func() map[string]string {
		return map[string]string{"scope": scope.String()}
	})
	m.notifyLocked(ctx, SeveritySuccess, in.successMessage)
	return nil
}

// persistLocked stores the triple from resp. A storage failure keeps the
// session in memory only.
func (m *Manager) persistLocked(ctx context.Context, resp *AuthResponse, scope storage.Scope) {
	raw, err := encodeUser(resp.User)
	if err == nil {
		err = m.creds.Store(ctx, stores.Credentials{
			AccessToken:  resp.Token,
			RefreshToken: resp.RefreshToken,
			User:         raw,
		}, scope)
	}
	if err != nil {
		m.metricInc(MetricStorageFailure)
		m.logger.Warn("goAuthClient: persisting credentials failed, session kept in memory",
			slog.String("scope", scope.String()),
			slog.Any("error", err),
		)
	}
}

func (m *Manager) rejectOffline(ctx context.Context, auditType string) error {
	m.metricInc(MetricLoginOffline)
	m.emitAudit(ctx, auditType, false, "", "", ErrOffline, nil)
	m.notify(ctx, SeverityError, m.config.Messages.Offline)
	return ErrOffline
}
