package goAuthClient

import (
	"context"
	"errors"
	"log/slog"
)

// UpdateProfile sends a partial profile update for the signed-in user. The
// returned user replaces the stored one in whichever area holds the session.
func (m *Manager) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	if err := m.ready(); err != nil {
		return nil, err
	}
	if err := validateRequest(update); err != nil {
		m.metricInc(MetricValidationRejected)
		return nil, err
	}

	token, epoch, err := m.sessionForCall(ctx, AuditProfileUpdate)
	if err != nil {
		return nil, err
	}

	var user *User
	err = m.serviceCall(ctx, func(ctx context.Context) error {
		var err error
		user, err = m.service.UpdateProfile(ctx, token, update)
		return err
	})
	return m.commitUser(ctx, epoch, user, err, AuditProfileUpdate, MetricProfileUpdated, m.config.Messages.ProfileUpdated)
}

// SyncProfile reloads the signed-in user from the credential service.
func (m *Manager) SyncProfile(ctx context.Context) (*User, error) {
	if err := m.ready(); err != nil {
		return nil, err
	}
	token, epoch, err := m.sessionForCall(ctx, AuditProfileUpdate)
	if err != nil {
		return nil, err
	}

	var user *User
	err = m.serviceCall(ctx, func(ctx context.Context) error {
		var err error
		user, err = m.service.GetProfile(ctx, token)
		return err
	})
	return m.commitUser(ctx, epoch, user, err, AuditProfileUpdate, MetricProfileUpdated, "")
}

// ChangePassword changes the password of the signed-in user. The session is
// left as it is.
func (m *Manager) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	if err := m.ready(); err != nil {
		return err
	}
	if err := validateRequest(req); err != nil {
		m.metricInc(MetricValidationRejected)
		return err
	}
	token, _, err := m.sessionForCall(ctx, AuditPasswordChange)
	if err != nil {
		return err
	}

	err = m.serviceCall(ctx, func(ctx context.Context) error {
		return m.service.ChangePassword(ctx, token, req)
	})
	return m.finishAccountCall(ctx, err, AuditPasswordChange, MetricPasswordChanged, m.config.Messages.PasswordChanged)
}

// ForgotPassword asks the credential service to send a reset link.
func (m *Manager) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	if err := m.ready(); err != nil {
		return err
	}
	if err := validateRequest(req); err != nil {
		m.metricInc(MetricValidationRejected)
		return err
	}
	if !m.online() {
		return m.rejectOffline(ctx, AuditPasswordReset)
	}

	err := m.serviceCall(ctx, func(ctx context.Context) error {
		return m.service.ForgotPassword(ctx, req)
	})
	return m.finishAccountCall(ctx, err, AuditPasswordReset, MetricPasswordResetRequested, m.config.Messages.PasswordResetSent)
}

// ResetPassword completes a reset with the token from the reset link. An
// empty PasswordConfirmation is filled from Password.
func (m *Manager) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
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
		return m.rejectOffline(ctx, AuditPasswordReset)
	}

	err := m.serviceCall(ctx, func(ctx context.Context) error {
		return m.service.ResetPassword(ctx, req)
	})
	return m.finishAccountCall(ctx, err, AuditPasswordReset, MetricPasswordResetCompleted, m.config.Messages.PasswordResetSuccess)
}

// sessionForCall returns the access token and epoch of the current session,
// failing when signed out or offline.
func (m *Manager) sessionForCall(ctx context.Context, auditType string) (string, uint64, error) {
	m.mu.Lock()
	authenticated := m.state.IsAuthenticated
	token, epoch := m.state.AccessToken, m.epoch
	m.mu.Unlock()

	if !authenticated {
		return "", 0, ErrNotAuthenticated
	}
	if !m.online() {
		return "", 0, m.rejectOffline(ctx, auditType)
	}
	return token, epoch, nil
}

func (m *Manager) commitUser(ctx context.Context, epoch uint64, user *User, err error, auditType string, metric MetricID, message string) (*User, error) {
	if err == nil && user == nil {
		err = classifyServiceError(errors.New("empty profile response"))
	}
	if err != nil {
		m.mu.Lock()
		userID, sessionID := m.identityLocked()
		m.mu.Unlock()
		m.emitAudit(ctx, auditType, false, userID, sessionID, err, nil)
		m.notify(ctx, SeverityError, m.UserMessage(err))
		return nil, err
	}

	m.mu.Lock()
	defer m.unlock()
	if m.staleLocked(epoch) {
		return nil, ErrSessionChanged
	}

	raw, encErr := encodeUser(user)
	if encErr == nil {
		encErr = m.creds.UpdateUser(ctx, raw)
	}
	if encErr != nil {
		m.metricInc(MetricStorageFailure)
		m.logger.Warn("goAuthClient: persisting updated user failed", slog.Any("error", encErr))
	}

	m.dispatchLocked(Event{Kind: EventSetUser, User: user})
	m.metricInc(metric)
	m.emitAuditLocked(ctx, auditType, true, user.ID, m.state.SessionID, nil, nil)
	m.notifyLocked(ctx, SeveritySuccess, message)
	return user.Clone(), nil
}

func (m *Manager) finishAccountCall(ctx context.Context, err error, auditType string, metric MetricID, message string) error {
	m.mu.Lock()
	userID, sessionID := m.identityLocked()
	m.mu.Unlock()

	if err != nil {
		m.emitAudit(ctx, auditType, false, userID, sessionID, err, nil)
		m.notify(ctx, SeverityError, m.UserMessage(err))
		return err
	}
	m.metricInc(metric)
	m.emitAudit(ctx, auditType, true, userID, sessionID, nil, nil)
	m.notify(ctx, SeveritySuccess, message)
	return nil
}
