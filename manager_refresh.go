package goAuthClient

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/MrEthical07/goAuthClient/internal/flows"
)

const refreshFlightKey = "refresh"

// Refresh exchanges the stored refresh token for a new pair.
//
// On success the new tokens are written into the storage area that held the
// old ones and the refresh timer is re-armed. On any failure (offline, no
// stored refresh token, rejection or transport error) both storage areas are
// cleared, the session is reset and the returned error wraps
// ErrRefreshRejected. A failed refresh is never retried.
//
// Concurrent callers share one in-flight exchange. A result that arrives
// after the session was replaced or cleared is discarded with
// ErrSessionChanged.
func (m *Manager) Refresh(ctx context.Context) error {
	if err := m.ready(); err != nil {
		return err
	}
	m.mu.Lock()
	initialized := m.state.IsInitialized
	m.mu.Unlock()
	if !initialized {
		return ErrNotInitialized
	}

	_, err, shared := m.refreshGroup.Do(refreshFlightKey, func() (any, error) {
		return nil, m.refreshOnce(ctx)
	})
	if shared {
		m.metricInc(MetricRefreshDeduplicated)
	}
	return err
}

func (m *Manager) refreshOnce(ctx context.Context) error {
	m.mu.Lock()
	epoch := m.epoch
	m.mu.Unlock()

	result := flows.RunRefresh(ctx, m.refreshDeps())

	m.mu.Lock()
	defer m.unlock()

	if m.staleLocked(epoch) {
		m.logger.Debug("goAuthClient: refresh result discarded, session changed")
		return ErrSessionChanged
	}

	if result.Failure != flows.RefreshFailureNone {
		err := refreshFailureError(result)
		wasAuthenticated := m.state.IsAuthenticated
		userID, sessionID := m.identityLocked()

		m.clearStorageLocked(ctx)
		m.dispatchLocked(Event{Kind: EventTokenRefreshFailure})
		m.metricInc(MetricRefreshFailure)
		m.emitAuditLocked(ctx, AuditRefresh, false, userID, sessionID, err, nil)
		m.logger.Info("goAuthClient: refresh failed, session cleared", slog.Any("error", err))
		if wasAuthenticated {
			m.notifyLocked(ctx, SeverityWarning, m.config.Messages.SessionExpired)
		}
		return err
	}

	if err := m.creds.Store(ctx, result.Next, result.Scope); err != nil {
		m.metricInc(MetricStorageFailure)
		m.logger.Warn("goAuthClient: persisting refreshed tokens failed", slog.Any("error", err))
	}

	m.dispatchLocked(Event{
		Kind:         EventTokenRefreshSuccess,
		AccessToken:  result.Next.AccessToken,
		RefreshToken: result.Next.RefreshToken,
	})
	if m.state.User == nil || !bytes.Equal(result.Next.User, result.Previous.User) {
		if user, err := decodeUser(result.Next.User); err == nil {
			m.dispatchLocked(Event{Kind: EventSetUser, User: user})
		}
	}

	userID, sessionID := m.identityLocked()
	m.metricInc(MetricRefreshSuccess)
	m.emitAuditLocked(ctx, AuditRefresh, true, userID, sessionID, nil, func() map[string]string {
		return map[string]string{"scope": result.Scope.String()}
	})
	return nil
}

func (m *Manager) refreshDeps() flows.RefreshDeps {
	return flows.RefreshDeps{
		Online:   m.online,
		Load:     m.creds.Load,
		Exchange: m.exchangeRefreshToken,
	}
}

func (m *Manager) exchangeRefreshToken(ctx context.Context, refreshToken string) (flows.Grant, error) {
	var resp *AuthResponse
	err := m.serviceCall(ctx, func(ctx context.Context) error {
		var err error
		resp, err = m.service.Refresh(ctx, refreshToken)
		return err
	})
	if err != nil {
		return flows.Grant{}, err
	}
	if err := checkAuthResponse(resp, false); err != nil {
		return flows.Grant{}, err
	}

	grant := flows.Grant{
		AccessToken:  resp.Token,
		RefreshToken: resp.RefreshToken,
	}
	if resp.User != nil {
		raw, err := encodeUser(resp.User)
		if err != nil {
			return flows.Grant{}, err
		}
		grant.User = raw
	}
	return grant, nil
}

func refreshFailureError(result flows.RefreshResult) error {
	switch result.Failure {
	case flows.RefreshFailureOffline:
		return fmt.Errorf("%w: %w", ErrRefreshRejected, ErrOffline)
	case flows.RefreshFailureNoRefreshToken:
		return fmt.Errorf("%w: %w", ErrRefreshRejected, ErrNoRefreshToken)
	case flows.RefreshFailureStorage:
		return fmt.Errorf("%w: %w: %v", ErrRefreshRejected, ErrStorageUnavailable, result.Err)
	case flows.RefreshFailureIncomplete:
		return fmt.Errorf("%w: %w: incomplete credentials", ErrRefreshRejected, ErrTransportFailure)
	default:
		return fmt.Errorf("%w: %w", ErrRefreshRejected, result.Err)
	}
}

func (m *Manager) identityLocked() (userID, sessionID string) {
	if m.state.User != nil {
		userID = m.state.User.ID
	}
	return userID, m.state.SessionID
}
