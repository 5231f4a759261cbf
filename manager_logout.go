package goAuthClient

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/MrEthical07/goAuthClient/internal/flows"
)

// Logout signs out. The credential service is asked to invalidate the access
// token on a best-effort basis: the call is skipped while offline and its
// failure is only logged. Both storage areas are always cleared, the session
// is reset and the refresh timer is cancelled. Logout never fails.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	token := m.state.AccessToken
	m.mu.Unlock()

	result := flows.RunLogout(ctx, token, flows.LogoutDeps{
		Online: m.online,
		Remote: func(ctx context.Context, accessToken string) error {
			return m.serviceCall(ctx, func(ctx context.Context) error {
				return m.service.Logout(ctx, accessToken)
			})
		},
	})
	switch {
	case result.SkippedOffline:
		m.metricInc(MetricLogoutRemoteFailure)
		m.logger.Info("goAuthClient: offline, remote logout skipped")
	case result.RemoteErr != nil:
		m.metricInc(MetricLogoutRemoteFailure)
		m.logger.Warn("goAuthClient: remote logout failed", slog.Any("error", result.RemoteErr))
	}

	m.mu.Lock()
	userID, sessionID := m.identityLocked()
	m.clearStorageLocked(ctx)
	m.dispatchLocked(Event{Kind: EventLogout})
	m.mu.Unlock()

	m.metricInc(MetricLogout)
	m.emitAudit(ctx, AuditLogout, true, userID, sessionID, result.RemoteErr, func() map[string]string {
		return map[string]string{
			"remote_attempted": strconv.FormatBool(result.RemoteAttempted),
		}
	})
	m.notify(ctx, SeverityInfo, m.config.Messages.LogoutSuccess)
}

// Expire ends the session locally without contacting the credential service,
// for use when a request came back 401. Storage is cleared and, if a session
// was active, a session-expired warning is shown.
func (m *Manager) Expire(ctx context.Context, reason string) {
	m.mu.Lock()
	wasAuthenticated := m.state.IsAuthenticated
	userID, sessionID := m.identityLocked()
	m.clearStorageLocked(ctx)
	m.dispatchLocked(Event{Kind: EventLogout})
	m.mu.Unlock()

	if !wasAuthenticated {
		return
	}
	m.metricInc(MetricSessionExpired)
	m.logger.Info("goAuthClient: session expired", slog.String("reason", reason))
	m.emitAudit(ctx, AuditSessionExpired, true, userID, sessionID, nil, func() map[string]string {
		return map[string]string{"reason": reason}
	})
	m.notify(ctx, SeverityWarning, m.config.Messages.SessionExpired)
}
