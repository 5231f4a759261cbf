package goAuthClient

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MrEthical07/goAuthClient/internal/flows"
	"github.com/MrEthical07/goAuthClient/jwt"
	"github.com/google/uuid"
)

// Initialize restores the stored session. It runs once per Manager; later
// calls return ErrAlreadyInitialized without touching state.
//
// A stored access token whose exp claim is still in the future is adopted as
// is. An expired or undecodable token triggers one refresh: on success the
// session is adopted with the new tokens, on failure storage is cleared and
// the manager starts signed out. Both outcomes return nil; only an unreadable
// storage backend is reported as an error, wrapping ErrStorageUnavailable.
func (m *Manager) Initialize(ctx context.Context) error {
	if err := m.ready(); err != nil {
		return err
	}
	if !m.initialized.CompareAndSwap(false, true) {
		return ErrAlreadyInitialized
	}

	m.mu.Lock()
	m.dispatchLocked(Event{Kind: EventInitializeStart})
	epoch := m.epoch
	m.mu.Unlock()

	restored := flows.RunRestore(ctx, m.restoreDeps())

	switch restored.Failure {
	case flows.RestoreFailureNoCredentials:
		m.finishInitialize(ctx, epoch, nil, "", "", nil)
		return nil
	case flows.RestoreFailureStorage:
		err := fmt.Errorf("%w: %v", ErrStorageUnavailable, restored.Err)
		m.metricInc(MetricStorageFailure)
		m.logger.Warn("goAuthClient: reading stored credentials failed", slog.Any("error", restored.Err))
		m.finishInitialize(ctx, epoch, nil, "", "", err)
		return err
	}

	user, err := decodeUser(restored.Credentials.User)
	if err != nil {
		m.logger.Info("goAuthClient: stored user unreadable, discarding session", slog.Any("error", err))
		m.mu.Lock()
		if m.epoch == epoch {
			m.clearStorageLocked(ctx)
		}
		m.mu.Unlock()
		m.finishInitialize(ctx, epoch, nil, "", "", err)
		return nil
	}

	if !restored.NeedsRefresh {
		m.finishInitialize(ctx, epoch, user, restored.Credentials.AccessToken, restored.Credentials.RefreshToken, nil)
		return nil
	}

	m.logger.Debug("goAuthClient: stored access token needs refresh", slog.String("reason", restored.Reason))
	refreshed := flows.RunRefresh(ctx, m.refreshDeps())
	if refreshed.Failure != flows.RefreshFailureNone {
		err := refreshFailureError(refreshed)
		m.metricInc(MetricRefreshFailure)
		m.logger.Info("goAuthClient: boot refresh failed", slog.Any("error", err))
		m.mu.Lock()
		if m.epoch == epoch {
			m.clearStorageLocked(ctx)
		}
		m.mu.Unlock()
		m.finishInitialize(ctx, epoch, nil, "", "", err)
		return nil
	}

	m.mu.Lock()
	if m.epoch == epoch {
		if err := m.creds.Store(ctx, refreshed.Next, refreshed.Scope); err != nil {
			m.metricInc(MetricStorageFailure)
			m.logger.Warn("goAuthClient: persisting refreshed tokens failed", slog.Any("error", err))
		}
		m.dispatchLocked(Event{
			Kind:         EventTokenRefreshSuccess,
			AccessToken:  refreshed.Next.AccessToken,
			RefreshToken: refreshed.Next.RefreshToken,
		})
		m.metricInc(MetricRefreshSuccess)
	}
	m.mu.Unlock()

	if next, err := decodeUser(refreshed.Next.User); err == nil {
		user = next
	}
	m.finishInitialize(ctx, epoch, user, refreshed.Next.AccessToken, refreshed.Next.RefreshToken, nil)
	return nil
}

func (m *Manager) restoreDeps() flows.RestoreDeps {
	deps := flows.RestoreDeps{
		Load:      m.creds.Load,
		ExpiresAt: jwt.ExpiresAt,
		Now:       m.now,
	}
	if m.verifier != nil {
		deps.VerifySignature = m.verifier.VerifySignature
	}
	return deps
}

// finishInitialize commits the boot outcome. A nil user records
// InitializeFailure. When another operation replaced the session while boot
// was in flight, its result is kept and only IsInitialized is set.
func (m *Manager) finishInitialize(ctx context.Context, epoch uint64, user *User, accessToken, refreshToken string, cause error) {
	m.mu.Lock()
	defer m.unlock()

	if m.staleLocked(epoch) {
		m.markInitializedLocked()
		return
	}

	if user == nil {
		m.dispatchLocked(Event{Kind: EventInitializeFailure})
		m.metricInc(MetricInitializeFailure)
		m.emitAuditLocked(ctx, AuditInitialize, false, "", "", cause, nil)
		return
	}

	sessionID := uuid.NewString()
	m.dispatchLocked(Event{
		Kind:         EventInitializeSuccess,
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SessionID:    sessionID,
	})
	m.metricInc(MetricInitializeSuccess)
	m.emitAuditLocked(ctx, AuditInitialize, true, user.ID, sessionID, nil, nil)
}

// markInitializedLocked sets IsInitialized while keeping whatever session is
// current.
func (m *Manager) markInitializedLocked() {
	if m.state.IsInitialized {
		return
	}
	if m.state.IsAuthenticated {
		m.dispatchLocked(Event{
			Kind:         EventInitializeSuccess,
			User:         m.state.User,
			AccessToken:  m.state.AccessToken,
			RefreshToken: m.state.RefreshToken,
			SessionID:    m.state.SessionID,
		})
		return
	}
	m.dispatchLocked(Event{Kind: EventInitializeFailure})
}
