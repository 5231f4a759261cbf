package goAuthClient

import (
	"context"
	"errors"
)

// AuditErrorCode is the stable error classification written to audit events.
type AuditErrorCode string

const (
	auditErrRateLimited        AuditErrorCode = "rate_limited"
	auditErrOffline            AuditErrorCode = "offline"
	auditErrInvalidInput       AuditErrorCode = "invalid_input"
	auditErrCredentialRejected AuditErrorCode = "credential_rejected"
	auditErrTransport          AuditErrorCode = "transport_failure"
	auditErrRefreshRejected    AuditErrorCode = "refresh_rejected"
	auditErrNoRefreshToken     AuditErrorCode = "no_refresh_token"
	auditErrDecode             AuditErrorCode = "decode_failure"
	auditErrStorage            AuditErrorCode = "storage_unavailable"
	auditErrSessionChanged     AuditErrorCode = "session_changed"
	auditErrNotAuthenticated   AuditErrorCode = "not_authenticated"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (m *Manager) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	sessionID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if m == nil || m.audit == nil {
		return
	}
	m.audit.Emit(ctx, m.auditEvent(eventType, success, userID, sessionID, err, metadataBuilder))
}

// emitAuditLocked builds the event from the state under m.mu and queues it
// for delivery once the lock is released through unlock.
func (m *Manager) emitAuditLocked(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	sessionID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if m == nil || m.audit == nil {
		return
	}
	event := m.auditEvent(eventType, success, userID, sessionID, err, metadataBuilder)
	m.outbox = append(m.outbox, func() { m.audit.Emit(ctx, event) })
}

func (m *Manager) auditEvent(eventType string, success bool, userID, sessionID string, err error, metadataBuilder func() map[string]string) AuditEvent {
	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: m.now().UTC(),
		EventType: eventType,
		UserID:    userID,
		SessionID: sessionID,
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}
	return event
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrOffline):
		return auditErrOffline
	case errors.Is(err, ErrInvalidInput):
		return auditErrInvalidInput
	case errors.Is(err, ErrNoRefreshToken):
		return auditErrNoRefreshToken
	case errors.Is(err, ErrRefreshRejected):
		return auditErrRefreshRejected
	case errors.Is(err, ErrCredentialRejected):
		return auditErrCredentialRejected
	case errors.Is(err, ErrTransportFailure):
		return auditErrTransport
	case errors.Is(err, ErrDecodeFailure):
		return auditErrDecode
	case errors.Is(err, ErrStorageUnavailable):
		return auditErrStorage
	case errors.Is(err, ErrSessionChanged):
		return auditErrSessionChanged
	case errors.Is(err, ErrNotAuthenticated):
		return auditErrNotAuthenticated
	default:
		return auditErrInternal
	}
}
