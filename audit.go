package goAuthClient

import (
	"io"

	internalaudit "github.com/MrEthical07/goAuthClient/internal/audit"
)

// AuditEvent is a structured record of one session lifecycle outcome.
type AuditEvent = internalaudit.Event

// AuditSink receives audit events from the Manager's dispatcher goroutine.
type AuditSink = internalaudit.Sink

// NoOpSink discards audit events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink buffers audit events on a channel.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink returns a sink whose events are read from Events. With
// Audit.DropIfFull unset, an unread sink backs up the audit dispatcher.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a sink appending JSON lines to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// Audit event types.
const (
	AuditInitialize       = "initialize"
	AuditLogin            = "login"
	AuditLoginRateLimited = "login_rate_limited"
	AuditRegister         = "register"
	AuditLogout           = "logout"
	AuditRefresh          = "refresh"
	AuditSessionExpired   = "session_expired"
	AuditProfileUpdate    = "profile_update"
	AuditPasswordChange   = "password_change"
	AuditPasswordReset    = "password_reset"
)
