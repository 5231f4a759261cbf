package goAuthClient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	internalaudit "github.com/MrEthical07/goAuthClient/internal/audit"
	"github.com/MrEthical07/goAuthClient/internal/rate"
	"github.com/MrEthical07/goAuthClient/internal/schedule"
	"github.com/MrEthical07/goAuthClient/internal/stores"
	"github.com/MrEthical07/goAuthClient/jwt"
	"golang.org/x/sync/singleflight"
)

// Manager owns one client session: its state, the stored credentials and the
// proactive refresh timer.
//
// All state transitions go through a single mutex in dispatch order. Calls to
// the credential service run outside the lock; their results are committed
// only if the session they started under is still current.
type Manager struct {
	config    Config
	service   CredentialService
	creds     *stores.CredentialStore
	probe     NetworkProbe
	logger    *slog.Logger
	now       func() time.Time
	policy    rate.Policy
	scheduler *schedule.Scheduler
	verifier  *jwt.Manager
	audit     *internalaudit.Dispatcher[AuditEvent]
	notices   *internalaudit.Dispatcher[Notification]
	metrics   *Metrics

	refreshGroup singleflight.Group

	baseCtx    context.Context
	cancelBase context.CancelFunc

	mu      sync.Mutex
	state   State
	epoch   uint64
	subs    map[uint64]chan State
	nextSub uint64
	outbox  []func() // audit and notification deliveries queued under mu

	initialized atomic.Bool
	closed      atomic.Bool
}

// State returns a snapshot of the current session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// IsAuthenticated reports whether a full credential triple is held.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.IsAuthenticated
}

// User returns a copy of the signed-in user, or nil.
func (m *Manager) User() *User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.User.Clone()
}

// AccessToken returns the current bearer token, or "" when signed out.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.AccessToken
}

// IsBlocked reports whether login is in its cooldown: the configured number of
// consecutive failures was reached less than the cooldown duration ago.
func (m *Manager) IsBlocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.policy.Blocked(m.state.LoginAttempts, m.state.LastLoginAttempt, m.now())
}

// LoginRetryAfter returns the time left in the login cooldown, or zero.
func (m *Manager) LoginRetryAfter() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.policy.RetryAfter(m.state.LoginAttempts, m.state.LastLoginAttempt, m.now())
}

// NextRefresh returns the delay the pending refresh timer was armed with.
func (m *Manager) NextRefresh() (time.Duration, bool) {
	return m.scheduler.NextDelay()
}

// Subscribe returns a channel receiving a snapshot after every transition, in
// dispatch order. When the buffer is full the oldest snapshot is dropped. The
// returned func unsubscribes and closes the channel. After Close the channel
// is returned already closed.
func (m *Manager) Subscribe(buffer int) (<-chan State, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan State, buffer)

	m.mu.Lock()
	if m.closed.Load() {
		m.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	if m.subs == nil {
		m.subs = make(map[uint64]chan State)
	}
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			if sub, ok := m.subs[id]; ok {
				delete(m.subs, id)
				close(sub)
			}
			m.mu.Unlock()
		})
	}
}

// Close cancels the refresh timer, flushes pending audit events and
// notifications, and closes every subscription. Close does not touch stored
// credentials.
func (m *Manager) Close() {
	if m == nil || !m.closed.CompareAndSwap(false, true) {
		return
	}
	m.cancelBase()
	m.scheduler.Cancel()

	m.mu.Lock()
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
	m.mu.Unlock()

	m.audit.Close()
	m.notices.Close()
}

// AuditDropped returns the number of audit events dropped on a full buffer.
func (m *Manager) AuditDropped() uint64 {
	if m == nil {
		return 0
	}
	return m.audit.Dropped()
}

// NotificationsDropped returns the number of notifications dropped on a full
// buffer.
func (m *Manager) NotificationsDropped() uint64 {
	if m == nil {
		return 0
	}
	return m.notices.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the manager counters.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	if m == nil || m.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return m.metrics.Snapshot()
}

func (m *Manager) metricInc(id MetricID) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.Inc(id)
}

func (m *Manager) ready() error {
	if m.closed.Load() {
		return ErrManagerClosed
	}
	return nil
}

func (m *Manager) online() bool {
	return m.probe.Online()
}

// dispatchLocked applies e, bumps the epoch when the session identity changes,
// keeps the refresh timer in step with the access token and publishes the new
// snapshot. m.mu must be held.
func (m *Manager) dispatchLocked(e Event) {
	if e.At.IsZero() {
		e.At = m.now()
	}
	prev := m.state
	next := reduce(prev, e)
	m.state = next

	if next.SessionID != prev.SessionID || e.Kind == EventLogout || e.Kind == EventTokenRefreshFailure {
		m.epoch++
	}

	m.logger.Debug("goAuthClient: transition",
		slog.String("event", e.Kind.String()),
		slog.Bool("authenticated", next.IsAuthenticated),
		slog.Bool("loading", next.IsLoading),
	)

	m.rescheduleLocked(prev, next)
	m.publishLocked(next)
}

func (m *Manager) publishLocked(s State) {
	for _, ch := range m.subs {
		snapshot := s.clone()
		for {
			select {
			case ch <- snapshot:
			default:
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
}

// rescheduleLocked arms the refresh timer whenever a session is adopted or its
// access token changes, and cancels it once the session is gone.
func (m *Manager) rescheduleLocked(prev, next State) {
	if !next.IsAuthenticated {
		if prev.IsAuthenticated || m.scheduler.Pending() {
			m.scheduler.Cancel()
		}
		return
	}
	if !m.config.Refresh.Enabled || (prev.IsAuthenticated && next.AccessToken == prev.AccessToken) {
		return
	}

	exp, ok := jwt.ExpiresAt(next.AccessToken)
	if !ok {
		m.scheduler.Cancel()
		return
	}
	delay := schedule.Delay(exp, m.now(), m.config.Refresh.Lead, m.config.Refresh.MinDelay)
	m.scheduler.Arm(delay, m.onRefreshTimer)
	m.metricInc(MetricRefreshScheduled)
	m.logger.Debug("goAuthClient: refresh scheduled", slog.Duration("delay", delay))
}

func (m *Manager) onRefreshTimer() {
	if m.closed.Load() {
		return
	}
	if err := m.Refresh(m.baseCtx); err != nil && !errors.Is(err, ErrSessionChanged) {
		m.logger.Warn("goAuthClient: scheduled refresh failed", slog.Any("error", err))
	}
}

// staleLocked reports whether the session identity changed since epoch was
// captured, counting the discard.
func (m *Manager) staleLocked(epoch uint64) bool {
	if m.epoch == epoch {
		return false
	}
	m.metricInc(MetricStaleCompletion)
	return true
}

// clearStorageLocked removes stored credentials from both areas; a failure is
// logged and otherwise ignored.
func (m *Manager) clearStorageLocked(ctx context.Context) {
	if err := m.creds.Clear(ctx); err != nil {
		m.metricInc(MetricStorageFailure)
		m.logger.Warn("goAuthClient: clearing stored credentials failed", slog.Any("error", err))
	}
}

func (m *Manager) notify(ctx context.Context, severity Severity, message string) {
	if message == "" {
		return
	}
	m.notices.Emit(ctx, Notification{
		Message:   message,
		Severity:  severity,
		Timestamp: m.now(),
	})
}

// notifyLocked queues a notification for delivery once m.mu is released
// through unlock.
func (m *Manager) notifyLocked(ctx context.Context, severity Severity, message string) {
	if message == "" {
		return
	}
	note := Notification{
		Message:   message,
		Severity:  severity,
		Timestamp: m.now(),
	}
	m.outbox = append(m.outbox, func() { m.notices.Emit(ctx, note) })
}

// unlock releases m.mu, then hands the audit events and notifications queued
// while it was held to their dispatchers. A dispatcher that waits for buffer
// room never holds up other callers of the Manager.
func (m *Manager) unlock() {
	queued := m.outbox
	m.outbox = nil
	m.mu.Unlock()
	for _, deliver := range queued {
		deliver()
	}
}

// serviceCall runs fn against the credential service under the configured
// timeout and records its latency.
func (m *Manager) serviceCall(ctx context.Context, fn func(context.Context) error) error {
	if m.config.ServiceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.config.ServiceTimeout)
		defer cancel()
	}
	start := time.Now()
	err := fn(ctx)
	if m.metrics != nil {
		m.metrics.Observe(MetricServiceLatency, time.Since(start))
	}
	return classifyServiceError(err)
}

// classifyServiceError leaves rejection and transport errors as they are and
// treats anything else as a transport failure.
func classifyServiceError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrCredentialRejected) || errors.Is(err, ErrTransportFailure) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrTransportFailure, err)
}

// checkAuthResponse rejects a response that does not carry a full triple.
func checkAuthResponse(resp *AuthResponse, needUser bool) error {
	if resp == nil || resp.Token == "" || resp.RefreshToken == "" {
		return fmt.Errorf("%w: incomplete auth response", ErrTransportFailure)
	}
	if needUser && resp.User == nil {
		return fmt.Errorf("%w: auth response without user", ErrTransportFailure)
	}
	return nil
}

func encodeUser(u *User) ([]byte, error) {
	if u == nil {
		return nil, fmt.Errorf("%w: nil user", ErrDecodeFailure)
	}
	return json.Marshal(u)
}

func decodeUser(raw []byte) (*User, error) {
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("%w: stored user: %v", ErrDecodeFailure, err)
	}
	return &u, nil
}

// UserMessage maps an error returned by the Manager to the configured
// user-facing text.
func (m *Manager) UserMessage(err error) string {
	msgs := m.config.Messages
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRateLimited):
		return msgs.RateLimited
	case errors.Is(err, ErrOffline):
		return msgs.Offline
	case errors.Is(err, ErrRefreshRejected), errors.Is(err, ErrNotAuthenticated):
		return msgs.SessionExpired
	case errors.Is(err, ErrTransportFailure):
		return msgs.ServiceUnavailable
	case errors.Is(err, ErrInvalidInput):
		return err.Error()
	default:
		return msgs.RequestFailed
	}
}
