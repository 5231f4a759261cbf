package internaldefs

import (
	goAuthClient "github.com/MrEthical07/goAuthClient"
)

// CounterDef names one session manager counter.
type CounterDef struct {
	ID   goAuthClient.MetricID
	Name string
	Help string
}

// HistogramDef names one session manager histogram.
type HistogramDef struct {
	ID   goAuthClient.MetricID
	Name string
	Help string
}

// Names of the dispatcher drop counters, which are read from the manager
// rather than from the metrics snapshot.
const (
	AuditDroppedName         = "goauthclient_audit_dropped_total"
	AuditDroppedHelp         = "Audit events dropped due to dispatcher backpressure."
	NotificationsDroppedName = "goauthclient_notifications_dropped_total"
	NotificationsDroppedHelp = "User notifications dropped due to dispatcher backpressure."
)

// CounterDefs lists every exported counter in MetricID order.
var CounterDefs = []CounterDef{
	{ID: goAuthClient.MetricLoginSuccess, Name: "goauthclient_login_success_total", Help: "Logins accepted by the credential service."},
	{ID: goAuthClient.MetricLoginFailure, Name: "goauthclient_login_failure_total", Help: "Logins rejected or failed in transport."},
	{ID: goAuthClient.MetricLoginRateLimited, Name: "goauthclient_login_rate_limited_total", Help: "Logins refused by the local cooldown."},
	{ID: goAuthClient.MetricLoginOffline, Name: "goauthclient_offline_rejected_total", Help: "Credential operations refused while offline."},
	{ID: goAuthClient.MetricRegisterSuccess, Name: "goauthclient_register_success_total", Help: "Successful registrations."},
	{ID: goAuthClient.MetricRegisterFailure, Name: "goauthclient_register_failure_total", Help: "Failed registrations."},
	{ID: goAuthClient.MetricRefreshSuccess, Name: "goauthclient_refresh_success_total", Help: "Successful token refreshes."},
	{ID: goAuthClient.MetricRefreshFailure, Name: "goauthclient_refresh_failure_total", Help: "Failed token refreshes."},
	{ID: goAuthClient.MetricRefreshScheduled, Name: "goauthclient_refresh_scheduled_total", Help: "Refresh timers armed."},
	{ID: goAuthClient.MetricRefreshDeduplicated, Name: "goauthclient_refresh_deduplicated_total", Help: "Refresh callers that joined an in-flight exchange."},
	{ID: goAuthClient.MetricLogout, Name: "goauthclient_logout_total", Help: "Logouts."},
	{ID: goAuthClient.MetricLogoutRemoteFailure, Name: "goauthclient_logout_remote_failure_total", Help: "Remote logout calls that failed or were skipped."},
	{ID: goAuthClient.MetricSessionExpired, Name: "goauthclient_session_expired_total", Help: "Sessions expired after an unauthorized response."},
	{ID: goAuthClient.MetricInitializeSuccess, Name: "goauthclient_initialize_success_total", Help: "Initializations that restored a session."},
	{ID: goAuthClient.MetricInitializeFailure, Name: "goauthclient_initialize_failure_total", Help: "Initializations that ended unauthenticated after an error."},
	{ID: goAuthClient.MetricStaleCompletion, Name: "goauthclient_stale_completion_total", Help: "Operation results discarded because the session changed."},
	{ID: goAuthClient.MetricStorageFailure, Name: "goauthclient_storage_failure_total", Help: "Credential storage reads or writes that failed."},
	{ID: goAuthClient.MetricValidationRejected, Name: "goauthclient_validation_rejected_total", Help: "Requests rejected by client-side validation."},
	{ID: goAuthClient.MetricProfileUpdated, Name: "goauthclient_profile_updated_total", Help: "Profile updates and reloads."},
	{ID: goAuthClient.MetricPasswordChanged, Name: "goauthclient_password_changed_total", Help: "Password changes."},
	{ID: goAuthClient.MetricPasswordResetRequested, Name: "goauthclient_password_reset_requested_total", Help: "Password reset requests."},
	{ID: goAuthClient.MetricPasswordResetCompleted, Name: "goauthclient_password_reset_completed_total", Help: "Completed password resets."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goAuthClient.MetricServiceLatency, Name: "goauthclient_service_latency_seconds", Help: "Credential service call latency."},
}

// HistogramBounds are the finite upper bounds, in seconds, of the first
// seven buckets. The eighth bucket is +Inf.
var HistogramBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix names each bucket, including +Inf, for exporters
// that publish buckets as separate instruments.
var HistogramBoundSuffix = []string{"0_005", "0_01", "0_025", "0_05", "0_1", "0_25", "0_5", "inf"}

// NormalizeBuckets copies raw into a fixed eight-bucket array, padding or
// truncating as needed.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	copy(out[:], raw)
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i, v := range raw {
		running += v
		out[i] = running
	}
	return out
}
