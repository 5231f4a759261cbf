// Package goAuthClient manages the client side of an authenticated session:
// credential persistence, the session state machine, proactive token refresh
// and the local login throttle.
//
// A [Manager] is built once through [Builder.Build] and is safe to call from
// multiple goroutines. Every state change is applied atomically in dispatch
// order, and subscribers observe snapshots in that same order.
//
// # Architecture boundaries
//
// goAuthClient is the public surface. It exposes [Manager], [Builder],
// [Config], the [CredentialService] port and value types ([State], [User],
// [MetricsSnapshot]). Credential persistence, restore/refresh/logout flow
// decisions, timer ownership and audit dispatch live under internal/ and are
// never exported.
//
// # What this package must NOT do
//
//   - Verify access tokens for authorization. Token expiry is read without
//     signature checks unless [TokenConfig] enables them, and it only drives
//     scheduling and boot-time restore.
//   - Retry a failed refresh. The session is cleared and the user must log in.
//   - Import any sub-package that re-imports goAuthClient (no import cycles).
package goAuthClient
