// Package flows contains pure-function orchestrators for the session
// operations that touch storage and the credential service.
//
// Each flow function (RunRestore, RunRefresh, RunLogout) accepts a typed
// dependency struct and returns a result value describing what happened. The
// caller owns the session state and commits the result under its own lock.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goAuthClient (to avoid import cycles).
//   - Dispatch state events. Results are mapped to events by the Manager.
package flows
