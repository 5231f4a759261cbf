// Package audit implements async event dispatching for session lifecycle events.
//
// # Components
//
//   - [Sink] — interface for event consumers (channel, JSON writer, no-op).
//   - [Dispatcher] — buffered async relay with drop-if-full / block-if-full
//     semantics. It is generic so user-facing notifications share the same
//     delivery path as audit events.
//   - [Event] — structured audit record with timestamp, type, user, session and metadata.
//
// # Architecture boundaries
//
// This package owns event buffering and sink delivery. It does NOT decide which events
// to emit; that belongs to the Manager.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on business logic.
//   - Import goAuthClient or any sibling internal package.
package audit
