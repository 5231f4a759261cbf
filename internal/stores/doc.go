// Package stores persists the credential triple (access token, refresh token,
// encoded user) for goAuthClient.
//
// # Design
//
// A [CredentialStore] spans two [storage.Area] values, durable and ephemeral.
// A triple lives in exactly one of them: Store removes the keys from the other
// area before writing all three with a single SetMany. Load prefers the
// durable area and only returns a triple when all three parts are present.
// Clear removes the keys from both areas.
//
// # Architecture boundaries
//
// This package owns where credentials live, not what they mean. It never
// decodes tokens, judges expiry or decides whether a session is valid; those
// decisions belong to internal/flows and the Manager.
//
// # What this package must NOT do
//
//   - Import goAuthClient or any sibling internal package.
//   - Log token values.
//   - Leave a partial triple behind in an area it wrote to.
package stores
