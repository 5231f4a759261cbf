// Package internal holds helpers private to goAuthClient: opaque token
// generation for the in-process credential backend.
//
// Sub-packages:
//
//   - audit: async event dispatch (Dispatcher and sinks)
//   - flows: pure orchestration of restore, refresh and logout
//   - rate: login attempt cooldown policy
//   - schedule: single-shot refresh timer
//   - stores: credential triple persistence across storage areas
package internal
