// Package middleware connects a session manager to net/http.
//
//   - [BearerTransport] is an http.RoundTripper for outgoing API calls. It
//     injects the access token and refuses requests while offline. A 401
//     answer expires the session.
//   - [RequireSession] guards locally served views with the manager's
//     access decision.
//
// Neither parses tokens; every decision comes from the manager.
package middleware
