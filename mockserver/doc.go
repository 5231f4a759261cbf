// Package mockserver serves a [goAuthClient.CredentialService] over the
// storefront auth routes with chi, so the HTTP client, the CLI and the
// integration tests have a real API to talk to.
//
// Rejections become 4xx responses carrying the backend's message; any other
// backend error becomes 502.
package mockserver
