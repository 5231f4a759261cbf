// Package jwt reads and issues bearer access tokens.
//
// [Decode] inspects the payload segment of a token without verifying its
// signature. The result is an expiry hint for scheduling and boot-time
// restore, never an authorization decision.
//
// [Manager] issues and verifies HS256 or Ed25519 signed tokens. It backs the
// in-memory credential provider and the optional signature check applied to
// stored tokens.
package jwt
