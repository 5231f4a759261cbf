// Package memory is an in-process credential backend for demos and tests.
//
// Accounts carry argon2id password hashes and role-derived permissions.
// Sign-in issues an HS256 access token and an opaque refresh token that
// rotates on every use; replaying a superseded refresh token revokes the
// session. Nothing is persisted.
package memory
