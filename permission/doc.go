// Package permission provides a 64-bit permission mask, a registry mapping
// permission names to bits, and role sets composed from them.
//
// The credential backends in this module use it to derive the
// permission list carried on each user record from the user's role.
//
// # What this package must NOT do
//
//   - Access storage or the network.
//   - Import goAuthClient, jwt, or storage.
//   - Reassign bits after registration.
package permission
