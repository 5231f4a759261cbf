// Package password hashes and verifies passwords for the in-process
// credential backend.
//
// Hashes are argon2id PHC strings:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<key>
//
// [Hasher.NeedsRehash] reports hashes produced with weaker parameters so a
// backend can re-hash after the next successful sign-in.
//
// The session manager never sees password hashes; only credential backends
// import this package.
package password
