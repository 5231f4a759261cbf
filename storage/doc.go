// Package storage defines the key-value areas that hold persisted credentials.
//
// Two areas back every session manager: a durable one that survives process
// restarts and an ephemeral one scoped to the current process. [Memory] is the
// reference implementation and the usual ephemeral area; redisarea and sqlarea
// provide durable backends.
//
// # What this package must NOT do
//
//   - Interpret stored values. Encoding belongs to the credential store.
//   - Perform network I/O itself. Backends own their clients.
package storage
