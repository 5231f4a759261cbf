package storage

import (
	"context"
	"errors"
)

// ErrUnavailable reports that an area backend could not complete an operation.
var ErrUnavailable = errors.New("storage area unavailable")

// Scope selects which area receives a credential write.
type Scope uint8

const (
	// ScopeEphemeral lasts for the current process only.
	ScopeEphemeral Scope = iota
	// ScopeDurable survives process restarts.
	ScopeDurable
)

func (s Scope) String() string {
	switch s {
	case ScopeDurable:
		return "durable"
	case ScopeEphemeral:
		return "ephemeral"
	default:
		return "unknown"
	}
}

// Area is a string key-value store.
//
// Get reports ok=false for missing keys. SetMany writes all entries or none
// where the backend supports it. Remove ignores missing keys.
type Area interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	SetMany(ctx context.Context, entries map[string]string) error
	Remove(ctx context.Context, keys ...string) error
}
