package goAuthClient

import "errors"

var (
	// ErrOffline is returned when the network probe reports no connectivity.
	ErrOffline = errors.New("offline")
	// ErrRateLimited is returned while the login cooldown is active.
	ErrRateLimited = errors.New("login rate limited")
	// ErrCredentialRejected is an exported constant or variable used by the session manager.
	ErrCredentialRejected = errors.New("credentials rejected")
	// ErrTransportFailure is an exported constant or variable used by the session manager.
	ErrTransportFailure = errors.New("credential service unreachable")
	// ErrDecodeFailure is returned when a stored or received payload cannot be decoded.
	ErrDecodeFailure = errors.New("decode failure")
	// ErrRefreshRejected is returned by every failed refresh; the session has been cleared.
	ErrRefreshRejected = errors.New("refresh rejected")
	// ErrNoRefreshToken is an exported constant or variable used by the session manager.
	ErrNoRefreshToken = errors.New("no refresh token available")
	// ErrInvalidInput is returned when a request fails client-side validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotAuthenticated is an exported constant or variable used by the session manager.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNotInitialized is returned by operations that need a completed Initialize.
	ErrNotInitialized = errors.New("session manager not initialized")
	// ErrAlreadyInitialized is returned by a second call to Initialize.
	ErrAlreadyInitialized = errors.New("session manager already initialized")
	// ErrSessionChanged is returned when an operation completed after the
	// session it started under was replaced; its result was discarded.
	ErrSessionChanged = errors.New("session changed during operation")
	// ErrStorageUnavailable is an exported constant or variable used by the session manager.
	ErrStorageUnavailable = errors.New("credential storage unavailable")
	// ErrManagerClosed is an exported constant or variable used by the session manager.
	ErrManagerClosed = errors.New("session manager closed")
)
