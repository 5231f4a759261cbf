package flows

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goAuthClient/internal/stores"
	"github.com/MrEthical07/goAuthClient/storage"
)

// RestoreFailureKind classifies restore flow failures for root-level mapping.
type RestoreFailureKind int

const (
	RestoreFailureNone RestoreFailureKind = iota
	RestoreFailureNoCredentials
	RestoreFailureStorage
)

// Reasons reported when a stored access token cannot be trusted as is.
const (
	RestoreReasonExpired     = "expired"
	RestoreReasonUndecodable = "undecodable"
	RestoreReasonSignature   = "signature"
)

// RestoreDeps captures restore flow dependencies.
type RestoreDeps struct {
	Load            func(context.Context) (stores.Credentials, storage.Scope, error)
	ExpiresAt       func(token string) (time.Time, bool)
	VerifySignature func(token string) error
	Now             func() time.Time
}

// RestoreResult describes the stored session found at boot.
type RestoreResult struct {
	Failure      RestoreFailureKind
	Err          error
	Credentials  stores.Credentials
	Scope        storage.Scope
	ExpiresAt    time.Time
	NeedsRefresh bool
	Reason       string
}

// RunRestore loads the stored triple and decides whether its access token can
// be adopted directly or must be exchanged first.
func RunRestore(ctx context.Context, deps RestoreDeps) RestoreResult {
	creds, scope, err := deps.Load(ctx)
	if err != nil {
		if errors.Is(err, stores.ErrCredentialsMissing) {
			return RestoreResult{Failure: RestoreFailureNoCredentials}
		}
		return RestoreResult{Failure: RestoreFailureStorage, Err: err}
	}

	result := RestoreResult{
		Credentials: creds,
		Scope:       scope,
	}

	if deps.VerifySignature != nil {
		if err := deps.VerifySignature(creds.AccessToken); err != nil {
			result.NeedsRefresh = true
			result.Reason = RestoreReasonSignature
			result.Err = err
			return result
		}
	}

	exp, ok := deps.ExpiresAt(creds.AccessToken)
	if !ok {
		result.NeedsRefresh = true
		result.Reason = RestoreReasonUndecodable
		return result
	}
	result.ExpiresAt = exp
	if !exp.After(deps.Now()) {
		result.NeedsRefresh = true
		result.Reason = RestoreReasonExpired
	}
	return result
}
