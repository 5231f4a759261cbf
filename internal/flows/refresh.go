package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/goAuthClient/internal/stores"
	"github.com/MrEthical07/goAuthClient/storage"
)

// RefreshFailureKind classifies refresh flow failures for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureOffline
	RefreshFailureNoRefreshToken
	RefreshFailureStorage
	RefreshFailureExchange
	RefreshFailureIncomplete
)

// Grant is the token pair returned by an exchange. User is the encoded user
// record, empty when the service did not return one.
type Grant struct {
	AccessToken  string
	RefreshToken string
	User         []byte
}

// RefreshDeps captures refresh flow dependencies.
type RefreshDeps struct {
	Online   func() bool
	Load     func(context.Context) (stores.Credentials, storage.Scope, error)
	Exchange func(ctx context.Context, refreshToken string) (Grant, error)
}

// RefreshResult carries either the new credentials or failure metadata.
// On success Next holds the triple to persist into Scope.
type RefreshResult struct {
	Failure  RefreshFailureKind
	Err      error
	Previous stores.Credentials
	Scope    storage.Scope
	Next     stores.Credentials
}

// RunRefresh exchanges the stored refresh token for a new pair. It performs
// no writes; persisting Next is left to the caller.
func RunRefresh(ctx context.Context, deps RefreshDeps) RefreshResult {
	if deps.Online != nil && !deps.Online() {
		return RefreshResult{Failure: RefreshFailureOffline}
	}

	prev, scope, err := deps.Load(ctx)
	if err != nil {
		if errors.Is(err, stores.ErrCredentialsMissing) {
			return RefreshResult{Failure: RefreshFailureNoRefreshToken, Err: err}
		}
		return RefreshResult{Failure: RefreshFailureStorage, Err: err}
	}
	if prev.RefreshToken == "" {
		return RefreshResult{Failure: RefreshFailureNoRefreshToken, Scope: scope}
	}

	grant, err := deps.Exchange(ctx, prev.RefreshToken)
	if err != nil {
		return RefreshResult{
			Failure:  RefreshFailureExchange,
			Err:      err,
			Previous: prev,
			Scope:    scope,
		}
	}

	next := stores.Credentials{
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		User:         grant.User,
	}
	if len(next.User) == 0 {
		next.User = prev.User
	}
	if !next.Complete() {
		return RefreshResult{
			Failure:  RefreshFailureIncomplete,
			Previous: prev,
			Scope:    scope,
		}
	}

	return RefreshResult{
		Previous: prev,
		Scope:    scope,
		Next:     next,
	}
}
