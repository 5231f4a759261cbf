package flows

import "context"

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	Online func() bool
	Remote func(ctx context.Context, accessToken string) error
}

// LogoutResult reports what happened to the remote invalidation. Local
// clearing is always performed by the caller.
type LogoutResult struct {
	RemoteAttempted bool
	SkippedOffline  bool
	RemoteErr       error
}

// RunLogout asks the credential service to invalidate accessToken. It is
// best-effort: nothing is called without a token or while offline.
func RunLogout(ctx context.Context, accessToken string, deps LogoutDeps) LogoutResult {
	if accessToken == "" || deps.Remote == nil {
		return LogoutResult{}
	}
	if deps.Online != nil && !deps.Online() {
		return LogoutResult{SkippedOffline: true}
	}
	return LogoutResult{
		RemoteAttempted: true,
		RemoteErr:       deps.Remote(ctx, accessToken),
	}
}
