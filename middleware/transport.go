package middleware

import (
	"context"
	"net/http"

	goAuthClient "github.com/MrEthical07/goAuthClient"
)

// TokenSource supplies the bearer token and is told when the API stopped
// accepting it. *goAuthClient.Manager satisfies it.
type TokenSource interface {
	AccessToken() string
	Expire(ctx context.Context, reason string)
}

// BearerTransport authenticates outgoing API requests with the current
// access token.
//
// Requests are refused with goAuthClient.ErrOffline while Probe reports no
// connectivity. A 401 response to a request that carried a token expires the
// session; the response is still returned to the caller.
type BearerTransport struct {
	Base    http.RoundTripper
	Session TokenSource
	Probe   goAuthClient.NetworkProbe
}

// RoundTrip implements http.RoundTripper.
func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Probe != nil && !t.Probe.Online() {
		return nil, goAuthClient.ErrOffline
	}

	token := ""
	if t.Session != nil {
		token = t.Session.AccessToken()
	}
	if token != "" && req.Header.Get("Authorization") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized && token != "" {
		t.Session.Expire(req.Context(), "unauthorized response from "+req.URL.Host)
	}
	return resp, nil
}
