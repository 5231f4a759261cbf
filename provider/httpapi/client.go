package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultTimeout bounds every request when Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

const maxBodyBytes = 1 << 20

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, for example "http://localhost:8080/api".
	BaseURL string
	Timeout time.Duration
	// Transport is wrapped with OpenTelemetry instrumentation. Nil uses
	// http.DefaultTransport.
	Transport http.RoundTripper
}

// APIError is a non-2xx response. It unwraps to
// goAuthClient.ErrCredentialRejected for 4xx statuses and to
// goAuthClient.ErrTransportFailure otherwise.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("auth api: status %d", e.Status)
	}
	return fmt.Sprintf("auth api: status %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	if e.Status >= 400 && e.Status < 500 {
		return goAuthClient.ErrCredentialRejected
	}
	return goAuthClient.ErrTransportFailure
}

// Client is a [goAuthClient.CredentialService] speaking the storefront
// JSON API.
type Client struct {
	base *url.URL
	http *http.Client
}

var _ goAuthClient.CredentialService = (*Client)(nil)

// New returns a Client for opts.BaseURL.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("httpapi: base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, errors.New("httpapi: base url must be http or https")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rt := opts.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	return &Client{
		base: base,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(rt),
		},
	}, nil
}

func (c *Client) Login(ctx context.Context, req goAuthClient.LoginRequest) (*goAuthClient.AuthResponse, error) {
	var out AuthPayload
	if err := c.do(ctx, http.MethodPost, PathLogin, "", req, &out); err != nil {
		return nil, err
	}
	return toAuthResponse(out), nil
}

func (c *Client) Register(ctx context.Context, req goAuthClient.RegisterRequest) (*goAuthClient.AuthResponse, error) {
	var out AuthPayload
	if err := c.do(ctx, http.MethodPost, PathRegister, "", req, &out); err != nil {
		return nil, err
	}
	return toAuthResponse(out), nil
}

func (c *Client) Logout(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, PathLogout, accessToken, nil, nil)
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*goAuthClient.AuthResponse, error) {
	var out AuthPayload
	if err := c.do(ctx, http.MethodPost, PathRefresh, "", RefreshBody{RefreshToken: refreshToken}, &out); err != nil {
		return nil, err
	}
	return toAuthResponse(out), nil
}

func (c *Client) GetProfile(ctx context.Context, accessToken string) (*goAuthClient.User, error) {
	var out goAuthClient.User
	if err := c.do(ctx, http.MethodGet, PathProfile, accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, accessToken string, update goAuthClient.ProfileUpdate) (*goAuthClient.User, error) {
	var out goAuthClient.User
	if err := c.do(ctx, http.MethodPut, PathProfile, accessToken, update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChangePassword(ctx context.Context, accessToken string, req goAuthClient.ChangePasswordRequest) error {
	return c.do(ctx, http.MethodPost, PathChangePassword, accessToken, req, nil)
}

func (c *Client) ForgotPassword(ctx context.Context, req goAuthClient.ForgotPasswordRequest) error {
	return c.do(ctx, http.MethodPost, PathForgotPassword, "", req, nil)
}

func (c *Client) ResetPassword(ctx context.Context, req goAuthClient.ResetPasswordRequest) error {
	return c.do(ctx, http.MethodPost, PathResetPassword, "", req, nil)
}

// do sends body as JSON and decodes the envelope's data into out when out
// is non-nil.
func (c *Client) do(ctx context.Context, method, path, bearer string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("httpapi: encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return fmt.Errorf("httpapi: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", goAuthClient.ErrTransportFailure, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", goAuthClient.ErrTransportFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env Envelope[json.RawMessage]
		_ = json.Unmarshal(raw, &env)
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	if out == nil {
		return nil
	}

	env := Envelope[json.RawMessage]{}
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: decode envelope: %v", goAuthClient.ErrTransportFailure, err)
	}
	if !env.Success {
		return &APIError{Status: http.StatusUnprocessableEntity, Message: env.Message}
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("%w: empty response data", goAuthClient.ErrTransportFailure)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: decode data: %v", goAuthClient.ErrTransportFailure, err)
	}
	return nil
}
