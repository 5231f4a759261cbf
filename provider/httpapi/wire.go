package httpapi

import (
	goAuthClient "github.com/MrEthical07/goAuthClient"
)

// Storefront auth routes, relative to the API base URL.
const (
	PathLogin          = "/auth/login"
	PathRegister       = "/auth/register"
	PathLogout         = "/auth/logout"
	PathRefresh        = "/auth/refresh"
	PathProfile        = "/auth/profile"
	PathChangePassword = "/auth/change-password"
	PathForgotPassword = "/auth/forgot-password"
	PathResetPassword  = "/auth/reset-password"
)

// Envelope wraps every response body.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// AuthPayload is the data of login, register and refresh responses.
type AuthPayload struct {
	User         *goAuthClient.User `json:"user,omitempty"`
	Token        string             `json:"token"`
	RefreshToken string             `json:"refreshToken"`
	ExpiresIn    int64              `json:"expires_in,omitempty"`
}

// RefreshBody is the request body of the refresh route.
type RefreshBody struct {
	RefreshToken string `json:"refreshToken"`
}

func toAuthResponse(p AuthPayload) *goAuthClient.AuthResponse {
	return &goAuthClient.AuthResponse{
		User:         p.User,
		Token:        p.Token,
		RefreshToken: p.RefreshToken,
		ExpiresIn:    p.ExpiresIn,
	}
}

// FromAuthResponse converts a service response to its wire form.
func FromAuthResponse(r *goAuthClient.AuthResponse) AuthPayload {
	return AuthPayload{
		User:         r.User,
		Token:        r.Token,
		RefreshToken: r.RefreshToken,
		ExpiresIn:    r.ExpiresIn,
	}
}
