package jwt

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the decoded payload segment of a bearer token.
type Claims map[string]any

var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// Decode returns the claim set carried in the second dot-delimited segment of
// token. It reports false when the token has fewer than two segments or the
// segment is not base64url-encoded JSON object. The signature is not checked.
func Decode(token string) (Claims, bool) {
	parts := strings.Split(token, ".")
	if len(parts) < 2 || parts[1] == "" {
		return nil, false
	}

	raw, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return nil, false
	}

	var claims map[string]any
	if err := json.Unmarshal(raw, &claims); err != nil || claims == nil {
		return nil, false
	}

	return Claims(claims), true
}

// ExpiresAt returns the numeric exp claim as a time, if present and numeric.
func (c Claims) ExpiresAt() (time.Time, bool) {
	if c == nil {
		return time.Time{}, false
	}
	exp, err := jwt.MapClaims(c).GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Subject returns the sub or uid claim, whichever is set first.
func (c Claims) Subject() string {
	if sub, err := jwt.MapClaims(c).GetSubject(); err == nil && sub != "" {
		return sub
	}
	uid, _ := c["uid"].(string)
	return uid
}

// ExpiresAt decodes token and returns its expiry. Undecodable tokens and tokens
// without a numeric exp claim report false.
func ExpiresAt(token string) (time.Time, bool) {
	claims, ok := Decode(token)
	if !ok {
		return time.Time{}, false
	}
	return claims.ExpiresAt()
}
