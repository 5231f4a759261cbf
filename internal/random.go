package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
)

// TokenID identifies the server-side record an opaque token points at.
type TokenID [16]byte

// Secret is the random half of an opaque token. Only its digest is stored.
type Secret [32]byte

const opaqueTokenSize = len(TokenID{}) + len(Secret{})

// ErrMalformedToken is returned by DecodeToken and ParseTokenID.
var ErrMalformedToken = errors.New("malformed opaque token")

func NewTokenID() (TokenID, error) {
	var id TokenID
	_, err := rand.Read(id[:])
	return id, err
}

func (id TokenID) String() string {
	return base64.RawURLEncoding.EncodeToString(id[:])
}

func ParseTokenID(s string) (TokenID, error) {
	var id TokenID
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil || len(raw) != len(id) {
		return id, ErrMalformedToken
	}
	copy(id[:], raw)
	return id, nil
}

func NewSecret() (Secret, error) {
	var s Secret
	_, err := rand.Read(s[:])
	return s, err
}

// Digest is the value persisted in place of the secret.
func (s Secret) Digest() [32]byte {
	return sha256.Sum256(s[:])
}

// Matches compares s against a stored digest in constant time.
func (s Secret) Matches(digest [32]byte) bool {
	d := s.Digest()
	return subtle.ConstantTimeCompare(d[:], digest[:]) == 1
}

// EncodeToken packs id and secret into one base64url string.
func EncodeToken(id TokenID, s Secret) string {
	var raw [opaqueTokenSize]byte
	copy(raw[:len(id)], id[:])
	copy(raw[len(id):], s[:])
	return base64.RawURLEncoding.EncodeToString(raw[:])
}

func DecodeToken(token string) (TokenID, Secret, error) {
	var (
		id TokenID
		s  Secret
	)
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) != opaqueTokenSize {
		return id, s, ErrMalformedToken
	}
	copy(id[:], raw[:len(id)])
	copy(s[:], raw[len(id):])
	return id, s, nil
}

// NewOpaqueToken returns a fresh id, its encoded token and the secret digest
// to store under the id.
func NewOpaqueToken() (TokenID, string, [32]byte, error) {
	id, err := NewTokenID()
	if err != nil {
		return id, "", [32]byte{}, err
	}
	s, err := NewSecret()
	if err != nil {
		return id, "", [32]byte{}, err
	}
	return id, EncodeToken(id, s), s.Digest(), nil
}
