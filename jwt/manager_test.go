package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"strings"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

func newEdKeys(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate ed25519 key: %v", err)
	}
	return pub, priv
}

func TestIssueAndVerifyHS256(t *testing.T) {
	m, err := NewManager(Config{AccessTTL: time.Minute, SigningMethod: MethodHS256, PrivateKey: []byte("secret-secret-secret-secret"), Issuer: "storefront"})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	token, err := m.Issue("u1", "s1", "seller", []string{"products:write"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UID != "u1" || claims.SID != "s1" || claims.Role != "seller" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	exp, ok := ExpiresAt(token)
	if !ok || !exp.Equal(claims.ExpiresAt.Time) {
		t.Fatalf("unverified decode disagrees with verified claims: %v vs %v", exp, claims.ExpiresAt)
	}
}

func TestVerifyRejectsWrongAlgorithm(t *testing.T) {
	pub, _ := newEdKeys(t)
	m, err := NewManager(Config{AccessTTL: time.Minute, SigningMethod: MethodEd25519, PublicKey: pub})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	claims := AccessClaims{SID: "s1", RegisteredClaims: gjwt.RegisteredClaims{ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute))}}
	token, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, claims).SignedString([]byte("secret-secret-secret-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := m.Verify(token); err == nil {
		t.Fatal("expected wrong algorithm to be rejected")
	}
	if err := m.VerifySignature(token); err == nil {
		t.Fatal("expected wrong algorithm to fail signature check")
	}
}

func TestVerifySignatureAcceptsExpiredToken(t *testing.T) {
	pub, priv := newEdKeys(t)
	m, err := NewManager(Config{AccessTTL: time.Minute, SigningMethod: MethodEd25519, PrivateKey: priv, PublicKey: pub})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	token, err := m.IssueWithTTL("u1", "s1", "customer", nil, -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(token); err == nil {
		t.Fatal("expected expired token to fail full verification")
	}
	if err := m.VerifySignature(token); err != nil {
		t.Fatalf("expected signature check to pass for expired token: %v", err)
	}

	sigStart := strings.LastIndex(token, ".") + 1
	replacement := byte('A')
	if token[sigStart+4] == 'A' {
		replacement = 'B'
	}
	tampered := token[:sigStart+4] + string(replacement) + token[sigStart+5:]
	if err := m.VerifySignature(tampered); err == nil {
		t.Fatal("expected tampered signature to be rejected")
	}
}

func TestNewManagerValidation(t *testing.T) {
	pub, _ := newEdKeys(t)
	cases := []struct {
		name string
		cfg  Config
	}{
		{"negative ttl", Config{AccessTTL: -time.Second, SigningMethod: MethodHS256, PrivateKey: []byte("k")}},
		{"leeway too large", Config{AccessTTL: time.Minute, SigningMethod: MethodHS256, PrivateKey: []byte("k"), Leeway: time.Hour}},
		{"hs256 without secret", Config{AccessTTL: time.Minute, SigningMethod: MethodHS256}},
		{"ed25519 without public key", Config{AccessTTL: time.Minute, SigningMethod: MethodEd25519}},
		{"ed25519 bad public key", Config{AccessTTL: time.Minute, SigningMethod: MethodEd25519, PublicKey: pub[:10]}},
		{"unknown method", Config{AccessTTL: time.Minute, SigningMethod: "rs256"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewManager(tc.cfg); err == nil {
				t.Fatal("expected config to be rejected")
			}
		})
	}
}

func TestIssueRequiresTTLAndPrivateKey(t *testing.T) {
	pub, _ := newEdKeys(t)
	m, err := NewManager(Config{SigningMethod: MethodEd25519, PublicKey: pub})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if _, err := m.Issue("u1", "s1", "", nil); err == nil {
		t.Fatal("expected issue without TTL to fail")
	}
	if _, err := m.IssueWithTTL("u1", "s1", "", nil, time.Minute); err == nil {
		t.Fatal("expected issue without private key to fail")
	}
}
