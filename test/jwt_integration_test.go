//go:build integration
// +build integration

package test

import (
	"testing"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/jwt"
	"github.com/MrEthical07/goAuthClient/mockserver"
	"github.com/MrEthical07/goAuthClient/storage"
)

func verifyingWith(key string) func(*goAuthClient.Builder) {
	return func(b *goAuthClient.Builder) {
		cfg := goAuthClient.DefaultConfig()
		cfg.Metrics.Enabled = true
		cfg.Token = goAuthClient.TokenConfig{
			VerifySignature: true,
			SigningMethod:   jwt.MethodHS256,
			Key:             []byte(key),
		}
		b.WithConfig(cfg)
	}
}

func TestSignatureCheckAdoptsTokensFromTrustedIssuer(t *testing.T) {
	api := startAPI(t, newBackend(t), mockserver.Options{})
	area := storage.NewMemory()
	login(t, newManager(t, api, area), "admin@example.com", "admin123", true)

	m := newManager(t, api, area, verifyingWith(signingKey))
	if !m.IsAuthenticated() {
		t.Fatal("expected session restored")
	}
	if metric(m, goAuthClient.MetricRefreshSuccess) != 0 {
		t.Fatal("a correctly signed token must not be refreshed")
	}
}

func TestSignatureCheckRefreshesForgedTokens(t *testing.T) {
	api := startAPI(t, newBackend(t), mockserver.Options{})
	area := storage.NewMemory()
	login(t, newManager(t, api, area), "admin@example.com", "admin123", true)

	m := newManager(t, api, area, verifyingWith("some-other-key-0123456789abcdefgh"))
	if metric(m, goAuthClient.MetricRefreshSuccess) != 1 {
		t.Fatalf("expected a boot refresh, got %d", metric(m, goAuthClient.MetricRefreshSuccess))
	}
	if !m.IsAuthenticated() {
		t.Fatal("expected refreshed session")
	}
}
