//go:build integration
// +build integration

package test

import (
	"context"
	"net/http/httptest"
	"testing"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/mockserver"
	"github.com/MrEthical07/goAuthClient/provider/httpapi"
	"github.com/MrEthical07/goAuthClient/provider/memory"
	"github.com/MrEthical07/goAuthClient/storage"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const signingKey = "integration-signing-key-0123456789abcdef"

func newBackend(t *testing.T) *memory.Service {
	t.Helper()
	cfg := memory.DefaultConfig([]byte(signingKey))
	cfg.Password.Memory, cfg.Password.Time = 8*1024, 1
	svc, err := memory.NewDemo(cfg)
	if err != nil {
		t.Fatalf("NewDemo: %v", err)
	}
	return svc
}

// startAPI serves svc over HTTP and returns a client for it.
func startAPI(t *testing.T, svc goAuthClient.CredentialService, opts mockserver.Options) *httpapi.Client {
	t.Helper()
	opts.Prefix = "/api"
	srv := httptest.NewServer(mockserver.NewRouter(svc, opts))
	t.Cleanup(srv.Close)

	client, err := httpapi.New(httpapi.Options{BaseURL: srv.URL + "/api"})
	if err != nil {
		t.Fatalf("httpapi.New: %v", err)
	}
	return client
}

func newMiniredis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return rdb
}

// newManager builds and initializes a Manager with metrics on. Extra options
// are applied to the builder before Build.
func newManager(t *testing.T, svc goAuthClient.CredentialService, durable storage.Area, extra ...func(*goAuthClient.Builder)) *goAuthClient.Manager {
	t.Helper()
	b := goAuthClient.New().
		WithCredentialService(svc).
		WithDurableArea(durable).
		WithMetricsEnabled(true)
	for _, fn := range extra {
		fn(b)
	}
	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(m.Close)
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return m
}

func login(t *testing.T, m *goAuthClient.Manager, email, password string, remember bool) {
	t.Helper()
	err := m.Login(context.Background(), goAuthClient.LoginRequest{Email: email, Password: password, RememberMe: remember})
	if err != nil {
		t.Fatalf("Login(%s): %v", email, err)
	}
}

func metric(m *goAuthClient.Manager, id goAuthClient.MetricID) uint64 {
	return m.MetricsSnapshot().Counters[id]
}
