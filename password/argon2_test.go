package password

import (
	"errors"
	"strings"
	"testing"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Memory = 8 * 1024
	cfg.Time = 1
	return cfg
}

func newTestHasher(t *testing.T, cfg Config) *Hasher {
	t.Helper()
	h, err := NewHasher(cfg)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	return h
}

func TestHashAndVerify(t *testing.T) {
	h := newTestHasher(t, testConfig())

	hash, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected PHC prefix: %s", hash)
	}

	ok, err := h.Verify("secret1", hash)
	if err != nil || !ok {
		t.Fatalf("Verify = %v, %v", ok, err)
	}
	ok, err = h.Verify("secret2", hash)
	if err != nil || ok {
		t.Fatalf("wrong password Verify = %v, %v", ok, err)
	}
}

func TestHashesAreSalted(t *testing.T) {
	h := newTestHasher(t, testConfig())
	a, _ := h.Hash("same-password")
	b, _ := h.Hash("same-password")
	if a == b {
		t.Fatalf("expected distinct salts")
	}
}

func TestPasswordLengthBounds(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPasswordBytes = 16
	h := newTestHasher(t, cfg)

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"empty", "", true},
		{"below minimum", "12345", true},
		{"at minimum", "123456", false},
		{"at maximum", strings.Repeat("a", 16), false},
		{"above maximum", strings.Repeat("a", 17), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Hash(tt.password)
			if tt.wantErr && !errors.Is(err, ErrPasswordLength) {
				t.Fatalf("expected ErrPasswordLength, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestVerifyDoesNotEnforceMinimum(t *testing.T) {
	short := testConfig()
	short.MinPasswordBytes = 3
	hash, err := newTestHasher(t, short).Hash("abcd")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	ok, err := newTestHasher(t, testConfig()).Verify("abcd", hash)
	if err != nil || !ok {
		t.Fatalf("expected legacy short password to verify, got %v, %v", ok, err)
	}
}

func TestVerifyRejectsOverlongPassword(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPasswordBytes = 16
	h := newTestHasher(t, cfg)
	hash, _ := h.Hash("valid-pass")

	if _, err := h.Verify(strings.Repeat("c", 17), hash); !errors.Is(err, ErrPasswordLength) {
		t.Fatalf("expected ErrPasswordLength, got %v", err)
	}
}

func TestNeedsRehash(t *testing.T) {
	weak := newTestHasher(t, testConfig())
	hash, _ := weak.Hash("secret1")

	if again, err := weak.NeedsRehash(hash); err != nil || again {
		t.Fatalf("same parameters: %v, %v", again, err)
	}

	strong := testConfig()
	strong.Time = 3
	if again, err := newTestHasher(t, strong).NeedsRehash(hash); err != nil || !again {
		t.Fatalf("stronger parameters: %v, %v", again, err)
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	h := newTestHasher(t, testConfig())
	good, _ := h.Hash("secret1")
	parts := strings.Split(good, "$")

	cases := map[string]string{
		"empty":         "",
		"wrong algo":    strings.Replace(good, "argon2id", "argon2i", 1),
		"wrong version": strings.Replace(good, "v=19", "v=16", 1),
		"weak memory":   strings.Replace(good, "m=8192", "m=1024", 1),
		"extra param":   strings.Replace(good, "p=1", "p=1,x=2", 1),
		"dup param":     strings.Replace(good, "p=1", "t=1", 1),
		"short salt":    "$" + strings.Join([]string{parts[1], parts[2], parts[3], "c2FsdA", parts[5]}, "$"),
		"bad key":       "$" + strings.Join([]string{parts[1], parts[2], parts[3], parts[4], "!!"}, "$"),
	}
	for name, encoded := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := h.Verify("secret1", encoded); !errors.Is(err, ErrMalformedHash) {
				t.Fatalf("expected ErrMalformedHash, got %v", err)
			}
		})
	}
}

func TestNewHasherRejectsWeakConfig(t *testing.T) {
	mutations := map[string]func(*Config){
		"memory":      func(c *Config) { c.Memory = 1024 },
		"time":        func(c *Config) { c.Time = 0 },
		"parallelism": func(c *Config) { c.Parallelism = 0 },
		"salt":        func(c *Config) { c.SaltLength = 8 },
		"key":         func(c *Config) { c.KeyLength = 8 },
		"bounds":      func(c *Config) { c.MinPasswordBytes, c.MaxPasswordBytes = 10, 5 },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig()
			mutate(&cfg)
			if _, err := NewHasher(cfg); err == nil {
				t.Fatalf("expected config rejected")
			}
		})
	}
}
