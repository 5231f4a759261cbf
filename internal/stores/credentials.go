package stores

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goAuthClient/storage"
)

// ErrCredentialsMissing reports that neither area holds a complete triple.
var ErrCredentialsMissing = errors.New("stored credentials missing")

// Keys names the three entries that make up a stored credential triple.
type Keys struct {
	AccessToken  string
	RefreshToken string
	User         string
}

func (k Keys) all() []string {
	return []string{k.AccessToken, k.RefreshToken, k.User}
}

// Credentials is the persisted triple. User holds the encoded user record.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	User         []byte
}

// Complete reports whether all three parts are present.
func (c Credentials) Complete() bool {
	return c.AccessToken != "" && c.RefreshToken != "" && len(c.User) > 0
}

// CredentialStore persists a credential triple into exactly one of two areas.
type CredentialStore struct {
	durable   storage.Area
	ephemeral storage.Area
	keys      Keys
}

func NewCredentialStore(durable, ephemeral storage.Area, keys Keys) *CredentialStore {
	return &CredentialStore{
		durable:   durable,
		ephemeral: ephemeral,
		keys:      keys,
	}
}

func (s *CredentialStore) area(scope storage.Scope) storage.Area {
	if scope == storage.ScopeDurable {
		return s.durable
	}
	return s.ephemeral
}

func (s *CredentialStore) other(scope storage.Scope) storage.Area {
	if scope == storage.ScopeDurable {
		return s.ephemeral
	}
	return s.durable
}

// Store removes any copy held by the other area, then writes the triple into
// the area selected by scope. An incomplete triple is rejected.
func (s *CredentialStore) Store(ctx context.Context, c Credentials, scope storage.Scope) error {
	if !c.Complete() {
		return errors.New("credential triple incomplete")
	}
	if err := s.other(scope).Remove(ctx, s.keys.all()...); err != nil {
		return fmt.Errorf("clear %s area: %w", otherScope(scope), err)
	}

	err := s.area(scope).SetMany(ctx, map[string]string{
		s.keys.AccessToken:  c.AccessToken,
		s.keys.RefreshToken: c.RefreshToken,
		s.keys.User:         string(c.User),
	})
	if err != nil {
		return fmt.Errorf("write %s area: %w", scope, err)
	}
	return nil
}

// Clear removes the triple from both areas. Both removals are attempted even
// when the first fails.
func (s *CredentialStore) Clear(ctx context.Context) error {
	keys := s.keys.all()
	errDurable := s.durable.Remove(ctx, keys...)
	errEphemeral := s.ephemeral.Remove(ctx, keys...)
	return errors.Join(errDurable, errEphemeral)
}

// Load returns the stored triple, preferring the durable area. A partially
// populated area counts as empty.
func (s *CredentialStore) Load(ctx context.Context) (Credentials, storage.Scope, error) {
	for _, scope := range []storage.Scope{storage.ScopeDurable, storage.ScopeEphemeral} {
		c, err := s.read(ctx, s.area(scope))
		if err != nil {
			return Credentials{}, scope, fmt.Errorf("read %s area: %w", scope, err)
		}
		if c.Complete() {
			return c, scope, nil
		}
	}
	return Credentials{}, storage.ScopeEphemeral, ErrCredentialsMissing
}

// UpdateUser rewrites the user entry in whichever area holds the tokens.
func (s *CredentialStore) UpdateUser(ctx context.Context, user []byte) error {
	_, scope, err := s.Load(ctx)
	if err != nil {
		return err
	}
	return s.area(scope).Set(ctx, s.keys.User, string(user))
}

func (s *CredentialStore) read(ctx context.Context, area storage.Area) (Credentials, error) {
	var c Credentials
	var ok bool
	var err error

	if c.AccessToken, ok, err = area.Get(ctx, s.keys.AccessToken); err != nil || !ok {
		return Credentials{}, err
	}
	if c.RefreshToken, ok, err = area.Get(ctx, s.keys.RefreshToken); err != nil || !ok {
		return Credentials{}, err
	}
	user, ok, err := area.Get(ctx, s.keys.User)
	if err != nil || !ok {
		return Credentials{}, err
	}
	c.User = []byte(user)
	return c, nil
}

func otherScope(scope storage.Scope) storage.Scope {
	if scope == storage.ScopeDurable {
		return storage.ScopeEphemeral
	}
	return storage.ScopeDurable
}
