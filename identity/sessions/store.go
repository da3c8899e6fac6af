// Package sessions owns the zero-or-one authenticated identity and the
// persisted last-used username. The two have distinct lifecycles: signing
// out clears the identity but keeps the username for sign-in prefill.
package sessions

import (
	"github.com/pkg/errors"

	"github.com/shellmonger/mynotes/identity"
	"github.com/shellmonger/mynotes/internal/observe"
	"github.com/shellmonger/mynotes/internal/utils"
	"github.com/shellmonger/mynotes/prefs"
)

const usernamePref = "authenticator-username"

var _ identity.SessionSink = (*Store)(nil)

type Store struct {
	current        *observe.Value[*identity.User]
	storedUsername *observe.Value[*string]
	prefs          *prefs.Store
}

// New creates the store, loading the persisted username if present.
func New(prefStore *prefs.Store) (*Store, error) {
	if prefStore == nil {
		return nil, errors.New("[sessions.New] prefs store is required")
	}

	s := &Store{
		current:        observe.New[*identity.User](),
		storedUsername: observe.New[*string](),
		prefs:          prefStore,
	}
	s.current.Set(nil) // initially signed out
	if username, ok := prefStore.Get(usernamePref); ok {
		s.storedUsername.Set(utils.Ptr(username))
	} else {
		s.storedUsername.Set(nil)
	}
	return s, nil
}

// CurrentUser returns the authenticated identity, or nil when signed out.
func (s *Store) CurrentUser() *identity.User {
	return s.current.Get()
}

// ObserveCurrentUser subscribes to identity changes.
func (s *Store) ObserveCurrentUser() (<-chan *identity.User, func()) {
	return s.current.Subscribe()
}

func (s *Store) SetCurrentUser(user *identity.User) {
	s.current.Set(user)
}

func (s *Store) ClearCurrentUser() {
	s.current.Set(nil)
}

// StoredUsername returns the persisted last-used username, or nil.
func (s *Store) StoredUsername() *string {
	return s.storedUsername.Get()
}

// ObserveStoredUsername subscribes to stored-username changes.
func (s *Store) ObserveStoredUsername() (<-chan *string, func()) {
	return s.storedUsername.Subscribe()
}

// SetStoredUsername persists the username synchronously, or removes the
// stored value when passed nil.
func (s *Store) SetStoredUsername(username *string) error {
	if username == nil {
		if err := s.prefs.Remove(usernamePref); err != nil {
			return errors.Wrap(err, "[Store.SetStoredUsername] Remove")
		}
	} else {
		if err := s.prefs.Set(usernamePref, *username); err != nil {
			return errors.Wrap(err, "[Store.SetStoredUsername] Set")
		}
	}
	s.storedUsername.Set(username)
	return nil
}
