// Package store keeps accounts in memory, keyed by app name.
//
// Every stored password is encrypted with the Cipher given to New. The store
// hands out copies only, so callers can decrypt what they fetch without
// touching the stored value. One mutex guards each operation; multi-step
// operations such as Modify are atomic to other callers.
package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/semmy-space/accman/internal/account"
	"github.com/semmy-space/accman/internal/password"
)

// Store is an in-memory account store.
type Store struct {
	mu       sync.Mutex
	cipher   *password.Cipher
	accounts map[string]account.Account
}

// New returns an empty store that encrypts passwords with c.
func New(c *password.Cipher) *Store {
	return &Store{
		cipher:   c,
		accounts: make(map[string]account.Account),
	}
}

// Cipher returns the cipher stored passwords are sealed with.
func (s *Store) Cipher() *password.Cipher { return s.cipher }

// Insert encrypts a's password and stores a under its app name.
func (s *Store) Insert(a account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[a.AppName()]; ok {
		return alreadyExists(a.AppName())
	}
	sealed, err := s.seal(a)
	if err != nil {
		return err
	}
	s.accounts[a.AppName()] = sealed
	return nil
}

// Delete removes the account stored under app.
func (s *Store) Delete(app string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[app]; !ok {
		return doesNotExist(app)
	}
	delete(s.accounts, app)
	return nil
}

// Modify replaces the account stored under app with next, which may carry a
// different app name. All preconditions are checked and next is sealed
// before the map changes, so a failed Modify leaves the store as it was.
func (s *Store) Modify(app string, next account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[app]; !ok {
		return doesNotExist(app)
	}
	if next.AppName() != app {
		if _, ok := s.accounts[next.AppName()]; ok {
			return alreadyExists(next.AppName())
		}
	}
	sealed, err := s.seal(next)
	if err != nil {
		return err
	}

	delete(s.accounts, app)
	s.accounts[next.AppName()] = sealed
	return nil
}

// Get returns a copy of the account stored under app. Its password is
// encrypted; decrypt it with Cipher.
func (s *Store) Get(app string) (account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[app]
	if !ok {
		return account.Account{}, doesNotExist(app)
	}
	return a, nil
}

// Count returns the number of stored accounts.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accounts)
}

// Keys returns the stored app names in order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys()
}

// List renders every account, ordered by app name. With reveal false the
// passwords are masked and nothing is decrypted. With reveal true each
// password is decrypted on a copy; the stored values stay encrypted.
func (s *Store) List(reveal bool) ([]account.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := s.keys()
	views := make([]account.View, 0, len(keys))
	for _, k := range keys {
		a := s.accounts[k]
		if !reveal {
			views = append(views, a.Masked())
			continue
		}
		v, err := a.Unmasked(s.cipher)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt password for %q: %w", k, err)
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *Store) keys() []string {
	keys := make([]string, 0, len(s.accounts))
	for k := range s.accounts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// seal returns a copy of a with its password encrypted.
func (s *Store) seal(a account.Account) (account.Account, error) {
	pw := a.Password()
	if err := pw.Encrypt(s.cipher); err != nil {
		return account.Account{}, fmt.Errorf("failed to encrypt password for %q: %w", a.AppName(), err)
	}
	return a.WithPassword(pw), nil
}
