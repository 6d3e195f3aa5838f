package keys

import (
	"errors"
	"net/url"

	"github.com/zalando/go-keyring"
)

const DefaultKeyringService = "lessonplan"

// KeyringStore keeps the token in the system keyring, one entry per backend.
type KeyringStore struct {
	Service string
	Account string
}

func (s *KeyringStore) Get() (string, error) {
	val, err := keyring.Get(s.service(), s.Account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrKeyNotFound
		}
		return "", err
	}
	return val, nil
}

func (s *KeyringStore) Put(token string) error {
	return keyring.Set(s.service(), s.Account, token)
}

func (s *KeyringStore) Delete() error {
	err := keyring.Delete(s.service(), s.Account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

func (s *KeyringStore) service() string {
	if s != nil && s.Service != "" {
		return s.Service
	}
	return DefaultKeyringService
}

// AccountFor derives the keyring account name from a backend URL.
func AccountFor(serverURL string) string {
	if u, err := url.Parse(serverURL); err == nil && u.Host != "" {
		return u.Host
	}
	return serverURL
}

// KeyringAvailable reports whether a system keyring backend appears supported.
func KeyringAvailable() bool {
	_, err := keyring.Get(DefaultKeyringService, "_probe_")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
