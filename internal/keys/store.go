package keys

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mithrel/lessonplan/internal/config"
)

// TokenStore provides access to the bearer token used against /ask.
type TokenStore interface {
	Get() (string, error)
	Put(token string) error
	Delete() error
}

var ErrKeyNotFound = errors.New("token not found")

// ConfigStore keeps the token as auth.token in a TOML config file.
type ConfigStore struct {
	Path string
}

func (s *ConfigStore) Get() (string, error) {
	v := viper.New()
	v.SetConfigFile(s.Path)
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrKeyNotFound
		}
		return "", err
	}
	tok := v.GetString("auth.token")
	if tok == "" {
		return "", ErrKeyNotFound
	}
	return tok, nil
}

func (s *ConfigStore) Put(token string) error {
	existing, err := s.read()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.Path, []byte(config.SetKey(existing, "auth", "token", token)), 0o600)
}

func (s *ConfigStore) Delete() error {
	existing, err := s.read()
	if err != nil {
		return err
	}
	out, removed := config.DeleteKey(existing, "auth", "token")
	if !removed {
		return nil
	}
	return os.WriteFile(s.Path, []byte(out), 0o600)
}

func (s *ConfigStore) read() (string, error) {
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	return string(b), err
}

// Open returns the store selected by auth.key_provider.
func Open(v *viper.Viper, configPath string) (TokenStore, error) {
	switch p := v.GetString("auth.key_provider"); p {
	case "", "config":
		return &ConfigStore{Path: configPath}, nil
	case "keyring":
		if !KeyringAvailable() {
			return nil, errors.New("system keyring unavailable; set auth.key_provider = \"config\"")
		}
		return &KeyringStore{Account: AccountFor(v.GetString("server_url"))}, nil
	default:
		return nil, fmt.Errorf("unknown key provider %q", p)
	}
}

// Resolve returns the token to send. An explicit auth.token (config file,
// LESSONPLAN_AUTH_TOKEN or flag) wins over the keyring.
func Resolve(v *viper.Viper) (string, error) {
	if tok := strings.TrimSpace(v.GetString("auth.token")); tok != "" {
		return tok, nil
	}
	if v.GetString("auth.key_provider") != "keyring" {
		return "", nil
	}
	ks := &KeyringStore{Account: AccountFor(v.GetString("server_url"))}
	tok, err := ks.Get()
	if errors.Is(err, ErrKeyNotFound) {
		return "", nil
	}
	return tok, err
}
