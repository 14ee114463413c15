// Package credstore keeps shipctl API keys in the OS keychain.
package credstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/99designs/keyring"
)

const (
	serviceName    = "shipctl"
	DefaultProfile = "default"

	envKeyringPassword = "SHIPCTL_KEYRING_PASSWORD"

	backendAuto   = "auto"
	backendFile   = "file"
	backendSystem = "system"
)

// ErrNoCredentials is returned when neither the environment nor the keychain
// holds an API key.
var ErrNoCredentials = errors.New("no API key configured; run `shipctl auth login` or set SHIPKIT_API_KEY")

// openKeyring is replaced in tests with an in-memory keyring.
var openKeyring = func(cfg keyring.Config) (keyring.Keyring, error) {
	return keyring.Open(cfg)
}

// SetOpenKeyring replaces the keyring opener and returns a function that
// restores the original.
func SetOpenKeyring(fn func(keyring.Config) (keyring.Keyring, error)) func() {
	original := openKeyring
	openKeyring = fn
	return func() { openKeyring = original }
}

// Store reads and writes API keys under named profiles.
type Store struct {
	backend string
}

// New returns a Store using the given backend mode ("auto", "file" or
// "system"). Unknown values fall back to auto.
func New(backend string) *Store {
	return &Store{backend: backendMode(backend)}
}

func backendMode(backend string) string {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case backendFile:
		return backendFile
	case backendSystem, "os", "native":
		return backendSystem
	default:
		return backendAuto
	}
}

func (s *Store) config() keyring.Config {
	cfg := keyring.Config{ServiceName: serviceName}
	if s.backend == backendSystem {
		return cfg
	}

	cfg.FileDir = fileDir()
	cfg.FilePasswordFunc = filePassword

	// Headless Linux has no secret service to talk to.
	if s.backend == backendFile || os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	}
	return cfg
}

func fileDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, serviceName, "keyring")
	}
	return filepath.Join(os.TempDir(), serviceName, "keyring")
}

func filePassword(string) (string, error) {
	if password := os.Getenv(envKeyringPassword); password != "" {
		return password, nil
	}
	return "", fmt.Errorf("file keyring requires %s", envKeyringPassword)
}

func profileKey(profile string) string {
	if profile == "" {
		profile = DefaultProfile
	}
	return "profile:" + profile
}

// Save stores apiKey under profile.
func (s *Store) Save(profile, apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return errors.New("api key cannot be empty")
	}
	ring, err := openKeyring(s.config())
	if err != nil {
		return fmt.Errorf("failed to open keyring: %w", err)
	}
	if err := ring.Set(keyring.Item{
		Key:         profileKey(profile),
		Data:        []byte(apiKey),
		Label:       "shipctl API key",
		Description: "Shipping API key for profile " + profile,
	}); err != nil {
		return fmt.Errorf("failed to save api key: %w", err)
	}
	return nil
}

// Load returns the API key stored under profile.
func (s *Store) Load(profile string) (string, error) {
	ring, err := openKeyring(s.config())
	if err != nil {
		return "", fmt.Errorf("failed to open keyring: %w", err)
	}
	item, err := ring.Get(profileKey(profile))
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNoCredentials
		}
		return "", fmt.Errorf("failed to read api key: %w", err)
	}
	return string(item.Data), nil
}

// Delete removes the API key stored under profile. Deleting a missing
// profile is not an error.
func (s *Store) Delete(profile string) error {
	ring, err := openKeyring(s.config())
	if err != nil {
		return fmt.Errorf("failed to open keyring: %w", err)
	}
	if err := ring.Remove(profileKey(profile)); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("failed to remove api key: %w", err)
	}
	return nil
}

// Resolve picks the API key to use: envKey wins when set, otherwise the
// keychain entry for profile.
func (s *Store) Resolve(envKey, profile string) (string, error) {
	if key := strings.TrimSpace(envKey); key != "" {
		return key, nil
	}
	return s.Load(profile)
}
