package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

const (
	keychainService = "careersync"
	apiTokenAccount = "api_token"
)

// Keychain abstracts the platform secret store for testing.
// macOS uses Keychain via the security CLI; other platforms fall back
// to a secrets file in the data directory.
type Keychain interface {
	Get(service, account string) (string, error)
	Set(service, account, value string) error
}

type platformKeychain struct{}

// NewKeychain returns the platform secret store.
func NewKeychain() Keychain {
	return platformKeychain{}
}

func (platformKeychain) Get(service, account string) (string, error) {
	out, err := keychainGet(service, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (platformKeychain) Set(service, account, value string) error {
	return keychainSet(service, account, value)
}

// GetAPIToken returns the bearer token protecting the management API,
// generating and persisting one on first use. The CAREERSYNC_API_TOKEN
// environment variable overrides the stored token.
func GetAPIToken(kc Keychain) (string, error) {
	if v := os.Getenv("CAREERSYNC_API_TOKEN"); v != "" {
		return v, nil
	}
	if token, err := kc.Get(keychainService, apiTokenAccount); err == nil && token != "" {
		return token, nil
	}

	token := uuid.New().String()
	if err := kc.Set(keychainService, apiTokenAccount, token); err != nil {
		return "", fmt.Errorf("persisting API token: %w", err)
	}
	return token, nil
}
