package secrets

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// Service is the keychain service name the API token is stored under
const Service = "yatco-sync"

// Token reads the API token for account from the OS keychain.
// A missing entry is not an error and yields "".
func Token(account string) (string, error) {
	token, err := keyring.Get(Service, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read token from keychain: %w", err)
	}
	return token, nil
}

// SetToken stores the API token for account in the OS keychain
func SetToken(account, token string) error {
	if err := keyring.Set(Service, account, token); err != nil {
		return fmt.Errorf("failed to store token in keychain: %w", err)
	}
	return nil
}
