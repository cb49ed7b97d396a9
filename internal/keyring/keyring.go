package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/habitual/internal/constants"
)

var (
	// ErrNotFound is returned when no secret is stored under the requested name
	ErrNotFound = errors.New("secret not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Secret names an entry habitual keeps in the OS keyring
type Secret string

const (
	// ConnectionString is the PostgreSQL connection string, password included
	ConnectionString Secret = constants.DefaultKeyringUser
	// AuthSecret is the HMAC key bearer tokens are signed with
	AuthSecret Secret = constants.AuthKeyringUser
)

// ParseSecret maps a user-facing name onto a Secret
func ParseSecret(name string) (Secret, error) {
	switch name {
	case "connection-string", string(ConnectionString):
		return ConnectionString, nil
	case "auth-secret":
		return AuthSecret, nil
	default:
		return "", fmt.Errorf("unknown secret %q (expected connection-string or auth-secret)", name)
	}
}

// Get retrieves a secret. Returns ErrNotFound if nothing is stored.
func Get(name Secret) (string, error) {
	value, err := keyring.Get(constants.AppName, string(name))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return value, nil
}

// Set stores a secret, replacing any previous value
func Set(name Secret, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	if err := keyring.Set(constants.AppName, string(name), value); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", name, err)
	}
	return nil
}

// Delete removes a secret. Returns ErrNotFound if nothing was stored.
func Delete(name Secret) error {
	if err := keyring.Delete(constants.AppName, string(name)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", name, err)
	}
	return nil
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	// ErrNotFound means the keyring answered, it just has no such entry
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
