// Package config resolves where habitual keeps its data and which secrets it
// signs tokens with. Values come from flags, environment, an optional YAML file
// and the OS keyring, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/keyring"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/storage/memory"
	"github.com/julianstephens/habitual/internal/storage/postgres"
	"github.com/julianstephens/habitual/internal/storage/sqlite"
)

// KeyringTarget as the --config value reads the connection string from the OS keyring
const KeyringTarget = "keyring"

// LoadDotEnv loads KEY=value pairs from the given files (default ".env") into
// the environment. Missing files are ignored; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
		logger.Debug("Loaded environment file", "file", f)
	}
	return nil
}

// ExpandPath replaces a leading ~ with the user's home directory
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// StoreTarget is a resolved storage location
type StoreTarget struct {
	Value string
	// Trusted is set when Value came from the environment or the keyring, where
	// a connection string may carry its password.
	Trusted bool
}

// ResolveStoreTarget picks the storage location: HABITUAL_DB_CONNECTION, then
// the keyring when configValue is "keyring", then configValue itself.
func ResolveStoreTarget(configValue string) (StoreTarget, error) {
	if env := strings.TrimSpace(os.Getenv(constants.EnvDBConnection)); env != "" {
		return StoreTarget{Value: env, Trusted: true}, nil
	}

	if configValue == KeyringTarget {
		connStr, err := keyring.Get(keyring.ConnectionString)
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return StoreTarget{}, fmt.Errorf("no connection string in keyring, run '%s keyring set connection-string <value>' first", constants.AppName)
			}
			return StoreTarget{}, err
		}
		return StoreTarget{Value: connStr, Trusted: true}, nil
	}

	if strings.TrimSpace(configValue) == "" {
		configValue = constants.DefaultConfigPath
	}
	return StoreTarget{Value: configValue}, nil
}

// IsPostgres reports whether value is a PostgreSQL URL or key=value DSN
func IsPostgres(value string) bool {
	return postgres.IsConnString(value) || strings.Contains(value, "host=") || strings.Contains(value, "dbname=")
}

// NewStore builds the storage provider for target without opening it
func NewStore(target StoreTarget) (storage.Provider, error) {
	switch {
	case target.Value == constants.MemoryStoreScheme:
		return memory.NewStore(), nil
	case IsPostgres(target.Value):
		if !target.Trusted {
			if err := postgres.ValidateConnString(target.Value); err != nil {
				if errors.Is(err, postgres.ErrEmbeddedCredentials) {
					return nil, fmt.Errorf("%w: pass it through %s, the OS keyring ('%s keyring set connection-string') or .pgpass instead",
						err, constants.EnvDBConnection, constants.AppName)
				}
				return nil, err
			}
		}
		return postgres.New(target.Value), nil
	default:
		path, err := ExpandPath(target.Value)
		if err != nil {
			return nil, err
		}
		return sqlite.NewStore(path), nil
	}
}

// ResolveAuthSecret returns the token signing secret from the flag or
// environment value, falling back to the OS keyring.
func ResolveAuthSecret(value string) ([]byte, error) {
	if strings.TrimSpace(value) != "" {
		return []byte(value), nil
	}
	if env := strings.TrimSpace(os.Getenv(constants.EnvAuthSecret)); env != "" {
		return []byte(env), nil
	}

	secret, err := keyring.Get(keyring.AuthSecret)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, fmt.Errorf("no auth secret configured: set %s or run '%s keyring set auth-secret <value>'",
				constants.EnvAuthSecret, constants.AppName)
		}
		return nil, err
	}
	return []byte(secret), nil
}

// ConfigDir is the directory logs and backups live under for a store target
func ConfigDir(target StoreTarget) (string, error) {
	if target.Value == constants.MemoryStoreScheme || IsPostgres(target.Value) {
		return ExpandPath(filepath.Dir(constants.DefaultConfigPath))
	}
	path, err := ExpandPath(target.Value)
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}
