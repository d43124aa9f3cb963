package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/scrypt"

	"github.com/semmy-space/accman/internal/password"
	"github.com/semmy-space/accman/internal/secrets"
)

// Environment variables consulted by ResolveKey.
const (
	EnvKey        = "ACCMAN_KEY"
	EnvPassphrase = "ACCMAN_PASSPHRASE"
)

// scrypt parameters for passphrase-derived keys
const (
	kdfN        = 1 << 15
	kdfR        = 8
	kdfP        = 1
	kdfSaltSize = 16
)

// KeySource says where ResolveKey found the master key.
type KeySource string

const (
	KeySourceEnv        KeySource = "environment (" + EnvKey + ")"
	KeySourcePassphrase KeySource = "passphrase (" + EnvPassphrase + " + kdf_salt)"
	KeySourceSecrets    KeySource = "secrets store"
)

// ErrNoKey means no source supplied a master key.
var ErrNoKey = errors.New("no master key configured")

// StoreOpener opens the secrets store on demand, so sources checked earlier
// never touch the keyring.
type StoreOpener func() (secrets.Store, error)

// ResolveKey returns the 32-byte master key, trying in order:
// ACCMAN_KEY (hex), ACCMAN_PASSPHRASE with the configured kdf_salt, and the
// master_key entry of the secrets store.
func ResolveKey(cfg *Config, open StoreOpener) ([]byte, KeySource, error) {
	if v := strings.TrimSpace(os.Getenv(EnvKey)); v != "" {
		key, err := DecodeKey(v)
		if err != nil {
			return nil, "", fmt.Errorf("invalid %s: %w", EnvKey, err)
		}
		return key, KeySourceEnv, nil
	}

	if pass := os.Getenv(EnvPassphrase); pass != "" {
		if cfg.KDFSalt == "" {
			return nil, "", fmt.Errorf("%w: %s is set but kdf_salt is not (run: accman key init --passphrase)", ErrNoKey, EnvPassphrase)
		}
		key, err := DeriveKey(pass, cfg.KDFSalt)
		if err != nil {
			return nil, "", err
		}
		return key, KeySourcePassphrase, nil
	}

	store, err := open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open secrets store: %w", err)
	}
	v, err := store.Get(secrets.MasterKeyName)
	if err != nil {
		if errors.Is(err, secrets.ErrNotFound) {
			return nil, "", fmt.Errorf("%w (run: accman key init, or set %s)", ErrNoKey, EnvKey)
		}
		return nil, "", fmt.Errorf("failed to read master key: %w", err)
	}
	key, err := DecodeKey(v)
	if err != nil {
		return nil, "", fmt.Errorf("stored master key is invalid: %w", err)
	}
	return key, KeySourceSecrets, nil
}

// DecodeKey parses a hex-encoded 32-byte key.
func DecodeKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("key is not hex: %w", err)
	}
	if len(key) != password.KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", password.KeySize, len(key))
	}
	return key, nil
}

// NewKey returns a random hex-encoded 32-byte key.
func NewKey() (string, error) {
	key := make([]byte, password.KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return hex.EncodeToString(key), nil
}

// NewSalt returns a random hex-encoded salt for DeriveKey.
func NewSalt() (string, error) {
	salt := make([]byte, kdfSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return hex.EncodeToString(salt), nil
}

// DeriveKey stretches passphrase into a 32-byte key with scrypt.
func DeriveKey(passphrase, hexSalt string) ([]byte, error) {
	salt, err := decodeSalt(hexSalt)
	if err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(passphrase), salt, kdfN, kdfR, kdfP, password.KeySize)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}

func decodeSalt(hexSalt string) ([]byte, error) {
	salt, err := hex.DecodeString(hexSalt)
	if err != nil {
		return nil, fmt.Errorf("kdf_salt is not hex: %w", err)
	}
	if len(salt) < 8 {
		return nil, fmt.Errorf("kdf_salt must be at least 8 bytes")
	}
	return salt, nil
}

// NewCipher resolves the master key and builds the configured cipher.
func NewCipher(cfg *Config, open StoreOpener) (*password.Cipher, KeySource, error) {
	alg, err := password.ParseAlgorithm(cfg.Cipher)
	if err != nil {
		return nil, "", err
	}
	key, source, err := ResolveKey(cfg, open)
	if err != nil {
		return nil, "", err
	}
	c, err := password.NewCipher(key, alg)
	if err != nil {
		return nil, "", err
	}
	return c, source, nil
}
