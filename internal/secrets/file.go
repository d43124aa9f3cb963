package secrets

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/gofrs/flock"
	"golang.org/x/crypto/scrypt"
)

const (
	saltSize = 16

	// scrypt cost parameters for the file key
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1

	lockTimeout = 10 * time.Second
)

// ErrWrongPassword is returned when the credentials file cannot be opened
// with the configured password.
var ErrWrongPassword = errors.New("wrong store password or corrupted credentials file")

// FileStore implements the Store interface using an AES-256-GCM encrypted file.
// This is a fallback for environments where OS keyring is unavailable (WSL, headless, Docker).
//
// File layout: salt(16) ‖ nonce(12) ‖ ciphertext ‖ tag. The key is derived
// from the store password and salt with scrypt.
type FileStore struct {
	path     string
	lockPath string
	password []byte
	costN    int
}

// DefaultFilePath is where NewFileStore keeps credentials.
func DefaultFilePath() string {
	return filepath.Join(xdg.DataHome, "accman", "credentials.enc")
}

// NewFileStore creates a file-backed credential store at DefaultFilePath.
// If password is empty, uses a machine-specific default (less secure, prints warning).
func NewFileStore(password string) (*FileStore, error) {
	if password == "" {
		password = os.Getenv("ACCMAN_STORE_PASSWORD")
	}
	if password == "" {
		// Machine-specific default (less secure than user-provided password)
		hostname, _ := os.Hostname()
		username := os.Getenv("USER")
		if username == "" {
			username = os.Getenv("USERNAME") // Windows fallback
		}
		password = fmt.Sprintf("%s@%s", username, hostname)
		warnOnce("WARNING: Using machine-specific encryption key. For better security, set a password via ACCMAN_STORE_PASSWORD env var.")
	}
	return NewFileStoreAt(DefaultFilePath(), password)
}

// NewFileStoreAt creates a file-backed credential store at path.
func NewFileStoreAt(path, password string) (*FileStore, error) {
	if password == "" {
		return nil, errors.New("file store password must not be empty")
	}

	// Create parent directory with 0700 permissions
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create credentials directory: %w", err)
	}

	return &FileStore{
		path:     path,
		lockPath: path + ".lock",
		password: []byte(password),
		costN:    scryptN,
	}, nil
}

// Path returns the credentials file location.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) deriveKey(salt []byte) ([]byte, error) {
	key, err := scrypt.Key(s.password, salt, s.costN, scryptR, scryptP, 32)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// encrypt seals plaintext under a key derived from salt. The salt and a
// random nonce are prepended to the ciphertext.
func (s *FileStore) encrypt(salt, plaintext []byte) ([]byte, error) {
	key, err := s.deriveKey(salt)
	if err != nil {
		return nil, err
	}
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := append([]byte{}, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

// decrypt opens data written by encrypt and returns the salt it used.
func (s *FileStore) decrypt(data []byte) (plaintext, salt []byte, err error) {
	if len(data) < saltSize {
		return nil, nil, fmt.Errorf("credentials file too short")
	}
	salt, data = data[:saltSize], data[saltSize:]

	key, err := s.deriveKey(salt)
	if err != nil {
		return nil, nil, err
	}
	gcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return nil, nil, fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err = gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, nil, ErrWrongPassword
	}
	return plaintext, salt, nil
}

// readStore decrypts and parses the credential file.
// Returns an empty map and nil salt if the file doesn't exist.
func (s *FileStore) readStore() (map[string]string, []byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil, nil
		}
		return nil, nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	if len(data) == 0 {
		return make(map[string]string), nil, nil
	}

	plaintext, salt, err := s.decrypt(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decrypt credentials: %w", err)
	}

	var store map[string]string
	if err := json.Unmarshal(plaintext, &store); err != nil {
		return nil, nil, fmt.Errorf("failed to parse credentials: %w", err)
	}

	return store, salt, nil
}

// writeStore encrypts and writes the credential map to disk. A nil salt
// starts a new file with a fresh one.
func (s *FileStore) writeStore(store map[string]string, salt []byte) error {
	plaintext, err := json.Marshal(store)
	if err != nil {
		return fmt.Errorf("failed to serialize credentials: %w", err)
	}

	if salt == nil {
		salt = make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return fmt.Errorf("failed to generate salt: %w", err)
		}
	}

	ciphertext, err := s.encrypt(salt, plaintext)
	if err != nil {
		return err
	}

	if err := os.WriteFile(s.path, ciphertext, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}

	return nil
}

// withLock runs fn while holding the credentials lock file, so concurrent
// accman processes do not interleave read-modify-write cycles.
func (s *FileStore) withLock(fn func() error) error {
	lock := flock.New(s.lockPath)
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("failed to acquire lock: timeout")
	}
	defer lock.Unlock()

	return fn()
}

// Get retrieves a credential by key from the encrypted file.
func (s *FileStore) Get(key string) (string, error) {
	var value string
	err := s.withLock(func() error {
		store, _, err := s.readStore()
		if err != nil {
			return err
		}
		v, ok := store[key]
		if !ok {
			return ErrNotFound
		}
		value = v
		return nil
	})
	return value, err
}

// Set stores a credential in the encrypted file.
func (s *FileStore) Set(key, value string) error {
	return s.withLock(func() error {
		store, salt, err := s.readStore()
		if err != nil {
			return err
		}
		store[key] = value
		return s.writeStore(store, salt)
	})
}

// Delete removes a credential from the encrypted file.
func (s *FileStore) Delete(key string) error {
	return s.withLock(func() error {
		store, salt, err := s.readStore()
		if err != nil {
			return err
		}
		if _, ok := store[key]; !ok {
			return ErrNotFound
		}
		delete(store, key)
		return s.writeStore(store, salt)
	})
}

// List returns all credential keys from the encrypted file.
func (s *FileStore) List() ([]string, error) {
	var keys []string
	err := s.withLock(func() error {
		store, _, err := s.readStore()
		if err != nil {
			return err
		}
		keys = make([]string, 0, len(store))
		for k := range store {
			keys = append(keys, k)
		}
		return nil
	})
	return keys, err
}

// Backend names the storage kind for status output.
func (s *FileStore) Backend() string { return "encrypted file (" + s.path + ")" }
