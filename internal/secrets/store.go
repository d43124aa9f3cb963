// Package secrets stores the accman master key outside the config file:
// in the OS keyring when one is available, otherwise in an encrypted file.
package secrets

import "errors"

// Store is the interface for credential storage
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
	List() ([]string, error)
	Backend() string
}

// ErrNotFound is returned when a key is not found in the store
var ErrNotFound = errors.New("key not found")

// ServiceName is the service identifier for keyring storage
const ServiceName = "accman"

// MasterKeyName is the entry holding the hex-encoded 32-byte master key.
const MasterKeyName = "master_key"
