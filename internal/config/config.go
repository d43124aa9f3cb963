package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// Config holds the CLI configuration
type Config struct {
	Cipher         string `json:"cipher,omitempty" toml:"cipher,omitempty"`
	SecretsBackend string `json:"secrets_backend,omitempty" toml:"secrets_backend,omitempty"`
	KDFSalt        string `json:"kdf_salt,omitempty" toml:"kdf_salt,omitempty"`
	DefaultOutput  string `json:"default_output,omitempty" toml:"default_output,omitempty"`
	GenerateLength string `json:"generate_length,omitempty" toml:"generate_length,omitempty"`

	path string // file this config was loaded from and saves to
}

// Load reads config from the XDG config dir, returns defaults if no file exists.
// config.json5 wins over config.toml when both are present.
func Load() (*Config, error) {
	path := ConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if _, err := os.Stat(TOMLPath()); err == nil {
			path = TOMLPath()
		}
	}
	return LoadFrom(path)
}

// LoadFrom reads config from path. The format follows the extension:
// .toml is TOML, anything else JSON5.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults when no config file exists
			return &Config{path: path}, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Config{path: path}
	if isTOML(path) {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if err := json5.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.path = path

	return &cfg, nil
}

// Path returns the file Save writes to.
func (c *Config) Path() string {
	if c.path == "" {
		return ConfigPath()
	}
	return c.path
}

// Save writes the config back to the file it was loaded from
func (c *Config) Save() error {
	path := c.Path()

	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		data = buf.Bytes()
	} else {
		// JSON is valid JSON5
		var err error
		data, err = json.MarshalIndent(c, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
	}

	// Write with secure permissions
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Keys returns every settable key name in declaration order.
func (c *Config) Keys() []string {
	t := reflect.TypeOf(*c)
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if name := keyName(t.Field(i)); name != "" {
			keys = append(keys, name)
		}
	}
	return keys
}

// field finds the string field tagged with key.
func (c *Config) field(key string) (reflect.Value, bool) {
	v := reflect.ValueOf(c).Elem()
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		if keyName(t.Field(i)) == key {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func keyName(f reflect.StructField) string {
	if !f.IsExported() {
		return ""
	}
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// Get retrieves a config value by key name
func (c *Config) Get(key string) (string, error) {
	f, ok := c.field(key)
	if !ok {
		return "", fmt.Errorf("unknown config key: %s", key)
	}
	return f.String(), nil
}

// Set sets a config value by key name and saves
func (c *Config) Set(key, value string) error {
	f, ok := c.field(key)
	if !ok {
		return fmt.Errorf("unknown config key: %s", key)
	}
	f.SetString(value)
	return c.Save()
}

// Unset sets a config value to its zero value and saves
func (c *Config) Unset(key string) error {
	return c.Set(key, "")
}
