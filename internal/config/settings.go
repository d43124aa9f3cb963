package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/semmy-space/accman/internal/password"
	"github.com/semmy-space/accman/internal/secrets"
)

// OutputModes lists the accepted values of default_output and --output.
var OutputModes = []string{"json", "plain", "rich", "auto"}

// DefaultGenerateLength is used when generate_length is unset.
const DefaultGenerateLength = 20

// ValidValues returns the fixed choices for key, or nil if key takes free
// text.
func ValidValues(key string) []string {
	switch key {
	case "cipher":
		return password.Algorithms()
	case "secrets_backend":
		return secrets.Backends()
	case "default_output":
		return OutputModes
	default:
		return nil
	}
}

// Validate checks value before it is stored under key. An empty value is
// always accepted and means "use the default".
func Validate(key, value string) error {
	if value == "" {
		return nil
	}
	if choices := ValidValues(key); choices != nil {
		for _, c := range choices {
			if value == c {
				return nil
			}
		}
		return fmt.Errorf("invalid %s: %s. Valid values: %s", key, value, strings.Join(choices, ", "))
	}

	switch key {
	case "generate_length":
		_, err := parseLength(value)
		return err
	case "kdf_salt":
		_, err := decodeSalt(value)
		return err
	}
	return nil
}

// GenerateLengthOrDefault returns generate_length, or DefaultGenerateLength
// when it is unset or unusable.
func (c *Config) GenerateLengthOrDefault() int {
	n, err := parseLength(c.GenerateLength)
	if err != nil || n == 0 {
		return DefaultGenerateLength
	}
	return n
}

func parseLength(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid generate_length: %q is not a number", s)
	}
	if n < password.MinLength || n > password.MaxLength {
		return 0, fmt.Errorf("invalid generate_length: must be between %d and %d", password.MinLength, password.MaxLength)
	}
	return n, nil
}
