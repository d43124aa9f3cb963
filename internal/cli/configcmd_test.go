package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/semmy-space/accman/internal/config"
)

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{name: "empty", value: "", expected: ""},
		{name: "short", value: "abc", expected: "****"},
		{name: "exactly 4", value: "abcd", expected: "****"},
		{name: "long", value: "00112233445566778899aabbccddeeff", expected: "****eeff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskSecret(tt.value))
		})
	}
}

func TestConfigItemsMaskSalt(t *testing.T) {
	cfg := &config.Config{Cipher: "aes-256-gcm", KDFSalt: "00112233445566778899aabbccddeeff"}

	items := configItems(cfg)
	assert.Len(t, items, len(cfg.Keys()))
	assert.Contains(t, items, ConfigItem{Key: "cipher", Value: "aes-256-gcm"})
	assert.Contains(t, items, ConfigItem{Key: "kdf_salt", Value: "****eeff"})
	assert.Contains(t, items, ConfigItem{Key: "default_output", Value: ""})
}

func TestEffectiveConfigDoesNotTouchLoaded(t *testing.T) {
	cfg := &config.Config{Cipher: "aes-256-gcm"}
	g := &Globals{Cipher: "chacha20-poly1305", SecretsBackend: "file"}

	eff := g.effectiveConfig(cfg)
	assert.Equal(t, "chacha20-poly1305", eff.Cipher)
	assert.Equal(t, "file", eff.SecretsBackend)
	assert.Equal(t, "aes-256-gcm", cfg.Cipher)
	assert.Empty(t, cfg.SecretsBackend)
}

func TestResolvedOutputPrefersFlagThenConfig(t *testing.T) {
	g := &Globals{Output: "json", config: &config.Config{DefaultOutput: "rich"}}
	assert.Equal(t, "json", g.ResolvedOutput())

	g = &Globals{config: &config.Config{DefaultOutput: "plain"}}
	assert.Equal(t, "plain", g.ResolvedOutput())
}
