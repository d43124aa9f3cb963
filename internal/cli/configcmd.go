package cli

import (
	"fmt"
	"os"

	"github.com/semmy-space/accman/internal/config"
	"github.com/semmy-space/accman/internal/output"
)

// ConfigGetCmd implements config get command
type ConfigGetCmd struct {
	Key string `arg:"" help:"Config key to get (e.g., cipher, default_output)"`
}

// Run executes the get command
func (cmd *ConfigGetCmd) Run(cfg *config.Config, fp *FormatterProvider) error {
	value, err := cfg.Get(cmd.Key)
	if err != nil {
		return unknownKey(cfg, cmd.Key, output.ExitNotFound)
	}

	fmt.Fprintln(os.Stdout, value)
	return nil
}

// ConfigSetCmd implements config set command
type ConfigSetCmd struct {
	Key   string `arg:"" help:"Config key to set"`
	Value string `arg:"" help:"Value to set"`
}

// Run executes the set command
func (cmd *ConfigSetCmd) Run(cfg *config.Config, fp *FormatterProvider) error {
	if _, err := cfg.Get(cmd.Key); err != nil {
		return unknownKey(cfg, cmd.Key, output.ExitUsage)
	}

	if err := config.Validate(cmd.Key, cmd.Value); err != nil {
		return output.Wrap(output.ExitUsage, err)
	}

	if cmd.Key == "kdf_salt" {
		fmt.Fprintf(os.Stderr, "Note: changing kdf_salt changes the key derived from %s.\n", config.EnvPassphrase)
	}

	if err := cfg.Set(cmd.Key, cmd.Value); err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to set config: %v", err),
			ExitCode: output.ExitConfigError,
		}
	}

	fp.Formatter.PrintMessage(fmt.Sprintf("Set %s = %s", cmd.Key, cmd.Value))
	return nil
}

// ConfigUnsetCmd implements config unset command
type ConfigUnsetCmd struct {
	Key string `arg:"" help:"Config key to remove"`
}

// Run executes the unset command
func (cmd *ConfigUnsetCmd) Run(cfg *config.Config, fp *FormatterProvider) error {
	if _, err := cfg.Get(cmd.Key); err != nil {
		return unknownKey(cfg, cmd.Key, output.ExitUsage)
	}

	if err := cfg.Unset(cmd.Key); err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to unset config: %v", err),
			ExitCode: output.ExitConfigError,
		}
	}

	fp.Formatter.PrintMessage(fmt.Sprintf("Unset %s", cmd.Key))
	return nil
}

// ConfigListConfigCmd implements config list command
type ConfigListConfigCmd struct{}

// ConfigItem is one row of config list
type ConfigItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Run executes the list command
func (cmd *ConfigListConfigCmd) Run(cfg *config.Config, fp *FormatterProvider) error {
	return fp.Formatter.PrintList(configItems(cfg), []output.Column{
		{Name: "Key", Key: "Key"},
		{Name: "Value", Key: "Value"},
	})
}

func configItems(cfg *config.Config) []ConfigItem {
	keys := cfg.Keys()
	items := make([]ConfigItem, 0, len(keys))
	for _, key := range keys {
		value, _ := cfg.Get(key)
		if key == "kdf_salt" {
			value = maskSecret(value)
		}
		items = append(items, ConfigItem{Key: key, Value: value})
	}
	return items
}

// maskSecret masks sensitive values, showing only last 4 characters
func maskSecret(value string) string {
	if value == "" {
		return ""
	}
	r := []rune(value)
	if len(r) <= 4 {
		return "****"
	}
	return "****" + string(r[len(r)-4:])
}

func unknownKey(cfg *config.Config, key string, code int) *output.CLIError {
	return output.NewCLIError(code, fmt.Sprintf("Unknown config key: %s", key)).
		WithHint(fmt.Sprintf("Valid keys: %v", cfg.Keys()))
}

// ConfigPathCmd implements config path command
type ConfigPathCmd struct{}

// Run executes the path command
func (cmd *ConfigPathCmd) Run(cfg *config.Config, fp *FormatterProvider) error {
	path := cfg.Path()

	fmt.Fprintln(os.Stdout, path)

	// Print existence hint to stderr
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "(file does not exist yet - will be created on first write)\n")
	} else {
		fmt.Fprintf(os.Stderr, "(file exists)\n")
	}

	return nil
}
