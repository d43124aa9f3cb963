package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/semmy-space/accman/internal/config"
	"github.com/semmy-space/accman/internal/output"
	"github.com/semmy-space/accman/internal/secrets"
)

// KeyInitCmd implements the key init command
type KeyInitCmd struct {
	Force      bool `help:"Replace an existing master key (passwords encrypted with the old key become unreadable)"`
	Passphrase bool `help:"Write a fresh kdf_salt for ACCMAN_PASSPHRASE instead of storing a random key"`
}

// Run executes the init command
func (cmd *KeyInitCmd) Run(cfg *config.Config, fp *FormatterProvider, globals *Globals, logger *slog.Logger) error {
	if cmd.Passphrase {
		return cmd.initSalt(cfg, fp)
	}

	store, err := globals.OpenSecrets(cfg)
	if err != nil {
		return output.Wrap(output.ExitConfigError, fmt.Errorf("failed to open secrets store: %w", err))
	}
	logger.Debug("secrets store opened", "backend", store.Backend())

	_, err = store.Get(secrets.MasterKeyName)
	switch {
	case err == nil && !cmd.Force:
		return output.NewCLIError(output.ExitConflict, "A master key already exists in the "+store.Backend()).
			WithHint("Use --force to replace it")
	case err != nil && !errors.Is(err, secrets.ErrNotFound):
		return keyError(fmt.Errorf("failed to read master key: %w", err))
	}

	key, err := config.NewKey()
	if err != nil {
		return output.Wrap(output.ExitCrypto, err)
	}
	if err := store.Set(secrets.MasterKeyName, key); err != nil {
		return keyError(fmt.Errorf("failed to store master key: %w", err))
	}

	fp.Formatter.PrintMessage("Master key stored in " + store.Backend())
	return nil
}

func (cmd *KeyInitCmd) initSalt(cfg *config.Config, fp *FormatterProvider) error {
	if cfg.KDFSalt != "" && !cmd.Force {
		return output.NewCLIError(output.ExitConflict, "kdf_salt is already set").
			WithHint("Use --force to replace it")
	}

	salt, err := config.NewSalt()
	if err != nil {
		return output.Wrap(output.ExitCrypto, err)
	}
	if err := cfg.Set("kdf_salt", salt); err != nil {
		return output.Wrap(output.ExitConfigError, err)
	}

	fp.Formatter.PrintMessage("kdf_salt written to " + cfg.Path())
	fp.Formatter.PrintHint("Export " + config.EnvPassphrase + " to derive the master key")
	return nil
}

// KeyStatusCmd implements the key status command
type KeyStatusCmd struct{}

// KeyStatus is what key status reports
type KeyStatus struct {
	Source string `json:"source"`
	Cipher string `json:"cipher"`
}

// Run executes the status command
func (cmd *KeyStatusCmd) Run(cfg *config.Config, fp *FormatterProvider, globals *Globals) error {
	c, source, err := globals.NewCipher(cfg)
	if err != nil {
		return keyError(err)
	}

	return fp.Formatter.Print(KeyStatus{
		Source: string(source),
		Cipher: string(c.Algorithm()),
	})
}
