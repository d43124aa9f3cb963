package cli

import (
	"fmt"

	"github.com/semmy-space/accman/internal/config"
	"github.com/semmy-space/accman/internal/password"
)

// GenerateCmd implements the generate command
type GenerateCmd struct {
	Length int `help:"Password length (default: config generate_length, else 20)" short:"l"`
}

// Run executes the generate command
func (cmd *GenerateCmd) Run(cfg *config.Config, fp *FormatterProvider) error {
	pw, err := generate(cmd.Length, cfg.GenerateLengthOrDefault())
	if err != nil {
		return toCLIError(err)
	}

	// Bare value in plain/rich, a JSON string in json mode
	return fp.Formatter.Print(pw.Value())
}

func generate(length, fallback int) (password.Password, error) {
	if length == 0 {
		length = fallback
	}
	pw, err := password.Generate(length)
	if err != nil {
		return password.Password{}, fmt.Errorf("failed to generate password: %w", err)
	}
	return pw, nil
}
