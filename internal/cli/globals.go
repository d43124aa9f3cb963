package cli

import (
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/semmy-space/accman/internal/config"
	"github.com/semmy-space/accman/internal/password"
	"github.com/semmy-space/accman/internal/secrets"
)

// Globals holds global flags available to all commands
type Globals struct {
	Output         string `help:"Output format" default:"" enum:"json,plain,rich,auto," short:"o" env:"ACCMAN_OUTPUT"`
	Verbose        bool   `help:"Verbose output" short:"v" env:"ACCMAN_VERBOSE"`
	Cipher         string `help:"Password cipher (overrides config)" default:"" enum:"aes-256-gcm,chacha20-poly1305," predictor:"cipher" env:"ACCMAN_CIPHER"`
	SecretsBackend string `help:"Where the master key is kept (overrides config)" name:"secrets-backend" default:"" enum:"auto,keyring,file," predictor:"backend" env:"ACCMAN_SECRETS_BACKEND"`

	config *config.Config
}

// ResolvedOutput returns the effective output mode
// Flag > config default_output > auto. "auto" detects TTY: if stdout is TTY -> rich, else -> plain
func (g *Globals) ResolvedOutput() string {
	mode := g.Output
	if mode == "" && g.config != nil {
		mode = g.config.DefaultOutput
	}
	if mode != "" && mode != "auto" {
		return mode
	}

	// Detect if stdout is a TTY
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return "rich"
	}

	return "plain"
}

// Logger returns the diagnostic logger: warnings only, debug with --verbose.
func (g *Globals) Logger() *slog.Logger {
	level := slog.LevelWarn
	if g.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// effectiveConfig applies flag overrides to a copy of cfg, so overrides
// never end up saved by config set.
func (g *Globals) effectiveConfig(cfg *config.Config) *config.Config {
	eff := *cfg
	if g.Cipher != "" {
		eff.Cipher = g.Cipher
	}
	if g.SecretsBackend != "" {
		eff.SecretsBackend = g.SecretsBackend
	}
	return &eff
}

// OpenSecrets opens the configured secrets store
func (g *Globals) OpenSecrets(cfg *config.Config) (secrets.Store, error) {
	return secrets.NewStore(g.effectiveConfig(cfg).SecretsBackend)
}

// NewCipher resolves the master key and builds the effective cipher
func (g *Globals) NewCipher(cfg *config.Config) (*password.Cipher, config.KeySource, error) {
	eff := g.effectiveConfig(cfg)
	return config.NewCipher(eff, func() (secrets.Store, error) {
		return secrets.NewStore(eff.SecretsBackend)
	})
}
