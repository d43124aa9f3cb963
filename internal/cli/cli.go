package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/willabides/kongplete"

	"github.com/semmy-space/accman/internal/config"
	"github.com/semmy-space/accman/internal/output"
)

// FormatterProvider wraps the formatter interface for Kong binding
type FormatterProvider struct {
	Formatter output.Formatter
}

// CLI is the root command structure
type CLI struct {
	Globals

	Shell    ShellCmd    `cmd:"" help:"Start an interactive session over an in-memory account store"`
	Generate GenerateCmd `cmd:"" help:"Generate a random password"`
	Key      KeyCmd      `cmd:"" help:"Master key commands"`
	Config   ConfigCmd   `cmd:"" help:"Configuration commands"`
	Version  VersionCmd  `cmd:"" help:"Show version information"`

	InstallCompletions kongplete.InstallCompletions `cmd:"" help:"Install shell completions"`

	loadConfig func() (*config.Config, error) // replaced in tests
}

// BeforeApply hook runs before flag values are applied
// It loads config so defaults from the file are available to later hooks
func (c *CLI) BeforeApply(ctx *kong.Context) error {
	load := c.loadConfig
	if load == nil {
		// Load config from XDG path (returns defaults if missing)
		load = config.Load
	}
	cfg, err := load()
	if err != nil {
		return output.Wrap(output.ExitConfigError, err)
	}
	c.config = cfg

	ctx.Bind(cfg)
	ctx.Bind(&c.Globals)
	return nil
}

// AfterApply hook runs once flags are set
// It resolves output mode, creates formatter and logger, and binds them
func (c *CLI) AfterApply(ctx *kong.Context) error {
	ctx.Bind(&FormatterProvider{
		Formatter: output.New(c.ResolvedOutput()),
	})
	ctx.Bind(c.Logger())
	return nil
}

// KeyCmd holds master key subcommands
type KeyCmd struct {
	Init   KeyInitCmd   `cmd:"" help:"Create and store a new master key"`
	Status KeyStatusCmd `cmd:"" help:"Show where the master key comes from"`
}

// ConfigCmd holds configuration subcommands
type ConfigCmd struct {
	Get   ConfigGetCmd        `cmd:"" help:"Get a configuration value"`
	Set   ConfigSetCmd        `cmd:"" help:"Set a configuration value"`
	Unset ConfigUnsetCmd      `cmd:"" help:"Remove a configuration value"`
	List  ConfigListConfigCmd `cmd:"" name:"list" help:"List all configuration values"`
	Path  ConfigPathCmd       `cmd:"" help:"Show config file path"`
}

// VersionCmd shows version information
type VersionCmd struct{}

func (cmd *VersionCmd) Run(ctx *kong.Context, logger *slog.Logger) error {
	version := ctx.Model.Vars()["version"]
	logger.Debug("version requested", "version", version)
	fmt.Fprintln(os.Stdout, "accman version "+version)
	return nil
}
