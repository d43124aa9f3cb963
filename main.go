package main

import (
	"errors"
	"os"

	"github.com/alecthomas/kong"
	"github.com/posener/complete"
	"github.com/willabides/kongplete"

	"github.com/semmy-space/accman/internal/cli"
	"github.com/semmy-space/accman/internal/output"
	"github.com/semmy-space/accman/internal/password"
	"github.com/semmy-space/accman/internal/secrets"
)

var (
	version = "dev"
)

func main() {
	cliInstance := &cli.CLI{}
	parser := kong.Must(cliInstance,
		kong.Name("accman"),
		kong.Description("Local credential store with encrypted passwords"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)

	// Answers shell completion requests and exits; a no-op otherwise
	kongplete.Complete(parser,
		kongplete.WithPredictor("cipher", complete.PredictSet(password.Algorithms()...)),
		kongplete.WithPredictor("backend", complete.PredictSet(secrets.Backends()...)),
	)

	ctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		// Hook failures (e.g. an unreadable config) carry their own exit code
		var cliErr *output.CLIError
		if errors.As(err, &cliErr) {
			os.Exit(output.Report(output.New("plain"), cliErr))
		}
		parser.FatalIfErrorf(err)
	}

	// Run command with bound dependencies
	if err := ctx.Run(); err != nil {
		formatter := output.New(cliInstance.ResolvedOutput())
		os.Exit(output.Report(formatter, err))
	}
}
