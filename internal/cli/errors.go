package cli

import (
	"errors"

	"github.com/semmy-space/accman/internal/account"
	"github.com/semmy-space/accman/internal/config"
	"github.com/semmy-space/accman/internal/output"
	"github.com/semmy-space/accman/internal/password"
	"github.com/semmy-space/accman/internal/secrets"
	"github.com/semmy-space/accman/internal/store"
)

// toCLIError maps a domain error onto an exit code and hint. Errors that
// are already CLIErrors pass through.
func toCLIError(err error) *output.CLIError {
	if err == nil {
		return nil
	}

	var cliErr *output.CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	var accErr *account.Error
	switch {
	case errors.Is(err, store.ErrAccountDoesNotExist):
		return output.Wrap(output.ExitNotFound, err).
			WithHint("Run 'list' to see stored accounts")
	case errors.Is(err, store.ErrAccountAlreadyExists):
		return output.Wrap(output.ExitConflict, err).
			WithHint("Use 'modify' to change an existing account")
	case password.IsValidation(err), errors.As(err, &accErr):
		return output.Wrap(output.ExitUsage, err)
	case errors.Is(err, password.ErrAuthenticationFailed):
		return output.Wrap(output.ExitCrypto, err).
			WithHint("The master key differs from the one the password was encrypted with")
	case password.IsCrypto(err):
		return output.Wrap(output.ExitCrypto, err)
	case errors.Is(err, config.ErrNoKey):
		return output.Wrap(output.ExitConfigError, err).
			WithHint("Run: accman key init")
	case errors.Is(err, secrets.ErrWrongPassword):
		return output.Wrap(output.ExitConfigError, err).
			WithHint("Check ACCMAN_STORE_PASSWORD")
	default:
		return output.Wrap(output.ExitGeneral, err)
	}
}

// keyError reports master key resolution failures as configuration errors
// unless a more specific mapping applies.
func keyError(err error) error {
	cliErr := toCLIError(err)
	if cliErr.ExitCode == output.ExitGeneral {
		cliErr.ExitCode = output.ExitConfigError
	}
	return cliErr
}
