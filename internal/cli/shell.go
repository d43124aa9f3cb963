package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"golang.org/x/term"

	"github.com/semmy-space/accman/internal/account"
	"github.com/semmy-space/accman/internal/config"
	"github.com/semmy-space/accman/internal/output"
	"github.com/semmy-space/accman/internal/password"
	"github.com/semmy-space/accman/internal/store"
)

const shellPrompt = "accman> "

// ShellCmd implements the shell command
type ShellCmd struct {
	NoHistory bool `help:"Do not read or write the shell history file" name:"no-history"`
}

// Run executes the shell command
func (cmd *ShellCmd) Run(cfg *config.Config, fp *FormatterProvider, globals *Globals, logger *slog.Logger) error {
	c, source, err := globals.NewCipher(cfg)
	if err != nil {
		return keyError(err)
	}
	logger.Debug("master key resolved", "source", source, "cipher", c.Algorithm())

	var in prompter
	if term.IsTerminal(int(os.Stdin.Fd())) {
		history := config.HistoryPath()
		if cmd.NoHistory {
			history = ""
		}
		in = newLinerPrompter(history)
	} else {
		in = newScanPrompter(os.Stdin, os.Stderr)
	}
	defer in.Close()

	sess, err := NewSession(store.New(c), in, fp.Formatter, cfg.GenerateLengthOrDefault(), logger)
	if err != nil {
		return err
	}
	return sess.Run()
}

// Session is one interactive run over an in-memory store. Each input line
// is parsed with its own kong grammar and run against the session.
type Session struct {
	store     *store.Store
	in        prompter
	out       output.Formatter
	genLength int
	logger    *slog.Logger

	parser  *kong.Kong
	grammar sessionGrammar
	done    bool
}

// sessionGrammar is the command set available inside the shell
type sessionGrammar struct {
	Add      AddCmd             `cmd:"" help:"Add an account"`
	Delete   DeleteCmd          `cmd:"" aliases:"rm" help:"Delete an account"`
	Modify   ModifyCmd          `cmd:"" help:"Change an account"`
	Show     ShowCmd            `cmd:"" help:"Show one account"`
	List     ListCmd            `cmd:"" aliases:"ls" help:"List accounts ordered by app name"`
	Count    CountCmd           `cmd:"" help:"Number of stored accounts"`
	Generate SessionGenerateCmd `cmd:"" help:"Generate a random password without storing it"`
	Help     HelpCmd            `cmd:"" help:"Show this list"`
	Exit     ExitCmd            `cmd:"" aliases:"quit,q" help:"Leave the shell"`
}

// NewSession builds a session reading from in and writing to out.
func NewSession(s *store.Store, in prompter, out output.Formatter, genLength int, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	sess := &Session{
		store:     s,
		in:        in,
		out:       out,
		genLength: genLength,
		logger:    logger,
	}

	parser, err := kong.New(&sess.grammar,
		kong.Name("accman"),
		kong.NoDefaultHelp(),
		kong.Exit(func(int) {}),
		kong.Writers(io.Discard, io.Discard),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build shell grammar: %w", err)
	}
	sess.parser = parser
	return sess, nil
}

// Run reads commands until exit, end of input or Ctrl+C. Command errors are
// reported and the session continues.
func (s *Session) Run() error {
	s.out.PrintHint("type 'help' for commands; accounts are kept in memory until you exit")
	for !s.done {
		line, err := s.in.ReadCommand(shellPrompt)
		if errors.Is(err, io.EOF) || errors.Is(err, errCancelled) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		err = s.Exec(line)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, errCancelled):
			s.out.PrintHint("cancelled")
		default:
			output.Report(s.out, toCLIError(err))
		}
	}
	return nil
}

// Exec runs one command line.
func (s *Session) Exec(line string) error {
	args, err := splitArgs(line)
	if err != nil {
		return output.Wrap(output.ExitUsage, err)
	}
	if len(args) == 0 {
		return nil
	}

	kctx, err := s.parser.Parse(args)
	if err != nil {
		return output.NewCLIError(output.ExitUsage, err.Error()).
			WithHint("type 'help' for a list of commands")
	}
	return kctx.Run(s)
}

// AddCmd adds an account
type AddCmd struct {
	Generate bool `help:"Generate the password instead of typing it" short:"g"`
	Length   int  `help:"Generated password length" short:"l"`
}

func (cmd *AddCmd) Run(s *Session) error {
	acc, err := s.promptAccount(cmd.Generate, cmd.Length, nil)
	if err != nil {
		return err
	}
	if err := s.store.Insert(acc); err != nil {
		return err
	}

	s.logger.Debug("account inserted", "app", acc.AppName(), "count", s.store.Count())
	s.out.PrintMessage(fmt.Sprintf("Account %q was saved", acc.AppName()))
	return nil
}

// DeleteCmd removes an account
type DeleteCmd struct {
	App string `arg:"" help:"App name of the account"`
}

func (cmd *DeleteCmd) Run(s *Session) error {
	if err := s.store.Delete(cmd.App); err != nil {
		return err
	}

	s.logger.Debug("account deleted", "app", cmd.App, "count", s.store.Count())
	s.out.PrintMessage(fmt.Sprintf("Account %q was deleted", cmd.App))
	return nil
}

// ModifyCmd replaces an account with edited values
type ModifyCmd struct {
	App      string `arg:"" help:"App name of the account"`
	Generate bool   `help:"Generate a new password" short:"g"`
	Length   int    `help:"Generated password length" short:"l"`
}

func (cmd *ModifyCmd) Run(s *Session) error {
	cur, err := s.store.Get(cmd.App)
	if err != nil {
		return err
	}

	next, err := s.promptAccount(cmd.Generate, cmd.Length, &cur)
	if err != nil {
		return err
	}
	if err := s.store.Modify(cmd.App, next); err != nil {
		return err
	}

	s.logger.Debug("account modified", "app", cmd.App, "now", next.AppName())
	s.out.PrintMessage(fmt.Sprintf("Account %q was updated", next.AppName()))
	return nil
}

// ShowCmd prints one account
type ShowCmd struct {
	App    string `arg:"" help:"App name of the account"`
	Reveal bool   `help:"Show the decrypted password" short:"p" name:"password"`
}

func (cmd *ShowCmd) Run(s *Session) error {
	acc, err := s.store.Get(cmd.App)
	if err != nil {
		return err
	}
	if !cmd.Reveal {
		return s.out.Print(acc.Masked())
	}

	view, err := acc.Unmasked(s.store.Cipher())
	if err != nil {
		return fmt.Errorf("failed to decrypt password for %q: %w", cmd.App, err)
	}
	return s.out.Print(view)
}

// ListCmd lists every account
type ListCmd struct {
	Reveal bool `help:"Show decrypted passwords" short:"p" name:"password"`
}

var accountColumns = []output.Column{
	{Name: "APP", Key: "AppName", Width: 32},
	{Name: "USERNAME", Key: "Username", Width: 24},
	{Name: "EMAIL", Key: "Email", Width: 40},
	{Name: "PASSWORD", Key: "Password"},
	{Name: "CREATED", Key: "CreatedAt"},
}

func (cmd *ListCmd) Run(s *Session) error {
	views, err := s.store.List(cmd.Reveal)
	if err != nil {
		return err
	}
	return s.out.PrintList(views, accountColumns)
}

// CountCmd prints the number of accounts
type CountCmd struct{}

func (cmd *CountCmd) Run(s *Session) error {
	return s.out.Print(s.store.Count())
}

// SessionGenerateCmd prints a generated password
type SessionGenerateCmd struct {
	Length int `help:"Password length" short:"l"`
}

func (cmd *SessionGenerateCmd) Run(s *Session) error {
	pw, err := generate(cmd.Length, s.genLength)
	if err != nil {
		return err
	}
	return s.out.Print(pw.Value())
}

// HelpCmd lists the session commands
type HelpCmd struct{}

func (cmd *HelpCmd) Run(s *Session) error {
	nodes := s.parser.Model.Children
	width := 0
	for _, n := range nodes {
		if len(n.Name) > width {
			width = len(n.Name)
		}
	}
	for _, n := range nodes {
		line := output.PadString(n.Name, width) + "  " + n.Help
		if len(n.Aliases) > 0 {
			line += " (" + strings.Join(n.Aliases, ", ") + ")"
		}
		s.out.PrintMessage(line)
	}
	return nil
}

// ExitCmd ends the session
type ExitCmd struct{}

func (cmd *ExitCmd) Run(s *Session) error {
	s.done = true
	return nil
}

// promptAccount asks for account fields until the user confirms them. With
// cur set, blank answers keep the current values.
func (s *Session) promptAccount(gen bool, length int, cur *account.Account) (account.Account, error) {
	for {
		acc, err := s.readAccount(gen, length, cur)
		if err != nil {
			return account.Account{}, err
		}

		if err := s.out.Print(acc.Masked()); err != nil {
			return account.Account{}, err
		}
		ok, err := s.confirm("Save this account? [Y/n] > ")
		if err != nil {
			return account.Account{}, err
		}
		if ok {
			return acc, nil
		}
	}
}

func (s *Session) readAccount(gen bool, length int, cur *account.Account) (account.Account, error) {
	var curApp, curUser, curEmail string
	if cur != nil {
		curApp, curUser, curEmail = cur.AppName(), cur.Username(), cur.Email()
	}

	app, err := s.field("App name", curApp)
	if err != nil {
		return account.Account{}, err
	}
	username, err := s.field("Username (blank for none, '-' to clear)", curUser)
	if err != nil {
		return account.Account{}, err
	}
	if username == "-" {
		username = ""
	}
	email, err := s.field("Email", curEmail)
	if err != nil {
		return account.Account{}, err
	}

	pw, err := s.readPassword(gen, length, app, cur)
	if err != nil {
		return account.Account{}, err
	}

	return account.New(app, username, email, pw)
}

// field prompts for one value, falling back to current on a blank answer
func (s *Session) field(label, current string) (string, error) {
	prompt := label + " > "
	if current != "" {
		prompt = fmt.Sprintf("%s [%s] > ", label, current)
	}
	v, err := s.in.ReadLine(prompt)
	if err != nil {
		return "", err
	}
	if v = strings.TrimSpace(v); v == "" {
		v = current
	}
	return v, nil
}

func (s *Session) readPassword(gen bool, length int, app string, cur *account.Account) (password.Password, error) {
	if gen {
		pw, err := generate(length, s.genLength)
		if err != nil {
			return password.Password{}, err
		}
		s.out.PrintHint(fmt.Sprintf("generated a %d-character password; reveal it with 'show %s -p'", pw.Len(), quoteArg(app)))
		return pw, nil
	}

	prompt := "Password > "
	if cur != nil {
		prompt = "Password (blank keeps the current one) > "
	}
	raw, err := s.in.ReadSecret(prompt)
	if err != nil {
		return password.Password{}, err
	}
	raw = strings.TrimRight(raw, "\r")

	if raw == "" && cur != nil {
		// Stored copies are encrypted; the store seals the replacement itself
		pw := cur.Password()
		if err := pw.Decrypt(s.store.Cipher()); err != nil {
			return password.Password{}, fmt.Errorf("failed to decrypt current password: %w", err)
		}
		return pw, nil
	}
	return password.New(raw)
}

func (s *Session) confirm(prompt string) (bool, error) {
	v, err := s.in.ReadLine(prompt)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "n", "no":
		return false, nil
	default:
		return true, nil
	}
}

// splitArgs splits a command line on whitespace. Single or double quotes
// group words, so app names may contain spaces.
func splitArgs(line string) ([]string, error) {
	var (
		args  []string
		cur   strings.Builder
		inArg bool
		quote rune
	)
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case r == ' ' || r == '\t':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}

// quoteArg quotes s for display when splitArgs would break it apart
func quoteArg(s string) string {
	if strings.ContainsAny(s, " \t'\"") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
