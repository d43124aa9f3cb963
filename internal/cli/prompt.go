package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

// errCancelled is returned by a prompter when the user aborts input (Ctrl+C).
var errCancelled = errors.New("cancelled")

// prompter reads session input. ReadCommand lines go to history, field
// values and secrets never do.
type prompter interface {
	ReadCommand(prompt string) (string, error)
	ReadLine(prompt string) (string, error)
	ReadSecret(prompt string) (string, error)
	Close() error
}

// linerPrompter gives a terminal line editing, history and hidden
// password entry.
type linerPrompter struct {
	line        *liner.State
	historyFile string
}

func newLinerPrompter(historyFile string) *linerPrompter {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	p := &linerPrompter{line: line, historyFile: historyFile}
	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
	}
	return p
}

func (p *linerPrompter) read(fn func(string) (string, error), prompt string) (string, error) {
	s, err := fn(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", errCancelled
	}
	return s, err
}

func (p *linerPrompter) ReadCommand(prompt string) (string, error) {
	s, err := p.read(p.line.Prompt, prompt)
	if err == nil && strings.TrimSpace(s) != "" {
		p.line.AppendHistory(s)
	}
	return s, err
}

func (p *linerPrompter) ReadLine(prompt string) (string, error) {
	return p.read(p.line.Prompt, prompt)
}

func (p *linerPrompter) ReadSecret(prompt string) (string, error) {
	return p.read(p.line.PasswordPrompt, prompt)
}

// Close saves history with owner-only permissions and restores the terminal
func (p *linerPrompter) Close() error {
	if p.historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(p.historyFile), 0700); err == nil {
			if f, err := os.OpenFile(p.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
				_, _ = p.line.WriteHistory(f)
				f.Close()
			}
		}
	}
	return p.line.Close()
}

// scanPrompter reads plain lines, for piped input and tests. Prompts go to
// w so they never mix with results on stdout.
type scanPrompter struct {
	scanner *bufio.Scanner
	w       io.Writer
}

func newScanPrompter(r io.Reader, w io.Writer) *scanPrompter {
	return &scanPrompter{scanner: bufio.NewScanner(r), w: w}
}

func (p *scanPrompter) ReadCommand(prompt string) (string, error) {
	return p.ReadLine(prompt)
}

func (p *scanPrompter) ReadLine(prompt string) (string, error) {
	fmt.Fprint(p.w, prompt)
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return p.scanner.Text(), nil
}

func (p *scanPrompter) ReadSecret(prompt string) (string, error) {
	return p.ReadLine(prompt)
}

func (p *scanPrompter) Close() error { return nil }
