package tui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	huh "github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(message string) (bool, error)
}

// NewConfirmer returns a huh prompt when in is a terminal and a line-based
// prompt otherwise (pipes, CI, tests).
func NewConfirmer(in io.Reader, out io.Writer) Confirmer {
	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return &FormConfirmer{in: in, out: out, theme: NewHuhTheme()}
	}
	return NewLineConfirmer(in, out)
}

// FormConfirmer renders an interactive huh confirm field.
type FormConfirmer struct {
	in    io.Reader
	out   io.Writer
	theme *huh.Theme
}

// Confirm runs the form; aborting it (ctrl+c, esc) counts as "no".
func (c *FormConfirmer) Confirm(message string) (bool, error) {
	confirmed := false

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(message).
				Affirmative("Yes").
				Negative("No").
				Value(&confirmed),
		),
	).
		WithTheme(c.theme).
		WithShowHelp(true).
		WithProgramOptions(tea.WithInput(c.in), tea.WithOutput(c.out))

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}

	return confirmed, nil
}

// LineConfirmer reads a single answer line. Only "y" and "yes" (any case) confirm.
type LineConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLineConfirmer creates a LineConfirmer
func NewLineConfirmer(in io.Reader, out io.Writer) *LineConfirmer {
	return &LineConfirmer{in: bufio.NewReader(in), out: out}
}

// Confirm prints message and reads one line. End of input counts as "no".
func (c *LineConfirmer) Confirm(message string) (bool, error) {
	fmt.Fprintf(c.out, "%s %s ", message, HelpStyle.Render("[y/N]"))

	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}

	return IsAffirmative(line), nil
}

// IsAffirmative reports whether answer is an affirmative form.
func IsAffirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// AutoConfirmer answers every question with a fixed value.
type AutoConfirmer bool

// Confirm returns the fixed answer.
func (a AutoConfirmer) Confirm(string) (bool, error) {
	return bool(a), nil
}
