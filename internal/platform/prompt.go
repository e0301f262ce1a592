// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

package platform

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/janderssonse/devsetup/internal/domain"
	"golang.org/x/term"
)

// NewPrompter selects the input source once at startup. A non-terminal stdin always
// gets fixed defaults, whatever the non-interactive flag says.
func NewPrompter(nonInteractive, stdinIsTTY bool) domain.Prompter {
	if nonInteractive || !stdinIsTTY {
		return FixedPrompter{}
	}

	return &InteractivePrompter{}
}

// StdinIsTTY reports whether standard input is a terminal.
func StdinIsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) //nolint:gosec // fd fits in int
}

// InteractivePrompter asks yes/no questions with a huh confirm form.
type InteractivePrompter struct {
	// Accessible renders plain prompts for screen readers.
	Accessible bool
}

// Confirm shows a confirm field prefilled with def.
func (p *InteractivePrompter) Confirm(title, description string, def bool) (bool, error) {
	answer := def

	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Description(description).
			Affirmative("Yes").
			Negative("No").
			Value(&answer),
	)).
		WithTheme(huh.ThemeCharm()).
		WithAccessible(p.Accessible)

	if err := form.Run(); err != nil {
		return false, promptError(title, err)
	}

	return answer, nil
}

// promptError maps Ctrl+C at a prompt to domain.ErrAborted so the run stops.
func promptError(title string, err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return fmt.Errorf("prompt %q: %w", title, domain.ErrAborted)
	}

	return fmt.Errorf("prompt %q: %w", title, err)
}

// FixedPrompter answers every question with its default and never reads input.
type FixedPrompter struct {
	// Log, when set, receives one line per auto-answered question.
	Log io.Writer
}

// Confirm returns def.
func (p FixedPrompter) Confirm(title, _ string, def bool) (bool, error) {
	if p.Log != nil {
		answer := "no"
		if def {
			answer = "yes"
		}

		_, _ = fmt.Fprintf(p.Log, "Auto-answering %q: %s\n", title, answer)
	}

	return def, nil
}
