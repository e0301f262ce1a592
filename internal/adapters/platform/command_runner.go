// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

package platform

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	platformutil "github.com/janderssonse/devsetup/internal/platform"
	"github.com/rs/zerolog"
	"mvdan.cc/sh/v3/syntax"
)

// CommandRunner implements the CommandRunner port for real system commands.
// Execution is synchronous; a hung command blocks until the context is cancelled.
type CommandRunner struct {
	dryRun bool
	stdout io.Writer
	stderr io.Writer
	logger zerolog.Logger

	proxyEnv func() []string
}

// NewCommandRunner creates a command runner attached to the process terminal.
func NewCommandRunner(dryRun bool, logger zerolog.Logger) *CommandRunner {
	return NewCommandRunnerWithWriters(dryRun, os.Stdout, os.Stderr, logger)
}

// NewCommandRunnerWithWriters creates a command runner writing child output to custom writers.
func NewCommandRunnerWithWriters(dryRun bool, stdout, stderr io.Writer, logger zerolog.Logger) *CommandRunner {
	return &CommandRunner{
		dryRun:   dryRun,
		stdout:   stdout,
		stderr:   stderr,
		logger:   logger,
		proxyEnv: platformutil.GetProxyEnv,
	}
}

// Execute runs a command and returns the result.
func (r *CommandRunner) Execute(ctx context.Context, name string, args ...string) error {
	line := FormatCommand(name, args...)
	r.logger.Debug().Str("cmd", line).Msg("executing")

	if r.dryRun {
		_, _ = fmt.Fprintf(r.stdout, "DRY RUN: %s\n", line)

		return nil
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", line, err)
	}

	return nil
}

// ExecuteWithOutput runs a command and returns the output.
func (r *CommandRunner) ExecuteWithOutput(ctx context.Context, name string, args ...string) (string, error) {
	line := FormatCommand(name, args...)
	r.logger.Debug().Str("cmd", line).Msg("executing with output")

	if r.dryRun {
		_, _ = fmt.Fprintf(r.stdout, "DRY RUN (with output): %s\n", line)

		return "", nil
	}

	cmd := exec.CommandContext(ctx, name, args...)

	var stderr strings.Builder

	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return string(output), fmt.Errorf("%s: %w (stderr: %s)", line, err, msg)
		}

		return string(output), fmt.Errorf("%s: %w", line, err)
	}

	return string(output), nil
}

// ExecuteSudo runs a command with sudo privileges. On Windows, where there is no
// sudo, the command runs directly and relies on an elevated shell.
func (r *CommandRunner) ExecuteSudo(ctx context.Context, name string, args ...string) error {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		return r.Execute(ctx, name, args...)
	}

	sudoArgs := []string{name}

	// sudo resets the environment; pass proxy settings through env(1).
	if proxyEnv := r.proxyEnv(); len(proxyEnv) > 0 {
		sudoArgs = append(append([]string{"env"}, proxyEnv...), name)
	}

	// #nosec G204 - This is intentional command execution with validated input
	return r.Execute(ctx, "sudo", append(sudoArgs, args...)...)
}

// CommandExists checks if a command is available on the system.
func (r *CommandRunner) CommandExists(name string) bool {
	_, err := exec.LookPath(name)

	return err == nil
}

// LookPath returns the absolute path of a command on the search path.
func (r *CommandRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// FormatCommand renders a command line with shell quoting for display.
func FormatCommand(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)

	for _, part := range append([]string{name}, args...) {
		quoted, err := syntax.Quote(part, syntax.LangBash)
		if err != nil {
			quoted = part
		}

		parts = append(parts, quoted)
	}

	return strings.Join(parts, " ")
}
