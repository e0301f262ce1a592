// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

// Package intent resolves command-line flags and environment variables into a domain.Intent.
package intent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/janderssonse/devsetup/internal/domain"
	"github.com/urfave/cli/v3"
)

// Flag names shared by the install command and Resolve.
const (
	FlagROnly          = "r-only"
	FlagPythonOnly     = "python-only"
	FlagSkipEditor     = "skip-editor"
	FlagSkipConsole    = "skip-console"
	FlagNonInteractive = "non-interactive"
	FlagDryRun         = "dry-run"
	FlagAllowDirty     = "allow-dirty"
	FlagAutostash      = "autostash"
	FlagPushAfter      = "push-after"
)

// ErrConflictingOnly is returned when --r-only and --python-only are both given.
var ErrConflictingOnly = errors.New("--r-only and --python-only cannot be combined")

// Source records where a resolved value came from. Higher sources win.
type Source int

// Value sources in ascending precedence.
const (
	SourceDefault Source = iota
	SourceEnv
	SourceArgs
)

func (s Source) String() string {
	switch s {
	case SourceEnv:
		return "environment"
	case SourceArgs:
		return "flag"
	default:
		return "default"
	}
}

type option struct {
	flag  string
	env   string
	usage string
}

var options = []option{ //nolint:gochecknoglobals
	{FlagROnly, "R_ONLY", "install R only (no Python)"},
	{FlagPythonOnly, "PYTHON_ONLY", "install Python only (no R, no R console)"},
	{FlagSkipEditor, "SKIP_EDITOR", "do not install the editor or its extensions"},
	{FlagSkipConsole, "SKIP_CONSOLE", "do not install the enhanced R console (radian)"},
	{FlagNonInteractive, "NON_INTERACTIVE", "never prompt; use default answers"},
	{FlagDryRun, "DRY_RUN", "print commands instead of running them and write no files"},
	{FlagAllowDirty, "ALLOW_DIRTY", "sync: allow uncommitted changes in the working tree"},
	{FlagAutostash, "AUTOSTASH", "sync: stash uncommitted changes and restore them afterwards"},
	{FlagPushAfter, "PUSH_AFTER", "sync: push after a successful merge"},
}

// EnvVar returns the environment variable backing flag, or "" for unknown flags.
func EnvVar(flag string) string {
	for _, opt := range options {
		if opt.flag == flag {
			return opt.env
		}
	}

	return ""
}

// Flags returns the intent flags. Environment fallbacks are resolved by FromCommand
// rather than the flag Sources, because "yes" is a valid true value here.
func Flags() []cli.Flag {
	flags := make([]cli.Flag, 0, len(options))

	for _, opt := range options {
		flags = append(flags, &cli.BoolFlag{
			Name:  opt.flag,
			Usage: fmt.Sprintf("%s [$%s]", opt.usage, opt.env),
		})
	}

	return flags
}

// Setting is one resolved boolean with its origin.
type Setting struct {
	Value  bool
	Source Source
}

// Resolution is the per-flag outcome, kept for the plan command.
type Resolution map[string]Setting

// FromCommand resolves the intent from a parsed command. Precedence per field is
// flag > environment > default.
func FromCommand(cmd *cli.Command, env Lookup) (domain.Intent, Resolution, error) {
	if env == nil {
		env = NoEnv
	}

	res := make(Resolution, len(options))
	for _, opt := range options {
		res[opt.flag] = resolveOne(cmd, opt, env)
	}

	rOnly, pyOnly := res[FlagROnly], res[FlagPythonOnly]

	if rOnly.Value && pyOnly.Value {
		switch {
		case rOnly.Source == SourceArgs && pyOnly.Source == SourceArgs:
			return domain.Intent{}, nil, fmt.Errorf("%w: %w", domain.ErrUsage, ErrConflictingOnly)
		case pyOnly.Source > rOnly.Source:
			rOnly.Value = false
		default:
			// R wins ties between two environment variables.
			pyOnly.Value = false
		}

		res[FlagROnly], res[FlagPythonOnly] = rOnly, pyOnly
	}

	in := domain.Intent{
		InstallR:       !pyOnly.Value,
		InstallPython:  !rOnly.Value,
		InstallEditor:  !res[FlagSkipEditor].Value,
		NonInteractive: res[FlagNonInteractive].Value,
		DryRun:         res[FlagDryRun].Value,
		AllowDirty:     res[FlagAllowDirty].Value,
		Autostash:      res[FlagAutostash].Value,
		PushAfter:      res[FlagPushAfter].Value,
	}
	in.InstallConsole = in.InstallR && !res[FlagSkipConsole].Value

	return in, res, nil
}

func resolveOne(cmd *cli.Command, opt option, env Lookup) Setting {
	if cmd != nil && cmd.IsSet(opt.flag) {
		return Setting{Value: cmd.Bool(opt.flag), Source: SourceArgs}
	}

	if value, ok := env(opt.env); ok && Truthy(value) {
		return Setting{Value: true, Source: SourceEnv}
	}

	return Setting{}
}

// Truthy reports whether an environment value means true: "1", "true" or "yes" in any case.
func Truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	}

	return false
}

// Resolve parses args (without the program name) with the intent flags and resolves
// them against env. Unknown flags and stray arguments are usage errors.
func Resolve(ctx context.Context, args []string, env Lookup) (domain.Intent, error) {
	var (
		resolved domain.Intent
		called   bool
	)

	cmd := &cli.Command{
		Name:      "devsetup",
		HideHelp:  true,
		Writer:    io.Discard,
		ErrWriter: io.Discard,
		Flags:     Flags(),
		OnUsageError: func(_ context.Context, _ *cli.Command, err error, _ bool) error {
			return err
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Present() {
				return fmt.Errorf("unexpected argument %q", cmd.Args().First())
			}

			in, _, err := FromCommand(cmd, env)
			if err != nil {
				return err
			}

			resolved, called = in, true

			return nil
		},
	}

	if err := cmd.Run(ctx, append([]string{"devsetup"}, args...)); err != nil {
		if errors.Is(err, domain.ErrUsage) {
			return domain.Intent{}, err
		}

		return domain.Intent{}, fmt.Errorf("%w: %w", domain.ErrUsage, err)
	}

	if !called {
		return domain.Intent{}, fmt.Errorf("%w: arguments not parsed", domain.ErrUsage)
	}

	return resolved, nil
}
