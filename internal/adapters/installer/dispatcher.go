// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

// Package installer implements the PackageInstaller port: a dispatch table from
// platform and target to package-manager commands, plus the language and editor
// toolchain steps that run once the runtimes are present.
package installer

import (
	"context"
	"errors"
	"fmt"

	"github.com/janderssonse/devsetup/internal/domain"
	"github.com/janderssonse/devsetup/internal/platform"
	"github.com/rs/zerolog"
)

// DefaultEditorCommand is the only editor the dispatch table can install.
const DefaultEditorCommand = "code"

// ErrNoPackageManager is returned when the platform's package manager is not on PATH.
var ErrNoPackageManager = errors.New("package manager not found")

// Options configure what the dispatcher installs for the editor and console targets.
type Options struct {
	EditorCommand  string
	ConsolePackage string
	// AptProxy is passed to every apt-get call. Nil reads the proxy environment.
	AptProxy []string
}

// Dispatcher implements domain.PackageInstaller.
type Dispatcher struct {
	commandRunner domain.CommandRunner
	logger        zerolog.Logger
	opts          Options
	table         map[domain.Platform]map[domain.Target]recipe
}

// NewDispatcher creates a dispatcher running commands through commandRunner.
func NewDispatcher(commandRunner domain.CommandRunner, opts Options, logger zerolog.Logger) *Dispatcher {
	if opts.EditorCommand == "" {
		opts.EditorCommand = DefaultEditorCommand
	}

	if opts.ConsolePackage == "" {
		opts.ConsolePackage = "radian"
	}

	if opts.AptProxy == nil {
		opts.AptProxy = platform.ConfigureAPTProxy()
	}

	return &Dispatcher{
		commandRunner: commandRunner,
		logger:        logger,
		opts:          opts,
		table:         recipes(),
	}
}

// Plan returns the commands Install would run, without running them.
// Targets with no automatic installation return ErrManualInstall.
func (d *Dispatcher) Plan(target domain.Target, facts domain.SystemFacts) ([]Step, error) {
	if target == domain.TargetEditor {
		if facts.IsWSL {
			return nil, fmt.Errorf("%w: install the editor on Windows and use its WSL extension", domain.ErrManualInstall)
		}

		if d.opts.EditorCommand != DefaultEditorCommand {
			return nil, fmt.Errorf("%w: editor %q", domain.ErrManualInstall, d.opts.EditorCommand)
		}
	}

	p := facts.Platform()

	build, ok := d.table[p][target]
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", domain.ErrManualInstall, target.DisplayName(), facts.Describe())
	}

	return build(recipeEnv{
		facts:    facts,
		aptProxy: d.opts.AptProxy,
		console:  d.opts.ConsolePackage,
	})
}

// Install runs the recipe for target, stopping at the first failing step.
func (d *Dispatcher) Install(ctx context.Context, target domain.Target, facts domain.SystemFacts) error {
	steps, err := d.Plan(target, facts)
	if err != nil {
		return err
	}

	if manager := platformManager[facts.Platform()]; !d.commandRunner.CommandExists(manager) {
		return fmt.Errorf("%w: %s: %w", domain.ErrManualInstall, manager, ErrNoPackageManager)
	}

	d.logger.Debug().
		Str("target", string(target)).
		Str("platform", string(facts.Platform())).
		Int("steps", len(steps)).
		Msg("installing")

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		if step.Sudo {
			err = d.commandRunner.ExecuteSudo(ctx, step.Name, step.Args...)
		} else {
			err = d.commandRunner.Execute(ctx, step.Name, step.Args...)
		}

		if err != nil {
			return fmt.Errorf("failed to install %s: %w", target.DisplayName(), err)
		}
	}

	return nil
}
