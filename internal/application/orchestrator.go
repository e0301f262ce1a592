// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

// Package application runs the provisioning sequence on top of the domain ports.
package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/janderssonse/devsetup/internal/adapters/installer"
	"github.com/janderssonse/devsetup/internal/domain"
	"github.com/janderssonse/devsetup/internal/platform"
	"github.com/janderssonse/devsetup/internal/profile"
	"github.com/janderssonse/devsetup/internal/settings"
	"github.com/rs/zerolog"
)

// Step names used in the summary.
const (
	StepSystem         = "System"
	StepRPackages      = "R packages"
	StepPythonPackages = "Python packages"
	StepExtensions     = "Editor extensions"
	StepSettings       = "Editor settings"
	StepKeybindings    = "Editor keybindings"
)

// Reporter receives user-facing progress lines.
type Reporter interface {
	Stepf(format string, args ...any)
	Successf(format string, args ...any)
	Warningf(format string, args ...any)
}

// Config wires the orchestrator to its ports.
type Config struct {
	Probe     domain.SystemProbe
	Installer domain.PackageInstaller
	Runner    domain.CommandRunner
	Files     domain.FileManager
	Refresher domain.PathRefresher
	Prompter  domain.Prompter
	Reporter  Reporter
	Profile   profile.Profile
	Logger    zerolog.Logger

	// EditorPaths locates the settings files. Nil uses the running user's paths.
	EditorPaths func(facts domain.SystemFacts) platform.EditorPaths
	// Now is the clock. Nil uses time.Now.
	Now func() time.Time
}

// Orchestrator runs the install sequence in a fixed order.
type Orchestrator struct {
	cfg Config
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(cfg Config) *Orchestrator {
	if cfg.EditorPaths == nil {
		flavour := cfg.Profile.Editor.Flavour
		cfg.EditorPaths = func(facts domain.SystemFacts) platform.EditorPaths {
			return platform.NewEditorPaths(facts.Family, flavour)
		}
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Orchestrator{cfg: cfg}
}

// run holds what one Run resolves along the way.
type run struct {
	*Orchestrator

	intent    domain.Intent
	facts     domain.SystemFacts
	summary   *domain.Summary
	toolchain *installer.Toolchain

	python  string
	rscript string
	editor  string
	console string
}

// Run executes the sequence: probe, runtimes, editor, console, language packages,
// extensions, then settings and keybindings. A failed required runtime stops the run
// with an ExitError; everything else degrades to a warning in the summary.
func (o *Orchestrator) Run(ctx context.Context, intent domain.Intent) (*domain.Summary, error) {
	start := o.cfg.Now()

	facts, err := o.cfg.Probe.Detect(ctx)
	if err != nil {
		return nil, domain.NewExitError(domain.ExitFatal, "system check failed", err)
	}

	r := &run{
		Orchestrator: o,
		intent:       intent,
		facts:        facts,
		summary:      &domain.Summary{Facts: facts, Intent: intent, Timestamp: start},
		toolchain:    installer.NewToolchain(o.cfg.Runner, intent.DryRun, o.cfg.Logger),
	}

	r.add(StepSystem, domain.StepOK, facts.Describe())

	err = r.execute(ctx)
	r.summary.Duration = o.cfg.Now().Sub(start)

	return r.summary, err
}

func (r *run) execute(ctx context.Context) error {
	p := r.cfg.Profile

	if err := r.runtimes(ctx); err != nil {
		return err
	}

	var err error

	if r.intent.InstallEditor {
		if r.editor, err = r.ensure(ctx, domain.TargetEditor, p.Editor.Command); err != nil {
			return err
		}
	} else {
		r.add(domain.TargetEditor.DisplayName(), domain.StepSkipped, "not requested")
	}

	switch {
	case !r.intent.InstallConsole:
		r.add(domain.TargetConsole.DisplayName(), domain.StepSkipped, "not requested")
	case r.python == "":
		r.add(domain.TargetConsole.DisplayName(), domain.StepWarning, "needs Python, which is not available")
	default:
		if r.console, err = r.ensure(ctx, domain.TargetConsole, p.Console.Command); err != nil {
			return err
		}
	}

	r.rPackages(ctx)
	r.pythonPackages(ctx)

	if !r.intent.InstallEditor {
		return nil
	}

	if err := r.extensions(ctx); err != nil {
		return err
	}

	if err := r.writeSettings(); err != nil {
		return err
	}

	return r.keybindings()
}

// runtimes ensures Python and R. Python is also brought in for the console, in which
// case a failure only skips the console.
func (r *run) runtimes(ctx context.Context) error {
	var err error

	switch {
	case r.intent.InstallPython:
		if r.python, err = r.ensure(ctx, domain.TargetPython, pythonCommands()...); err != nil {
			return err
		}
	case r.intent.InstallConsole:
		if r.python, err = r.ensureFor(ctx, domain.TargetPython, false, pythonCommands()...); err != nil {
			return err
		}
	default:
		r.add(domain.TargetPython.DisplayName(), domain.StepSkipped, "not requested")
	}

	if !r.intent.InstallR {
		r.add(domain.TargetR.DisplayName(), domain.StepSkipped, "not requested")

		return nil
	}

	r.rscript, err = r.ensure(ctx, domain.TargetR, "Rscript")

	return err
}

func pythonCommands() []string {
	return []string{"python3", "python", "py"}
}

// ensure makes target available, installing it when none of commands resolves.
// It returns the resolved command; an error only for a failed required target or when the
// user aborts at the prompt.
func (r *run) ensure(ctx context.Context, target domain.Target, commands ...string) (string, error) {
	return r.ensureFor(ctx, target, target.Required(), commands...)
}

func (r *run) ensureFor(ctx context.Context, target domain.Target, required bool, commands ...string) (string, error) {
	name := target.DisplayName()

	if path := r.lookup(commands...); path != "" {
		r.add(name, domain.StepOK, "already installed ("+path+")")

		return path, nil
	}

	if !required {
		ok, err := r.cfg.Prompter.Confirm("Install "+name+"?", "Not found on PATH: "+commands[0], true)
		if errors.Is(err, domain.ErrAborted) {
			r.add(name, domain.StepSkipped, "aborted")

			return "", domain.NewExitError(domain.ExitFatal, "setup aborted", err)
		}

		if err != nil {
			r.cfg.Logger.Debug().Err(err).Str("target", string(target)).Msg("prompt failed, treating as declined")
		}

		if err != nil || !ok {
			r.add(name, domain.StepSkipped, "declined")

			return "", nil
		}
	}

	r.cfg.Reporter.Stepf("Installing %s", name)

	if err := r.cfg.Installer.Install(ctx, target, r.facts); err != nil {
		return "", r.fail(target, required, err)
	}

	if r.intent.DryRun {
		r.add(name, domain.StepOK, "would install")

		return commands[0], nil
	}

	if err := r.cfg.Refresher.Refresh(); err != nil {
		r.cfg.Logger.Debug().Err(err).Msg("path refresh failed")
	}

	path := r.lookup(commands...)
	if path == "" {
		return "", r.fail(target, required, fmt.Errorf("%s: %w", commands[0], domain.ErrStillMissing))
	}

	r.add(name, domain.StepOK, "installed ("+path+")")
	r.cfg.Reporter.Successf("%s installed", name)

	return path, nil
}

func (r *run) fail(target domain.Target, required bool, err error) error {
	name := target.DisplayName()

	r.cfg.Logger.Debug().Err(err).Str("target", string(target)).Msg("install failed")

	if !required {
		message := domain.FormatStepError(name, err, false)
		if errors.Is(err, domain.ErrManualInstall) {
			message = err.Error()
		}

		r.add(name, domain.StepWarning, message)
		r.cfg.Reporter.Warningf("%s", message)

		return nil
	}

	r.add(name, domain.StepFailed, err.Error())

	return domain.NewExitError(domain.ExitFatal, name+" is required", err)
}

func (r *run) lookup(commands ...string) string {
	for _, command := range commands {
		if path, err := r.cfg.Runner.LookPath(command); err == nil {
			return path
		}
	}

	return ""
}

func (r *run) rPackages(ctx context.Context) {
	pkgs := r.cfg.Profile.R.Packages

	switch {
	case !r.intent.InstallR || len(pkgs) == 0:
		return
	case r.rscript == "":
		r.add(StepRPackages, domain.StepSkipped, "R is not available")

		return
	}

	r.cfg.Reporter.Stepf("Checking R packages")

	installed, err := r.toolchain.InstallRPackages(ctx, r.rscript, r.cfg.Profile.R.Repo, pkgs)
	if err != nil {
		r.warn(StepRPackages, err)

		return
	}

	r.add(StepRPackages, domain.StepOK, countMessage(len(installed), len(pkgs)))
}

func (r *run) pythonPackages(ctx context.Context) {
	pkgs := r.cfg.Profile.Python.Packages

	switch {
	case !r.intent.InstallPython || len(pkgs) == 0:
		return
	case r.python == "":
		r.add(StepPythonPackages, domain.StepSkipped, "Python is not available")

		return
	}

	r.cfg.Reporter.Stepf("Installing Python packages")

	if err := r.toolchain.InstallPythonPackages(ctx, r.python, pkgs); err != nil {
		r.warn(StepPythonPackages, err)

		return
	}

	r.add(StepPythonPackages, domain.StepOK, fmt.Sprintf("%d requested", len(pkgs)))
}

// extensions installs the profile's extensions. A configured marketplace override is
// switched to the install view for the duration and back to the steady-state view after.
func (r *run) extensions(ctx context.Context) error {
	if r.editor == "" {
		r.add(StepExtensions, domain.StepSkipped, "editor is not available")

		return nil
	}

	ids := r.cfg.Profile.Extensions(r.intent.InstallR, r.intent.InstallPython)
	if len(ids) == 0 {
		return nil
	}

	gallery := r.cfg.Profile.Gallery

	if !gallery.IsZero() {
		if err := r.saveSettings(settings.ViewEdits(settings.InstallView, gallery)...); err != nil {
			return err
		}
	}

	r.cfg.Reporter.Stepf("Installing %d editor extensions", len(ids))

	report := r.toolchain.InstallExtensions(ctx, r.editor, ids)

	if !gallery.IsZero() {
		if err := r.saveSettings(settings.ViewEdits(settings.SteadyStateView, gallery)...); err != nil {
			return err
		}
	}

	for _, id := range report.FailedIDs(ids) {
		r.warn("Extension "+id, report.Failed[id])
	}

	r.add(StepExtensions, domain.StepOK,
		fmt.Sprintf("%d installed, %d already present", len(report.Installed), len(report.Present)))

	return nil
}

func (r *run) writeSettings() error {
	edits := r.settingsEdits()

	if err := r.saveSettings(edits...); err != nil {
		return err
	}

	if r.intent.DryRun {
		r.add(StepSettings, domain.StepSkipped, "dry run, not writing "+r.settingsPath())

		return nil
	}

	r.add(StepSettings, domain.StepOK, r.settingsPath())

	return nil
}

// settingsEdits builds the upserts for the selected languages, then the profile's own.
func (r *run) settingsEdits() []settings.Edit {
	var edits []settings.Edit

	if r.intent.InstallR {
		if r.console != "" {
			edits = append(edits, settings.Set("r.rterm."+rtermSuffix(r.facts.Family), r.console))
		}

		edits = append(edits,
			settings.Set("r.bracketedPaste", true),
			settings.Set("r.plot.useHttpgd", true),
			settings.Set("r.lsp.diagnostics", true),
			settings.Augment("[r]",
				settings.Set("editor.tabSize", 2),
				settings.Set("editor.formatOnSave", false),
			),
		)
	}

	if r.intent.InstallPython && r.python != "" {
		edits = append(edits,
			settings.Set("python.defaultInterpreterPath", r.python),
			settings.Augment("[python]",
				settings.Set("editor.tabSize", 4),
				settings.Set("editor.formatOnSave", true),
			),
		)
	}

	for _, key := range r.cfg.Profile.SettingKeys() {
		edits = append(edits, settings.Set(key, r.cfg.Profile.Settings[key]))
	}

	return edits
}

func rtermSuffix(family domain.Family) string {
	switch family {
	case domain.FamilyMacOS:
		return "mac"
	case domain.FamilyWindows:
		return "windows"
	default:
		return "linux"
	}
}

func (r *run) keybindings() error {
	if !r.intent.InstallR {
		return nil
	}

	path := r.cfg.EditorPaths(r.facts).Keybindings()

	if r.intent.DryRun {
		r.add(StepKeybindings, domain.StepSkipped, "dry run, not writing "+path)

		return nil
	}

	store := settings.NewKeybindingStore(path, r.cfg.Files, r.cfg.Logger)

	added, err := store.Add(settings.RKeybindings()...)
	if err != nil {
		r.add(StepKeybindings, domain.StepFailed, err.Error())

		return domain.NewExitError(domain.ExitFatal, "could not write keybindings", err)
	}

	r.add(StepKeybindings, domain.StepOK, fmt.Sprintf("%d added", added))

	return nil
}

func (r *run) settingsPath() string {
	return r.cfg.EditorPaths(r.facts).Settings()
}

// saveSettings applies edits to the settings document. Dry runs only log.
func (r *run) saveSettings(edits ...settings.Edit) error {
	path := r.settingsPath()

	if r.intent.DryRun {
		r.cfg.Logger.Info().Str("path", path).Int("edits", len(edits)).Msg("dry run, settings not written")

		return nil
	}

	store := settings.NewStore(path, r.cfg.Files, r.cfg.Logger)

	if _, err := store.Update(edits...); err != nil {
		r.add(StepSettings, domain.StepFailed, err.Error())

		return domain.NewExitError(domain.ExitFatal, "could not write editor settings", err)
	}

	return nil
}

func (r *run) warn(name string, err error) {
	message := domain.FormatStepError(name, err, false)

	r.add(name, domain.StepWarning, message)
	r.cfg.Reporter.Warningf("%s", message)
}

func (r *run) add(name string, status domain.StepStatus, message string) {
	r.cfg.Logger.Debug().Str("step", name).Str("status", string(status)).Msg(message)

	r.summary.Add(domain.StepResult{Name: name, Status: status, Message: message})
}

func countMessage(installed, total int) string {
	if installed == 0 {
		return fmt.Sprintf("all %d already installed", total)
	}

	return fmt.Sprintf("%d of %d installed", installed, total)
}
