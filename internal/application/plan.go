// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/janderssonse/devsetup/internal/adapters/installer"
	"github.com/janderssonse/devsetup/internal/domain"
)

// Planner is implemented by installers that can list their commands without running them.
type Planner interface {
	Plan(target domain.Target, facts domain.SystemFacts) ([]installer.Step, error)
}

// Planned actions for a target.
const (
	ActionPresent = "present"
	ActionInstall = "install"
	ActionManual  = "manual"
	ActionSkip    = "skip"
)

// PlannedTarget is what a run would do for one target.
type PlannedTarget struct {
	Target   domain.Target `json:"target"`
	Action   string        `json:"action"`
	Path     string        `json:"path,omitempty"`
	Commands []string      `json:"commands,omitempty"`
	Note     string        `json:"note,omitempty"`
}

// Plan is the dry description of a run.
type Plan struct {
	Facts           domain.SystemFacts `json:"system"`
	Intent          domain.Intent      `json:"intent"`
	Targets         []PlannedTarget    `json:"targets"`
	RPackages       []string           `json:"r_packages,omitempty"`
	PythonPackages  []string           `json:"python_packages,omitempty"`
	Extensions      []string           `json:"extensions,omitempty"`
	SettingsPath    string             `json:"settings_path,omitempty"`
	KeybindingsPath string             `json:"keybindings_path,omitempty"`
	SettingKeys     []string           `json:"setting_keys,omitempty"`
	GalleryOverride bool               `json:"gallery_override"`
}

// Plan probes the system and describes what Run would do, without changing anything.
func (o *Orchestrator) Plan(ctx context.Context, intent domain.Intent) (*Plan, error) {
	facts, err := o.cfg.Probe.Detect(ctx)
	if err != nil {
		return nil, domain.NewExitError(domain.ExitFatal, "system check failed", err)
	}

	p := o.cfg.Profile
	plan := &Plan{Facts: facts, Intent: intent}

	targets := []struct {
		target   domain.Target
		wanted   bool
		commands []string
	}{
		{domain.TargetPython, intent.InstallPython || intent.InstallConsole, pythonCommands()},
		{domain.TargetR, intent.InstallR, []string{"Rscript"}},
		{domain.TargetEditor, intent.InstallEditor, []string{p.Editor.Command}},
		{domain.TargetConsole, intent.InstallConsole, []string{p.Console.Command}},
	}

	for _, t := range targets {
		plan.Targets = append(plan.Targets, o.planTarget(t.target, t.wanted, facts, t.commands))
	}

	if intent.InstallR {
		plan.RPackages = p.R.Packages
	}

	if intent.InstallPython {
		plan.PythonPackages = p.Python.Packages
	}

	if intent.InstallEditor {
		paths := o.cfg.EditorPaths(facts)

		plan.Extensions = p.Extensions(intent.InstallR, intent.InstallPython)
		plan.SettingsPath = paths.Settings()
		plan.GalleryOverride = !p.Gallery.IsZero()
		plan.SettingKeys = p.SettingKeys()

		if intent.InstallR {
			plan.KeybindingsPath = paths.Keybindings()
		}
	}

	return plan, nil
}

func (o *Orchestrator) planTarget(target domain.Target, wanted bool, facts domain.SystemFacts, commands []string) PlannedTarget {
	planned := PlannedTarget{Target: target}

	if !wanted {
		planned.Action = ActionSkip
		planned.Note = "not requested"

		return planned
	}

	for _, command := range commands {
		if path, err := o.cfg.Runner.LookPath(command); err == nil {
			planned.Action = ActionPresent
			planned.Path = path

			return planned
		}
	}

	planner, ok := o.cfg.Installer.(Planner)
	if !ok {
		planned.Action = ActionInstall

		return planned
	}

	steps, err := planner.Plan(target, facts)
	if err != nil {
		planned.Action = ActionManual
		planned.Note = err.Error()

		if !errors.Is(err, domain.ErrManualInstall) {
			planned.Note = "cannot plan: " + err.Error()
		}

		return planned
	}

	planned.Action = ActionInstall

	for _, step := range steps {
		planned.Commands = append(planned.Commands, step.String())
	}

	return planned
}

// Markdown renders the plan for display.
func (p *Plan) Markdown() string {
	var b strings.Builder

	b.WriteString("# devsetup plan\n\n")
	fmt.Fprintf(&b, "System: **%s**", p.Facts.Describe())

	if p.Intent.DryRun {
		b.WriteString(" (dry run)")
	}

	b.WriteString("\n\n## Tools\n\n")

	for _, t := range p.Targets {
		fmt.Fprintf(&b, "### %s\n\n", t.Target.DisplayName())

		switch t.Action {
		case ActionPresent:
			fmt.Fprintf(&b, "Already installed at `%s`.\n\n", t.Path)
		case ActionSkip:
			fmt.Fprintf(&b, "Skipped, %s.\n\n", t.Note)
		case ActionManual:
			fmt.Fprintf(&b, "Install manually: %s.\n\n", t.Note)
		default:
			if len(t.Commands) == 0 {
				b.WriteString("Will be installed.\n\n")

				continue
			}

			b.WriteString("```sh\n")

			for _, command := range t.Commands {
				b.WriteString(command + "\n")
			}

			b.WriteString("```\n\n")
		}
	}

	writeList(&b, "R packages", p.RPackages)
	writeList(&b, "Python packages", p.PythonPackages)
	writeList(&b, "Editor extensions", p.Extensions)

	if p.SettingsPath != "" {
		b.WriteString("## Editor configuration\n\n")
		fmt.Fprintf(&b, "- Settings: `%s`\n", p.SettingsPath)

		if p.KeybindingsPath != "" {
			fmt.Fprintf(&b, "- Keybindings: `%s`\n", p.KeybindingsPath)
		}

		if p.GalleryOverride {
			b.WriteString("- Marketplace override applied around extension installs\n")
		}

		for _, key := range p.SettingKeys {
			fmt.Fprintf(&b, "- Profile setting `%s`\n", key)
		}

		b.WriteString("\n")
	}

	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}

	fmt.Fprintf(b, "## %s\n\n", title)

	for _, item := range items {
		fmt.Fprintf(b, "- `%s`\n", item)
	}

	b.WriteString("\n")
}
