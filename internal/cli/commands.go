// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/janderssonse/devsetup/internal/adapters/installer"
	"github.com/janderssonse/devsetup/internal/application"
	"github.com/janderssonse/devsetup/internal/console"
	"github.com/janderssonse/devsetup/internal/domain"
	"github.com/janderssonse/devsetup/internal/intent"
	"github.com/janderssonse/devsetup/internal/platform"
	"github.com/janderssonse/devsetup/internal/profile"
	"github.com/janderssonse/devsetup/internal/settings"
	"github.com/janderssonse/devsetup/internal/vcs"
	"github.com/urfave/cli/v3"
)

// ErrNoGallery is returned by "settings gallery" when the profile has no marketplace override.
var ErrNoGallery = errors.New("no gallery override configured in the profile")

const planWrap = 100

func (app *CLI) createInstallCommand() *cli.Command {
	return &cli.Command{
		Name:  "install",
		Usage: "Install runtimes, editor, console, packages and editor configuration",
		Description: `Runs the full setup. Already installed tools are detected and left alone,
so running it again only fills in what is missing.

Examples:
  devsetup install                     Install everything
  devsetup install --python-only       Python, editor and Python extensions only
  devsetup install --skip-editor       Runtimes, console and packages only
  DRY_RUN=1 devsetup install           Print the commands instead of running them`,
		Action: app.runInstall,
	}
}

func (app *CLI) runInstall(ctx context.Context, cmd *cli.Command) error {
	in, err := app.resolveIntent(cmd)
	if err != nil {
		return err
	}

	orch, err := app.orchestrator(in)
	if err != nil {
		return err
	}

	unlock, err := app.acquireLock()
	if err != nil {
		return err
	}
	defer unlock()

	summary, err := orch.Run(ctx, in)
	if summary != nil {
		app.output.Summary(summary)
	}

	return err
}

func (app *CLI) createPlanCommand() *cli.Command {
	return &cli.Command{
		Name:  "plan",
		Usage: "Describe what install would do on this machine, without changing anything",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			in, err := app.resolveIntent(cmd)
			if err != nil {
				return err
			}

			orch, err := app.orchestrator(in)
			if err != nil {
				return err
			}

			plan, err := orch.Plan(ctx, in)
			if err != nil {
				return err
			}

			if app.json {
				return app.results().Success("", plan)
			}

			return app.results().Success(app.renderMarkdown(plan.Markdown()), nil)
		},
	}
}

// renderMarkdown styles markdown for the terminal. Plain output and render failures
// fall back to the markdown source.
func (app *CLI) renderMarkdown(md string) string {
	if app.plain {
		return md
	}

	style := glamour.WithAutoStyle()
	if app.color == console.ColorNever {
		style = glamour.WithStandardStyle("notty")
	}

	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(planWrap))
	if err != nil {
		app.logger.Debug().Err(err).Msg("markdown renderer unavailable")

		return md
	}

	out, err := renderer.Render(md)
	if err != nil {
		app.logger.Debug().Err(err).Msg("markdown render failed")

		return md
	}

	return out
}

func (app *CLI) createProbeCommand() *cli.Command {
	return &cli.Command{
		Name:  "probe",
		Usage: "Show the detected operating system, distribution and architecture",
		Action: func(ctx context.Context, _ *cli.Command) error {
			facts, err := app.ports(false, app.logger).Probe.Detect(ctx)
			if err != nil {
				return domain.NewExitError(domain.ExitFatal, "system check failed", err)
			}

			if app.json {
				return app.results().Success("", facts)
			}

			rows := [][]string{
				{"family", string(facts.Family)},
				{"arch", string(facts.Arch)},
				{"distro", facts.Distro},
				{"codename", facts.Codename},
				{"wsl", strconv.FormatBool(facts.IsWSL)},
				{"platform", string(facts.Platform())},
			}

			if app.plain {
				for _, row := range rows {
					app.output.PlainKeyValue(row[0], row[1])
				}

				return nil
			}

			if !app.quiet {
				_, _ = fmt.Fprintln(app.stdout, app.output.Header(console.DescribeFacts(facts)))
			}

			return app.results().Table([]string{"FACT", "VALUE"}, rows)
		},
	}
}

func (app *CLI) createSettingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Inspect or repair the editor settings file",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Print the settings file, one top-level key, or a path inside it",
				ArgsUsage: "[key [path]]",
				Description: `Top-level keys are matched literally, dots included.

Examples:
  devsetup settings show
  devsetup settings show r.bracketedPaste
  devsetup settings show [r] editor\.tabSize`,
				Action: app.showSettings,
			},
			{
				Name:  "gallery",
				Usage: "Show or switch the marketplace override view",
				Description: `Without --view, reports which view the settings file is in.
Use --view steady to recover after an interrupted install left the legacy key in place.`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "view",
						Usage: "view to apply: install or steady",
					},
				},
				Action: app.galleryView,
			},
		},
	}
}

// settingsStore locates the editor settings file for this machine.
func (app *CLI) settingsStore(ctx context.Context) (*settings.Store, profile.Profile, error) {
	prof, err := profile.Load(nil)
	if err != nil {
		return nil, prof, domain.NewExitError(domain.ExitFatal, "cannot load profile", err)
	}

	ports := app.ports(false, app.logger)

	facts, err := ports.Probe.Detect(ctx)
	if err != nil {
		return nil, prof, domain.NewExitError(domain.ExitFatal, "system check failed", err)
	}

	paths := platform.NewEditorPaths(facts.Family, prof.Editor.Flavour)

	return settings.NewStore(paths.Settings(), ports.Files, app.logger), prof, nil
}

func (app *CLI) showSettings(ctx context.Context, cmd *cli.Command) error {
	store, _, err := app.settingsStore(ctx)
	if err != nil {
		return err
	}

	doc := store.Load()

	if !cmd.Args().Present() {
		if app.json {
			return app.results().Success("", doc)
		}

		return app.results().Success(strings.TrimSuffix(doc.String(), "\n"), nil)
	}

	key := cmd.Args().Get(0)

	value := doc.Get(key)
	if path := cmd.Args().Get(1); path != "" && value.Exists() {
		value = value.Get(path)
	}

	if !value.Exists() {
		return domain.NewExitError(domain.ExitFatal,
			fmt.Sprintf("%s is not set in %s", strings.Join(cmd.Args().Slice(), " "), store.Path()), nil)
	}

	if app.json {
		return app.results().Success("", json.RawMessage(value.Raw))
	}

	if value.IsObject() || value.IsArray() {
		return app.results().Success(value.Raw, nil)
	}

	return app.results().Success(value.String(), nil)
}

func (app *CLI) galleryView(ctx context.Context, cmd *cli.Command) error {
	store, prof, err := app.settingsStore(ctx)
	if err != nil {
		return err
	}

	if !cmd.IsSet("view") {
		view, ok := settings.CurrentView(store.Load())

		current := "none"
		if ok {
			current = view.String()
		}

		return app.results().Success("gallery view: "+current, map[string]string{"view": current, "path": store.Path()})
	}

	view, err := settings.ParseView(cmd.String("view"))
	if err != nil {
		return domain.NewExitError(domain.ExitFatal, "invalid --view", fmt.Errorf("%w: %w", domain.ErrUsage, err))
	}

	if prof.Gallery.IsZero() {
		return domain.NewExitError(domain.ExitFatal, "cannot apply gallery view", ErrNoGallery)
	}

	unlock, err := app.acquireLock()
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := store.Update(settings.ViewEdits(view, prof.Gallery)...); err != nil {
		return domain.NewExitError(domain.ExitFatal, "cannot update settings", err)
	}

	return app.results().Success(fmt.Sprintf("%s now in the %s view", store.Path(), view),
		map[string]string{"view": view.String(), "path": store.Path()})
}

func (app *CLI) createSyncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Update a configuration checkout from its remote",
		Description: `Fetches the remote and merges it into the current branch: a fast-forward when
possible, a merge commit otherwise. Exits with code 2 when the merge leaves
conflicts to resolve by hand.

Examples:
  devsetup sync                              Merge origin/<current branch>
  devsetup sync --autostash --push-after     Stash local edits, merge, push
  devsetup sync --dir ~/dotfiles --remote upstream --branch main`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "remote",
				Usage: "remote to merge from",
				Value: vcs.DefaultRemote,
			},
			&cli.StringFlag{
				Name:  "branch",
				Usage: "branch to merge and push (default: the current branch)",
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "checkout to update (default: the current directory)",
			},
		},
		Action: app.runSync,
	}
}

func (app *CLI) runSync(ctx context.Context, cmd *cli.Command) error {
	in, err := app.resolveIntent(cmd)
	if err != nil {
		return err
	}

	syncer := vcs.NewSyncer(app.ports(false, app.logger).Runner, app.logger)

	result, err := syncer.Sync(ctx, vcs.Options{
		Dir:        platform.ExpandPath(cmd.String("dir")),
		Remote:     cmd.String("remote"),
		Branch:     cmd.String("branch"),
		AllowDirty: in.AllowDirty,
		Autostash:  in.Autostash,
		PushAfter:  in.PushAfter,
	})

	if app.json && result != nil {
		if outErr := app.results().Success("", result); outErr != nil {
			return outErr
		}
	}

	if err != nil {
		if result == nil {
			return err
		}

		for _, path := range result.Conflicts {
			app.output.Warningf("conflict: %s", path)
		}

		return err
	}

	mode := "merge commit"
	if result.FastForward {
		mode = "fast-forward"
	}

	app.output.Successf("Merged %s/%s (%s)", result.Remote, result.Branch, mode)

	if result.Stashed {
		app.output.Successf("Local changes restored")
	}

	if result.Pushed {
		app.output.Successf("Pushed to %s", result.Remote)
	}

	return nil
}

// resolveIntent layers the env file under the environment and resolves the intent flags.
func (app *CLI) resolveIntent(cmd *cli.Command) (domain.Intent, error) {
	env, err := intent.WithFile(app.env, platform.GetConfigPath(intent.EnvFile))
	if err != nil {
		return domain.Intent{}, domain.NewExitError(domain.ExitFatal, "cannot read "+intent.EnvFile, err)
	}

	in, _, err := intent.FromCommand(cmd, env)
	if err != nil {
		return domain.Intent{}, domain.NewExitError(domain.ExitFatal, "invalid usage", err)
	}

	app.logger.Debug().Interface("intent", in).Msg("intent resolved")

	return in, nil
}

// orchestrator wires the application to the system adapters for in.
func (app *CLI) orchestrator(in domain.Intent) (*application.Orchestrator, error) {
	prof, err := profile.Load(nil)
	if err != nil {
		return nil, domain.NewExitError(domain.ExitFatal, "cannot load profile", err)
	}

	ports := app.ports(in.DryRun, app.logger)

	prompter := platform.NewPrompter(in.NonInteractive, ports.StdinIsTTY)
	if fixed, ok := prompter.(platform.FixedPrompter); ok && app.verbose {
		fixed.Log = app.stderr
		prompter = fixed
	}

	var reporter application.Reporter = app.output
	if app.quiet {
		reporter = quietReporter{app.output}
	}

	return application.NewOrchestrator(application.Config{
		Probe: ports.Probe,
		Installer: installer.NewDispatcher(ports.Runner, installer.Options{
			EditorCommand:  prof.Editor.Command,
			ConsolePackage: prof.Console.Package,
		}, app.logger),
		Runner:    ports.Runner,
		Files:     ports.Files,
		Refresher: ports.Refresher,
		Prompter:  prompter,
		Reporter:  reporter,
		Profile:   prof,
		Logger:    app.logger,
	}), nil
}

// quietReporter keeps warnings and drops progress.
type quietReporter struct {
	application.Reporter
}

func (quietReporter) Stepf(string, ...any)    {}
func (quietReporter) Successf(string, ...any) {}
