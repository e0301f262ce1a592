// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

// Package cli provides the devsetup command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/gofrs/flock"
	cliAdapter "github.com/janderssonse/devsetup/internal/adapters/cli"
	adapterplatform "github.com/janderssonse/devsetup/internal/adapters/platform"
	"github.com/janderssonse/devsetup/internal/console"
	"github.com/janderssonse/devsetup/internal/domain"
	"github.com/janderssonse/devsetup/internal/intent"
	"github.com/janderssonse/devsetup/internal/logging"
	"github.com/janderssonse/devsetup/internal/platform"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=v1.2.3".
var Version = "dev" //nolint:gochecknoglobals

// ErrAlreadyRunning is returned by mutating commands while another devsetup holds the lock.
var ErrAlreadyRunning = errors.New("another devsetup instance is already running")

// Ports are the system adapters a command runs against.
type Ports struct {
	Probe     domain.SystemProbe
	Runner    domain.CommandRunner
	Files     domain.FileManager
	Refresher domain.PathRefresher
	// StdinIsTTY selects interactive prompts when the intent allows them.
	StdinIsTTY bool
}

// PortsFactory builds the ports for one command. dryRun selects an echoing command runner.
type PortsFactory func(dryRun bool, logger zerolog.Logger) Ports

// SystemPorts returns the real adapters for the running machine.
func SystemPorts(dryRun bool, logger zerolog.Logger) Ports {
	return Ports{
		Probe:      adapterplatform.NewSystemDetector(adapterplatform.OSHostEnv{}, logger),
		Runner:     adapterplatform.NewCommandRunner(dryRun, logger),
		Files:      adapterplatform.NewFileManager(logger),
		Refresher:  adapterplatform.NewPathRefresher(logger),
		StdinIsTTY: platform.StdinIsTTY(),
	}
}

// CLI holds the parsed global flags and builds the command tree.
type CLI struct {
	app     *cli.Command
	verbose bool
	json    bool
	quiet   bool
	plain   bool
	color   string // "auto", "always", "never"

	stdout io.Writer
	stderr io.Writer
	output *console.Output
	logger zerolog.Logger
	env    intent.Lookup
	ports  PortsFactory

	// lockPath serializes the commands that run package managers or rewrite settings.
	lockPath  string
	loggerSet bool
}

// Option customizes a CLI, mostly for tests.
type Option func(*CLI)

// WithWriters sends results and diagnostics to the given writers.
func WithWriters(stdout, stderr io.Writer) Option {
	return func(app *CLI) {
		app.stdout, app.stderr = stdout, stderr
	}
}

// WithEnv replaces the process environment as the source of intent variables.
func WithEnv(env intent.Lookup) Option {
	return func(app *CLI) {
		app.env = env
	}
}

// WithPorts replaces the system adapters.
func WithPorts(ports PortsFactory) Option {
	return func(app *CLI) {
		app.ports = ports
	}
}

// WithLockPath moves the process lock file.
func WithLockPath(path string) Option {
	return func(app *CLI) {
		app.lockPath = path
	}
}

// WithLogger sets the logger; by default one is built from --verbose.
func WithLogger(logger zerolog.Logger) Option {
	return func(app *CLI) {
		app.logger = logger
		app.loggerSet = true
	}
}

// NewCLI creates the devsetup command tree.
func NewCLI(opts ...Option) *CLI {
	app := &CLI{
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		env:      intent.ProcessEnv(),
		ports:    SystemPorts,
		logger:   logging.Nop(),
		lockPath: filepath.Join(os.TempDir(), "devsetup.lock"),
	}

	for _, opt := range opts {
		opt(app)
	}

	app.output = console.NewWithWriters(app.stdout, app.stderr)

	app.app = &cli.Command{
		Name:    "devsetup",
		Usage:   "Set up R, Python and VS Code for data science",
		Version: app.getVersion(),
		Suggest: true,
		Description: `Installs the R and Python runtimes, VS Code and the radian console,
then the language packages and editor extensions, and patches the editor
settings and keybindings without touching unrelated entries.

Running devsetup without a command is the same as "devsetup install".

EXAMPLES:
  devsetup                          Install everything, asking before optional steps
  devsetup --r-only --dry-run       Show what an R-only setup would run
  devsetup plan                     Describe the steps for this machine
  devsetup settings show editor.tabSize
  devsetup sync --autostash         Update a configuration checkout

Every install flag can also be set from the environment (R_ONLY=1, DRY_RUN=yes)
or from $XDG_CONFIG_HOME/devsetup/devsetup.env.`,
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:        "verbose",
				Usage:       "show debug logs and progress messages on stderr",
				Aliases:     []string{"v"},
				Destination: &app.verbose,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output structured JSON results",
				Aliases:     []string{"j"},
				Destination: &app.json,
			},
			&cli.BoolFlag{
				Name:        "quiet",
				Usage:       "suppress non-essential output",
				Aliases:     []string{"q"},
				Destination: &app.quiet,
			},
			&cli.BoolFlag{
				Name:        "plain",
				Usage:       "output plain text without formatting for scripts",
				Destination: &app.plain,
			},
			&cli.StringFlag{
				Name:        "color",
				Usage:       "color output mode: auto, always, never",
				Value:       console.ColorAuto,
				Destination: &app.color,
			},
		}, intent.Flags()...),
		Writer:    app.stdout,
		ErrWriter: app.stderr,
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return app.initConfig(ctx, cmd)
		},
		OnUsageError: func(_ context.Context, _ *cli.Command, err error, _ bool) error {
			return domain.NewExitError(domain.ExitFatal, "invalid usage", fmt.Errorf("%w: %w", domain.ErrUsage, err))
		},
		Action:   app.defaultAction,
		Commands: app.createAllCommands(),
	}

	return app
}

// Run executes the CLI application.
func (app *CLI) Run(ctx context.Context, args []string) error {
	return app.app.Run(ctx, args)
}

// Logger returns the logger configured from the global flags.
func (app *CLI) Logger() zerolog.Logger {
	return app.logger
}

func (app *CLI) createAllCommands() []*cli.Command {
	return []*cli.Command{
		app.createInstallCommand(),
		app.createPlanCommand(),
		app.createProbeCommand(),
		app.createSettingsCommand(),
		app.createSyncCommand(),
		app.createVersionCommand(),
	}
}

// defaultAction runs the install sequence when no command is given.
func (app *CLI) defaultAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Present() {
		return domain.NewExitError(domain.ExitFatal,
			fmt.Sprintf("'%s' is not a command, run 'devsetup --help' to see available commands", cmd.Args().First()),
			domain.ErrUsage)
	}

	return app.runInstall(ctx, cmd)
}

// initConfig validates global flags and configures output and logging.
func (app *CLI) initConfig(ctx context.Context, _ *cli.Command) (context.Context, error) {
	if app.json && app.plain {
		return ctx, domain.NewExitError(domain.ExitFatal, "cannot use both --json and --plain flags simultaneously", domain.ErrUsage)
	}

	switch app.color {
	case console.ColorAuto, console.ColorAlways, console.ColorNever:
	default:
		return ctx, domain.NewExitError(domain.ExitFatal, "invalid --color value: must be auto, always, or never", domain.ErrUsage)
	}

	app.output.SetMode(app.verbose, app.json, app.plain)
	app.output.SetColor(app.color)

	if !app.loggerSet {
		cfg := logging.ForVerbosity(app.verbose)
		cfg.Output = app.stderr
		app.logger = logging.New(cfg)
	}

	return ctx, nil
}

// acquireLock takes the process lock without waiting. Read-only commands never call it,
// so they keep working while an install runs.
func (app *CLI) acquireLock() (func(), error) {
	lock := flock.New(app.lockPath)

	locked, err := lock.TryLock()
	if err != nil {
		return nil, domain.NewExitError(domain.ExitFatal, "failed to acquire process lock", err)
	}

	if !locked {
		return nil, domain.NewExitError(domain.ExitFatal, "cannot start", ErrAlreadyRunning)
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			app.logger.Warn().Err(err).Str("path", app.lockPath).Msg("failed to release process lock")
		}
	}, nil
}

// results returns the output port for command results on stdout.
func (app *CLI) results() domain.OutputPort {
	format := cliAdapter.TextFormat
	if app.json {
		format = cliAdapter.JSONFormat
	}

	return cliAdapter.NewOutputAdapterWithWriter(app.stdout, format, app.quiet)
}

func (app *CLI) createVersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(_ context.Context, _ *cli.Command) error {
			version := app.getVersion()

			if app.json {
				return app.results().Success("", map[string]string{"version": version})
			}

			return app.results().Success(version, nil)
		},
	}
}

// getVersion prefers the link-time version, then the module version from build info.
func (app *CLI) getVersion() string {
	if Version != "dev" {
		return Version
	}

	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	return Version
}
