// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	adapterplatform "github.com/janderssonse/devsetup/internal/adapters/platform"
	"github.com/gofrs/flock"
	"github.com/janderssonse/devsetup/internal/application"
	"github.com/janderssonse/devsetup/internal/domain"
	"github.com/janderssonse/devsetup/internal/intent"
	"github.com/janderssonse/devsetup/internal/settings"
	"github.com/janderssonse/devsetup/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var noble = domain.SystemFacts{ //nolint:gochecknoglobals
	Family:   domain.FamilyLinux,
	Arch:     domain.ArchX86_64,
	Distro:   "ubuntu",
	Codename: "noble",
}

type harness struct {
	runner *testutil.FakeRunner
	fs     afero.Fs
	config string
	lock   string
	env    map[string]string
	dryRun bool

	stdout bytes.Buffer
	stderr bytes.Buffer
}

// newHarness points XDG_CONFIG_HOME at a temp dir, so tests using it cannot run in parallel.
func newHarness(t *testing.T, available ...string) *harness {
	t.Helper()

	config := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", config)

	return &harness{
		runner: testutil.NewFakeRunner(available...),
		fs:     afero.NewMemMapFs(),
		config: config,
		lock:   filepath.Join(config, "devsetup.lock"),
		env:    map[string]string{},
	}
}

func (h *harness) run(args ...string) error {
	probe := &testutil.MockSystemProbe{}
	probe.On("Detect", mock.Anything).Return(noble, nil).Maybe()

	app := NewCLI(
		WithWriters(&h.stdout, &h.stderr),
		WithEnv(intent.MapLookup(h.env)),
		WithLogger(zerolog.Nop()),
		WithLockPath(h.lock),
		WithPorts(func(dryRun bool, _ zerolog.Logger) Ports {
			h.dryRun = dryRun

			return Ports{
				Probe:     probe,
				Runner:    h.runner,
				Files:     adapterplatform.NewFileManagerWithFs(h.fs, zerolog.Nop()),
				Refresher: testutil.NopRefresher{},
			}
		}),
	)

	return app.Run(context.Background(), append([]string{"devsetup"}, args...))
}

func (h *harness) settingsPath() string {
	return filepath.Join(h.config, "Code", "User", "settings.json")
}

func (h *harness) writeSettings(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(h.fs, h.settingsPath(), []byte(content), 0o600))
}

func (h *harness) readSettings(t *testing.T) *settings.Document {
	t.Helper()

	data, err := afero.ReadFile(h.fs, h.settingsPath())
	require.NoError(t, err)

	return settings.Parse(data)
}

func exitCode(t *testing.T, err error) int {
	t.Helper()

	var exitErr *domain.ExitError
	require.ErrorAs(t, err, &exitErr)

	return exitErr.Code
}

func TestNewCLI(t *testing.T) {
	t.Parallel()

	cliApp := NewCLI()

	require.NotNil(t, cliApp)
	require.NotNil(t, cliApp.app)
	require.Equal(t, "devsetup", cliApp.app.Name)
	require.NotEmpty(t, cliApp.app.Usage)
	require.NotEmpty(t, cliApp.app.Description)
	require.NotEmpty(t, cliApp.app.Commands)
	require.NotNil(t, cliApp.app.Action, "running without a command installs")
}

func TestCLI_CreateAllCommands(t *testing.T) {
	t.Parallel()

	commandNames := make(map[string]bool)
	for _, cmd := range NewCLI().createAllCommands() {
		commandNames[cmd.Name] = true
	}

	for _, expected := range []string{"install", "plan", "probe", "settings", "sync", "version"} {
		require.True(t, commandNames[expected], "command %s should exist", expected)
	}
}

func TestCLI_RootCarriesIntentFlags(t *testing.T) {
	t.Parallel()

	names := make(map[string]bool)
	for _, flag := range NewCLI().app.Flags {
		for _, name := range flag.Names() {
			names[name] = true
		}
	}

	for _, expected := range []string{"verbose", "v", "json", "quiet", "plain", "color", intent.FlagROnly, intent.FlagDryRun, intent.FlagPushAfter} {
		assert.True(t, names[expected], "flag %s should exist", expected)
	}
}

func TestCLI_GlobalFlagErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{name: "json and plain", args: []string{"--json", "--plain", "version"}},
		{name: "invalid color", args: []string{"--color", "neon", "version"}},
		{name: "unknown command", args: []string{"frobnicate"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer

			app := NewCLI(WithWriters(&stdout, &stderr), WithLogger(zerolog.Nop()))

			err := app.Run(context.Background(), append([]string{"devsetup"}, tt.args...))
			require.ErrorIs(t, err, domain.ErrUsage)
			assert.Equal(t, domain.ExitFatal, exitCode(t, err))
		})
	}
}

func TestCLI_UnknownFlagFails(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	app := NewCLI(WithWriters(&stdout, &stderr), WithLogger(zerolog.Nop()))

	require.Error(t, app.Run(context.Background(), []string{"devsetup", "--no-such-flag"}))
}

func TestCLI_VersionJSON(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	app := NewCLI(WithWriters(&stdout, &stderr), WithLogger(zerolog.Nop()))
	require.NoError(t, app.Run(context.Background(), []string{"devsetup", "--json", "version"}))

	var out map[string]string
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.NotEmpty(t, out["version"])
}

func TestCLI_Probe(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("--json", "probe"))

	var facts domain.SystemFacts
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &facts))
	assert.Equal(t, noble, facts)

	h.stdout.Reset()
	require.NoError(t, h.run("--plain", "probe"))
	assert.Contains(t, h.stdout.String(), "distro:ubuntu\n")
	assert.Contains(t, h.stdout.String(), "platform:debian\n")
}

func TestCLI_InstallWithEverythingPresent(t *testing.T) {
	h := newHarness(t, "python3", "Rscript", "code", "radian")

	require.NoError(t, h.run("--json", "--non-interactive"))

	var out struct {
		Status string         `json:"status"`
		Result domain.Summary `json:"result"`
	}
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &out))
	assert.Equal(t, "success", out.Status)
	assert.False(t, h.dryRun)

	doc := h.readSettings(t)
	assert.True(t, doc.Get("r.bracketedPaste").Bool())
	assert.Equal(t, "/usr/bin/radian", doc.Get("r.rterm.linux").String())
	assert.True(t, h.runner.Ran("/usr/bin/code --install-extension REditorSupport.r"))
}

func TestCLI_InstallDryRunFromEnvFile(t *testing.T) {
	h := newHarness(t, "python3", "Rscript", "code", "radian")

	envFile := filepath.Join(h.config, "devsetup", intent.EnvFile)
	require.NoError(t, os.MkdirAll(filepath.Dir(envFile), 0o750))
	require.NoError(t, os.WriteFile(envFile, []byte("DRY_RUN=yes\nSKIP_CONSOLE=1\n"), 0o600))

	require.NoError(t, h.run("install", "--non-interactive"))

	assert.True(t, h.dryRun)

	exists, err := afero.Exists(h.fs, h.settingsPath())
	require.NoError(t, err)
	assert.False(t, exists, "dry run writes no files")
	assert.Contains(t, h.stderr.String(), "Summary")
}

func TestCLI_LockGuardsOnlyMutatingCommands(t *testing.T) {
	h := newHarness(t, "python3", "Rscript", "code", "radian")
	h.writeSettings(t, `{"editor.tabSize": 2}`)

	held := flock.New(h.lock)
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)

	t.Cleanup(func() { _ = held.Unlock() })

	err = h.run("--non-interactive")
	require.ErrorIs(t, err, ErrAlreadyRunning)
	assert.Equal(t, domain.ExitFatal, exitCode(t, err))
	assert.Empty(t, h.runner.Calls)

	require.NoError(t, h.run("--json", "probe"))
	require.NoError(t, h.run("version"))
	require.NoError(t, h.run("settings", "show", "editor.tabSize"))
	require.NoError(t, h.run("settings", "gallery"))

	require.NoError(t, held.Unlock())
	require.NoError(t, h.run("--non-interactive", "--dry-run"))
}

func TestCLI_ConflictingOnlyFlags(t *testing.T) {
	h := newHarness(t)

	err := h.run("--r-only", "--python-only", "install")
	require.ErrorIs(t, err, intent.ErrConflictingOnly)
	assert.Equal(t, domain.ExitFatal, exitCode(t, err))
	assert.Empty(t, h.runner.Calls)
}

func TestCLI_RequiredRuntimeFailureIsFatal(t *testing.T) {
	h := newHarness(t)

	err := h.run("--python-only", "--non-interactive", "--plain")
	assert.Equal(t, domain.ExitFatal, exitCode(t, err))
	assert.Contains(t, h.stdout.String(), "Python runtime:failed\n")
	assert.Empty(t, h.runner.Calls, "no package manager, nothing to run")
}

func TestCLI_PlanFlagBeatsEnv(t *testing.T) {
	h := newHarness(t, "python3")
	h.env["PYTHON_ONLY"] = "1"

	require.NoError(t, h.run("--json", "plan", "--r-only"))

	var plan application.Plan
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &plan))
	assert.True(t, plan.Intent.InstallR)
	assert.False(t, plan.Intent.InstallPython)
	assert.Empty(t, h.runner.Calls, "planning runs nothing")
}

func TestCLI_PlanPlainMarkdown(t *testing.T) {
	h := newHarness(t, "python3")

	require.NoError(t, h.run("--plain", "plan"))
	assert.Contains(t, h.stdout.String(), "# devsetup plan")
	assert.Contains(t, h.stdout.String(), "Already installed at `/usr/bin/python3`")
}

func TestCLI_SettingsShow(t *testing.T) {
	h := newHarness(t)
	h.writeSettings(t, `{
    // user comment
    "editor.tabSize": 2,
    "[r]": {"editor.tabSize": 4},
}`)

	require.NoError(t, h.run("settings", "show", "editor.tabSize"))
	assert.Equal(t, "2\n", h.stdout.String())

	h.stdout.Reset()
	require.NoError(t, h.run("settings", "show", "[r]", `editor\.tabSize`))
	assert.Equal(t, "4\n", h.stdout.String())

	err := h.run("settings", "show", "python.defaultInterpreterPath")
	assert.Equal(t, domain.ExitFatal, exitCode(t, err))
}

func TestCLI_SettingsGallery(t *testing.T) {
	h := newHarness(t)
	h.writeSettings(t, `{"extensionsGallery": {"serviceUrl": "https://open-vsx.org/vscode/gallery"}, "files.eol": "\n"}`)

	require.NoError(t, h.run("settings", "gallery"))
	assert.Equal(t, "gallery view: install\n", h.stdout.String())

	err := h.run("settings", "gallery", "--view", "steady")
	require.ErrorIs(t, err, ErrNoGallery)

	profilePath := filepath.Join(h.config, "devsetup", "profile.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(profilePath), 0o750))
	require.NoError(t, os.WriteFile(profilePath, []byte(`[gallery]
service_url = "https://open-vsx.org/vscode/gallery"
item_url = "https://open-vsx.org/vscode/item"
`), 0o600))

	require.NoError(t, h.run("settings", "gallery", "--view", "steady"))

	doc := h.readSettings(t)
	assert.False(t, doc.Has(settings.LegacyGalleryKey))
	assert.Equal(t, "https://open-vsx.org/vscode/item", doc.Get(settings.ItemURLKey).String())
	assert.Equal(t, "\n", doc.Get("files.eol").String())

	err = h.run("settings", "gallery", "--view", "sideways")
	require.ErrorIs(t, err, settings.ErrUnknownView)
}

func TestCLI_SyncConflictExitsTwo(t *testing.T) {
	h := newHarness(t, "git")
	h.runner.Outputs["git rev-parse --is-inside-work-tree"] = "true\n"
	h.runner.Outputs["git remote"] = "origin\n"
	h.runner.Outputs["git rev-parse --abbrev-ref HEAD"] = "main\n"
	h.runner.Outputs["git diff --name-only --diff-filter=U"] = "settings.json\n"
	h.runner.Failures["git merge --ff-only origin/main"] = errors.New("not possible to fast-forward")
	h.runner.Failures["git merge --no-ff --no-edit origin/main"] = errors.New("exit status 1")

	err := h.run("sync", "--push-after")
	require.ErrorIs(t, err, domain.ErrMergeConflict)
	assert.Equal(t, domain.ExitConflict, exitCode(t, err))
	assert.Contains(t, h.stderr.String(), "conflict: settings.json")
	assert.False(t, h.runner.Ran("git push"))
}

func TestCLI_SyncFromEnv(t *testing.T) {
	h := newHarness(t, "git")
	h.env["AUTOSTASH"] = "true"
	h.runner.Outputs["git rev-parse --is-inside-work-tree"] = "true\n"
	h.runner.Outputs["git remote"] = "origin\n"
	h.runner.Outputs["git status --porcelain"] = " M profile.toml\n"

	require.NoError(t, h.run("--json", "sync", "--branch", "main"))
	assert.True(t, h.runner.Ran("git stash push"))
	assert.True(t, h.runner.Ran("git stash pop"))
	assert.Contains(t, h.stdout.String(), `"fast_forward": true`)
}
