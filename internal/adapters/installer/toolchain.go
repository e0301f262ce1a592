// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

package installer

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/janderssonse/devsetup/internal/domain"
	"github.com/rs/zerolog"
)

// ErrInvalidPackageName is returned for an R package name CRAN would not accept.
var ErrInvalidPackageName = errors.New("invalid package name")

var rPackageName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9.]*[A-Za-z0-9]$`)

// The site library is root- or staff-owned on Linux, so packages go to R_LIBS_USER.
// R only adds that directory to .libPaths() at startup when it already exists.
const rUserLibrary = `lib <- path.expand(Sys.getenv("R_LIBS_USER")); ` +
	`dir.create(lib, recursive = TRUE, showWarnings = FALSE); .libPaths(c(lib, .libPaths()))`

const externallyManagedQuery = `import os, sysconfig; ` +
	`print(os.path.exists(os.path.join(sysconfig.get_path("stdlib"), "EXTERNALLY-MANAGED")))`

// ExtensionReport lists the outcome per editor extension.
type ExtensionReport struct {
	Installed []string         `json:"installed"`
	Present   []string         `json:"present"`
	Failed    map[string]error `json:"-"`
}

// Toolchain installs language packages and editor extensions through the runtimes'
// own CLIs.
type Toolchain struct {
	commandRunner domain.CommandRunner
	logger        zerolog.Logger
	dryRun        bool
}

// NewToolchain creates a toolchain. In dry-run mode every package counts as missing,
// so the install commands are echoed.
func NewToolchain(commandRunner domain.CommandRunner, dryRun bool, logger zerolog.Logger) *Toolchain {
	return &Toolchain{
		commandRunner: commandRunner,
		logger:        logger,
		dryRun:        dryRun,
	}
}

// MissingRPackages returns the packages that requireNamespace cannot load.
func (t *Toolchain) MissingRPackages(ctx context.Context, rscript string, pkgs []string) ([]string, error) {
	if err := validateRPackages(pkgs); err != nil {
		return nil, err
	}

	if t.dryRun || len(pkgs) == 0 {
		return slices.Clone(pkgs), nil
	}

	expr := fmt.Sprintf(
		`for (p in %s) if (!requireNamespace(p, quietly = TRUE)) cat(p, "\n", sep = "")`,
		rVector(pkgs))

	out, err := t.commandRunner.ExecuteWithOutput(ctx, rscript, "-e", expr)
	if err != nil {
		return nil, fmt.Errorf("failed to query R packages: %w", err)
	}

	var missing []string

	for line := range strings.Lines(out) {
		if name := strings.TrimSpace(line); name != "" && slices.Contains(pkgs, name) {
			missing = append(missing, name)
		}
	}

	return missing, nil
}

// InstallRPackages installs the missing packages from repo and returns what it installed.
// install.packages only warns on failure, so the packages are checked again afterwards.
func (t *Toolchain) InstallRPackages(ctx context.Context, rscript, repo string, pkgs []string) ([]string, error) {
	missing, err := t.MissingRPackages(ctx, rscript, pkgs)
	if err != nil || len(missing) == 0 {
		return nil, err
	}

	expr := fmt.Sprintf("%s; install.packages(%s, lib = lib, repos = %s)",
		rUserLibrary, rVector(missing), strconv.Quote(repo))

	if err := t.commandRunner.Execute(ctx, rscript, "-e", expr); err != nil {
		return nil, fmt.Errorf("failed to install R packages: %w", err)
	}

	if t.dryRun {
		return missing, nil
	}

	still, err := t.MissingRPackages(ctx, rscript, missing)
	if err != nil {
		return nil, err
	}

	if len(still) > 0 {
		return nil, fmt.Errorf("R packages %s: %w", strings.Join(still, ", "), domain.ErrStillMissing)
	}

	return missing, nil
}

// InstallPythonPackages installs pkgs into the user site with pip. On interpreters marked
// EXTERNALLY-MANAGED (PEP 668) pip refuses user installs unless told otherwise.
func (t *Toolchain) InstallPythonPackages(ctx context.Context, python string, pkgs []string) error {
	if len(pkgs) == 0 {
		return nil
	}

	args := []string{"-m", "pip", "install", "--user", "--upgrade"}
	if t.externallyManaged(ctx, python) {
		args = append(args, "--break-system-packages")
	}

	args = append(args, pkgs...)

	if err := t.commandRunner.Execute(ctx, python, args...); err != nil {
		return fmt.Errorf("failed to install Python packages: %w", err)
	}

	return nil
}

// externallyManaged reports whether python's stdlib carries the PEP 668 marker file.
// A failed query counts as unmanaged; pip then reports the problem itself.
func (t *Toolchain) externallyManaged(ctx context.Context, python string) bool {
	if t.dryRun {
		return false
	}

	out, err := t.commandRunner.ExecuteWithOutput(ctx, python, "-c", externallyManagedQuery)
	if err != nil {
		t.logger.Debug().Err(err).Str("python", python).Msg("externally-managed check failed")

		return false
	}

	return strings.TrimSpace(out) == "True"
}

// InstalledExtensions returns the lowercased IDs the editor reports as installed.
func (t *Toolchain) InstalledExtensions(ctx context.Context, editor string) (map[string]bool, error) {
	out, err := t.commandRunner.ExecuteWithOutput(ctx, editor, "--list-extensions")
	if err != nil {
		return nil, fmt.Errorf("failed to list extensions: %w", err)
	}

	installed := make(map[string]bool)

	for line := range strings.Lines(out) {
		if id := strings.TrimSpace(line); id != "" {
			installed[strings.ToLower(id)] = true
		}
	}

	return installed, nil
}

// InstallExtensions installs each extension not already present. A failing extension
// does not stop the others.
func (t *Toolchain) InstallExtensions(ctx context.Context, editor string, ids []string) ExtensionReport {
	report := ExtensionReport{Failed: make(map[string]error)}

	installed, err := t.InstalledExtensions(ctx, editor)
	if err != nil {
		t.logger.Debug().Err(err).Str("editor", editor).Msg("extension list unavailable")

		installed = nil
	}

	for _, id := range ids {
		if installed[strings.ToLower(id)] {
			report.Present = append(report.Present, id)

			continue
		}

		if err := t.commandRunner.Execute(ctx, editor, "--install-extension", id, "--force"); err != nil {
			report.Failed[id] = err

			continue
		}

		report.Installed = append(report.Installed, id)
	}

	return report
}

// FailedIDs returns the failed extension IDs in the order they were requested.
func (r ExtensionReport) FailedIDs(requested []string) []string {
	var ids []string

	for _, id := range requested {
		if _, ok := r.Failed[id]; ok {
			ids = append(ids, id)
		}
	}

	return ids
}

func validateRPackages(pkgs []string) error {
	for _, pkg := range pkgs {
		if !rPackageName.MatchString(pkg) {
			return fmt.Errorf("%w: %q", ErrInvalidPackageName, pkg)
		}
	}

	return nil
}

// rVector renders names as an R character vector, c("a", "b").
func rVector(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = strconv.Quote(name)
	}

	return "c(" + strings.Join(quoted, ", ") + ")"
}
