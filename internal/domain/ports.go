// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import (
	"context"
)

// SystemProbe resolves the facts of the running host.
type SystemProbe interface {
	// Detect reads OS family, architecture, distribution and WSL status.
	Detect(ctx context.Context) (SystemFacts, error)
}

// PackageInstaller dispatches installation of a target to the platform package manager.
type PackageInstaller interface {
	// Install runs the platform-appropriate commands for target.
	Install(ctx context.Context, target Target, facts SystemFacts) error
}

// CommandRunner defines the interface for executing system commands.
type CommandRunner interface {
	// Execute runs a command with output attached to the terminal.
	Execute(ctx context.Context, name string, args ...string) error

	// ExecuteWithOutput runs a command and returns its standard output.
	ExecuteWithOutput(ctx context.Context, name string, args ...string) (string, error)

	// ExecuteSudo runs a command with sudo privileges.
	ExecuteSudo(ctx context.Context, name string, args ...string) error

	// CommandExists checks if a command is resolvable on the search path.
	CommandExists(name string) bool

	// LookPath returns the resolved path of a command.
	LookPath(name string) (string, error)
}

// FileManager defines the interface for file operations.
type FileManager interface {
	// FileExists checks if a file exists.
	FileExists(path string) bool

	// EnsureDir creates a directory and all parent directories if they don't exist.
	EnsureDir(path string) error

	// ReadFile reads data from a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating parent directories.
	WriteFile(path string, data []byte) error

	// WriteFileAtomic writes data to a temporary sibling and renames it over path.
	WriteFileAtomic(path string, data []byte) error

	// RemoveFile removes a file.
	RemoveFile(path string) error
}

// PathRefresher re-resolves the process search path after an install step.
type PathRefresher interface {
	Refresh() error
}

// Prompter is the input source for yes/no questions. It is chosen once at
// startup: interactive when a terminal is attached, fixed defaults otherwise.
type Prompter interface {
	Confirm(title, description string, def bool) (bool, error)
}
