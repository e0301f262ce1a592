// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

package platform

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/janderssonse/devsetup/internal/domain"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	osReleasePath      = "/etc/os-release"
	kernelReleasePath  = "/proc/sys/kernel/osrelease"
	fallbackOSRelease  = "/usr/lib/os-release"
	envWSLDistroName   = "WSL_DISTRO_NAME"
	envWSLInterop      = "WSL_INTEROP"
	envProcessorArch   = "PROCESSOR_ARCHITECTURE"
	envProcessorArchWx = "PROCESSOR_ARCHITEW6432"
)

// HostEnv is the read-only view of the host the probe inspects.
type HostEnv interface {
	// Uname returns the kernel name and machine hardware name.
	Uname() (sysname, machine string, err error)
	Getenv(key string) string
	ReadFile(path string) ([]byte, error)
}

// OSHostEnv reads facts from the running process.
type OSHostEnv struct{}

// Uname returns the kernel name and machine of the running host.
func (OSHostEnv) Uname() (string, string, error) {
	return uname()
}

// Getenv reads a process environment variable.
func (OSHostEnv) Getenv(key string) string {
	return os.Getenv(key)
}

// ReadFile reads a file from the host filesystem.
func (OSHostEnv) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path) //nolint:gosec // fixed system paths
}

// SystemDetector implements the SystemProbe port.
type SystemDetector struct {
	host   HostEnv
	logger zerolog.Logger
}

// NewSystemDetector creates a probe reading from host.
func NewSystemDetector(host HostEnv, logger zerolog.Logger) *SystemDetector {
	return &SystemDetector{
		host:   host,
		logger: logger,
	}
}

// Detect resolves the system facts. Unknown OS families and architectures are fatal.
func (d *SystemDetector) Detect(_ context.Context) (domain.SystemFacts, error) {
	sysname, machine, err := d.host.Uname()
	if err != nil {
		return domain.SystemFacts{}, fmt.Errorf("failed to read kernel name: %w", err)
	}

	family, err := NormalizeFamily(sysname)
	if err != nil {
		return domain.SystemFacts{}, err
	}

	if family == domain.FamilyWindows {
		machine = d.windowsMachine(machine)
	}

	arch, err := NormalizeArch(machine)
	if err != nil {
		return domain.SystemFacts{}, err
	}

	facts := domain.SystemFacts{
		Family: family,
		Arch:   arch,
		Distro: domain.DistroUnknown,
	}

	if family == domain.FamilyLinux {
		facts.Distro, facts.Codename = d.distribution()
		facts.IsWSL = d.isWSL()
	}

	d.logger.Debug().
		Str("family", string(facts.Family)).
		Str("arch", string(facts.Arch)).
		Str("distro", facts.Distro).
		Str("codename", facts.Codename).
		Bool("wsl", facts.IsWSL).
		Msg("system detected")

	return facts, nil
}

// NormalizeFamily maps a kernel name onto a supported OS family.
func NormalizeFamily(sysname string) (domain.Family, error) {
	name := strings.ToLower(strings.TrimSpace(sysname))

	switch {
	case strings.Contains(name, "linux"):
		return domain.FamilyLinux, nil
	case strings.Contains(name, "darwin"):
		return domain.FamilyMacOS, nil
	case strings.Contains(name, "windows"),
		strings.HasPrefix(name, "mingw"),
		strings.HasPrefix(name, "msys"),
		strings.HasPrefix(name, "cygwin"):
		return domain.FamilyWindows, nil
	}

	return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedOS, sysname)
}

// NormalizeArch maps a machine hardware name onto a supported architecture.
func NormalizeArch(machine string) (domain.Arch, error) {
	switch strings.ToLower(strings.TrimSpace(machine)) {
	case "x86_64", "amd64", "x64":
		return domain.ArchX86_64, nil
	case "arm64", "aarch64":
		return domain.ArchARM64, nil
	}

	return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedArch, machine)
}

// windowsMachine prefers the native architecture reported to WOW64 processes.
func (d *SystemDetector) windowsMachine(machine string) string {
	if native := d.host.Getenv(envProcessorArchWx); native != "" {
		return native
	}

	if arch := d.host.Getenv(envProcessorArch); arch != "" {
		return arch
	}

	return machine
}

func (d *SystemDetector) distribution() (string, string) {
	for _, path := range []string{osReleasePath, fallbackOSRelease} {
		data, err := d.host.ReadFile(path)
		if err != nil {
			continue
		}

		fields := ParseOSRelease(string(data))

		distro := strings.ToLower(fields["ID"])
		if distro == "" {
			distro = domain.DistroUnknown
		}

		codename := fields["VERSION_CODENAME"]
		if codename == "" {
			codename = fields["UBUNTU_CODENAME"]
		}

		return distro, codename
	}

	d.logger.Debug().Msg("no os-release metadata found")

	return domain.DistroUnknown, ""
}

func (d *SystemDetector) isWSL() bool {
	if d.host.Getenv(envWSLDistroName) != "" || d.host.Getenv(envWSLInterop) != "" {
		return true
	}

	data, err := d.host.ReadFile(kernelReleasePath)
	if err != nil {
		return false
	}

	release := strings.ToLower(string(data))

	return strings.Contains(release, "microsoft") || strings.Contains(release, "wsl")
}

// ParseOSRelease parses os-release content. Shell-style quoting is handled by godotenv;
// content it rejects falls back to a plain KEY=value line scan.
func ParseOSRelease(content string) map[string]string {
	if fields, err := godotenv.Unmarshal(content); err == nil {
		return fields
	}

	fields := make(map[string]string)

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}

		fields[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"'`)
	}

	return fields
}
