// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

package platform_test

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/janderssonse/devsetup/internal/adapters/platform"
	"github.com/janderssonse/devsetup/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	sysname string
	machine string
	env     map[string]string
	files   map[string]string
	err     error
}

func (h fakeHost) Uname() (string, string, error) { return h.sysname, h.machine, h.err }

func (h fakeHost) Getenv(key string) string { return h.env[key] }

func (h fakeHost) ReadFile(path string) ([]byte, error) {
	if content, ok := h.files[path]; ok {
		return []byte(content), nil
	}

	return nil, fs.ErrNotExist
}

const ubuntuNoble = `PRETTY_NAME="Ubuntu 24.04.1 LTS"
NAME="Ubuntu"
VERSION_ID="24.04"
VERSION="24.04.1 LTS (Noble Numbat)"
VERSION_CODENAME=noble
ID=ubuntu
ID_LIKE=debian
HOME_URL="https://www.ubuntu.com/"
UBUNTU_CODENAME=noble
`

func TestSystemDetector_Detect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		host     fakeHost
		expected domain.SystemFacts
	}{
		{
			name: "ubuntu noble",
			host: fakeHost{
				sysname: "Linux",
				machine: "x86_64",
				files:   map[string]string{"/etc/os-release": ubuntuNoble},
			},
			expected: domain.SystemFacts{
				Family: domain.FamilyLinux, Arch: domain.ArchX86_64, Distro: "ubuntu", Codename: "noble",
			},
		},
		{
			name: "wsl via environment",
			host: fakeHost{
				sysname: "Linux",
				machine: "x86_64",
				env:     map[string]string{"WSL_DISTRO_NAME": "Ubuntu"},
				files:   map[string]string{"/etc/os-release": ubuntuNoble},
			},
			expected: domain.SystemFacts{
				Family: domain.FamilyLinux, Arch: domain.ArchX86_64, Distro: "ubuntu", Codename: "noble", IsWSL: true,
			},
		},
		{
			name: "wsl via kernel release",
			host: fakeHost{
				sysname: "Linux",
				machine: "aarch64",
				files: map[string]string{
					"/etc/os-release":            "ID=debian\nVERSION_CODENAME=bookworm\n",
					"/proc/sys/kernel/osrelease": "5.15.153.1-Microsoft-standard-WSL2\n",
				},
			},
			expected: domain.SystemFacts{
				Family: domain.FamilyLinux, Arch: domain.ArchARM64, Distro: "debian", Codename: "bookworm", IsWSL: true,
			},
		},
		{
			name: "missing os-release",
			host: fakeHost{sysname: "Linux", machine: "amd64"},
			expected: domain.SystemFacts{
				Family: domain.FamilyLinux, Arch: domain.ArchX86_64, Distro: domain.DistroUnknown,
			},
		},
		{
			name: "ubuntu codename fallback",
			host: fakeHost{
				sysname: "Linux",
				machine: "x86_64",
				files:   map[string]string{"/usr/lib/os-release": "ID=pop\nUBUNTU_CODENAME=jammy\n"},
			},
			expected: domain.SystemFacts{
				Family: domain.FamilyLinux, Arch: domain.ArchX86_64, Distro: "pop", Codename: "jammy",
			},
		},
		{
			name: "macos apple silicon",
			host: fakeHost{sysname: "Darwin", machine: "arm64"},
			expected: domain.SystemFacts{
				Family: domain.FamilyMacOS, Arch: domain.ArchARM64, Distro: domain.DistroUnknown,
			},
		},
		{
			name: "windows uses processor architecture",
			host: fakeHost{
				sysname: "windows",
				machine: "386",
				env:     map[string]string{"PROCESSOR_ARCHITECTURE": "AMD64"},
			},
			expected: domain.SystemFacts{
				Family: domain.FamilyWindows, Arch: domain.ArchX86_64, Distro: domain.DistroUnknown,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			detector := platform.NewSystemDetector(tt.host, zerolog.Nop())

			facts, err := detector.Detect(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, facts)
		})
	}
}

func TestSystemDetector_DetectFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		host    fakeHost
		wantErr error
	}{
		{"unsupported os", fakeHost{sysname: "FreeBSD", machine: "amd64"}, domain.ErrUnsupportedOS},
		{"unsupported arch", fakeHost{sysname: "Linux", machine: "riscv64"}, domain.ErrUnsupportedArch},
		{"uname failure", fakeHost{err: errors.New("boom")}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := platform.NewSystemDetector(tt.host, zerolog.Nop()).Detect(context.Background())
			require.Error(t, err)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestParseOSRelease(t *testing.T) {
	t.Parallel()

	fields := platform.ParseOSRelease(ubuntuNoble)
	assert.Equal(t, "ubuntu", fields["ID"])
	assert.Equal(t, "noble", fields["VERSION_CODENAME"])
	assert.Equal(t, "24.04.1 LTS (Noble Numbat)", fields["VERSION"])
}

func TestNormalizeFamily(t *testing.T) {
	t.Parallel()

	for input, expected := range map[string]domain.Family{
		"Linux":                domain.FamilyLinux,
		"Darwin":               domain.FamilyMacOS,
		"MINGW64_NT-10.0-2263": domain.FamilyWindows,
		"MSYS_NT-10.0":         domain.FamilyWindows,
		"CYGWIN_NT-10.0":       domain.FamilyWindows,
		"windows":              domain.FamilyWindows,
	} {
		family, err := platform.NormalizeFamily(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, family, input)
	}
}
