// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

// Family is the operating system family.
type Family string

// Supported operating system families.
const (
	FamilyLinux   Family = "linux"
	FamilyMacOS   Family = "macos"
	FamilyWindows Family = "windows"
)

// Arch is the normalized CPU architecture.
type Arch string

// Supported architectures.
const (
	ArchX86_64 Arch = "x86_64"
	ArchARM64  Arch = "arm64"
)

// DistroUnknown is reported when no os-release metadata could be read.
const DistroUnknown = "unknown"

// Platform is the closed set of installation variants the dispatcher knows about.
type Platform string

// Installation platforms. Adding a distribution is an entry in distroPlatforms.
const (
	PlatformDebian  Platform = "debian"
	PlatformFedora  Platform = "fedora"
	PlatformArch    Platform = "arch"
	PlatformMacOS   Platform = "macos"
	PlatformWindows Platform = "windows"
	PlatformUnknown Platform = "unknown"
)

var distroPlatforms = map[string]Platform{ //nolint:gochecknoglobals
	"ubuntu":      PlatformDebian,
	"debian":      PlatformDebian,
	"linuxmint":   PlatformDebian,
	"pop":         PlatformDebian,
	"fedora":      PlatformFedora,
	"rhel":        PlatformFedora,
	"centos":      PlatformFedora,
	"rocky":       PlatformFedora,
	"almalinux":   PlatformFedora,
	"arch":        PlatformArch,
	"manjaro":     PlatformArch,
	"endeavouros": PlatformArch,
}

// SystemFacts is resolved once per run and read-only thereafter.
type SystemFacts struct {
	Family   Family `json:"family"`
	Arch     Arch   `json:"arch"`
	Distro   string `json:"distro"`
	Codename string `json:"codename"`
	IsWSL    bool   `json:"is_wsl"`
}

// Platform selects the installation variant for these facts.
func (f SystemFacts) Platform() Platform {
	switch f.Family {
	case FamilyMacOS:
		return PlatformMacOS
	case FamilyWindows:
		return PlatformWindows
	case FamilyLinux:
		if p, ok := distroPlatforms[f.Distro]; ok {
			return p
		}
	}

	return PlatformUnknown
}

// IsLinux reports whether the facts describe a Linux host, WSL included.
func (f SystemFacts) IsLinux() bool {
	return f.Family == FamilyLinux
}

// Describe returns a short human-readable description such as "linux ubuntu/noble x86_64 (WSL)".
func (f SystemFacts) Describe() string {
	desc := string(f.Family)

	if f.Family == FamilyLinux {
		desc += " " + f.Distro
		if f.Codename != "" {
			desc += "/" + f.Codename
		}
	}

	desc += " " + string(f.Arch)

	if f.IsWSL {
		desc += " (WSL)"
	}

	return desc
}
