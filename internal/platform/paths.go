// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

// Package platform provides path, proxy and prompt helpers shared by devsetup commands.
package platform

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/janderssonse/devsetup/internal/domain"
)

// AppName is the directory name used under the XDG config home.
const AppName = "devsetup"

// Settings file names inside the editor's user directory.
const (
	SettingsFile    = "settings.json"
	KeybindingsFile = "keybindings.json"
)

// GetXDGConfigHome returns XDG config directory.
func GetXDGConfigHome() string {
	return GetXDGConfigHomeWithEnv(os.Getenv("XDG_CONFIG_HOME"))
}

// GetXDGConfigHomeWithEnv returns XDG config directory with custom environment override for testing.
func GetXDGConfigHomeWithEnv(xdgConfigHome string) string {
	if xdgConfigHome != "" {
		return xdgConfigHome
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config")
	}

	return ""
}

// GetConfigPath returns the path of a devsetup configuration file such as "profile.toml".
func GetConfigPath(name string) string {
	return filepath.Join(GetXDGConfigHome(), AppName, name)
}

// EditorPaths locates the editor's user settings directory.
type EditorPaths struct {
	Family  domain.Family
	Home    string
	Getenv  func(string) string
	Flavour string
}

// NewEditorPaths returns editor paths for the running user.
func NewEditorPaths(family domain.Family, flavour string) EditorPaths {
	home, _ := os.UserHomeDir()

	return EditorPaths{
		Family:  family,
		Home:    home,
		Getenv:  os.Getenv,
		Flavour: flavour,
	}
}

// UserDir returns the editor's "User" directory for the OS family.
func (p EditorPaths) UserDir() string {
	flavour := p.Flavour
	if flavour == "" {
		flavour = "Code"
	}

	switch p.Family {
	case domain.FamilyMacOS:
		return filepath.Join(p.Home, "Library", "Application Support", flavour, "User")
	case domain.FamilyWindows:
		appData := p.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(p.Home, "AppData", "Roaming")
		}

		return filepath.Join(appData, flavour, "User")
	default:
		return filepath.Join(GetXDGConfigHomeWithEnv(p.Getenv("XDG_CONFIG_HOME")), flavour, "User")
	}
}

// Settings returns the settings.json path.
func (p EditorPaths) Settings() string {
	return filepath.Join(p.UserDir(), SettingsFile)
}

// Keybindings returns the keybindings.json path.
func (p EditorPaths) Keybindings() string {
	return filepath.Join(p.UserDir(), KeybindingsFile)
}

// ExpandPath expands a leading ~ and $XDG_CONFIG_HOME.
func ExpandPath(path string) string {
	return ExpandPathWithEnv(path, "")
}

// ExpandPathWithEnv expands paths with a custom XDG config home for testing.
func ExpandPathWithEnv(path, xdgConfigHome string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}

	if after, found := strings.CutPrefix(path, "$XDG_CONFIG_HOME"); found {
		configHome := xdgConfigHome
		if configHome == "" {
			configHome = GetXDGConfigHome()
		}

		return configHome + after
	}

	return path
}
