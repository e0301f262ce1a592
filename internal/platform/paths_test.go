// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

package platform

import (
	"path/filepath"
	"testing"

	"github.com/janderssonse/devsetup/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestGetXDGConfigHomeWithEnv(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/custom/config", GetXDGConfigHomeWithEnv("/custom/config"))
	assert.NotEmpty(t, GetXDGConfigHomeWithEnv(""))
}

func TestEditorPaths(t *testing.T) {
	t.Parallel()

	env := func(vars map[string]string) func(string) string {
		return func(key string) string { return vars[key] }
	}

	tests := []struct {
		name     string
		paths    EditorPaths
		expected string
	}{
		{
			name:     "linux honours XDG_CONFIG_HOME",
			paths:    EditorPaths{Family: domain.FamilyLinux, Home: "/home/ada", Getenv: env(map[string]string{"XDG_CONFIG_HOME": "/xdg"})},
			expected: filepath.Join("/xdg", "Code", "User", "settings.json"),
		},
		{
			name:     "linux default flavour under home",
			paths:    EditorPaths{Family: domain.FamilyLinux, Home: "/home/ada", Getenv: env(map[string]string{"XDG_CONFIG_HOME": "/home/ada/.config"}), Flavour: "VSCodium"},
			expected: filepath.Join("/home/ada/.config", "VSCodium", "User", "settings.json"),
		},
		{
			name:     "macos application support",
			paths:    EditorPaths{Family: domain.FamilyMacOS, Home: "/Users/ada", Getenv: env(nil)},
			expected: filepath.Join("/Users/ada", "Library", "Application Support", "Code", "User", "settings.json"),
		},
		{
			name:     "windows appdata",
			paths:    EditorPaths{Family: domain.FamilyWindows, Home: "/c/Users/ada", Getenv: env(map[string]string{"APPDATA": "/c/Users/ada/AppData/Roaming"})},
			expected: filepath.Join("/c/Users/ada/AppData/Roaming", "Code", "User", "settings.json"),
		},
		{
			name:     "windows without appdata",
			paths:    EditorPaths{Family: domain.FamilyWindows, Home: "/c/Users/ada", Getenv: env(nil), Flavour: "Code - Insiders"},
			expected: filepath.Join("/c/Users/ada", "AppData", "Roaming", "Code - Insiders", "User", "settings.json"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.paths.Settings())
			assert.Equal(t, filepath.Join(filepath.Dir(tt.expected), "keybindings.json"), tt.paths.Keybindings())
		})
	}
}

func TestExpandPathWithEnv(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/xdg/devsetup/profile.toml", ExpandPathWithEnv("$XDG_CONFIG_HOME/devsetup/profile.toml", "/xdg"))
	assert.Equal(t, "/etc/hosts", ExpandPathWithEnv("/etc/hosts", "/xdg"))
	assert.NotContains(t, ExpandPath("~/notes"), "~")
}
