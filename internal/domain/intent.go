// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

// Intent describes what a run should install or skip. It is built once from
// flags and environment and passed by value.
type Intent struct {
	InstallR       bool `json:"install_r"`
	InstallPython  bool `json:"install_python"`
	InstallEditor  bool `json:"install_editor"`
	InstallConsole bool `json:"install_console"`
	NonInteractive bool `json:"non_interactive"`
	DryRun         bool `json:"dry_run"`
	AllowDirty     bool `json:"allow_dirty"`
	Autostash      bool `json:"autostash"`
	PushAfter      bool `json:"push_after"`
}

// DefaultIntent installs everything and asks before optional steps.
func DefaultIntent() Intent {
	return Intent{
		InstallR:       true,
		InstallPython:  true,
		InstallEditor:  true,
		InstallConsole: true,
	}
}
