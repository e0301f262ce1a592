// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

// Target is something the package installer dispatch can install.
type Target string

// Installation targets.
const (
	TargetEditor  Target = "editor"
	TargetR       Target = "r"
	TargetPython  Target = "python"
	TargetConsole Target = "console"
)

// Required reports whether failing to install the target must stop the run.
// Core runtimes are required; the editor and console degrade to warnings.
func (t Target) Required() bool {
	return t == TargetR || t == TargetPython
}

// DisplayName returns the name used in prompts and summaries.
func (t Target) DisplayName() string {
	switch t {
	case TargetEditor:
		return "Editor"
	case TargetR:
		return "R runtime"
	case TargetPython:
		return "Python runtime"
	case TargetConsole:
		return "R console (radian)"
	default:
		return string(t)
	}
}
