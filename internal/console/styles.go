// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

package console

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles holds the console palette (Tokyo Night).
type Styles struct {
	Bold    lipgloss.Style
	Header  lipgloss.Style
	Muted   lipgloss.Style
	Step    lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// NewStyles builds styles bound to a renderer, so the color profile follows its writer.
func NewStyles(r *lipgloss.Renderer) Styles {
	primary := lipgloss.Color("#7aa2f7")
	success := lipgloss.Color("#9ece6a")
	warning := lipgloss.Color("#e0af68")
	errorColor := lipgloss.Color("#f7768e")
	info := lipgloss.Color("#7dcfff")
	muted := lipgloss.Color("#565f89")

	return Styles{
		Bold:    r.NewStyle().Bold(true),
		Header:  r.NewStyle().Bold(true).Foreground(primary),
		Muted:   r.NewStyle().Foreground(muted),
		Step:    r.NewStyle().Foreground(info),
		Success: r.NewStyle().Foreground(success),
		Warning: r.NewStyle().Foreground(warning),
		Error:   r.NewStyle().Foreground(errorColor).Bold(true),
	}
}
