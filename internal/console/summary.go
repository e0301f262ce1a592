// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

package console

import (
	"fmt"
	"strings"

	"github.com/janderssonse/devsetup/internal/domain"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FamilyName returns the display name of an OS family, such as "Linux" or "Macos".
func FamilyName(f domain.Family) string {
	if f == domain.FamilyMacOS {
		return "macOS"
	}

	return cases.Title(language.English).String(string(f))
}

// DescribeFacts renders system facts for people, such as "Linux ubuntu/noble x86_64 (WSL)".
func DescribeFacts(f domain.SystemFacts) string {
	desc := f.Describe()

	return FamilyName(f.Family) + strings.TrimPrefix(desc, string(f.Family))
}

// Summary writes the end-of-run report to stderr. Plain mode writes name:status lines to stdout.
func (o *Output) Summary(s *domain.Summary) {
	if o.JSON {
		o.JSONResult(summaryStatus(s), map[string]any{"result": s})

		return
	}

	if o.Plain {
		for _, step := range s.Steps {
			o.PlainKeyValue(step.Name, string(step.Status))
		}

		return
	}

	width := 0
	for _, step := range s.Steps {
		width = max(width, runewidth.StringWidth(step.Name))
	}

	var b strings.Builder

	b.WriteString(o.Header("Summary") + "  " + o.styles.Muted.Render(DescribeFacts(s.Facts)) + "\n")

	for _, step := range s.Steps {
		line := o.statusMark(step.Status) + " " + runewidth.FillRight(step.Name, width)
		if step.Message != "" {
			line += "  " + step.Message
		}

		b.WriteString(line + "\n")
	}

	fmt.Fprintf(&b, "%d ok, %d skipped, %d warnings, %d failed (%.1fs)\n",
		s.Count(domain.StepOK), s.Count(domain.StepSkipped),
		s.Count(domain.StepWarning), s.Count(domain.StepFailed), s.Duration.Seconds())

	_, _ = fmt.Fprint(o.stderr, b.String())
}

func (o *Output) statusMark(status domain.StepStatus) string {
	switch status {
	case domain.StepOK:
		return o.styles.Success.Render("✓")
	case domain.StepWarning:
		return o.styles.Warning.Render("⚠")
	case domain.StepFailed:
		return o.styles.Error.Render("✗")
	default:
		return o.styles.Muted.Render("-")
	}
}

func summaryStatus(s *domain.Summary) string {
	switch {
	case s.Failed():
		return "error"
	case s.Count(domain.StepWarning) > 0:
		return "warning"
	default:
		return "success"
	}
}
