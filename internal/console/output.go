// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

// Package console formats human-facing progress, warnings and run summaries.
package console

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Color modes accepted by SetColor.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Output writes progress and diagnostics to stderr and results to stdout.
type Output struct {
	Verbose bool
	JSON    bool
	Plain   bool

	stdout   io.Writer
	stderr   io.Writer
	renderer *lipgloss.Renderer
	styles   Styles
}

// New creates an Output for the process streams.
func New() *Output {
	return NewWithWriters(os.Stdout, os.Stderr)
}

// NewWithWriters creates an Output with custom writers for testing.
func NewWithWriters(stdout, stderr io.Writer) *Output {
	o := &Output{
		stdout:   stdout,
		stderr:   stderr,
		renderer: lipgloss.NewRenderer(stderr),
	}
	o.styles = NewStyles(o.renderer)

	return o
}

// SetMode configures output mode.
func (o *Output) SetMode(verbose, json, plain bool) {
	o.Verbose = verbose
	o.JSON = json
	o.Plain = plain
}

// SetColor applies a color mode. "auto" follows the terminal and NO_COLOR.
func (o *Output) SetColor(mode string) {
	switch mode {
	case ColorNever:
		o.renderer.SetColorProfile(termenv.Ascii)
	case ColorAlways:
		o.renderer.SetColorProfile(termenv.TrueColor)
	default:
		if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
			o.renderer.SetColorProfile(termenv.Ascii)
		}
	}

	o.styles = NewStyles(o.renderer)
}

// Stdout returns the result writer.
func (o *Output) Stdout() io.Writer {
	return o.stdout
}

// Stderr returns the diagnostics writer.
func (o *Output) Stderr() io.Writer {
	return o.stderr
}

// Bold formats text with bold unless output is plain or JSON.
func (o *Output) Bold(text string) string {
	if o.JSON || o.Plain {
		return text
	}

	return o.styles.Bold.Render(text)
}

// Header formats section headers consistently.
func (o *Output) Header(text string) string {
	if o.JSON || o.Plain {
		return text
	}

	return o.styles.Header.Render(text)
}

// Progressf writes progress messages to stderr (only if verbose and not JSON/Plain).
func (o *Output) Progressf(format string, args ...any) {
	if o.Verbose && !o.JSON && !o.Plain {
		_, _ = fmt.Fprintln(o.stderr, o.styles.Muted.Render("→ "+fmt.Sprintf(format, args...)))
	}
}

// Stepf announces a step. Shown unless JSON or plain output is selected.
func (o *Output) Stepf(format string, args ...any) {
	if !o.JSON && !o.Plain {
		_, _ = fmt.Fprintf(o.stderr, o.styles.Step.Render("→")+" "+format+"\n", args...)
	}
}

// Successf writes success messages to stderr (only if not JSON/Plain).
func (o *Output) Successf(format string, args ...any) {
	if !o.JSON && !o.Plain {
		_, _ = fmt.Fprintf(o.stderr, o.styles.Success.Render("✓")+" "+format+"\n", args...)
	}
}

// Warningf writes warning messages to stderr (always visible).
func (o *Output) Warningf(format string, args ...any) {
	if o.Plain {
		_, _ = fmt.Fprintf(o.stderr, "warning: "+format+"\n", args...)

		return
	}

	_, _ = fmt.Fprintf(o.stderr, o.styles.Warning.Render("⚠")+" "+format+"\n", args...)
}

// Errorf writes error messages to stderr (always visible).
func (o *Output) Errorf(format string, args ...any) {
	if o.Plain {
		_, _ = fmt.Fprintf(o.stderr, "error: "+format+"\n", args...)

		return
	}

	_, _ = fmt.Fprintf(o.stderr, o.styles.Error.Render("✗")+" "+format+"\n", args...)
}

// Result writes command results to stdout (machine-readable primary output).
func (o *Output) Result(data any) {
	_, _ = fmt.Fprintf(o.stdout, "%v\n", data)
}

// JSONResult writes structured JSON results to stdout.
func (o *Output) JSONResult(status string, data map[string]any) {
	result := map[string]any{
		"status": status,
	}
	maps.Copy(result, data)

	enc := json.NewEncoder(o.stdout)
	enc.SetIndent("", "  ")

	if err := enc.Encode(result); err != nil {
		_, _ = fmt.Fprintf(o.stderr, "error encoding JSON: %v\n", err)
	}
}

// PlainKeyValue outputs key:value pairs for machine parsing.
func (o *Output) PlainKeyValue(key, value string) {
	_, _ = fmt.Fprintf(o.stdout, "%s:%s\n", key, value)
}
