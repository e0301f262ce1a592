// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

// Package cli provides the domain.OutputPort adapter for command results.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/janderssonse/devsetup/internal/domain"
	"github.com/mattn/go-runewidth"
)

// ErrUnsupportedFormat is returned when an unsupported output format is requested.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// OutputFormat represents the output format type.
type OutputFormat int

const (
	// TextFormat outputs human-readable text.
	TextFormat OutputFormat = iota
	// JSONFormat outputs machine-readable JSON.
	JSONFormat
)

// OutputAdapter implements domain.OutputPort for command results on stdout.
type OutputAdapter struct {
	writer io.Writer
	format OutputFormat
	quiet  bool
}

// NewOutputAdapter creates an adapter writing to stdout.
func NewOutputAdapter(format OutputFormat, quiet bool) *OutputAdapter {
	return NewOutputAdapterWithWriter(os.Stdout, format, quiet)
}

// NewOutputAdapterWithWriter creates an adapter with a custom writer for testing.
func NewOutputAdapterWithWriter(writer io.Writer, format OutputFormat, quiet bool) *OutputAdapter {
	return &OutputAdapter{
		writer: writer,
		format: format,
		quiet:  quiet,
	}
}

// Success outputs a message, or data as JSON in JSON mode. Data is written even when quiet.
func (o *OutputAdapter) Success(message string, data any) error {
	if o.format == JSONFormat && data != nil {
		return o.outputJSON(data)
	}

	if message == "" || o.quiet {
		return nil
	}

	_, err := fmt.Fprintln(o.writer, message)

	return err
}

// Error outputs an error message.
func (o *OutputAdapter) Error(message string) error {
	if o.format == JSONFormat {
		return o.outputJSON(map[string]string{"error": message})
	}

	_, err := fmt.Fprintf(o.writer, "Error: %s\n", message)

	return err
}

// Info outputs an informational message.
func (o *OutputAdapter) Info(message string) error {
	if o.quiet {
		return nil
	}

	if o.format == JSONFormat {
		return o.outputJSON(map[string]string{"info": message})
	}

	_, err := fmt.Fprintln(o.writer, message)

	return err
}

// Table outputs rows under headers with columns aligned by display width.
func (o *OutputAdapter) Table(headers []string, rows [][]string) error {
	if o.format == JSONFormat {
		return o.outputJSON(map[string]any{"headers": headers, "rows": rows})
	}

	if o.quiet {
		return nil
	}

	widths := make([]int, len(headers))
	for _, row := range append([][]string{headers}, rows...) {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
		}
	}

	separators := make([]string, len(headers))
	for i := range headers {
		separators[i] = strings.Repeat("-", widths[i])
	}

	var b strings.Builder

	for _, row := range append([][]string{headers, separators}, rows...) {
		cells := make([]string, len(row))
		for i, cell := range row {
			if i < len(row)-1 && i < len(widths) {
				cell = runewidth.FillRight(cell, widths[i])
			}

			cells[i] = cell
		}

		b.WriteString(strings.Join(cells, "  ") + "\n")
	}

	_, err := io.WriteString(o.writer, b.String())

	return err
}

// IsQuiet returns true if output should be suppressed.
func (o *OutputAdapter) IsQuiet() bool {
	return o.quiet
}

func (o *OutputAdapter) outputJSON(data any) error {
	encoder := json.NewEncoder(o.writer)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	return encoder.Encode(data)
}

// ParseOutputFormat parses a string into an OutputFormat.
func ParseOutputFormat(format string) (OutputFormat, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return TextFormat, nil
	case "json":
		return JSONFormat, nil
	default:
		return TextFormat, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// OutputFromFlags creates an OutputAdapter from the global --json and --quiet flags.
func OutputFromFlags(jsonFlag, quietFlag bool) domain.OutputPort {
	format := TextFormat
	if jsonFlag {
		format = JSONFormat
	}

	return NewOutputAdapter(format, quietFlag)
}
