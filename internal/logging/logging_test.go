// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", DebugLevel},
		{"  debug  ", DebugLevel},
		{"info", InfoLevel},
		{"WARNING", WarnLevel},
		{"error", ErrorLevel},
		{"", WarnLevel},
		{"chatty", WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := New(Config{Level: WarnLevel, Output: &buf})
	logger.Debug().Msg("hidden")
	logger.Warn().Str("path", "/tmp/settings.json").Msg("malformed settings")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"path":"/tmp/settings.json"`)
}

func TestForVerbosity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DebugLevel, ForVerbosity(true).Level)
	assert.Equal(t, WarnLevel, ForVerbosity(false).Level)
}
