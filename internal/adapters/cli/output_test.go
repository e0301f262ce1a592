// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

package cli_test

import (
	"bytes"
	"encoding/json"
	"testing"

	cliAdapter "github.com/janderssonse/devsetup/internal/adapters/cli"
	"github.com/janderssonse/devsetup/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputAdapter_Success(t *testing.T) {
	t.Parallel()

	facts := domain.SystemFacts{Family: domain.FamilyLinux, Arch: domain.ArchX86_64, Distro: "ubuntu", Codename: "noble"}

	tests := []struct {
		name     string
		format   cliAdapter.OutputFormat
		quiet    bool
		message  string
		data     any
		expected string
	}{
		{"text message", cliAdapter.TextFormat, false, "done", nil, "done\n"},
		{"quiet text suppressed", cliAdapter.TextFormat, true, "done", nil, ""},
		{"text ignores data", cliAdapter.TextFormat, false, "linux", facts, "linux\n"},
		{"empty message", cliAdapter.TextFormat, false, "", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			adapter := cliAdapter.NewOutputAdapterWithWriter(&buf, tt.format, tt.quiet)
			require.NoError(t, adapter.Success(tt.message, tt.data))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestOutputAdapter_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	adapter := cliAdapter.NewOutputAdapterWithWriter(&buf, cliAdapter.JSONFormat, true)
	facts := domain.SystemFacts{Family: domain.FamilyLinux, Arch: domain.ArchARM64, Distro: "fedora", IsWSL: true}

	require.NoError(t, adapter.Success("ignored", facts))

	var decoded domain.SystemFacts
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, facts, decoded)
}

func TestOutputAdapter_Error(t *testing.T) {
	t.Parallel()

	var text, js bytes.Buffer

	require.NoError(t, cliAdapter.NewOutputAdapterWithWriter(&text, cliAdapter.TextFormat, true).Error("no such key"))
	assert.Equal(t, "Error: no such key\n", text.String(), "errors are shown even when quiet")

	require.NoError(t, cliAdapter.NewOutputAdapterWithWriter(&js, cliAdapter.JSONFormat, false).Error("no such key"))
	assert.JSONEq(t, `{"error": "no such key"}`, js.String())
}

func TestOutputAdapter_Info(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	adapter := cliAdapter.NewOutputAdapterWithWriter(&buf, cliAdapter.TextFormat, false)
	require.NoError(t, adapter.Info("settings: /tmp/settings.json"))
	assert.Equal(t, "settings: /tmp/settings.json\n", buf.String())
	assert.False(t, adapter.IsQuiet())
}

func TestOutputAdapter_Table(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	adapter := cliAdapter.NewOutputAdapterWithWriter(&buf, cliAdapter.TextFormat, false)
	require.NoError(t, adapter.Table(
		[]string{"KEY", "VALUE"},
		[][]string{{"family", "linux"}, {"distro", "ubuntu"}, {"codename", "noble"}},
	))

	expected := "KEY       VALUE\n" +
		"--------  ------\n" +
		"family    linux\n" +
		"distro    ubuntu\n" +
		"codename  noble\n"
	assert.Equal(t, expected, buf.String())
}

func TestOutputAdapter_TableJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	adapter := cliAdapter.NewOutputAdapterWithWriter(&buf, cliAdapter.JSONFormat, false)
	require.NoError(t, adapter.Table([]string{"a"}, [][]string{{"1"}}))
	assert.JSONEq(t, `{"headers": ["a"], "rows": [["1"]]}`, buf.String())
}

func TestParseOutputFormat(t *testing.T) {
	t.Parallel()

	format, err := cliAdapter.ParseOutputFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, cliAdapter.JSONFormat, format)

	format, err = cliAdapter.ParseOutputFormat("")
	require.NoError(t, err)
	assert.Equal(t, cliAdapter.TextFormat, format)

	_, err = cliAdapter.ParseOutputFormat("yaml")
	require.ErrorIs(t, err, cliAdapter.ErrUnsupportedFormat)
}

func TestOutputFromFlags(t *testing.T) {
	t.Parallel()

	assert.True(t, cliAdapter.OutputFromFlags(false, true).IsQuiet())
	assert.False(t, cliAdapter.OutputFromFlags(true, false).IsQuiet())
}
