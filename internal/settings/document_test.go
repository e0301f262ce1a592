// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

package settings_test

import (
	"testing"

	"github.com/janderssonse/devsetup/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_MalformedInputIsEmpty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"empty file", ""},
		{"whitespace", "  \n\t"},
		{"truncated object", `{"editor.fontSize": 14`},
		{"not json", "editor.fontSize = 14"},
		{"top-level array", `["a", "b"]`},
		{"top-level string", `"settings"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := settings.Parse([]byte(tt.input))
			require.NotNil(t, doc)
			assert.Equal(t, 0, doc.Len())
			assert.Equal(t, "{}\n", doc.String())
		})
	}
}

func TestParseStrict_ReportsReason(t *testing.T) {
	t.Parallel()

	_, err := settings.ParseStrict([]byte(`{"a": `))
	require.ErrorIs(t, err, settings.ErrMalformed)

	_, err = settings.ParseStrict([]byte(`[1]`))
	require.ErrorIs(t, err, settings.ErrNotObject)

	doc, err := settings.ParseStrict(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Len())
}

func TestParse_AcceptsJSONC(t *testing.T) {
	t.Parallel()

	input := `{
    // theme picked by hand
    "workbench.colorTheme": "Solarized Light",
    /* block */
    "editor.rulers": [80, 100,],
}`

	doc := settings.Parse([]byte(input))
	assert.Equal(t, []string{"workbench.colorTheme", "editor.rulers"}, doc.Keys())
	assert.Equal(t, "Solarized Light", doc.Get("workbench.colorTheme").String())
	assert.Len(t, doc.Get("editor.rulers").Array(), 2)

	bom, err := settings.ParseStrict([]byte("\xEF\xBB\xBF{\"editor.fontSize\": 14}"))
	require.NoError(t, err)
	assert.Equal(t, int64(14), bom.Get("editor.fontSize").Int())
}

func TestDocument_DottedKeysAreLiteral(t *testing.T) {
	t.Parallel()

	doc := settings.Parse([]byte(`{"r.plot.useHttpgd": true, "r": {"plot": {"useHttpgd": false}}}`))

	assert.True(t, doc.Get("r.plot.useHttpgd").Bool())
	assert.True(t, doc.Get("r").IsObject())
	assert.False(t, doc.Get("missing").Exists())
}

func TestDocument_BytesFormat(t *testing.T) {
	t.Parallel()

	doc, err := settings.Merge(settings.New(),
		settings.Set("editor.fontSize", 14),
		settings.Set("[r]", map[string]any{"editor.tabSize": 2}),
		settings.Set("r.rterm.linux", "/home/ada/.local/bin/radian"),
		settings.Set("snippet", "x <- y && z"),
	)
	require.NoError(t, err)

	expected := `{
    "editor.fontSize": 14,
    "[r]": {
        "editor.tabSize": 2
    },
    "r.rterm.linux": "/home/ada/.local/bin/radian",
    "snippet": "x <- y && z"
}
`

	out, err := doc.Bytes()
	require.NoError(t, err)
	assert.Equal(t, expected, string(out))
}

func TestDocument_RoundTrip(t *testing.T) {
	t.Parallel()

	doc, err := settings.Merge(settings.New(),
		settings.Set("files.trimTrailingWhitespace", true),
		settings.Set("editor.rulers", []int{80, 120}),
		settings.Set("r.lsp.args", []string{"--vanilla"}),
		settings.Set("[python]", map[string]any{"editor.tabSize": 4, "editor.formatOnSave": true}),
		settings.Set("terminal.integrated.fontFamily", "JetBrains Mono"),
		settings.Set("editor.fontSize", 13.5),
		settings.Set("workbench.startupEditor", nil),
	)
	require.NoError(t, err)

	first, err := doc.Bytes()
	require.NoError(t, err)

	second, err := settings.Parse(first).Bytes()
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestDocument_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	doc := settings.Parse([]byte(`{"a": 1}`))
	clone := doc.Clone()

	updated, err := settings.Merge(clone, settings.Set("a", 2))
	require.NoError(t, err)

	assert.Equal(t, int64(1), doc.Get("a").Int())
	assert.Equal(t, int64(1), clone.Get("a").Int())
	assert.Equal(t, int64(2), updated.Get("a").Int())
}
