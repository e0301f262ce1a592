// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

package console

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/janderssonse/devsetup/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOutput() (*Output, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer

	o := NewWithWriters(&stdout, &stderr)
	o.SetColor(ColorNever)

	return o, &stdout, &stderr
}

func TestOutputSetMode(t *testing.T) {
	t.Parallel()

	o, _, _ := newTestOutput()

	o.SetMode(true, false, true)
	assert.True(t, o.Verbose)
	assert.False(t, o.JSON)
	assert.True(t, o.Plain)
}

func TestOutputMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		verbose  bool
		plain    bool
		json     bool
		emit     func(o *Output)
		expected string
	}{
		{"progress hidden without verbose", false, false, false, func(o *Output) { o.Progressf("probing %s", "host") }, ""},
		{"progress shown with verbose", true, false, false, func(o *Output) { o.Progressf("probing %s", "host") }, "→ probing host\n"},
		{"success", false, false, false, func(o *Output) { o.Successf("R %s", "4.4.1") }, "✓ R 4.4.1\n"},
		{"success hidden in json", false, false, true, func(o *Output) { o.Successf("R") }, ""},
		{"warning", false, false, false, func(o *Output) { o.Warningf("radian missing") }, "⚠ radian missing\n"},
		{"warning plain", false, true, false, func(o *Output) { o.Warningf("radian missing") }, "warning: radian missing\n"},
		{"error plain", false, true, false, func(o *Output) { o.Errorf("no %s", "R") }, "error: no R\n"},
		{"error", false, false, true, func(o *Output) { o.Errorf("no R") }, "✗ no R\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			o, _, stderr := newTestOutput()
			o.SetMode(tt.verbose, tt.json, tt.plain)
			tt.emit(o)
			assert.Equal(t, tt.expected, stderr.String())
		})
	}
}

func sampleSummary() *domain.Summary {
	return &domain.Summary{
		Facts: domain.SystemFacts{Family: domain.FamilyLinux, Arch: domain.ArchX86_64, Distro: "ubuntu", Codename: "noble"},
		Steps: []domain.StepResult{
			{Name: "Python runtime", Status: domain.StepOK},
			{Name: "Editor", Status: domain.StepSkipped, Message: "already installed"},
			{Name: "R console (radian)", Status: domain.StepWarning, Message: "install manually"},
		},
		Duration: 1500 * time.Millisecond,
	}
}

func TestSummaryText(t *testing.T) {
	t.Parallel()

	o, _, stderr := newTestOutput()
	o.Summary(sampleSummary())

	out := stderr.String()
	assert.Contains(t, out, "Summary  Linux ubuntu/noble x86_64\n")
	assert.Contains(t, out, "✓ Python runtime    \n")
	assert.Contains(t, out, "- Editor              already installed\n")
	assert.Contains(t, out, "⚠ R console (radian)  install manually\n")
	assert.Contains(t, out, "1 ok, 1 skipped, 1 warnings, 0 failed (1.5s)")
}

func TestSummaryPlain(t *testing.T) {
	t.Parallel()

	o, stdout, _ := newTestOutput()
	o.SetMode(false, false, true)
	o.Summary(sampleSummary())

	assert.Equal(t, "Python runtime:ok\nEditor:skipped\nR console (radian):warning\n", stdout.String())
}

func TestSummaryJSON(t *testing.T) {
	t.Parallel()

	o, stdout, _ := newTestOutput()
	o.SetMode(false, true, false)
	o.Summary(sampleSummary())

	var decoded struct {
		Status string         `json:"status"`
		Result domain.Summary `json:"result"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &decoded))
	assert.Equal(t, "warning", decoded.Status)
	assert.Len(t, decoded.Result.Steps, 3)
	assert.Equal(t, "noble", decoded.Result.Facts.Codename)
}

func TestFamilyName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Linux", FamilyName(domain.FamilyLinux))
	assert.Equal(t, "Windows", FamilyName(domain.FamilyWindows))
	assert.Equal(t, "macOS", FamilyName(domain.FamilyMacOS))
	assert.Equal(t, "macOS arm64", DescribeFacts(domain.SystemFacts{Family: domain.FamilyMacOS, Arch: domain.ArchARM64}))
}
