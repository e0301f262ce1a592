// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

package settings

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/janderssonse/devsetup/internal/domain"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Keybinding is one entry of the editor's keybindings array.
type Keybinding struct {
	Key     string            `json:"key"`
	Command string            `json:"command"`
	When    string            `json:"when,omitempty"`
	Args    map[string]string `json:"args,omitempty"`
}

// ErrNotArray is reported for a keybindings document whose root is not an array.
var ErrNotArray = errors.New("keybindings document is not a JSON array")

var prettyOptions = &pretty.Options{Indent: indent, Width: 1} //nolint:gochecknoglobals

// parseKeybindings returns the document as plain JSON. Empty input is an empty array;
// unusable input is an empty array plus the reason.
func parseKeybindings(data []byte) ([]byte, error) {
	current := jsonc.ToJSON(stripBOM(data))

	switch {
	case len(bytes.TrimSpace(current)) == 0:
		return []byte("[]"), nil
	case !gjson.ValidBytes(current):
		return []byte("[]"), ErrMalformed
	case !gjson.ParseBytes(current).IsArray():
		return []byte("[]"), ErrNotArray
	}

	return current, nil
}

// AddKeybindings appends each binding unless an entry with the same key and command exists.
// Existing entries keep their order. Input that is not a JSON array is replaced by a new one.
// It returns the formatted array and the number of bindings added.
func AddKeybindings(data []byte, bindings ...Keybinding) ([]byte, int, error) {
	current, _ := parseKeybindings(data)

	added := 0

	for _, binding := range bindings {
		if hasKeybinding(current, binding) {
			continue
		}

		raw, err := encode(binding)
		if err != nil {
			return nil, 0, fmt.Errorf("keybinding %q: %w", binding.Key, err)
		}

		current, err = sjson.SetRawBytes(current, "-1", raw)
		if err != nil {
			return nil, 0, fmt.Errorf("keybinding %q: %w", binding.Key, err)
		}

		added++
	}

	return pretty.PrettyOptions(current, prettyOptions), added, nil
}

func hasKeybinding(data []byte, binding Keybinding) bool {
	found := false

	gjson.ParseBytes(data).ForEach(func(_, entry gjson.Result) bool {
		if entry.Get("key").String() == binding.Key && entry.Get("command").String() == binding.Command {
			found = true
		}

		return !found
	})

	return found
}

// KeybindingStore persists the keybindings array next to the settings document.
type KeybindingStore struct {
	path   string
	files  domain.FileManager
	logger zerolog.Logger
}

// NewKeybindingStore creates a store for the keybindings file at path.
func NewKeybindingStore(path string, files domain.FileManager, logger zerolog.Logger) *KeybindingStore {
	return &KeybindingStore{
		path:   path,
		files:  files,
		logger: logger.With().Str("path", path).Logger(),
	}
}

// Path returns the keybindings file path.
func (k *KeybindingStore) Path() string {
	return k.path
}

// Add merges bindings into the file and reports how many were new. The file is only
// rewritten when something was added. Content that is not a JSON array is copied aside first.
func (k *KeybindingStore) Add(bindings ...Keybinding) (int, error) {
	var data []byte

	if k.files.FileExists(k.path) {
		content, err := k.files.ReadFile(k.path)
		if err != nil {
			k.logger.Warn().Err(err).Msg("keybindings unreadable, starting empty")
		} else {
			data = content
		}
	}

	var recovered []byte

	if _, err := parseKeybindings(data); err != nil {
		k.logger.Warn().Err(err).Msg("keybindings malformed, starting empty")
		recovered = data
	}

	updated, added, err := AddKeybindings(data, bindings...)
	if err != nil {
		return 0, err
	}

	if added == 0 {
		k.logger.Debug().Msg("keybindings already present")

		return 0, nil
	}

	if recovered != nil {
		backup := k.path + BackupSuffix
		if err := k.files.WriteFile(backup, recovered); err != nil {
			return 0, fmt.Errorf("failed to back up malformed %s: %w", k.path, err)
		}

		k.logger.Warn().Str("backup", backup).Msg("malformed keybindings backed up")
	}

	if err := k.files.WriteFileAtomic(k.path, updated); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", k.path, err)
	}

	k.logger.Debug().Int("added", added).Msg("keybindings saved")

	return added, nil
}

// RKeybindings are the assignment and pipe operator shortcuts for R files.
func RKeybindings() []Keybinding {
	const when = "editorLangId == r && editorTextFocus"

	return []Keybinding{
		{Key: "alt+-", Command: "type", When: when, Args: map[string]string{"text": " <- "}},
		{Key: "ctrl+shift+m", Command: "type", When: when, Args: map[string]string{"text": " |> "}},
	}
}
