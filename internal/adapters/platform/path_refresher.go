// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

package platform

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// PathRefresher implements the PathRefresher port. Package managers put new binaries
// in places the running process has not seen yet, so the capability re-check after an
// install needs PATH re-resolved in-process.
type PathRefresher struct {
	logger zerolog.Logger
}

// NewPathRefresher creates a PATH refresher.
func NewPathRefresher(logger zerolog.Logger) *PathRefresher {
	return &PathRefresher{logger: logger}
}

// Refresh extends the process PATH with install locations that exist but are missing from it.
func (p *PathRefresher) Refresh() error {
	current := os.Getenv("PATH")

	updated := appendPath(current, candidateDirs(), dirExists)
	if updated == current {
		return nil
	}

	p.logger.Debug().Str("path", updated).Msg("search path refreshed")

	return os.Setenv("PATH", updated)
}

// appendPath adds each existing dir not already on current, keeping the original order first.
func appendPath(current string, dirs []string, exists func(string) bool) string {
	seen := make(map[string]bool)

	var entries []string

	for _, entry := range filepath.SplitList(current) {
		if entry == "" {
			continue
		}

		entries = append(entries, entry)
		seen[normalizePathEntry(entry)] = true
	}

	for _, dir := range dirs {
		if dir == "" || seen[normalizePathEntry(dir)] || !exists(dir) {
			continue
		}

		entries = append(entries, dir)
		seen[normalizePathEntry(dir)] = true
	}

	return strings.Join(entries, string(os.PathListSeparator))
}

func normalizePathEntry(entry string) string {
	entry = filepath.Clean(entry)
	if os.PathSeparator == '\\' {
		return strings.ToLower(entry)
	}

	return entry
}

func dirExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}
