// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

//go:build !windows

package platform

import (
	"os"
	"path/filepath"
	"runtime"
)

func candidateDirs() []string {
	dirs := []string{"/usr/local/bin", "/opt/homebrew/bin", "/snap/bin"}

	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".local", "bin"))
	}

	if runtime.GOOS == "darwin" {
		dirs = append(dirs,
			"/Library/Frameworks/R.framework/Resources/bin",
			"/Applications/Visual Studio Code.app/Contents/Resources/app/bin",
		)
	}

	return dirs
}
