// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

//go:build windows

package platform

import (
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sys/windows/registry"
)

const machineEnvKey = `SYSTEM\CurrentControlSet\Control\Session Manager\Environment`

func candidateDirs() []string {
	var dirs []string

	dirs = append(dirs, filepath.SplitList(registryPath(registry.LOCAL_MACHINE, machineEnvKey))...)
	dirs = append(dirs, filepath.SplitList(registryPath(registry.CURRENT_USER, "Environment"))...)

	if matches, err := filepath.Glob(`C:\Program Files\R\R-*\bin`); err == nil {
		sort.Strings(matches)
		dirs = append(dirs, matches...)
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		if matches, err := filepath.Glob(filepath.Join(appData, "Python", "Python3*", "Scripts")); err == nil {
			dirs = append(dirs, matches...)
		}
	}

	if local := os.Getenv("LOCALAPPDATA"); local != "" {
		dirs = append(dirs, filepath.Join(local, "Programs", "Microsoft VS Code", "bin"))
	}

	return dirs
}

func registryPath(root registry.Key, path string) string {
	key, err := registry.OpenKey(root, path, registry.QUERY_VALUE)
	if err != nil {
		return ""
	}
	defer key.Close()

	value, valueType, err := key.GetStringValue("Path")
	if err != nil {
		return ""
	}

	if valueType == registry.EXPAND_SZ {
		if expanded, err := registry.ExpandString(value); err == nil {
			return expanded
		}
	}

	return value
}
