// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

//go:build !linux && !darwin

package platform

import (
	"os"
	"runtime"
)

func uname() (string, string, error) {
	machine := runtime.GOARCH
	if arch := os.Getenv(envProcessorArch); arch != "" {
		machine = arch
	}

	return runtime.GOOS, machine, nil
}
