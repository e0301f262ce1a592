// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

//go:build linux || darwin

package platform

import (
	"golang.org/x/sys/unix"
)

func uname() (string, string, error) {
	var buf unix.Utsname
	if err := unix.Uname(&buf); err != nil {
		return "", "", err
	}

	return unix.ByteSliceToString(buf.Sysname[:]), unix.ByteSliceToString(buf.Machine[:]), nil
}
