// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Exit codes.
const (
	ExitSuccess  = 0 // Completed, possibly with warnings
	ExitFatal    = 1 // Configuration, precondition or hard dependency failure
	ExitConflict = 2 // Merge finished with conflicts that need manual resolution
)

// Common domain errors.
var (
	ErrUnsupportedOS   = errors.New("unsupported operating system")
	ErrUnsupportedArch = errors.New("unsupported architecture")
	ErrManualInstall   = errors.New("no automatic installation available, install manually")
	ErrStillMissing    = errors.New("still not found after installation")
	ErrMergeConflict   = errors.New("merge completed with conflicts")
	ErrUsage           = errors.New("invalid usage")
	ErrAborted         = errors.New("aborted by user")
)

// ExitError carries the process exit code for a failure.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

// NewExitError creates an ExitError with the specified code and message.
func NewExitError(code int, message string, err error) *ExitError {
	return &ExitError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ErrorInfo provides user-friendly error information.
type ErrorInfo struct {
	Message     string
	Suggestions []string
}

type errorMatcher struct {
	patterns []string
	info     ErrorInfo
}

// errorMatchers is checked in order; the first matching pattern wins.
func errorMatchers() []errorMatcher {
	return []errorMatcher{
		{
			patterns: []string{"externally-managed-environment", "externally managed"},
			info: ErrorInfo{
				Message:     "Python environment is externally managed",
				Suggestions: []string{"Install the package with pipx", "Use a virtual environment"},
			},
		},
		{
			patterns: []string{"could not get lock", "dpkg was interrupted", "lock-frontend"},
			info: ErrorInfo{
				Message:     "Package manager is busy",
				Suggestions: []string{"Wait for other package operations to finish", "Try: sudo dpkg --configure -a"},
			},
		},
		{
			patterns: []string{"permission", "denied", "sudo", "administrator"},
			info: ErrorInfo{
				Message:     "Permission denied",
				Suggestions: []string{"Run from an account with admin privileges", "On Windows, use an elevated shell"},
			},
		},
		{
			patterns: []string{"network", "connection", "timeout", "no such host", "could not resolve"},
			info: ErrorInfo{
				Message:     "Network connection failed",
				Suggestions: []string{"Check your internet connection", "Check proxy settings"},
			},
		},
		{
			patterns: []string{"unable to locate", "no match for argument", "target not found", "not found"},
			info: ErrorInfo{
				Message:     "Package not found",
				Suggestions: []string{"Update package lists and retry", "Install the tool manually"},
			},
		},
	}
}

// GetErrorInfo analyzes an error and returns user-friendly information.
func GetErrorInfo(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{}
	}

	errStr := strings.ToLower(err.Error())

	for _, matcher := range errorMatchers() {
		for _, pattern := range matcher.patterns {
			if strings.Contains(errStr, pattern) {
				return matcher.info
			}
		}
	}

	return ErrorInfo{
		Message:     "Operation failed",
		Suggestions: []string{"Run with --verbose for more details"},
	}
}

// FormatStepError formats a step failure for display.
func FormatStepError(step string, err error, verbose bool) string {
	info := GetErrorInfo(err)

	var result strings.Builder

	result.WriteString(step)
	result.WriteString(": ")
	result.WriteString(info.Message)

	if verbose && err != nil {
		result.WriteString("\n  Technical details: ")
		result.WriteString(err.Error())
	}

	if len(info.Suggestions) > 0 {
		result.WriteString(" (")
		result.WriteString(info.Suggestions[0])
		result.WriteString(")")
	}

	return result.String()
}
