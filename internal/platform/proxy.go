// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

package platform

import (
	"os"
	"strings"
)

// GetProxyEnv returns proxy-related environment variables for passing to subprocesses.
// sudo resets the environment, so package managers run under it lose these unless they
// are passed explicitly. Both cases are returned for compatibility with different tools.
func GetProxyEnv() []string {
	return GetProxyEnvWith(os.Getenv)
}

// GetProxyEnvWith is GetProxyEnv with a custom environment lookup for testing.
func GetProxyEnvWith(getenv func(string) string) []string {
	var proxyEnv []string

	for _, name := range []string{"http_proxy", "https_proxy", "no_proxy"} {
		value := lookupProxy(getenv, name)
		if value == "" {
			continue
		}

		proxyEnv = append(proxyEnv, name+"="+value, strings.ToUpper(name)+"="+value)
	}

	return proxyEnv
}

// ConfigureAPTProxy returns apt-specific proxy configuration arguments.
// APT requires special -o options for proxy settings.
func ConfigureAPTProxy() []string {
	return ConfigureAPTProxyWith(os.Getenv)
}

// ConfigureAPTProxyWith is ConfigureAPTProxy with a custom environment lookup for testing.
func ConfigureAPTProxyWith(getenv func(string) string) []string {
	var args []string

	if httpProxy := lookupProxy(getenv, "http_proxy"); httpProxy != "" {
		args = append(args, "-o", "Acquire::http::Proxy="+httpProxy)
	}

	if httpsProxy := lookupProxy(getenv, "https_proxy"); httpsProxy != "" {
		args = append(args, "-o", "Acquire::https::Proxy="+httpsProxy)
	}

	// nil, not an empty slice, when no proxy is configured
	if len(args) == 0 {
		return nil
	}

	return args
}

// HasProxy checks if any proxy is configured.
func HasProxy() bool {
	return len(ConfigureAPTProxy()) > 0
}

// lookupProxy checks lowercase first, which takes precedence per Unix convention.
func lookupProxy(getenv func(string) string, name string) string {
	if value := getenv(name); value != "" {
		return value
	}

	return getenv(strings.ToUpper(name))
}
