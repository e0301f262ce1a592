// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

// Package profile loads what devsetup installs and configures: editor extensions,
// language packages and extra editor settings.
package profile

import (
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"os"
	"regexp"
	"slices"

	"github.com/janderssonse/devsetup/internal/platform"
	"github.com/janderssonse/devsetup/internal/settings"
	"github.com/pelletier/go-toml/v2"
)

// FileName is the user profile file under the devsetup config directory.
const FileName = "profile.toml"

//go:embed default.toml
var defaultProfile []byte

// ErrInvalidProfile is returned for a user profile that cannot be used.
var ErrInvalidProfile = errors.New("invalid profile")

var extensionID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]*\.[A-Za-z0-9][A-Za-z0-9-]*$`)

// Editor selects the editor binary and its settings directory.
type Editor struct {
	Command    string   `toml:"command"`
	Flavour    string   `toml:"flavour"`
	Extensions []string `toml:"extensions"`
}

// R lists the CRAN mirror, packages and R-specific extensions.
type R struct {
	Repo       string   `toml:"repo"`
	Packages   []string `toml:"packages"`
	Extensions []string `toml:"extensions"`
}

// Python lists pip packages and Python-specific extensions.
type Python struct {
	Packages   []string `toml:"packages"`
	Extensions []string `toml:"extensions"`
}

// Console is the enhanced R console.
type Console struct {
	Command string `toml:"command"`
	Package string `toml:"package"`
}

// Profile is the merged provisioning profile.
type Profile struct {
	Editor   Editor           `toml:"editor"`
	R        R                `toml:"r"`
	Python   Python           `toml:"python"`
	Console  Console          `toml:"console"`
	Gallery  settings.Gallery `toml:"gallery"`
	Settings map[string]any   `toml:"settings"`
}

// PathResolver provides the user profile location.
type PathResolver interface {
	GetUserProfilePath() string
}

// DefaultPathResolver resolves the profile under the XDG config home.
type DefaultPathResolver struct{}

// GetUserProfilePath returns $XDG_CONFIG_HOME/devsetup/profile.toml.
func (DefaultPathResolver) GetUserProfilePath() string {
	return platform.GetConfigPath(FileName)
}

// Default returns the built-in profile.
func Default() Profile {
	var p Profile
	if err := toml.Unmarshal(defaultProfile, &p); err != nil {
		panic(fmt.Sprintf("embedded profile: %v", err))
	}

	return p
}

// Load returns the built-in profile overridden field by field by the user profile.
// A missing user profile is not an error; an unparseable or invalid one is.
func Load(resolver PathResolver) (Profile, error) {
	if resolver == nil {
		resolver = DefaultPathResolver{}
	}

	p := Default()

	path := resolver.GetUserProfilePath()

	data, err := os.ReadFile(path) //nolint:gosec // user config path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return p, nil
		}

		return p, fmt.Errorf("failed to read profile %s: %w", path, err)
	}

	var user Profile
	if err := toml.Unmarshal(data, &user); err != nil {
		return p, fmt.Errorf("%w: %s: %w", ErrInvalidProfile, path, err)
	}

	merged := p.Override(user)
	if err := merged.Validate(); err != nil {
		return p, fmt.Errorf("%s: %w", path, err)
	}

	return merged, nil
}

// Override returns p with every non-empty field of user applied. Settings merge per key.
func (p Profile) Override(user Profile) Profile {
	out := p

	out.Editor.Command = pick(p.Editor.Command, user.Editor.Command)
	out.Editor.Flavour = pick(p.Editor.Flavour, user.Editor.Flavour)
	out.Editor.Extensions = pickList(p.Editor.Extensions, user.Editor.Extensions)
	out.R.Repo = pick(p.R.Repo, user.R.Repo)
	out.R.Packages = pickList(p.R.Packages, user.R.Packages)
	out.R.Extensions = pickList(p.R.Extensions, user.R.Extensions)
	out.Python.Packages = pickList(p.Python.Packages, user.Python.Packages)
	out.Python.Extensions = pickList(p.Python.Extensions, user.Python.Extensions)
	out.Console.Command = pick(p.Console.Command, user.Console.Command)
	out.Console.Package = pick(p.Console.Package, user.Console.Package)

	if !user.Gallery.IsZero() {
		out.Gallery = user.Gallery
	}

	out.Settings = make(map[string]any, len(p.Settings)+len(user.Settings))
	maps.Copy(out.Settings, p.Settings)
	maps.Copy(out.Settings, user.Settings)

	return out
}

// Validate checks extension IDs and required commands.
func (p Profile) Validate() error {
	if p.Editor.Command == "" {
		return fmt.Errorf("%w: editor.command is empty", ErrInvalidProfile)
	}

	for _, id := range slices.Concat(p.Editor.Extensions, p.R.Extensions, p.Python.Extensions) {
		if !extensionID.MatchString(id) {
			return fmt.Errorf("%w: extension id %q is not publisher.name", ErrInvalidProfile, id)
		}
	}

	if (p.Gallery.ServiceURL == "") != (p.Gallery.ItemURL == "") {
		return fmt.Errorf("%w: gallery needs both service_url and item_url", ErrInvalidProfile)
	}

	return nil
}

// Extensions returns the editor extensions to install for the selected languages,
// without duplicates and in profile order.
func (p Profile) Extensions(withR, withPython bool) []string {
	all := slices.Clone(p.Editor.Extensions)

	if withR {
		all = append(all, p.R.Extensions...)
	}

	if withPython {
		all = append(all, p.Python.Extensions...)
	}

	seen := make(map[string]bool, len(all))
	out := all[:0]

	for _, id := range all {
		if seen[id] {
			continue
		}

		seen[id] = true
		out = append(out, id)
	}

	return out
}

// SettingKeys returns the profile settings keys in sorted order, so the applied
// order does not depend on map iteration.
func (p Profile) SettingKeys() []string {
	return slices.Sorted(maps.Keys(p.Settings))
}

func pick(def, user string) string {
	if user != "" {
		return user
	}

	return def
}

func pickList(def, user []string) []string {
	if len(user) > 0 {
		return slices.Clone(user)
	}

	return slices.Clone(def)
}
