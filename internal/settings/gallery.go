// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

package settings

import (
	"errors"
	"fmt"
	"strings"
)

// Marketplace override keys. The editor's command-line extension installer only reads the
// legacy key, while the running editor only reads the namespaced ones and shows a warning
// banner when the legacy key is present.
const (
	LegacyGalleryKey = "extensionsGallery"
	ServiceURLKey    = "extensions.gallery.serviceUrl"
	ItemURLKey       = "extensions.gallery.itemUrl"
)

// ErrUnknownView is returned by ParseView.
var ErrUnknownView = errors.New("unknown gallery view")

// GalleryView is one of the two projections of the marketplace override.
type GalleryView int

// Gallery views.
const (
	// InstallView carries only the legacy key, for command-line extension installs.
	InstallView GalleryView = iota
	// SteadyStateView carries only the namespaced keys, for normal editor use.
	SteadyStateView
)

func (v GalleryView) String() string {
	switch v {
	case InstallView:
		return "install"
	case SteadyStateView:
		return "steady"
	}

	return fmt.Sprintf("GalleryView(%d)", int(v))
}

// ParseView parses "install" or "steady".
func ParseView(s string) (GalleryView, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "install":
		return InstallView, nil
	case "steady", "steady-state", "runtime":
		return SteadyStateView, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownView, s)
}

// Gallery is a marketplace override.
type Gallery struct {
	ServiceURL string `json:"serviceUrl" toml:"service_url"`
	ItemURL    string `json:"itemUrl"    toml:"item_url"`
}

// IsZero reports whether no override is configured.
func (g Gallery) IsZero() bool {
	return g.ServiceURL == "" && g.ItemURL == ""
}

// ViewEdits returns the edits that move a document into view.
func ViewEdits(view GalleryView, g Gallery) []Edit {
	if view == InstallView {
		return []Edit{
			Set(LegacyGalleryKey, g),
			Remove(ServiceURLKey),
			Remove(ItemURLKey),
		}
	}

	return []Edit{
		Remove(LegacyGalleryKey),
		Set(ServiceURLKey, g.ServiceURL),
		Set(ItemURLKey, g.ItemURL),
	}
}

// ApplyView transitions doc into view. Applying a view twice is the same as applying it once.
func ApplyView(doc *Document, view GalleryView, g Gallery) (*Document, error) {
	return Merge(doc, ViewEdits(view, g)...)
}

// CurrentView reports which projection doc is in. ok is false when neither or both
// sets of keys are present.
func CurrentView(doc *Document) (GalleryView, bool) {
	legacy := doc.Has(LegacyGalleryKey)
	namespaced := doc.Has(ServiceURLKey) || doc.Has(ItemURLKey)

	switch {
	case legacy && !namespaced:
		return InstallView, true
	case namespaced && !legacy:
		return SteadyStateView, true
	}

	return 0, false
}
