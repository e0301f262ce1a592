// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

package settings

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Edit is one change applied to a document.
type Edit func(*Document) error

// Set replaces the whole value at key. Arrays and objects are not merged.
// An existing key keeps its position; a new key is appended.
func Set(key string, value any) Edit {
	raw, err := encode(value)

	return func(d *Document) error {
		if err != nil {
			return fmt.Errorf("set %q: %w", key, err)
		}

		d.entries.Set(key, append(json.RawMessage(nil), raw...))

		return nil
	}
}

// Remove deletes key. Removing an absent key is a no-op.
func Remove(key string) Edit {
	return func(d *Document) error {
		d.entries.Delete(key)

		return nil
	}
}

// Augment applies edits to the nested object at key, starting from an empty object
// when the key is absent or holds something else. Keys inside the nested object that
// the edits do not name are kept.
func Augment(key string, edits ...Edit) Edit {
	return func(d *Document) error {
		nested := New()

		if raw, ok := d.entries.Get(key); ok && gjson.ParseBytes(raw).IsObject() {
			nested = Parse(raw)
		}

		for _, edit := range edits {
			if err := edit(nested); err != nil {
				return fmt.Errorf("augment %q: %w", key, err)
			}
		}

		raw, err := nested.MarshalJSON()
		if err != nil {
			return fmt.Errorf("augment %q: %w", key, err)
		}

		d.entries.Set(key, raw)

		return nil
	}
}

// Merge applies edits in order to a copy of doc. doc itself is never modified.
func Merge(doc *Document, edits ...Edit) (*Document, error) {
	if doc == nil {
		doc = New()
	}

	out := doc.Clone()

	for _, edit := range edits {
		if err := edit(out); err != nil {
			return doc, err
		}
	}

	return out, nil
}
