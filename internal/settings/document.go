// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

// Package settings reads, patches and writes the editor's JSONC settings and keybindings
// documents without disturbing keys it was not asked to touch.
package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Parse errors. Callers that must not fail use Parse, which maps both to an empty document.
var (
	ErrMalformed = errors.New("malformed settings document")
	ErrNotObject = errors.New("settings document is not a JSON object")
)

const indent = "    "

var utf8BOM = []byte{0xEF, 0xBB, 0xBF} //nolint:gochecknoglobals

// Document is an insertion-ordered mapping of top-level keys to raw JSON values.
// Values are kept as raw bytes so untouched entries round-trip unchanged.
type Document struct {
	entries *orderedmap.OrderedMap[string, json.RawMessage]
}

// New returns an empty document.
func New() *Document {
	return &Document{entries: orderedmap.New[string, json.RawMessage]()}
}

// Parse decodes JSONC content. Empty, malformed and non-object input yields an empty document.
func Parse(data []byte) *Document {
	doc, err := ParseStrict(data)
	if err != nil {
		return New()
	}

	return doc
}

// ParseStrict decodes JSONC content, reporting why it could not be used.
// Empty or whitespace-only input is an empty document, not an error.
func ParseStrict(data []byte) (*Document, error) {
	data = stripBOM(data)
	if len(bytes.TrimSpace(data)) == 0 {
		return New(), nil
	}

	clean := jsonc.ToJSON(data)
	if !json.Valid(clean) {
		return New(), ErrMalformed
	}

	root := gjson.ParseBytes(clean)
	if !root.IsObject() {
		return New(), ErrNotObject
	}

	doc := New()

	root.ForEach(func(key, value gjson.Result) bool {
		doc.entries.Set(key.String(), json.RawMessage(value.Raw))

		return true
	})

	return doc, nil
}

// stripBOM drops a leading UTF-8 byte order mark, which Windows editors write and JSON
// parsers reject.
func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8BOM)
}

// Len returns the number of top-level keys.
func (d *Document) Len() int {
	return d.entries.Len()
}

// Keys returns the top-level keys in document order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, d.entries.Len())
	for pair := d.entries.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}

	return keys
}

// Has reports whether key is present.
func (d *Document) Has(key string) bool {
	_, ok := d.entries.Get(key)

	return ok
}

// Raw returns the raw JSON value stored at key.
func (d *Document) Raw(key string) (json.RawMessage, bool) {
	return d.entries.Get(key)
}

// Get returns the value at a top-level key. Keys are matched literally, dots included.
func (d *Document) Get(key string) gjson.Result {
	raw, ok := d.entries.Get(key)
	if !ok {
		return gjson.Result{}
	}

	return gjson.ParseBytes(raw)
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	clone := New()

	for pair := d.entries.Oldest(); pair != nil; pair = pair.Next() {
		clone.entries.Set(pair.Key, append(json.RawMessage(nil), pair.Value...))
	}

	return clone
}

// MarshalJSON encodes the document compactly in key order without HTML escaping.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for pair := d.entries.Oldest(); pair != nil; pair = pair.Next() {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}

		key, err := encode(pair.Key)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')

		if err := json.Compact(&buf, pair.Value); err != nil {
			return nil, fmt.Errorf("value of %q: %w", pair.Key, err)
		}
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// Bytes renders the document the way the editor writes it: four-space indent and a trailing newline.
func (d *Document) Bytes() ([]byte, error) {
	compact, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", indent); err != nil {
		return nil, err
	}

	out.WriteByte('\n')

	return out.Bytes(), nil
}

// String renders the document, or an empty object when it cannot be encoded.
func (d *Document) String() string {
	data, err := d.Bytes()
	if err != nil {
		return "{}\n"
	}

	return string(data)
}

// encode marshals v without HTML escaping, so "<-" stays readable in the file.
func encode(v any) (json.RawMessage, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
