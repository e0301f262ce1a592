// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

package settings

import (
	"fmt"
	"path/filepath"

	"github.com/janderssonse/devsetup/internal/domain"
	"github.com/rs/zerolog"
)

// BackupSuffix is appended to a malformed file's name before it is replaced.
const BackupSuffix = ".bak"

// Store persists a settings document at a fixed path with whole-file read-modify-write.
type Store struct {
	path   string
	files  domain.FileManager
	logger zerolog.Logger

	// recovered holds the content of a malformed file read by Load, kept so Save can back it up.
	recovered []byte
}

// NewStore creates a store for the document at path.
func NewStore(path string, files domain.FileManager, logger zerolog.Logger) *Store {
	return &Store{
		path:   path,
		files:  files,
		logger: logger.With().Str("path", path).Logger(),
	}
}

// Path returns the document path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the document. It never fails: a missing file is an empty document and
// unreadable or malformed content is logged and treated as empty.
func (s *Store) Load() *Document {
	s.recovered = nil

	if !s.files.FileExists(s.path) {
		s.logger.Debug().Msg("settings file absent, starting empty")

		return New()
	}

	data, err := s.files.ReadFile(s.path)
	if err != nil {
		s.logger.Warn().Err(err).Msg("settings file unreadable, starting empty")

		return New()
	}

	doc, err := ParseStrict(data)
	if err != nil {
		s.logger.Warn().Err(err).Msg("settings file malformed, starting empty")
		s.recovered = data

		return New()
	}

	return doc
}

// Save writes doc atomically, creating the containing directory. A malformed file seen by
// the last Load is copied aside first.
func (s *Store) Save(doc *Document) error {
	data, err := doc.Bytes()
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(s.path), err)
	}

	if s.recovered != nil {
		backup := s.path + BackupSuffix
		if err := s.files.WriteFile(backup, s.recovered); err != nil {
			return fmt.Errorf("failed to back up malformed %s: %w", s.path, err)
		}

		s.logger.Warn().Str("backup", backup).Msg("malformed settings backed up")
		s.recovered = nil
	}

	if err := s.files.WriteFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}

	s.logger.Debug().Int("keys", doc.Len()).Msg("settings saved")

	return nil
}

// Update loads the document, applies edits and saves the result.
func (s *Store) Update(edits ...Edit) (*Document, error) {
	doc, err := Merge(s.Load(), edits...)
	if err != nil {
		return nil, err
	}

	if err := s.Save(doc); err != nil {
		return nil, err
	}

	return doc, nil
}
