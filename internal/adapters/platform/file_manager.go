// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

// Package platform provides shared adapters that work across operating systems.
package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// FileManager implements the FileManager port on top of an afero filesystem.
type FileManager struct {
	fs     afero.Fs
	logger zerolog.Logger
}

// NewFileManager creates a file manager backed by the real filesystem.
func NewFileManager(logger zerolog.Logger) *FileManager {
	return NewFileManagerWithFs(afero.NewOsFs(), logger)
}

// NewFileManagerWithFs creates a file manager over fs, typically afero.NewMemMapFs in tests.
func NewFileManagerWithFs(fs afero.Fs, logger zerolog.Logger) *FileManager {
	return &FileManager{
		fs:     fs,
		logger: logger,
	}
}

// FileExists checks if a file exists.
func (f *FileManager) FileExists(path string) bool {
	_, err := f.fs.Stat(path)

	return err == nil
}

// EnsureDir creates a directory and all parent directories if they don't exist.
func (f *FileManager) EnsureDir(path string) error {
	f.logger.Debug().Str("path", path).Msg("ensuring directory")

	// #nosec G301 - Standard directory permissions for application directories
	return f.fs.MkdirAll(path, 0755)
}

// ReadFile reads data from a file.
func (f *FileManager) ReadFile(path string) ([]byte, error) {
	f.logger.Debug().Str("path", path).Msg("reading file")

	return afero.ReadFile(f.fs, path)
}

// WriteFile writes data to a file.
func (f *FileManager) WriteFile(path string, data []byte) error {
	f.logger.Debug().Str("path", path).Int("bytes", len(data)).Msg("writing file")

	if err := f.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// #nosec G306 - Standard file permissions for configuration files
	return afero.WriteFile(f.fs, path, data, 0644)
}

// WriteFileAtomic writes data to a temporary file next to path and renames it into place,
// so readers never observe a partially written file.
func (f *FileManager) WriteFileAtomic(path string, data []byte) error {
	f.logger.Debug().Str("path", path).Int("bytes", len(data)).Msg("writing file atomically")

	dir := filepath.Dir(path)
	if err := f.EnsureDir(dir); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := afero.TempFile(f.fs, dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tmpName := tmp.Name()

	cleanup := func() { _ = f.fs.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()

		cleanup()

		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()

		cleanup()

		return fmt.Errorf("failed to sync temporary file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		cleanup()

		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	// #nosec G302 - Configuration files are user readable
	if err := f.fs.Chmod(tmpName, 0644); err != nil && !os.IsNotExist(err) {
		f.logger.Debug().Err(err).Str("path", tmpName).Msg("chmod failed")
	}

	if err := f.fs.Rename(tmpName, path); err != nil {
		cleanup()

		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}

// RemoveFile removes a file.
func (f *FileManager) RemoveFile(path string) error {
	f.logger.Debug().Str("path", path).Msg("removing file")

	return f.fs.Remove(path)
}
