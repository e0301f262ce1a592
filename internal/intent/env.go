// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

package intent

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// EnvFile is the optional defaults file under the devsetup config directory.
const EnvFile = "devsetup.env"

// Lookup reads one environment variable.
type Lookup func(key string) (string, bool)

// NoEnv is a Lookup with nothing set.
func NoEnv(string) (string, bool) { return "", false }

// MapLookup serves values from a map.
func MapLookup(values map[string]string) Lookup {
	return func(key string) (string, bool) {
		value, ok := values[key]

		return value, ok
	}
}

// ProcessEnv reads the process environment.
func ProcessEnv() Lookup {
	return os.LookupEnv
}

// WithFile layers a dotenv file under primary: primary wins, the file fills gaps.
// A missing file is not an error.
func WithFile(primary Lookup, path string) (Lookup, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return primary, nil
		}

		return primary, err
	}

	file := MapLookup(values)

	return func(key string) (string, bool) {
		if value, ok := primary(key); ok {
			return value, true
		}

		return file(key)
	}, nil
}
