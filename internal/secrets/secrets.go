// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads provider API keys from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Recognized key files: semantic-scholar-api-key, patentsview-api-key,
// google-books-api-key, ncbi-api-key, contact-email.
package secrets

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// Key file names understood by the CLI.
const (
	SemanticScholarAPIKey = "semantic-scholar-api-key"
	PatentsViewAPIKey     = "patentsview-api-key"
	GoogleBooksAPIKey     = "google-books-api-key"
	NCBIAPIKey            = "ncbi-api-key"
	ContactEmail          = "contact-email"
)

// Secrets maps key file names to their trimmed values.
type Secrets map[string]string

// Get returns the value for key, or fallback when fallback is non-empty or
// the key is absent. An explicit fallback (from a flag or config) wins.
func (s Secrets) Get(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return s[key]
}

// Keys returns the loaded key names without their values.
func (s Secrets) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	return keys
}

// Load reads all files in dir. A missing directory is not an error; Load
// returns an empty map. Unreadable files are logged and skipped.
func Load(dir string, log zerolog.Logger) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, errors.Wrapf(err, "reading secrets directory %s", dir)
	}

	out := make(Secrets)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn().Err(err).Str("secret", name).Msg("could not read secret")
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			out[name] = value
		}
	}

	return out, nil
}
