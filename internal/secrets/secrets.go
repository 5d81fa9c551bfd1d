// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads sink credentials from a directory of plain-text
// files. The filename is the key and the trimmed contents are the value.
//
// Known keys: es-password, es-api-key.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/canon-engine/internal/logging"
)

// Keys read by the Elasticsearch sink.
const (
	ElasticPassword = "es-password"
	ElasticAPIKey   = "es-api-key"
)

// Set is a loaded secrets directory.
type Set map[string]string

// Load reads all regular files in dir. A missing directory yields an empty
// Set. Dotfiles, subdirectories and blank files are skipped; unreadable
// files are logged and skipped.
func Load(dir string, logger *slog.Logger) (Set, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Set{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	set := make(Set)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("skipping unreadable secret", "key", name, "err", err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			set[name] = value
		}
	}
	return set, nil
}

// Resolve returns explicit when it is set, otherwise the value stored
// under key. The second result reports whether any value was found.
func (s Set) Resolve(explicit, key string) (string, bool) {
	if explicit != "" {
		return explicit, true
	}
	v, ok := s[key]
	return v, ok
}
