// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API credentials from a directory of plain-text
// key files: the filename is the key name, the trimmed contents are the
// value. book-engine reads one secret, anthropic-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// knownKeys lists the key files Load looks for. Anything else in the
// directory is ignored.
var knownKeys = []string{"anthropic-api-key"}

// Load reads the known key files under dir. A missing directory or
// missing key files are not errors; empty files are skipped.
func Load(dir string) (map[string]string, error) {
	secrets := make(map[string]string)
	for _, name := range knownKeys {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("reading secret %s: %w", name, err)
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}
