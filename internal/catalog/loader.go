package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"launchpad/pkg/types"
)

// LoadDir scans a directory for catalog entry files (*.json, *.yaml, *.yml)
// and decodes each one into a CatalogEntry. Entries are returned in directory
// order; files with other extensions are skipped.
func LoadDir(dir string) ([]types.CatalogEntry, error) {
	base, err := expandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var out []types.CatalogEntry
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		p := filepath.Join(abs, name)
		var entry types.CatalogEntry
		switch ext := strings.ToLower(filepath.Ext(name)); ext {
		case ".json":
			b, err := os.ReadFile(p)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", name, err)
			}
			if err := json.Unmarshal(b, &entry); err != nil {
				return nil, fmt.Errorf("decode %s: %w", name, err)
			}
		case ".yaml", ".yml":
			b, err := os.ReadFile(p)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", name, err)
			}
			if err := yaml.Unmarshal(b, &entry); err != nil {
				return nil, fmt.Errorf("decode %s: %w", name, err)
			}
		default:
			continue
		}
		if entry.Name == "" {
			return nil, fmt.Errorf("catalog file %s: missing model_name", name)
		}
		out = append(out, entry)
	}
	return out, nil
}

// expandHome expands a leading '~' to the user's home directory.
func expandHome(path string) (string, error) {
	if path == "" {
		return path, nil
	}
	if path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	// handle cases like ~/catalog/llm
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}
