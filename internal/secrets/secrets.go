// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files. The
// filename is the key name and the trimmed file contents are the value.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pokerouter/pkg/types"
)

// Key file names.
const (
	AnthropicKey = "anthropic-api-key"
	TavilyKey    = "tavily-api-key"
)

// DefaultDir is the secrets directory relative to the working directory.
const DefaultDir = ".secrets"

// Store maps key names to values.
type Store map[string]string

// Load reads every regular, non-hidden file in dir. A missing directory
// yields an empty Store. Unreadable or empty files are skipped.
func Load(dir string, log *slog.Logger) (Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Store, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			if log != nil {
				log.Warn("secret unreadable", "name", name, "error", err)
			}
			continue
		}
		if v := strings.TrimSpace(string(data)); v != "" {
			s[name] = v
		}
	}
	return s, nil
}

// Apply fills API keys in cfg that are still empty. Values already set by
// config or environment win over files.
func (s Store) Apply(cfg *types.Config) {
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = s[AnthropicKey]
	}
	if cfg.Search.APIKey == "" {
		cfg.Search.APIKey = s[TavilyKey]
	}
}

// Missing returns the required keys that cfg still lacks.
func Missing(cfg types.Config) []string {
	var out []string
	if cfg.AI.APIKey == "" {
		out = append(out, AnthropicKey)
	}
	if cfg.Search.APIKey == "" {
		out = append(out, TavilyKey)
	}
	return out
}
