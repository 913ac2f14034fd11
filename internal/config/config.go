package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (FOLIO_*). A double underscore descends
// into a section: FOLIO_SERVER__PORT -> server.port.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("FOLIO_", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, "FOLIO_"))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validBackends is the set of recognized offline storage backends.
var validBackends = map[Backend]bool{
	BackendMemory: true,
	BackendSQLite: true,
	BackendBolt:   true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.ContentDir == "" {
		return fmt.Errorf("content_dir is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}

	if len(c.Languages) == 0 {
		return fmt.Errorf("at least one language is required")
	}
	if !contains(c.Languages, c.DefaultLanguage) {
		return fmt.Errorf("default_language %q is not one of %v", c.DefaultLanguage, c.Languages)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}

	if c.Offline.Version == "" {
		return fmt.Errorf("offline.version is required")
	}
	if !validBackends[c.Offline.Backend] {
		return fmt.Errorf("invalid offline.backend %q: must be one of memory, sqlite, bolt", c.Offline.Backend)
	}
	if c.Offline.Backend != BackendMemory && c.DataDir == "" {
		return fmt.Errorf("data_dir is required for offline.backend %q", c.Offline.Backend)
	}

	if c.S3.Bucket != "" && c.S3.Region == "" {
		return fmt.Errorf("s3.region is required when s3.bucket is set")
	}

	if c.Thumbnails.MaxWidth <= 0 || c.Thumbnails.MaxHeight <= 0 {
		return fmt.Errorf("thumbnail bounds must be positive")
	}

	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
