package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.DefaultLanguage != "en" {
		t.Errorf("expected default language %q, got %q", "en", cfg.DefaultLanguage)
	}
	if cfg.Offline.Backend != BackendMemory {
		t.Errorf("expected default backend %q, got %q", BackendMemory, cfg.Offline.Backend)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if len(cfg.Offline.Critical) != len(DefaultCritical) {
		t.Errorf("expected %d critical assets, got %d", len(DefaultCritical), len(cfg.Offline.Critical))
	}

	// Mutating a config must not leak into the shared defaults.
	cfg.Offline.Critical[0] = "/changed"
	if DefaultCritical[0] == "/changed" {
		t.Error("DefaultConfig shares the DefaultCritical backing array")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.folio.yml")

	original := DefaultConfig()
	original.ContentDir = "content"
	original.DefaultLanguage = "de"
	original.Offline.Version = "v2.0"
	original.Offline.Backend = BackendBolt
	original.Offline.Optional = []string{"/a.png", "/b.png"}
	original.Server.Port = 9000

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.ContentDir != original.ContentDir {
		t.Errorf("content_dir: got %q, want %q", loaded.ContentDir, original.ContentDir)
	}
	if loaded.DefaultLanguage != original.DefaultLanguage {
		t.Errorf("default_language: got %q, want %q", loaded.DefaultLanguage, original.DefaultLanguage)
	}
	if loaded.Offline.Version != original.Offline.Version {
		t.Errorf("offline.version: got %q, want %q", loaded.Offline.Version, original.Offline.Version)
	}
	if loaded.Offline.Backend != original.Offline.Backend {
		t.Errorf("offline.backend: got %q, want %q", loaded.Offline.Backend, original.Offline.Backend)
	}
	if loaded.Server.Port != original.Server.Port {
		t.Errorf("server.port: got %d, want %d", loaded.Server.Port, original.Server.Port)
	}
	if len(loaded.Offline.Optional) != 2 || loaded.Offline.Optional[1] != "/b.png" {
		t.Errorf("offline.optional: got %v, want %v", loaded.Offline.Optional, original.Offline.Optional)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.ContentDir != "site" {
		t.Errorf("expected default content_dir, got %q", cfg.ContentDir)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("FOLIO_CONTENT_DIR", "elsewhere")
	t.Setenv("FOLIO_OFFLINE__VERSION", "v9")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.ContentDir != "elsewhere" {
		t.Errorf("env override failed: got %q, want %q", loaded.ContentDir, "elsewhere")
	}
	if loaded.Offline.Version != "v9" {
		t.Errorf("nested env override failed: got %q, want %q", loaded.Offline.Version, "v9")
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"FOLIO_CONTENT_DIR", "content_dir"},
		{"FOLIO_SERVER__PORT", "server.port"},
		{"FOLIO_S3__ACCESS_KEY", "s3.access_key"},
	}
	for _, tt := range tests {
		if got := envKey(tt.in); got != tt.want {
			t.Errorf("envKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty content dir", func(c *Config) { c.ContentDir = "" }},
		{"empty output dir", func(c *Config) { c.OutputDir = "" }},
		{"no languages", func(c *Config) { c.Languages = nil }},
		{"unknown default language", func(c *Config) { c.DefaultLanguage = "fr" }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"empty version", func(c *Config) { c.Offline.Version = "" }},
		{"unknown backend", func(c *Config) { c.Offline.Backend = "redis" }},
		{"bolt without data dir", func(c *Config) { c.Offline.Backend = BackendBolt; c.DataDir = "" }},
		{"bucket without region", func(c *Config) { c.S3.Bucket = "media"; c.S3.Region = "" }},
		{"zero thumbnail width", func(c *Config) { c.Thumbnails.MaxWidth = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"/index.html", []string{"/index.html"}},
		{"", nil},
		{"  ,  , ", nil},
	}
	for _, tt := range tests {
		got := splitAndTrim(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("splitAndTrim(%q) len = %d, want %d", tt.input, len(got), len(tt.want))
			continue
		}
		for i, v := range got {
			if v != tt.want[i] {
				t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
			}
		}
	}
}

func TestDetectContentDir(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(wd) })
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	if got := detectContentDir(); got != "site" {
		t.Errorf("empty dir: got %q, want site", got)
	}

	os.MkdirAll("content", 0o755)
	os.WriteFile(filepath.Join("content", "config-en.json"), []byte("{}"), 0o644)
	if got := detectContentDir(); got != "content" {
		t.Errorf("got %q, want content", got)
	}
}
