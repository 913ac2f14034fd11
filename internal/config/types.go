package config

// Backend selects where the offline cache controller keeps its stores.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendSQLite Backend = "sqlite"
	BackendBolt   Backend = "bolt"
)

// Config is the top-level folio configuration, corresponding to .folio.yml.
type Config struct {
	ContentDir      string          `yaml:"content_dir" koanf:"content_dir"`
	OutputDir       string          `yaml:"output_dir" koanf:"output_dir"`
	DataDir         string          `yaml:"data_dir" koanf:"data_dir"`
	DefaultLanguage string          `yaml:"default_language" koanf:"default_language"`
	Languages       []string        `yaml:"languages" koanf:"languages"`
	Server          ServerConfig    `yaml:"server" koanf:"server"`
	Offline         OfflineConfig   `yaml:"offline" koanf:"offline"`
	S3              S3Config        `yaml:"s3" koanf:"s3"`
	Thumbnails      ThumbnailConfig `yaml:"thumbnails" koanf:"thumbnails"`
}

// ServerConfig holds HTTP settings for `folio serve` and `folio proxy`.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// OfflineConfig configures the offline cache controller.
type OfflineConfig struct {
	Version     string   `yaml:"version" koanf:"version"`
	Backend     Backend  `yaml:"backend" koanf:"backend"`
	Upstream    string   `yaml:"upstream" koanf:"upstream"`
	Probe       string   `yaml:"probe" koanf:"probe"`
	Critical    []string `yaml:"critical" koanf:"critical"`
	Optional    []string `yaml:"optional" koanf:"optional"`
	StaticGlobs []string `yaml:"static_globs" koanf:"static_globs"`
}

// S3Config points media requests (below /site/images/) at an S3 (or
// MinIO) bucket. Media are served from the bucket only when Bucket is set.
// The object key is Prefix plus the request path without its leading slash.
type S3Config struct {
	Bucket    string `yaml:"bucket" koanf:"bucket"`
	Region    string `yaml:"region" koanf:"region"`
	Endpoint  string `yaml:"endpoint" koanf:"endpoint"`
	AccessKey string `yaml:"access_key" koanf:"access_key"`
	SecretKey string `yaml:"secret_key" koanf:"secret_key"`
	Prefix    string `yaml:"prefix" koanf:"prefix"`
}

// ThumbnailConfig controls `folio thumbs`.
type ThumbnailConfig struct {
	Source    string   `yaml:"source" koanf:"source"`
	Target    string   `yaml:"target" koanf:"target"`
	MaxWidth  int      `yaml:"max_width" koanf:"max_width"`
	MaxHeight int      `yaml:"max_height" koanf:"max_height"`
	Exclude   []string `yaml:"exclude" koanf:"exclude"`
}
