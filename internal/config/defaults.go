package config

// DefaultCritical are the assets every offline install must try to prime.
var DefaultCritical = []string{
	"/index.html",
	"/site/styles.css",
	"/site/scripts.js",
	"/site/config-de.json",
	"/site/config-en.json",
}

// DefaultOptional are primed best-effort.
var DefaultOptional = []string{
	"/site/icons/icon-192.png",
	"/site/icons/icon-512.png",
	"/screenshot-desktop.png",
	"/screenshot-mobile.png",
	"/manifest.webmanifest",
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ContentDir:      "site",
		OutputDir:       "public",
		DataDir:         ".folio",
		DefaultLanguage: "en",
		Languages:       []string{"en", "de"},
		Server: ServerConfig{
			Port: 8080,
		},
		Offline: OfflineConfig{
			Version:     "v1.2.7",
			Backend:     BackendMemory,
			Probe:       "/index.html",
			Critical:    append([]string(nil), DefaultCritical...),
			Optional:    append([]string(nil), DefaultOptional...),
			StaticGlobs: []string{"**/icons/**"},
		},
		S3: S3Config{
			Region: "us-east-1",
		},
		Thumbnails: ThumbnailConfig{
			Source:    "site/images",
			Target:    "site/thumbnails",
			MaxWidth:  300,
			MaxHeight: 300,
		},
	}
}
