package site

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/folio-site/folio/internal/content"
	"github.com/folio-site/folio/internal/walker"
)

// ManifestIcon is an icon or screenshot entry of the web app manifest.
type ManifestIcon struct {
	Src        string `json:"src"`
	Sizes      string `json:"sizes"`
	Type       string `json:"type"`
	FormFactor string `json:"form_factor,omitempty"`
}

// Manifest is the web app manifest served at /manifest.webmanifest.
type Manifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	Description     string         `json:"description,omitempty"`
	Lang            string         `json:"lang"`
	StartURL        string         `json:"start_url"`
	Display         string         `json:"display"`
	BackgroundColor string         `json:"background_color"`
	ThemeColor      string         `json:"theme_color"`
	Icons           []ManifestIcon `json:"icons"`
	Screenshots     []ManifestIcon `json:"screenshots,omitempty"`
}

// NewManifest builds the manifest for a document.
func NewManifest(doc *content.Document) Manifest {
	short := doc.Site.Title
	if len([]rune(short)) > 12 {
		short = string([]rune(short)[:12])
	}
	return Manifest{
		Name:            doc.Site.Title,
		ShortName:       short,
		Description:     doc.Site.Description,
		Lang:            doc.Language,
		StartURL:        "/",
		Display:         "standalone",
		BackgroundColor: "#fafafa",
		ThemeColor:      "#0071e3",
		Icons: []ManifestIcon{
			{Src: "/site/icons/icon-192.png", Sizes: "192x192", Type: "image/png"},
			{Src: "/site/icons/icon-512.png", Sizes: "512x512", Type: "image/png"},
		},
		Screenshots: []ManifestIcon{
			{Src: "/screenshot-desktop.png", Sizes: "1280x800", Type: "image/png", FormFactor: "wide"},
			{Src: "/screenshot-mobile.png", Sizes: "750x1334", Type: "image/png", FormFactor: "narrow"},
		},
	}
}

// Asset is a file of the generated site.
type Asset struct {
	Path     string      `json:"path"`
	Type     walker.Type `json:"type"`
	Size     int64       `json:"size"`
	Revision string      `json:"revision,omitempty"`
}

// AssetList is the precache list written to offline-assets.json. Critical
// and Optional feed the offline install; Assets lists everything else.
type AssetList struct {
	Critical []string `json:"critical"`
	Optional []string `json:"optional"`
	Pages    []string `json:"pages"`
	Assets   []Asset  `json:"assets"`
}

// ReadAssetList reads an offline-assets.json file.
func ReadAssetList(path string) (*AssetList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var list AssetList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
