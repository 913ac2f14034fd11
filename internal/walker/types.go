package walker

import (
	"path/filepath"
	"strings"
)

// Type classifies a site asset by extension.
type Type string

const (
	TypeImage    Type = "image"
	TypeVideo    Type = "video"
	TypeStyle    Type = "style"
	TypeScript   Type = "script"
	TypeFont     Type = "font"
	TypeDocument Type = "document"
	TypeData     Type = "data"
	TypeOther    Type = "other"
)

var extensionToType = map[string]Type{
	".jpg":  TypeImage,
	".jpeg": TypeImage,
	".png":  TypeImage,
	".gif":  TypeImage,
	".webp": TypeImage,
	".svg":  TypeImage,
	".ico":  TypeImage,
	".bmp":  TypeImage,
	".tif":  TypeImage,
	".tiff": TypeImage,

	".mp4":  TypeVideo,
	".webm": TypeVideo,
	".mov":  TypeVideo,
	".m4v":  TypeVideo,

	".css": TypeStyle,
	".js":  TypeScript,
	".mjs": TypeScript,

	".woff":  TypeFont,
	".woff2": TypeFont,
	".ttf":   TypeFont,

	".html": TypeDocument,
	".htm":  TypeDocument,

	".json":        TypeData,
	".webmanifest": TypeData,
}

// DetectType returns the asset type for a filename.
func DetectType(filename string) Type {
	if t, ok := extensionToType[strings.ToLower(filepath.Ext(filename))]; ok {
		return t
	}
	return TypeOther
}

// ImagePatterns are the include globs for raster images the thumbnailer
// can decode.
var ImagePatterns = []string{"**/*.{jpg,jpeg,png,gif,bmp,tif,tiff,JPG,JPEG,PNG,GIF,BMP,TIF,TIFF}"}
