package content

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/folio-site/folio/internal/viewer"
)

// MediaBase is the path below which folder media live.
const MediaBase = "site/images"

// Kind returns the viewer kind of the entry. An explicit type wins over
// the guess from the URL.
func (i Image) Kind() viewer.Kind {
	if k, ok := viewer.ParseKind(i.Type); ok {
		return k
	}
	return viewer.KindOf(i.Src)
}

// URL returns the entry's source below base. Absolute URLs are kept.
func (i Image) URL(base string) string {
	if strings.Contains(i.Src, "://") {
		return i.Src
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(i.Src, "/")
}

// MediaList flattens the folder into the list the viewer navigates.
func (f Folder) MediaList(base string) viewer.MediaList {
	list := make(viewer.MediaList, len(f.Images))
	for i, img := range f.Images {
		list[i] = viewer.Media{Src: img.URL(base), Kind: img.Kind()}
	}
	return list
}

var germanFolds = strings.NewReplacer(
	"ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss",
	"Ä", "ae", "Ö", "oe", "Ü", "ue",
)

// Slug turns a folder title into a path segment: lowercase ASCII letters
// and digits separated by single dashes.
func Slug(title string) string {
	s := germanFolds.Replace(title)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
