// Package viewer implements the fullscreen media viewer: an ordered media
// list, circular navigation, element swapping by media kind, and a gesture
// handler that turns wheel, pinch, drag and tap input into a clamped
// zoom-and-pan transform.
package viewer

import (
	"net/url"
	"path"
	"strings"
)

// Kind identifies how a media item is displayed.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindEmbed Kind = "embed"
)

var videoExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
	".ogg":  true,
	".ogv":  true,
	".mov":  true,
	".m4v":  true,
}

var embedHosts = []string{
	"youtube.com",
	"youtube-nocookie.com",
	"youtu.be",
	"vimeo.com",
}

// KindOf guesses the display kind of src from its host and extension.
func KindOf(src string) Kind {
	u, err := url.Parse(src)
	if err != nil {
		return KindImage
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range embedHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return KindEmbed
		}
	}
	if strings.Contains(u.Path, "/embed/") {
		return KindEmbed
	}
	if videoExtensions[strings.ToLower(path.Ext(u.Path))] {
		return KindVideo
	}
	return KindImage
}

// ParseKind maps a content media type ("image", "video", "youtube", ...)
// to a Kind. Unknown or empty types report false.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "image", "img":
		return KindImage, true
	case "video":
		return KindVideo, true
	case "embed", "youtube", "vimeo":
		return KindEmbed, true
	}
	return "", false
}

// Media is one entry of a MediaList.
type Media struct {
	Src  string `json:"src"`
	Kind Kind   `json:"kind"`
}

// MediaList is the ordered list of media of the opened gallery. It is
// replaced wholesale whenever a gallery opens.
type MediaList []Media

// NewMediaList builds a MediaList from plain URLs, guessing each kind.
func NewMediaList(srcs ...string) MediaList {
	list := make(MediaList, len(srcs))
	for i, src := range srcs {
		list[i] = Media{Src: src, Kind: KindOf(src)}
	}
	return list
}

// IndexOf returns the position of src in the list, or -1.
func (l MediaList) IndexOf(src string) int {
	for i, m := range l {
		if m.Src == src {
			return i
		}
	}
	return -1
}

func (l MediaList) clone() MediaList {
	out := make(MediaList, len(l))
	for i, m := range l {
		if m.Kind == "" {
			m.Kind = KindOf(m.Src)
		}
		out[i] = m
	}
	return out
}
