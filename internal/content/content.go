// Package content loads the per-language portfolio documents
// (config-<lang>.json) and derives galleries, slugs and media lists from
// them.
package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Document is one config-<lang>.json file.
type Document struct {
	Site    Site    `json:"site"`
	Content Body    `json:"content"`
	Contact Contact `json:"contact"`
	Footer  Footer  `json:"footer"`
	Legal   Legal   `json:"legal"`

	// Language is the code of the file the document was read from.
	Language string `json:"-"`
}

type Site struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Author      string `json:"author,omitempty"`
	URL         string `json:"url,omitempty"`
}

type Body struct {
	Navigation []Link   `json:"navigation"`
	Hero       Hero     `json:"hero"`
	Projects   Projects `json:"projects"`
}

type Link struct {
	Name string `json:"name"`
	Href string `json:"href"`
}

type Hero struct {
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle"`
	Description []string `json:"description"`
	Buttons     Buttons  `json:"buttons"`
}

type Buttons struct {
	ViewProjects string `json:"view_projects"`
	GetInTouch   string `json:"get_in_touch"`
}

type Contact struct {
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
	Discord  string `json:"discord"`
	Email    string `json:"email"`
}

// Mail returns the e-mail address without a mailto: prefix.
func (c Contact) Mail() string {
	return strings.TrimPrefix(c.Email, "mailto:")
}

// MailTo returns the mailto: link of the address, or "" when unset.
func (c Contact) MailTo() string {
	if c.Email == "" {
		return ""
	}
	return "mailto:" + c.Mail()
}

type Footer struct {
	Copyright string `json:"copyright"`
	Links     []Link `json:"links"`
}

// Legal holds markdown documents.
type Legal struct {
	Imprint string `json:"imprint"`
	Privacy string `json:"privacy"`
}

// Doc returns the legal document named imprint or privacy.
func (l Legal) Doc(name string) (string, bool) {
	switch name {
	case "imprint":
		return l.Imprint, l.Imprint != ""
	case "privacy":
		return l.Privacy, l.Privacy != ""
	}
	return "", false
}

// Project is a category of folders.
type Project struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Folders     []Folder `json:"folders"`
}

// Folder is a gallery.
type Folder struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Images      []Image `json:"images"`
}

// Image is a media entry of a folder. Type is "image" (default), "video"
// or an embed type.
type Image struct {
	Src         string `json:"src"`
	Type        string `json:"type,omitempty"`
	Alt         string `json:"alt,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// ProjectEntry is a project with its key in the projects object.
type ProjectEntry struct {
	Key     string
	Project Project
}

// Projects keeps the projects object in document order.
type Projects []ProjectEntry

// UnmarshalJSON decodes a JSON object preserving key order.
func (p *Projects) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("projects must be an object")
	}

	var out Projects
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in projects", tok)
		}
		var proj Project
		if err := dec.Decode(&proj); err != nil {
			return fmt.Errorf("project %q: %w", key, err)
		}
		out = append(out, ProjectEntry{Key: key, Project: proj})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = out
	return nil
}

// MarshalJSON encodes the projects back into an ordered object.
func (p Projects) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Project)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FileName returns the document file name for lang.
func FileName(lang string) string {
	return "config-" + lang + ".json"
}

// Parse decodes a document.
func Parse(data []byte, lang string) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName(lang), err)
	}
	doc.Language = lang
	return &doc, nil
}

// ReadFile reads the document for lang from dir.
func ReadFile(dir, lang string) (*Document, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName(lang)))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", FileName(lang), err)
	}
	return Parse(data, lang)
}

// Load reads the document for lang, falling back to the other language
// when that fails. The returned document's Language tells which one was
// loaded. When both fail the caller should use Fallback.
func Load(dir, lang string) (*Document, error) {
	lang, err := ParseLanguage(lang)
	if err != nil {
		return nil, err
	}
	doc, err := ReadFile(dir, lang)
	if err == nil {
		return doc, nil
	}
	doc, ferr := ReadFile(dir, Other(lang))
	if ferr == nil {
		return doc, nil
	}
	return nil, errors.Join(err, ferr)
}

// Fallback is the built-in content shown when no document can be loaded.
func Fallback(lang string) *Document {
	return &Document{
		Language: lang,
		Site:     Site{Title: "Portfolio"},
		Content: Body{
			Hero: Hero{
				Description: []string{
					"Media Informatics student passionate about game design and creative coding.",
					"Currently exploring the intersection of technology and creativity.",
				},
			},
		},
	}
}
