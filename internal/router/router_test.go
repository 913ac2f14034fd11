package router

import (
	"errors"
	"testing"

	"github.com/folio-site/folio/internal/content"
)

func testCatalog() *content.Catalog {
	return content.NewCatalog(&content.Document{Content: content.Body{Projects: content.Projects{
		{Key: "photography", Project: content.Project{Title: "Photography", Folders: []content.Folder{
			{Title: "Harbour at Dawn"},
			{Title: "Über den Wolken"},
		}}},
	}}})
}

func TestResolve(t *testing.T) {
	cat := testCatalog()
	tests := []struct {
		path    string
		want    string
		gallery bool
		err     error
	}{
		{"/", "/", false, nil},
		{"", "/", false, nil},
		{"/index.html", "/", false, nil},
		{"/harbour-at-dawn", "/harbour-at-dawn", true, nil},
		{"/ueber-den-wolken/", "/ueber-den-wolken", true, nil},
		{"/ueber-den-wolken/index.html", "/ueber-den-wolken", true, nil},
		{"/missing", "", false, ErrNotFound},
		{"/harbour-at-dawn/3", "", false, ErrNotFound},
	}
	for _, tt := range tests {
		r, err := Resolve(tt.path, cat)
		if !errors.Is(err, tt.err) {
			t.Errorf("Resolve(%q) err = %v, want %v", tt.path, err, tt.err)
			continue
		}
		if r.Path != tt.want || r.Gallery != tt.gallery {
			t.Errorf("Resolve(%q) = %q gallery=%v, want %q gallery=%v", tt.path, r.Path, r.Gallery, tt.want, tt.gallery)
		}
	}

	r, _ := Resolve("/harbour-at-dawn", cat)
	if r.Entry.Folder.Title != "Harbour at Dawn" {
		t.Errorf("entry title = %q", r.Entry.Folder.Title)
	}
}

func TestStateHistory(t *testing.T) {
	var s State
	if s.Current() != Root {
		t.Fatalf("initial = %q", s.Current())
	}
	s.Stack = []string{Root}

	if got := s.OpenGallery("harbour-at-dawn"); got != "/harbour-at-dawn" {
		t.Errorf("OpenGallery = %q", got)
	}
	s.OpenGallery("harbour-at-dawn")
	if len(s.Stack) != 2 {
		t.Errorf("reopening pushed again: %v", s.Stack)
	}
	s.OpenGallery("ueber-den-wolken")
	if s.Current() != "/ueber-den-wolken" {
		t.Errorf("current = %q", s.Current())
	}

	if got := s.CloseGallery(); got != Root {
		t.Errorf("CloseGallery = %q", got)
	}
	if s.Current() != Root || len(s.Stack) != 1 {
		t.Errorf("after close: %v", s.Stack)
	}

	var empty State
	empty.OpenGallery("x")
	empty.CloseGallery()
	if len(empty.Stack) != 0 || empty.Current() != Root {
		t.Errorf("close without root entry: %v", empty.Stack)
	}
}
