package db

import (
	"path/filepath"
	"testing"
)

func TestOpenMemory(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	// Verify tables exist by inserting into each one.
	tables := []string{
		"cache_stores", "cache_entries", "preferences",
	}

	for _, table := range tables {
		var count int
		err := d.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestMigrateIdempotent(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	// Running migrate again should not fail.
	if err := d.migrate(); err != nil {
		t.Fatalf("second migrate() error: %v", err)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "folio.db")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer d.Close()

	if d.Path() != path {
		t.Errorf("Path() = %q, want %q", d.Path(), path)
	}
	if _, err := d.Exec(`INSERT INTO cache_stores (name) VALUES ('static-v1')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
}

func TestCascadeDelete(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	if _, err := d.Exec(`INSERT INTO cache_stores (name) VALUES ('old')`); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Exec(`INSERT INTO cache_entries (store, key, status, body) VALUES ('old', '/a', 200, x'00')`); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Exec(`DELETE FROM cache_stores WHERE name = 'old'`); err != nil {
		t.Fatal(err)
	}

	var count int
	if err := d.QueryRow(`SELECT COUNT(*) FROM cache_entries`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("entries after store delete = %d, want 0", count)
	}
}
