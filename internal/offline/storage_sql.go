package offline

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/folio-site/folio/internal/db"
)

// SQLStorage keeps stores in the cache_stores and cache_entries tables.
type SQLStorage struct {
	db *db.DB
}

// NewSQLStorage creates a SQLStorage backed by the given database.
func NewSQLStorage(database *db.DB) *SQLStorage {
	return &SQLStorage{db: database}
}

func (s *SQLStorage) Open(ctx context.Context, name string) (Store, error) {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO cache_stores (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("opening cache store %s: %w", name, err)
	}
	return &sqlStore{db: s.db, name: name}, nil
}

func (s *SQLStorage) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM cache_stores ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing cache stores: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scanning cache store: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (s *SQLStorage) Delete(ctx context.Context, name string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cache_stores WHERE name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("deleting cache store %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting cache store %s: %w", name, err)
	}
	return n > 0, nil
}

func (s *SQLStorage) Match(ctx context.Context, key string) (*Response, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT e.status, e.header, e.body
		FROM cache_entries e
		JOIN cache_stores s ON s.name = e.store
		WHERE e.key = ?
		ORDER BY s.rowid
		LIMIT 1`, key)
	return scanResponse(row)
}

type sqlStore struct {
	db   *db.DB
	name string
}

func (s *sqlStore) Match(ctx context.Context, key string) (*Response, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT status, header, body FROM cache_entries WHERE store = ? AND key = ?`,
		s.name, key)
	return scanResponse(row)
}

func (s *sqlStore) Put(ctx context.Context, key string, resp *Response) error {
	header, err := json.Marshal(resp.Header)
	if err != nil {
		return fmt.Errorf("marshalling header: %w", err)
	}
	body := resp.Body
	if body == nil {
		body = []byte{}
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cache_entries (store, key, status, header, body)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(store, key) DO UPDATE SET
			status = excluded.status,
			header = excluded.header,
			body = excluded.body,
			stored_at = datetime('now')`,
		s.name, key, resp.Status, string(header), body)
	if err != nil {
		return fmt.Errorf("storing %s in %s: %w", key, s.name, err)
	}
	return nil
}

func (s *sqlStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM cache_entries WHERE store = ? ORDER BY rowid`, s.name)
	if err != nil {
		return nil, fmt.Errorf("listing keys of %s: %w", s.name, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func scanResponse(row *sql.Row) (*Response, error) {
	var (
		resp   Response
		header string
	)
	if err := row.Scan(&resp.Status, &header, &resp.Body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("reading cache entry: %w", err)
	}
	resp.Header = http.Header{}
	if err := json.Unmarshal([]byte(header), &resp.Header); err != nil {
		return nil, fmt.Errorf("decoding cached header: %w", err)
	}
	return &resp, nil
}
