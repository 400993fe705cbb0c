package offline

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ziadkadry99/emsguide/internal/db"
)

// SQLStorage persists cache stores in SQLite.
type SQLStorage struct {
	db *db.DB
}

// NewSQLStorage returns storage backed by d.
func NewSQLStorage(d *db.DB) *SQLStorage {
	return &SQLStorage{db: d}
}

func (s *SQLStorage) Open(ctx context.Context, name string) (Cache, bool, error) {
	res, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO cache_stores (name) VALUES (?)`, name)
	if err != nil {
		return nil, false, fmt.Errorf("creating cache store %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM cache_stores WHERE name = ?`, name).Scan(&id); err != nil {
		return nil, false, fmt.Errorf("opening cache store %s: %w", name, err)
	}
	return &sqlCache{db: s.db, id: id, name: name}, n > 0, nil
}

func (s *SQLStorage) Has(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cache_stores WHERE name = ?`, name).Scan(&n)
	return n > 0, err
}

func (s *SQLStorage) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM cache_stores ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLStorage) Delete(ctx context.Context, name string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM cache_stores WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cache_entries WHERE store_id = ?`, id); err != nil {
		return false, fmt.Errorf("deleting entries of %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cache_stores WHERE id = ?`, id); err != nil {
		return false, fmt.Errorf("deleting cache store %s: %w", name, err)
	}
	return true, tx.Commit()
}

type sqlCache struct {
	db   *db.DB
	id   int64
	name string
}

func (c *sqlCache) Name() string { return c.name }

func (c *sqlCache) Match(ctx context.Context, key string) (*Response, bool, error) {
	var (
		r      Response
		typ    string
		header string
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT url, status, status_text, type, header, body FROM cache_entries WHERE store_id = ? AND url = ?`,
		c.id, key,
	).Scan(&r.URL, &r.Status, &r.StatusText, &typ, &header, &r.Body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	r.Type = ResponseType(typ)
	if err := json.Unmarshal([]byte(header), &r.Header); err != nil {
		return nil, false, fmt.Errorf("decoding cached headers for %s: %w", key, err)
	}
	return &r, true, nil
}

const upsertEntry = `
INSERT INTO cache_entries (store_id, url, status, status_text, type, header, body, stored_at)
VALUES (?, ?, ?, ?, ?, ?, ?, datetime('now'))
ON CONFLICT(store_id, url) DO UPDATE SET
    status = excluded.status,
    status_text = excluded.status_text,
    type = excluded.type,
    header = excluded.header,
    body = excluded.body,
    stored_at = excluded.stored_at`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (c *sqlCache) put(ctx context.Context, ex execer, key string, r *Response) error {
	header := r.Header
	if header == nil {
		header = http.Header{}
	}
	hb, err := json.Marshal(header)
	if err != nil {
		return err
	}
	typ := r.Type
	if typ == "" {
		typ = TypeBasic
	}
	_, err = ex.ExecContext(ctx, upsertEntry, c.id, key, r.Status, r.StatusText, string(typ), string(hb), r.Body)
	if err != nil {
		return fmt.Errorf("storing %s in %s: %w", key, c.name, err)
	}
	return nil
}

func (c *sqlCache) Put(ctx context.Context, key string, r *Response) error {
	return c.put(ctx, c.db, key, r)
}

func (c *sqlCache) PutAll(ctx context.Context, entries []Entry) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range entries {
		if err := c.put(ctx, tx, e.Key, e.Response); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (c *sqlCache) Keys(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT url FROM cache_entries WHERE store_id = ? ORDER BY rowid`, c.id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (c *sqlCache) Delete(ctx context.Context, key string) (bool, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE store_id = ? AND url = ?`, c.id, key)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
