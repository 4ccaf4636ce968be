// Package export writes a snapshot of the bookmark catalog into a SQLite
// database for ad-hoc queries and for other tools to consume.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"rigbook/catalog"

	_ "modernc.org/sqlite"
)

// Source is the read side of a catalog.
type Source interface {
	Tags() []catalog.Tag
	Bookmarks() []catalog.Bookmark
}

// Result summarizes one export.
type Result struct {
	Path      string
	Tags      int
	Bookmarks int
	Preflight PreflightResult
}

const schema = `
CREATE TABLE IF NOT EXISTS tags (
    name TEXT PRIMARY KEY,
    color TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS bookmarks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    frequency INTEGER NOT NULL,
    name TEXT,
    modulation TEXT,
    bandwidth INTEGER,
    info TEXT
);
CREATE INDEX IF NOT EXISTS bookmarks_frequency ON bookmarks(frequency);
CREATE TABLE IF NOT EXISTS bookmark_tags (
    bookmark_id INTEGER NOT NULL REFERENCES bookmarks(id),
    tag TEXT NOT NULL REFERENCES tags(name)
);
CREATE TABLE IF NOT EXISTS export_meta (
    key TEXT PRIMARY KEY,
    value TEXT
);`

// Write replaces the contents of the database at path with src. Tags that
// no bookmark references are exported too; Untagged is not, matching the
// bookmark file.
func Write(ctx context.Context, path string, src Source) (Result, error) {
	res := Result{Path: path}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return res, fmt.Errorf("export: ensure dir: %w", err)
	}
	pre, err := Preflight(path, 2*time.Second, nil)
	res.Preflight = pre
	if err != nil {
		return res, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return res, fmt.Errorf("export: open: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return res, fmt.Errorf("export: schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("export: begin: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM bookmark_tags", "DELETE FROM bookmarks", "DELETE FROM tags"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return res, fmt.Errorf("export: clear: %w", err)
		}
	}

	tagNames := make(map[catalog.TagID]string)
	for _, t := range src.Tags() {
		if t.IsUntagged() {
			continue
		}
		tagNames[t.ID] = t.Name
		if _, err := tx.ExecContext(ctx, `INSERT INTO tags (name, color) VALUES (?, ?)`, t.Name, t.Color.String()); err != nil {
			return res, fmt.Errorf("export: insert tag %q: %w", t.Name, err)
		}
		res.Tags++
	}

	for _, b := range src.Bookmarks() {
		r, err := tx.ExecContext(ctx, `
INSERT INTO bookmarks (frequency, name, modulation, bandwidth, info)
VALUES (?, ?, ?, ?, ?)`, b.Frequency, b.Name, b.Modulation, b.Bandwidth, b.Info)
		if err != nil {
			return res, fmt.Errorf("export: insert bookmark %d: %w", b.Frequency, err)
		}
		rowID, err := r.LastInsertId()
		if err != nil {
			return res, fmt.Errorf("export: bookmark id: %w", err)
		}
		for _, id := range b.Tags {
			name, ok := tagNames[id]
			if !ok {
				continue
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO bookmark_tags (bookmark_id, tag) VALUES (?, ?)`, rowID, name); err != nil {
				return res, fmt.Errorf("export: insert bookmark tag: %w", err)
			}
		}
		res.Bookmarks++
	}

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO export_meta (key, value) VALUES ('exported_at', ?)`,
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		return res, fmt.Errorf("export: meta: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("export: commit: %w", err)
	}
	return res, nil
}
