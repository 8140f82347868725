package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/justyntemme/thumbnav/internal/debug"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Setting keys persisted between sessions.
const (
	SettingLastPath   = "last_path"
	SettingShowHidden = "show_hidden"
)

// ThumbnailRecord is one row of the thumbnail index.
type ThumbnailRecord struct {
	Key       string
	Source    string
	CachePath string
	Kind      string
	CreatedAt time.Time
}

type DB struct {
	conn *sql.DB
	path string
}

// Open initializes the database connection and schema.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// WAL allows readers while the CLI writes
	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA synchronous=NORMAL;"); err != nil {
		conn.Close()
		return nil, err
	}

	thumbsQuery := `
	CREATE TABLE IF NOT EXISTS thumbnails (
		key TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		cache_path TEXT NOT NULL,
		kind TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	`
	if _, err := conn.Exec(thumbsQuery); err != nil {
		conn.Close()
		return nil, err
	}

	settingsQuery := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := conn.Exec(settingsQuery); err != nil {
		conn.Close()
		return nil, err
	}

	debug.Log(debug.STORE, "opened %s", dbPath)
	return &DB{conn: conn, path: dbPath}, nil
}

// Path returns the database file location.
func (d *DB) Path() string {
	return d.path
}

// RecordThumbnail upserts an index row for a generated thumbnail.
func (d *DB) RecordThumbnail(rec ThumbnailRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := d.conn.Exec(
		"INSERT OR REPLACE INTO thumbnails (key, source, cache_path, kind, created_at) VALUES (?, ?, ?, ?, ?)",
		rec.Key, rec.Source, rec.CachePath, rec.Kind, rec.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("record thumbnail %s: %w", rec.Key, err)
	}
	debug.Log(debug.STORE, "recorded thumbnail %s for %s", rec.Key, rec.Source)
	return nil
}

// Thumbnails lists the index, oldest first.
func (d *DB) Thumbnails() ([]ThumbnailRecord, error) {
	rows, err := d.conn.Query("SELECT key, source, cache_path, kind, created_at FROM thumbnails ORDER BY created_at ASC, key ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []ThumbnailRecord
	for rows.Next() {
		var rec ThumbnailRecord
		var created int64
		if err := rows.Scan(&rec.Key, &rec.Source, &rec.CachePath, &rec.Kind, &created); err != nil {
			return recs, err
		}
		rec.CreatedAt = time.Unix(0, created)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// CountThumbnails returns the number of indexed thumbnails.
func (d *DB) CountThumbnails() (int, error) {
	var n int
	err := d.conn.QueryRow("SELECT COUNT(*) FROM thumbnails").Scan(&n)
	return n, err
}

// DeleteThumbnails empties the index and reports how many rows went.
func (d *DB) DeleteThumbnails() (int64, error) {
	res, err := d.conn.Exec("DELETE FROM thumbnails")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Setting returns a stored value and whether it was present.
func (d *DB) Setting(key string) (string, bool, error) {
	var value string
	err := d.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Settings returns all stored key/value pairs.
func (d *DB) Settings() (map[string]string, error) {
	rows, err := d.conn.Query("SELECT key, value FROM settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return settings, err
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

// SaveSetting upserts a setting.
func (d *DB) SaveSetting(key, value string) error {
	_, err := d.conn.Exec("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, value)
	if err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	return nil
}

func (d *DB) Close() error {
	if d.conn != nil {
		return d.conn.Close()
	}
	return nil
}
