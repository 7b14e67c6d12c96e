package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mirodash/internal/render"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000Z"

type DB struct{ *sql.DB }

func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{DB: db}, nil
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,

		// Recorded telemetry values (affect axes and drive levels, 0..1)
		`CREATE TABLE IF NOT EXISTS samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TEXT NOT NULL,
			channel TEXT NOT NULL,
			value REAL NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_samples_channel ON samples(channel);`,

		// Dashboard settings that survive restarts (overlay toggles)
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

type Sample struct {
	ID        int64   `json:"id"`
	CreatedAt string  `json:"created_at"`
	Channel   string  `json:"channel"`
	Value     float64 `json:"value"`
}

// InsertSamples stores one value per channel, all stamped with at.
func (db *DB) InsertSamples(at time.Time, values map[string]float64) error {
	if len(values) == 0 {
		return nil
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO samples(created_at, channel, value) VALUES(?,?,?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	ts := at.UTC().Format(timeLayout)
	for ch, v := range values {
		if _, err := stmt.Exec(ts, ch, v); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert sample %s: %w", ch, err)
		}
	}
	return tx.Commit()
}

// Samples returns the newest samples first. An empty channel matches all channels.
func (db *DB) Samples(channel string, limit int) ([]Sample, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if channel == "" {
		rows, err = db.Query(
			`SELECT id, created_at, channel, value FROM samples ORDER BY id DESC LIMIT ?`, limit)
	} else {
		rows, err = db.Query(
			`SELECT id, created_at, channel, value FROM samples WHERE channel = ? ORDER BY id DESC LIMIT ?`,
			channel, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Sample{}
	for rows.Next() {
		var s Sample
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.Channel, &s.Value); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// PruneSamples deletes samples older than before and reports how many went.
func (db *DB) PruneSamples(before time.Time) (int64, error) {
	res, err := db.Exec(`DELETE FROM samples WHERE created_at < ?`, before.UTC().Format(timeLayout))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const (
	keyOverlay      = "toggle.overlay"
	keyOverlayLarge = "toggle.overlay_large"
)

func (db *DB) LoadToggles() (render.Toggles, error) {
	var t render.Toggles
	rows, err := db.Query(`SELECT key, value FROM settings WHERE key IN (?, ?)`, keyOverlay, keyOverlayLarge)
	if err != nil {
		return t, err
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return t, err
		}
		on, _ := strconv.ParseBool(v)
		switch k {
		case keyOverlay:
			t.Overlay = on
		case keyOverlayLarge:
			t.OverlayLarge = on
		}
	}
	return t, rows.Err()
}

func (db *DB) SaveToggles(t render.Toggles) error {
	now := time.Now().Format(time.RFC3339)
	for k, v := range map[string]bool{keyOverlay: t.Overlay, keyOverlayLarge: t.OverlayLarge} {
		_, err := db.Exec(
			`INSERT INTO settings(key,value,updated_at) VALUES(?,?,?)
             ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
			k, strconv.FormatBool(v), now,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
