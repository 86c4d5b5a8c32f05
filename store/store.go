// Package store keeps a sqlite registry of downloaded panoramas so the
// download stage can skip finished work and the prune stage knows what is on
// disk.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"panoscraper/types"
)

// Store wraps the registry database.
type Store struct {
	db *sql.DB
}

// Open opens (and if necessary creates) the registry at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS panoramas (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		panoid TEXT NOT NULL UNIQUE,
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		year INTEGER,
		month INTEGER,
		path TEXT NOT NULL,
		downloaded_at TEXT NOT NULL,
		projected INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_panoid ON panoramas(panoid);
	CREATE INDEX IF NOT EXISTS idx_year ON panoramas(year);`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot create registry schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record registers a downloaded panorama and the file it was stitched into.
// Re-recording an existing panoid replaces the earlier row.
func (s *Store) Record(p types.Panorama, path string) error {
	stmt, err := s.db.Prepare(`
		INSERT OR REPLACE INTO panoramas (
			panoid, lat, lon, year, month, path, downloaded_at, projected
		) VALUES (?, ?, ?, ?, ?, ?, ?, 0)
	`)
	if err != nil {
		return fmt.Errorf("cannot prepare statement for %s: %w", p.Panoid, err)
	}
	defer stmt.Close()

	var year, month any
	if p.Year != nil {
		year = *p.Year
	}
	if p.Month != nil {
		month = *p.Month
	}

	if _, err := stmt.Exec(p.Panoid, p.Lat, p.Lon, year, month, path,
		time.Now().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("cannot record panorama %s: %w", p.Panoid, err)
	}
	return nil
}

// Exists reports whether a panoid is already registered and returns the path
// it was stitched to.
func (s *Store) Exists(panoid string) (bool, string, error) {
	var path string
	err := s.db.QueryRow("SELECT path FROM panoramas WHERE panoid = ?", panoid).Scan(&path)
	if err == sql.ErrNoRows {
		return false, "", nil
	}
	if err != nil {
		return false, "", fmt.Errorf("registry error for %s: %w", panoid, err)
	}
	return true, path, nil
}

// MarkProjected flags a panorama as projected into cube faces.
func (s *Store) MarkProjected(panoid string) error {
	_, err := s.db.Exec("UPDATE panoramas SET projected = 1 WHERE panoid = ?", panoid)
	if err != nil {
		return fmt.Errorf("cannot mark %s projected: %w", panoid, err)
	}
	return nil
}

// Delete removes a panorama from the registry.
func (s *Store) Delete(panoid string) error {
	_, err := s.db.Exec("DELETE FROM panoramas WHERE panoid = ?", panoid)
	if err != nil {
		return fmt.Errorf("cannot delete %s: %w", panoid, err)
	}
	return nil
}

// Stats summarizes the registry contents.
type Stats struct {
	Total     int
	Dated     int
	Projected int
}

// GetStats counts registered, dated, and projected panoramas.
func (s *Store) GetStats() (*Stats, error) {
	var stats Stats
	if err := s.db.QueryRow("SELECT COUNT(*) FROM panoramas").Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("failed to count panoramas: %w", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM panoramas WHERE year IS NOT NULL").Scan(&stats.Dated); err != nil {
		return nil, fmt.Errorf("failed to count dated panoramas: %w", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM panoramas WHERE projected = 1").Scan(&stats.Projected); err != nil {
		return nil, fmt.Errorf("failed to count projected panoramas: %w", err)
	}
	return &stats, nil
}
