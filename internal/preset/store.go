package preset

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages named presets using SQLite
type Store struct {
	db *sql.DB
}

// Preset is a named sound mix: sound id to volume multiplier
type Preset struct {
	ID        int64
	Name      string
	Sounds    map[string]float64
	UpdatedAt time.Time
}

// NewStore creates a preset store backed by SQLite
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single connection keeps in-memory databases consistent and is
	// plenty for our access pattern
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 10000", // Wait up to 10 seconds on lock
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS presets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			sounds TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_presets_name ON presets(name);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save inserts or replaces the preset under its name
func (s *Store) Save(ctx context.Context, name string, sounds map[string]float64) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("preset name must not be empty")
	}

	encoded, err := json.Marshal(sounds)
	if err != nil {
		return 0, fmt.Errorf("failed to encode sounds: %w", err)
	}

	query := `
		INSERT INTO presets (name, sounds, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET sounds = excluded.sounds, updated_at = excluded.updated_at
	`

	result, err := s.db.ExecContext(ctx, query, name, string(encoded), time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to save preset: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get insert id: %w", err)
	}

	return id, nil
}

// Get retrieves one preset by name
func (s *Store) Get(ctx context.Context, name string) (*Preset, error) {
	query := `
		SELECT id, name, sounds, updated_at
		FROM presets
		WHERE name = ?
	`

	var p Preset
	var encoded string
	var updatedUnix int64

	err := s.db.QueryRowContext(ctx, query, name).Scan(&p.ID, &p.Name, &encoded, &updatedUnix)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("preset %q not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query preset: %w", err)
	}

	if err := json.Unmarshal([]byte(encoded), &p.Sounds); err != nil {
		return nil, fmt.Errorf("failed to decode sounds: %w", err)
	}
	p.UpdatedAt = time.Unix(updatedUnix, 0)

	return &p, nil
}

// List retrieves all presets ordered by name
func (s *Store) List(ctx context.Context) ([]Preset, error) {
	query := `
		SELECT id, name, sounds, updated_at
		FROM presets
		ORDER BY name ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query presets: %w", err)
	}
	defer rows.Close()

	var presets []Preset
	for rows.Next() {
		var p Preset
		var encoded string
		var updatedUnix int64

		if err := rows.Scan(&p.ID, &p.Name, &encoded, &updatedUnix); err != nil {
			return nil, fmt.Errorf("failed to scan preset: %w", err)
		}

		if err := json.Unmarshal([]byte(encoded), &p.Sounds); err != nil {
			return nil, fmt.Errorf("failed to decode sounds for %q: %w", p.Name, err)
		}
		p.UpdatedAt = time.Unix(updatedUnix, 0)

		presets = append(presets, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating presets: %w", err)
	}

	return presets, nil
}

// Delete removes a preset by name
func (s *Store) Delete(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM presets WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete preset: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("preset %q not found", name)
	}

	return nil
}

// Count returns the number of stored presets
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM presets").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count presets: %w", err)
	}
	return count, nil
}
