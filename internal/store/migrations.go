package store

import (
	"database/sql"
	"errors"
	"time"
)

// seededKey marks in settings that the default bank was written once.
const seededKey = "samples_seeded"

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Samples table - maps each trigger key to a clip in the audio directory
		`CREATE TABLE IF NOT EXISTS samples (
			key TEXT PRIMARY KEY,
			label TEXT NOT NULL DEFAULT '',
			file TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Triggers table - one row per dispatched trigger
		`CREATE TABLE IF NOT EXISTS triggers (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			key TEXT NOT NULL,
			label TEXT NOT NULL DEFAULT '',
			fired_at DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_triggers_fired_at ON triggers(fired_at)`,
		`CREATE INDEX IF NOT EXISTS idx_triggers_session_id ON triggers(session_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}

// seed writes DefaultSamples the first time the database is opened.
// Later deletions are kept: the bank is never re-seeded.
func (s *Store) seed() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var done string
	err = tx.QueryRow(`SELECT value FROM settings WHERE key = ?`, seededKey).Scan(&done)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	now := time.Now()
	for _, smp := range DefaultSamples() {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO samples (key, label, file, updated_at) VALUES (?, ?, ?, ?)`,
			smp.Key.String(), smp.Label, smp.File, now,
		); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)`, seededKey, "1"); err != nil {
		return err
	}
	return tx.Commit()
}
