package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/trigger"
)

// Trigger is one dispatched key.
type Trigger struct {
	ID        string
	SessionID string
	Key       trigger.Key
	Label     string
	FiredAt   time.Time
}

// TriggerRepository records dispatched triggers.
type TriggerRepository struct {
	db *sql.DB
}

// Triggers returns the trigger history repository for this store.
func (s *Store) Triggers() *TriggerRepository {
	return &TriggerRepository{db: s.db}
}

// Record inserts t, assigning an ID when it has none.
func (r *TriggerRepository) Record(t *Trigger) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}

	_, err := r.db.Exec(
		`INSERT INTO triggers (id, session_id, key, label, fired_at) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.SessionID, t.Key.String(), t.Label, t.FiredAt.UTC(),
	)
	return err
}

// Recent returns up to limit triggers, newest first.
func (r *TriggerRepository) Recent(limit int) ([]*Trigger, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, key, label, fired_at FROM triggers
		 ORDER BY fired_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var triggers []*Trigger
	for rows.Next() {
		t := &Trigger{}
		var key string

		if err := rows.Scan(&t.ID, &t.SessionID, &key, &t.Label, &t.FiredAt); err != nil {
			return nil, err
		}

		k, err := trigger.ParseKey(key)
		if err != nil {
			return nil, err
		}
		t.Key = k
		triggers = append(triggers, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return triggers, nil
}

// CountBySession returns how many triggers session fired.
func (r *TriggerRepository) CountBySession(sessionID string) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM triggers WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}
