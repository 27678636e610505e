package store

import (
	"cmp"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/trigger"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Sample binds a trigger key to a clip file.
type Sample struct {
	Key       trigger.Key
	Label     string
	File      string
	UpdatedAt time.Time
}

// DefaultSamples returns the stock bank: right hand plays the first half of
// each phrase, left hand the second, and thumbs-together the full song.
func DefaultSamples() []Sample {
	finger := func(h trigger.Hand, f trigger.Finger, label, file string) Sample {
		return Sample{Key: trigger.FingerKey(h, f), Label: label, File: file}
	}
	return []Sample{
		finger(trigger.Right, trigger.Index, "Work It", "work_it.wav"),
		finger(trigger.Right, trigger.Middle, "Make It", "make_it.wav"),
		finger(trigger.Right, trigger.Ring, "Do It", "do_it.wav"),
		finger(trigger.Right, trigger.Pinky, "Makes Us", "makes_us.wav"),
		finger(trigger.Left, trigger.Index, "Harder", "harder.wav"),
		finger(trigger.Left, trigger.Middle, "Better", "better.wav"),
		finger(trigger.Left, trigger.Ring, "Faster", "faster.wav"),
		finger(trigger.Left, trigger.Pinky, "Stronger", "stronger.wav"),
		{Key: trigger.ThumbsTogether, Label: "Full Track", File: "kanye_stronger.wav"},
	}
}

// DefaultSample returns the stock binding for k.
func DefaultSample(k trigger.Key) (Sample, bool) {
	for _, smp := range DefaultSamples() {
		if smp.Key == k {
			return smp, true
		}
	}
	return Sample{}, false
}

// SampleRepository provides access to the sample bank.
type SampleRepository struct {
	db *sql.DB
}

// Samples returns the sample repository for this store.
func (s *Store) Samples() *SampleRepository {
	return &SampleRepository{db: s.db}
}

// List returns every binding ordered by key.
func (r *SampleRepository) List() ([]*Sample, error) {
	rows, err := r.db.Query(`SELECT key, label, file, updated_at FROM samples`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []*Sample
	for rows.Next() {
		smp, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		samples = append(samples, smp)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(samples, func(a, b *Sample) int { return cmp.Compare(a.Key, b.Key) })
	return samples, nil
}

// Get retrieves the binding for k.
func (r *SampleRepository) Get(k trigger.Key) (*Sample, error) {
	row := r.db.QueryRow(`SELECT key, label, file, updated_at FROM samples WHERE key = ?`, k.String())

	smp, err := scanSample(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return smp, nil
}

// Set creates or replaces the binding for smp.Key.
func (r *SampleRepository) Set(smp *Sample) error {
	if !smp.Key.Valid() {
		return fmt.Errorf("invalid key %d", int(smp.Key))
	}
	if smp.File == "" {
		return errors.New("sample file is required")
	}

	smp.UpdatedAt = time.Now()
	_, err := r.db.Exec(
		`INSERT INTO samples (key, label, file, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET label = excluded.label, file = excluded.file, updated_at = excluded.updated_at`,
		smp.Key.String(), smp.Label, smp.File, smp.UpdatedAt,
	)
	return err
}

// Delete removes the binding for k, leaving the key silent.
func (r *SampleRepository) Delete(k trigger.Key) error {
	result, err := r.db.Exec(`DELETE FROM samples WHERE key = ?`, k.String())
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Reset restores the stock binding for k.
func (r *SampleRepository) Reset(k trigger.Key) (*Sample, error) {
	def, ok := DefaultSample(k)
	if !ok {
		return nil, ErrNotFound
	}
	if err := r.Set(&def); err != nil {
		return nil, err
	}
	return &def, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSample(sc scanner) (*Sample, error) {
	smp := &Sample{}
	var key string

	if err := sc.Scan(&key, &smp.Label, &smp.File, &smp.UpdatedAt); err != nil {
		return nil, err
	}

	k, err := trigger.ParseKey(key)
	if err != nil {
		return nil, err
	}
	smp.Key = k
	return smp, nil
}
