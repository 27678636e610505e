package audio

import (
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/trigger"
)

// Entry maps one key to a clip file.
type Entry struct {
	Key   trigger.Key
	Label string
	File  string
}

// Bank is the set of clips that loaded successfully for one session.
type Bank struct {
	samples map[trigger.Key]string
	labels  map[trigger.Key]string
	full    bool
}

// LoadBank loads every entry into p. Relative file names resolve against dir.
// Entries whose file is missing or unreadable are logged and left out.
func LoadBank(p Player, dir string, entries []Entry, logger zerolog.Logger) *Bank {
	logger = logger.With().Str("component", "bank").Logger()
	b := &Bank{
		samples: make(map[trigger.Key]string),
		labels:  make(map[trigger.Key]string),
	}

	for _, e := range entries {
		path := e.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}

		if e.Key.IsThumbs() {
			if err := p.LoadFullTrack(path); err != nil {
				logger.Warn().Err(err).Str("path", path).Msg("Full track not loaded")
				continue
			}
			b.full = true
		} else {
			id := e.Key.String()
			if err := p.Load(id, path); err != nil {
				logger.Warn().Err(err).Stringer("key", e.Key).Str("path", path).Msg("Sample not loaded")
				continue
			}
			b.samples[e.Key] = id
		}
		b.labels[e.Key] = e.Label
	}

	logger.Info().Int("samples", len(b.samples)).Bool("full_track", b.full).Msg("Sample bank loaded")
	return b
}

// SampleFor returns the sample id bound to k.
func (b *Bank) SampleFor(k trigger.Key) (string, bool) {
	id, ok := b.samples[k]
	return id, ok
}

// HasFullTrack reports whether the full track loaded.
func (b *Bank) HasFullTrack() bool {
	return b.full
}

// Label returns the display label for k, or "" when k has no clip.
func (b *Bank) Label(k trigger.Key) string {
	return b.labels[k]
}

// Size returns the number of finger samples loaded.
func (b *Bank) Size() int {
	return len(b.samples)
}
