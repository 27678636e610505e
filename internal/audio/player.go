// Package audio loads the sample bank and plays it back without blocking the frame loop.
package audio

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrUnknownSample is returned when playing an id that was never loaded.
var ErrUnknownSample = errors.New("unknown sample")

// Player plays loaded clips. Playback methods start sound and return
// immediately; clips overlap freely.
type Player interface {
	// Load registers the clip at path under id.
	Load(id, path string) error
	// LoadFullTrack registers the clip played on thumbs-together.
	LoadFullTrack(path string) error

	PlaySample(id string)
	StopAll()
	PlayFullTrack()

	Close() error
}

// ClipName derives a display name from a clip's file name: "work_it.wav" -> "work_it".
func ClipName(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
