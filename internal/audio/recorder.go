package audio

import (
	"fmt"
	"sync"
)

// Recorder is an in-memory Player that records every command it receives.
type Recorder struct {
	mu       sync.Mutex
	loaded   map[string]string
	full     string
	commands []string
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{loaded: make(map[string]string)}
}

// Load registers id if path can be read.
func (r *Recorder) Load(id, path string) error {
	if err := checkReadable(path); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaded[id] = path
	return nil
}

// LoadFullTrack registers the full track if path can be read.
func (r *Recorder) LoadFullTrack(path string) error {
	if err := checkReadable(path); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.full = path
	return nil
}

func (r *Recorder) PlaySample(id string) { r.record(fmt.Sprintf("play %s", id)) }
func (r *Recorder) StopAll()             { r.record("stop") }
func (r *Recorder) PlayFullTrack()       { r.record("full") }
func (r *Recorder) Close() error         { return nil }

// Commands returns a copy of the commands received so far.
func (r *Recorder) Commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.commands...)
}

// Loaded returns the path registered under id.
func (r *Recorder) Loaded(id string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	path, ok := r.loaded[id]
	return path, ok
}

func (r *Recorder) record(cmd string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, cmd)
}
