package audio

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// ErrNoPlayerCommand is returned when no playback command is available on this OS.
var ErrNoPlayerCommand = errors.New("no audio player command found")

// CommandPlayer plays clips through an OS-native command line player,
// one process per clip.
type CommandPlayer struct {
	name string
	args []string

	mu      sync.Mutex
	clips   map[string]string
	full    string
	running map[*exec.Cmd]struct{}
	logger  zerolog.Logger
}

// DefaultCommand returns the first player command available on this OS.
func DefaultCommand() (string, error) {
	var candidates []string
	switch runtime.GOOS {
	case "darwin":
		candidates = []string{"afplay"}
	case "linux":
		candidates = []string{"paplay", "aplay"}
	}

	for _, c := range candidates {
		if _, err := exec.LookPath(c); err == nil {
			return c, nil
		}
	}
	return "", ErrNoPlayerCommand
}

// NewCommandPlayer creates a player running command, a binary followed by
// optional arguments; the clip path is appended last. An empty command
// picks DefaultCommand.
func NewCommandPlayer(command string, logger zerolog.Logger) (*CommandPlayer, error) {
	if strings.TrimSpace(command) == "" {
		c, err := DefaultCommand()
		if err != nil {
			return nil, err
		}
		command = c
	}

	fields := strings.Fields(command)
	if _, err := exec.LookPath(fields[0]); err != nil {
		return nil, fmt.Errorf("audio player %q: %w", fields[0], err)
	}

	return &CommandPlayer{
		name:    fields[0],
		args:    fields[1:],
		clips:   make(map[string]string),
		running: make(map[*exec.Cmd]struct{}),
		logger:  logger.With().Str("component", "audio").Logger(),
	}, nil
}

// Load registers the clip at path under id. The file must exist.
func (p *CommandPlayer) Load(id, path string) error {
	if err := checkReadable(path); err != nil {
		return err
	}

	p.mu.Lock()
	p.clips[id] = path
	p.mu.Unlock()
	return nil
}

// LoadFullTrack registers the clip at path as the full track.
func (p *CommandPlayer) LoadFullTrack(path string) error {
	if err := checkReadable(path); err != nil {
		return err
	}

	p.mu.Lock()
	p.full = path
	p.mu.Unlock()
	return nil
}

// PlaySample starts a player process for id.
func (p *CommandPlayer) PlaySample(id string) {
	p.mu.Lock()
	path, ok := p.clips[id]
	p.mu.Unlock()

	if !ok {
		p.logger.Warn().Err(ErrUnknownSample).Str("sample", id).Msg("Cannot play sample")
		return
	}
	p.start(path)
}

// PlayFullTrack starts a player process for the full track, if loaded.
func (p *CommandPlayer) PlayFullTrack() {
	p.mu.Lock()
	path := p.full
	p.mu.Unlock()

	if path != "" {
		p.start(path)
	}
}

// StopAll kills every running player process and returns once they are signalled.
func (p *CommandPlayer) StopAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for cmd := range p.running {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		delete(p.running, cmd)
	}
}

// Running reports how many player processes are alive.
func (p *CommandPlayer) Running() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.running)
}

// Close stops all playback.
func (p *CommandPlayer) Close() error {
	p.StopAll()
	return nil
}

func (p *CommandPlayer) start(path string) {
	args := append(append([]string{}, p.args...), path)
	cmd := exec.Command(p.name, args...)

	if err := cmd.Start(); err != nil {
		p.logger.Error().Err(err).Str("path", path).Msg("Failed to start audio player")
		return
	}

	p.mu.Lock()
	p.running[cmd] = struct{}{}
	p.mu.Unlock()

	go func() {
		_ = cmd.Wait()
		p.mu.Lock()
		delete(p.running, cmd)
		p.mu.Unlock()
	}()
}

func checkReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f.Close()
}
