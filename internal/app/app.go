// Package app runs a play session: it drives frames from the camera through
// hand detection and the trigger engine, and fans results out to the overlay,
// the sample player and the observers.
package app

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/audio"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/capture"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/detector"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/overlay"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/server"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/store"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/trigger"
)

// historyQueue bounds the trigger records waiting to be written.
const historyQueue = 64

// Settings keys used to persist radii between sessions.
const (
	SettingRadiusFinger = "radius_finger"
	SettingRadiusThumb  = "radius_thumb"
)

var (
	// ErrNoCamera is returned by New when Config.Camera is nil.
	ErrNoCamera = errors.New("app: camera is required")
	// ErrNoDetector is returned by New when Config.Detector is nil.
	ErrNoDetector = errors.New("app: detector is required")
	// ErrNoPlayer is returned by New when Config.Player is nil.
	ErrNoPlayer = errors.New("app: player is required")
)

// Display shows rendered frames and reports operator keystrokes.
type Display interface {
	Show(img gocv.Mat)
	PollKey() overlay.Command
	Close() error
}

// Config holds the collaborators of a session. Store, Events, Frames and
// Display are optional. Cooldowns are used as given; zero means none.
type Config struct {
	SessionID string
	Camera    capture.Camera
	Detector  detector.Detector
	Player    audio.Player
	Bank      *audio.Bank
	Tuning    *trigger.Tuning
	Cooldowns trigger.Cooldowns
	Mirror    bool

	Title    string
	Skeleton bool
	Display  Display

	Store  *store.Store
	Events *server.EventHub
	Frames *server.FrameBuffer
	Logger zerolog.Logger
}

// Fired describes one trigger that produced sound.
type Fired struct {
	Key   trigger.Key
	Label string
}

// App is one play session.
type App struct {
	config   Config
	renderer *overlay.Renderer
	logger   zerolog.Logger

	mu        sync.RWMutex
	enabled   bool
	fps       int
	onFired   []func(Fired)
	onRadii   []func(trigger.Radii)
	lastFired *Fired

	// Owned by Run.
	history     chan store.Trigger
	historyDone chan struct{}
}

// New validates config and creates an App. Radii changes made through the
// tuning are persisted to the store and reported to OnRadii observers.
func New(config Config) (*App, error) {
	switch {
	case config.Camera == nil:
		return nil, ErrNoCamera
	case config.Detector == nil:
		return nil, ErrNoDetector
	case config.Player == nil:
		return nil, ErrNoPlayer
	}
	if config.Bank == nil {
		config.Bank = &audio.Bank{}
	}
	if config.Tuning == nil {
		config.Tuning = trigger.NewTuning(trigger.DefaultRadii(), trigger.DefaultLimits())
	}

	a := &App{
		config:   config,
		renderer: overlay.NewRenderer(config.Title, config.Bank, config.Skeleton),
		logger:   config.Logger.With().Str("component", "app").Str("session", config.SessionID).Logger(),
		enabled:  true,
	}
	config.Tuning.OnChange(a.radiiChanged)
	return a, nil
}

// RestoreRadii returns the radii saved by an earlier session, falling back
// to def for anything not stored.
func RestoreRadii(s *store.Store, def trigger.Radii) trigger.Radii {
	if s == nil {
		return def
	}
	settings := s.Settings()
	return trigger.Radii{
		Finger: settings.GetInt(SettingRadiusFinger, def.Finger),
		Thumb:  settings.GetInt(SettingRadiusThumb, def.Thumb),
	}
}

// SetEnabled pauses or resumes triggering. While paused frames are still
// captured and shown but every contact reads as released.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
	a.logger.Info().Bool("enabled", enabled).Msg("Triggering toggled")
}

// IsEnabled returns whether triggering is enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// OnFired registers an observer for triggers that produced sound.
// Observers run on the frame loop and must not block.
func (a *App) OnFired(fn func(Fired)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onFired = append(a.onFired, fn)
}

// OnRadii registers an observer for radii changes.
func (a *App) OnRadii(fn func(trigger.Radii)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onRadii = append(a.onRadii, fn)
}

// Tuning returns the session's radii.
func (a *App) Tuning() *trigger.Tuning {
	return a.config.Tuning
}

// Renderer returns the overlay renderer.
func (a *App) Renderer() *overlay.Renderer {
	return a.renderer
}

// FPS returns the frame rate measured over the last full second.
func (a *App) FPS() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.fps
}

// LastFired returns the most recent trigger that produced sound.
func (a *App) LastFired() (Fired, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.lastFired == nil {
		return Fired{}, false
	}
	return *a.lastFired, true
}

func (a *App) radiiChanged(r trigger.Radii) {
	a.logger.Info().Int("finger", r.Finger).Int("thumb", r.Thumb).Msg("Radii changed")

	if s := a.config.Store; s != nil {
		if err := s.Settings().SetInt(SettingRadiusFinger, r.Finger); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to persist finger radius")
		}
		if err := s.Settings().SetInt(SettingRadiusThumb, r.Thumb); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to persist thumb radius")
		}
	}

	a.mu.RLock()
	observers := append([]func(trigger.Radii){}, a.onRadii...)
	a.mu.RUnlock()
	for _, fn := range observers {
		fn(r)
	}
}

// label names the clip bound to k.
func (a *App) label(k trigger.Key) string {
	return a.renderer.Label(k)
}

// notify reports a sounding trigger to every observer.
func (a *App) notify(f Fired, res trigger.Result) {
	a.mu.Lock()
	a.lastFired = &f
	observers := append([]func(Fired){}, a.onFired...)
	a.mu.Unlock()

	if a.config.Events != nil {
		a.config.Events.Publish(server.Event{
			Key:     f.Key.String(),
			Label:   f.Label,
			At:      res.At,
			Session: a.config.SessionID,
		})
	}

	if a.history != nil {
		select {
		case a.history <- store.Trigger{
			SessionID: a.config.SessionID,
			Key:       f.Key,
			Label:     f.Label,
			FiredAt:   res.At,
		}:
		default:
			a.logger.Warn().Stringer("key", f.Key).Msg("History queue full, trigger not recorded")
		}
	}

	for _, fn := range observers {
		fn(f)
	}
}

// startHistory starts the goroutine that writes trigger records to the store.
func (a *App) startHistory() {
	if a.config.Store == nil {
		return
	}
	a.history = make(chan store.Trigger, historyQueue)
	a.historyDone = make(chan struct{})

	go func(triggers *store.TriggerRepository, queue <-chan store.Trigger) {
		defer close(a.historyDone)
		for t := range queue {
			if err := triggers.Record(&t); err != nil {
				a.logger.Warn().Err(err).Stringer("key", t.Key).Msg("Failed to record trigger")
			}
		}
	}(a.config.Store.Triggers(), a.history)
}

// stopHistory flushes queued records and waits for the writer to exit.
func (a *App) stopHistory() {
	if a.history == nil {
		return
	}
	close(a.history)
	<-a.historyDone
	a.history = nil
}
