package trigger

import (
	"time"

	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/detector"
)

// Result describes one processed frame.
type Result struct {
	At       time.Time
	Hands    []HandFrame
	Contacts Predicates
	Radii    Radii
	Fired    []Key
	// Played is the subset of Fired that issued playback commands.
	Played     []Key
	Suppressed bool
}

// Engine runs the per-frame pass from landmarks to playback commands.
type Engine struct {
	size       FrameSize
	tuning     *Tuning
	session    *Session
	dispatcher *Dispatcher
}

// NewEngine wires the pipeline stages together.
func NewEngine(size FrameSize, tuning *Tuning, session *Session, dispatcher *Dispatcher) *Engine {
	return &Engine{
		size:       size,
		tuning:     tuning,
		session:    session,
		dispatcher: dispatcher,
	}
}

// Session returns the engine's key-state table.
func (e *Engine) Session() *Session {
	return e.session
}

// Process handles one frame's detections observed at now.
func (e *Engine) Process(hands []detector.HandLandmarks, now time.Time) Result {
	radii := e.tuning.Radii()
	frames := Extract(hands, e.size)
	contacts := Detect(frames, radii)
	fired := e.session.Step(contacts, now)

	var played []Key
	for _, k := range fired {
		if e.dispatcher.Dispatch(k) {
			played = append(played, k)
		}
	}

	return Result{
		At:         now,
		Hands:      frames,
		Contacts:   contacts,
		Radii:      radii,
		Fired:      fired,
		Played:     played,
		Suppressed: e.session.Suppressed(),
	}
}
