package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/capture"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/detector"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/overlay"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/trigger"
)

// Run opens the camera and processes frames until ctx is cancelled, the
// operator quits, or a finite source runs out. Camera failures end the
// session with an error; a failed detection only skips its frame.
//
// Per frame:
//  1. Read and optionally mirror the image
//  2. Detect hands (skipped while paused)
//  3. Run the trigger engine at the frame's capture time
//  4. Report sounding triggers to observers
//  5. Render the overlay and handle operator keys
func (a *App) Run(ctx context.Context) error {
	cam := a.config.Camera
	if err := cam.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	a.startHistory()
	defer a.shutdown()

	width, height := cam.Size()
	engine := trigger.NewEngine(
		trigger.FrameSize{Width: width, Height: height},
		a.config.Tuning,
		trigger.NewSession(a.config.Cooldowns),
		trigger.NewDispatcher(a.config.Player, a.config.Bank, a.logger),
	)

	a.logger.Info().
		Int("width", width).
		Int("height", height).
		Bool("mirror", a.config.Mirror).
		Msg("Session started")

	meter := fpsMeter{}
	for {
		select {
		case <-ctx.Done():
			a.logger.Info().Msg("Session cancelled")
			return nil
		default:
		}

		frame, err := cam.ReadFrame()
		if errors.Is(err, capture.ErrEndOfStream) {
			a.logger.Info().Msg("Frame source exhausted")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read frame: %w", err)
		}

		quit := a.step(engine, frame, &meter)
		frame.Close()
		if quit {
			a.logger.Info().Msg("Quit requested")
			return nil
		}
	}
}

// step processes one frame and reports whether the operator asked to quit.
func (a *App) step(engine *trigger.Engine, frame *capture.Frame, meter *fpsMeter) bool {
	if a.config.Mirror {
		gocv.Flip(frame.Mat, &frame.Mat, 1)
	}

	var hands []detector.HandLandmarks
	if a.IsEnabled() {
		var err error
		hands, err = a.config.Detector.Detect(&frame.Mat)
		if err != nil {
			a.logger.Warn().Err(err).Msg("Hand detection failed, skipping frame")
			return a.present(frame, nil, nil, meter)
		}
	}

	res := engine.Process(hands, frame.Timestamp)
	for _, k := range res.Played {
		a.notify(Fired{Key: k, Label: a.label(k)}, res)
	}

	return a.present(frame, &res, hands, meter)
}

// present draws the overlay, publishes the frame and handles keystrokes.
func (a *App) present(frame *capture.Frame, res *trigger.Result, hands []detector.HandLandmarks, meter *fpsMeter) bool {
	if fps, ok := meter.tick(frame.Timestamp); ok {
		a.mu.Lock()
		a.fps = fps
		a.mu.Unlock()
	}

	if a.config.Display == nil && a.config.Frames == nil {
		return false
	}

	if res != nil {
		a.renderer.Draw(&frame.Mat, *res, hands, a.FPS())
	}
	if a.config.Frames != nil {
		a.config.Frames.Update(frame.Mat)
	}
	if a.config.Display == nil {
		return false
	}

	a.config.Display.Show(frame.Mat)
	return a.handleCommand(a.config.Display.PollKey())
}

// handleCommand applies an operator command and reports whether it was Quit.
func (a *App) handleCommand(cmd overlay.Command) bool {
	switch cmd {
	case overlay.IncreaseRadii:
		a.config.Tuning.Increase()
	case overlay.DecreaseRadii:
		a.config.Tuning.Decrease()
	case overlay.ToggleSkeleton:
		on := a.renderer.ToggleSkeleton()
		a.logger.Debug().Bool("skeleton", on).Msg("Skeleton toggled")
	case overlay.Quit:
		return true
	}
	return false
}

// shutdown silences playback, flushes the trigger history and releases the
// capture and display resources.
func (a *App) shutdown() {
	a.config.Player.StopAll()
	a.stopHistory()

	if err := a.config.Camera.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("Error closing camera")
	}
	if a.config.Display != nil {
		if err := a.config.Display.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("Error closing window")
		}
	}
	if err := a.config.Detector.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("Error closing detector")
	}

	a.logger.Info().Msg("Session stopped")
}

// fpsMeter counts frames per second of capture time.
type fpsMeter struct {
	windowStart time.Time
	frames      int
}

// tick records a frame at t and returns the rate once a full second has
// elapsed since the window opened.
func (m *fpsMeter) tick(t time.Time) (int, bool) {
	if m.windowStart.IsZero() {
		m.windowStart = t
	}
	if t.Sub(m.windowStart) >= time.Second {
		fps := m.frames
		m.windowStart = t
		m.frames = 1
		return fps, true
	}
	m.frames++
	return 0, false
}
