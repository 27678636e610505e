package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/app"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/audio"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/capture"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/config"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/detector"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/logging"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/overlay"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/server"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/store"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/tray"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/trigger"
)

// runSession wires every component from config and blocks until the session ends.
func runSession(parent context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LoggingConfig())
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logger.Close()
	log := logger.Component("main")

	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	player, err := newPlayer(cfg, logger.Zerolog())
	if err != nil {
		return fmt.Errorf("init audio: %w", err)
	}
	defer player.Close()

	bank, err := loadBank(st, player, cfg.Audio.Dir, logger.Zerolog())
	if err != nil {
		return err
	}

	sessionID := uuid.NewString()
	tuning := trigger.NewTuning(app.RestoreRadii(st, cfg.TriggerRadii()), cfg.TriggerLimits())

	var (
		events *server.EventHub
		frames *server.FrameBuffer
	)
	if cfg.Server.Enabled {
		events = server.NewEventHub(logger.Zerolog())
		frames = server.NewFrameBuffer()
		defer frames.Close()
	}

	// A native window and the tray both need the main thread.
	var display app.Display
	if cfg.Window.Enabled && !cfg.Tray.Enabled {
		display = overlay.NewWindow(cfg.Window.Title)
	} else if cfg.Window.Enabled {
		log.Info().Msg("Tray enabled, overlay available on the dashboard stream only")
	}

	a, err := app.New(app.Config{
		SessionID: sessionID,
		Camera: capture.NewCamera(capture.Options{
			Device: cfg.Camera.Device,
			Width:  cfg.Camera.Width,
			Height: cfg.Camera.Height,
			FPS:    cfg.Camera.FPS,
		}),
		Detector:  newDetector(cfg.DetectorConfig(), logger.Zerolog()),
		Player:    player,
		Bank:      bank,
		Tuning:    tuning,
		Cooldowns: cfg.TriggerCooldowns(),
		Mirror:    cfg.Camera.Mirror,
		Title:     cfg.Window.Title,
		Skeleton:  cfg.Window.Skeleton,
		Display:   display,
		Store:     st,
		Events:    events,
		Frames:    frames,
		Logger:    logger.Zerolog(),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("session", sessionID).
		Int("samples", bank.Size()).
		Bool("full_track", bank.HasFullTrack()).
		Int("finger_radius", tuning.Radii().Finger).
		Int("thumb_radius", tuning.Radii().Thumb).
		Msg("Starting session")

	if cfg.Server.Enabled {
		srv := server.New(server.Config{
			StaticDir: findWebDir(cfg.Server.StaticDir, cfg.DataDir),
			SessionID: sessionID,
			Store:     st,
			Tuning:    tuning,
			Events:    events,
			Frames:    frames,
			Logger:    logger.Zerolog(),
		})
		served := make(chan struct{})
		go func() {
			defer close(served)
			if err := srv.Serve(ctx, cfg.Server.Addr); err != nil {
				log.Error().Err(err).Str("addr", cfg.Server.Addr).Msg("Dashboard server failed")
			}
		}()
		// Runs before frames.Close: no handler may still be reading the buffer.
		defer func() {
			stop()
			<-served
		}()
	}

	if !cfg.Tray.Enabled {
		return a.Run(ctx)
	}
	return runWithTray(ctx, stop, a, "http://"+cfg.Server.Addr, log)
}

// runWithTray runs the session on a goroutine while the tray owns the main thread.
func runWithTray(ctx context.Context, stop context.CancelFunc, a *app.App, dashboard string, log zerolog.Logger) error {
	t := tray.New(a.Tuning().Radii())
	t.OnBigger(func() { a.Tuning().Increase() })
	t.OnSmaller(func() { a.Tuning().Decrease() })
	t.OnToggle(a.SetEnabled)
	t.OnDashboard(func() {
		if err := openBrowser(dashboard); err != nil {
			log.Warn().Err(err).Str("url", dashboard).Msg("Could not open dashboard")
		}
	})
	t.OnQuit(stop)

	a.OnFired(func(f app.Fired) { t.SetLastTrigger(f.Label) })
	a.OnRadii(t.SetRadii)

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run(ctx)
		t.Quit()
	}()

	t.Run()
	stop()
	return <-errCh
}

func newPlayer(cfg *config.Config, logger zerolog.Logger) (audio.Player, error) {
	if cfg.Audio.Backend == "command" {
		command := cfg.Audio.Command
		if command == "" {
			var err error
			if command, err = audio.DefaultCommand(); err != nil {
				return nil, err
			}
		}
		return audio.NewCommandPlayer(command, logger)
	}
	return audio.NewSpeakerPlayer(cfg.Audio.SampleRate, logger)
}

// loadBank loads the stored sample mapping into player.
func loadBank(st *store.Store, player audio.Player, dir string, logger zerolog.Logger) (*audio.Bank, error) {
	samples, err := st.Samples().List()
	if err != nil {
		return nil, fmt.Errorf("list samples: %w", err)
	}

	entries := make([]audio.Entry, 0, len(samples))
	for _, s := range samples {
		entries = append(entries, audio.Entry{Key: s.Key, Label: s.Label, File: s.File})
	}
	return audio.LoadBank(player, dir, entries, logger), nil
}

// newDetector prefers MediaPipe and falls back to a detector that never sees hands.
func newDetector(cfg detector.Config, logger zerolog.Logger) detector.Detector {
	log := logger.With().Str("component", "main").Logger()
	mp, err := detector.NewMediaPipeDetector(cfg, logger)
	if err != nil {
		log.Warn().Err(err).Msg("MediaPipe not available, using mock detector")
		return detector.NewMockDetector()
	}
	log.Info().Msg("Using MediaPipe hand detection")
	return mp
}

// findWebDir returns configured if set, otherwise the first existing web
// directory near the working directory or under dataDir.
func findWebDir(configured, dataDir string) string {
	if configured != "" {
		return configured
	}
	for _, p := range []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "linux", "freebsd", "openbsd":
		cmd = exec.Command("xdg-open", url)
	default:
		return errors.New("unsupported platform")
	}
	return cmd.Start()
}
