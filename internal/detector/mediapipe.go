package detector

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"
)

// ScriptName is the file name of the Python MediaPipe landmark service.
const ScriptName = "mediapipe_service.py"

// IdleShutdown is how long the service may sit unused before it is stopped.
const IdleShutdown = 30 * time.Second

// ErrScriptNotFound is returned when the MediaPipe service script cannot be located.
var ErrScriptNotFound = errors.New(ScriptName + " not found")

// MediaPipeDetector implements Detector on top of the Python MediaPipe
// service. The process starts on the first Detect, is restarted after a
// failed exchange, and is stopped once idle for IdleShutdown.
type MediaPipeDetector struct {
	config Config
	script string
	python string
	logger zerolog.Logger

	mu   sync.Mutex
	svc  *service
	idle *time.Timer
}

// NewMediaPipeDetector locates the service script and interpreter. It does
// not start the service.
func NewMediaPipeDetector(config Config, logger zerolog.Logger) (*MediaPipeDetector, error) {
	script := config.ScriptPath
	if script == "" {
		script = findMediaPipeScript()
	}
	if script == "" {
		return nil, ErrScriptNotFound
	}
	if _, err := os.Stat(script); err != nil {
		return nil, fmt.Errorf("stat %s: %w", script, err)
	}

	python := findVenvPython()
	if python == "" {
		python = "python3"
	}

	return &MediaPipeDetector{
		config: config,
		script: script,
		python: python,
		logger: logger.With().Str("component", "mediapipe").Logger(),
	}, nil
}

// Detect sends frame to the service and returns the hands it reports.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.svc == nil {
		if d.svc, err = startService(d.python, d.script, d.args(), d.logger); err != nil {
			return nil, err
		}
		d.logger.Info().Str("python", d.python).Str("script", d.script).Msg("MediaPipe service started")
	}

	line, err := d.svc.roundTrip(buf.GetBytes())
	if err != nil {
		d.stopLocked()
		return nil, err
	}
	d.armIdle()

	return parseResponse(line)
}

// Close stops the service if it is running.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopLocked()
}

func (d *MediaPipeDetector) args() []string {
	return []string{
		"--max-hands", strconv.Itoa(d.config.MaxHands),
		"--min-detection", strconv.FormatFloat(d.config.MinConfidence, 'f', 2, 64),
		"--min-tracking", strconv.FormatFloat(d.config.MinTrackingConf, 'f', 2, 64),
		"--model-complexity", strconv.Itoa(d.config.ModelComplexity),
	}
}

func (d *MediaPipeDetector) stopLocked() error {
	if d.idle != nil {
		d.idle.Stop()
		d.idle = nil
	}
	if d.svc == nil {
		return nil
	}
	err := d.svc.stop()
	d.svc = nil
	d.logger.Debug().Err(err).Msg("MediaPipe service stopped")
	return err
}

func (d *MediaPipeDetector) armIdle() {
	if d.idle != nil {
		d.idle.Reset(IdleShutdown)
		return
	}
	d.idle = time.AfterFunc(IdleShutdown, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.stopLocked()
	})
}

// searchDirs lists the places the script and venv are looked for: the
// working directory, its parent, the executable's directory and ~/.hbfs.
func searchDirs() []string {
	dirs := []string{".", ".."}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".hbfs"))
	}
	return dirs
}

func findMediaPipeScript() string {
	return firstExisting(searchDirs(), filepath.Join("scripts", ScriptName))
}

// findVenvPython looks for a virtualenv interpreter next to the scripts.
func findVenvPython() string {
	return firstExisting(searchDirs(), filepath.Join("venv", "bin", "python"))
}

// firstExisting returns the absolute path of rel under the first dir that has it.
func firstExisting(dirs []string, rel string) string {
	for _, dir := range dirs {
		path := filepath.Join(dir, rel)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}

type wireResponse struct {
	Hands []wireHand `json:"hands"`
	Error string     `json:"error"`
}

type wireHand struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"`
	Score      float64   `json:"score"`
}

// parseResponse decodes one JSON line from the service. Hands reporting
// fewer than NumLandmarks points are dropped since their fingertips are unknown.
func parseResponse(line []byte) ([]HandLandmarks, error) {
	var resp wireResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("mediapipe service: %s", resp.Error)
	}

	hands := make([]HandLandmarks, 0, len(resp.Hands))
	for _, h := range resp.Hands {
		if len(h.Points) < NumLandmarks {
			continue
		}
		lm := HandLandmarks{Handedness: h.Handedness, Score: h.Score}
		copy(lm.Points[:], h.Points)
		hands = append(hands, lm)
	}
	return hands, nil
}
