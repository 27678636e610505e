// Package config loads the application configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/detector"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/logging"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/trigger"
)

// EnvPrefix prefixes every environment override, e.g. HBFS_RADII_FINGER.
const EnvPrefix = "HBFS"

// Config holds all application configuration.
type Config struct {
	DataDir  string         `mapstructure:"data_dir"`
	Camera   CameraConfig   `mapstructure:"camera"`
	Detector DetectorConfig `mapstructure:"detector"`
	Radii    RadiiConfig    `mapstructure:"radii"`
	Cooldown CooldownConfig `mapstructure:"cooldown"`
	Audio    AudioConfig    `mapstructure:"audio"`
	Window   WindowConfig   `mapstructure:"window"`
	Server   ServerConfig   `mapstructure:"server"`
	Tray     TrayConfig     `mapstructure:"tray"`
	Log      LogConfig      `mapstructure:"log"`
}

// CameraConfig configures the frame source.
type CameraConfig struct {
	Device int  `mapstructure:"device"`
	Width  int  `mapstructure:"width"`
	Height int  `mapstructure:"height"`
	FPS    int  `mapstructure:"fps"`
	Mirror bool `mapstructure:"mirror"` // Flip horizontally before detection
}

// DetectorConfig configures the MediaPipe landmark service.
type DetectorConfig struct {
	MaxHands               int     `mapstructure:"max_hands"`
	MinDetectionConfidence float64 `mapstructure:"min_detection_confidence"`
	MinTrackingConfidence  float64 `mapstructure:"min_tracking_confidence"`
	ModelComplexity        int     `mapstructure:"model_complexity"`
	ScriptPath             string  `mapstructure:"script_path"`
}

// RadiiConfig holds the starting touch-zone sizes and their runtime bounds.
type RadiiConfig struct {
	Finger    int `mapstructure:"finger"`
	Thumb     int `mapstructure:"thumb"`
	FingerMin int `mapstructure:"finger_min"`
	FingerMax int `mapstructure:"finger_max"`
	ThumbMin  int `mapstructure:"thumb_min"`
	ThumbMax  int `mapstructure:"thumb_max"`
	Step      int `mapstructure:"step"`
}

// CooldownConfig holds the per-key refire intervals.
type CooldownConfig struct {
	Finger time.Duration `mapstructure:"finger"`
	Thumbs time.Duration `mapstructure:"thumbs"`
}

// AudioConfig configures sample playback.
type AudioConfig struct {
	Dir        string `mapstructure:"dir"`
	Backend    string `mapstructure:"backend"` // speaker or command
	SampleRate int    `mapstructure:"sample_rate"`
	Command    string `mapstructure:"command"` // Player binary for the command backend; empty picks one per OS
}

// WindowConfig configures the overlay window.
type WindowConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Title    string `mapstructure:"title"`
	Skeleton bool   `mapstructure:"skeleton"`
}

// ServerConfig configures the local control surface.
type ServerConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Addr      string `mapstructure:"addr"`
	StaticDir string `mapstructure:"static_dir"`
}

// TrayConfig configures the system tray.
type TrayConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level   string `mapstructure:"level"`
	File    string `mapstructure:"file"`
	Console bool   `mapstructure:"console"`
}

// DefaultConfig returns the defaults used when no config file is present.
func DefaultConfig() *Config {
	radii := trigger.DefaultRadii()
	limits := trigger.DefaultLimits()
	cooldowns := trigger.DefaultCooldowns()
	det := detector.DefaultConfig()

	dataDir := ".hbfs"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".hbfs")
	}

	return &Config{
		DataDir: dataDir,
		Camera: CameraConfig{
			Device: 0,
			Width:  640,
			Height: 480,
			FPS:    30,
			Mirror: true,
		},
		Detector: DetectorConfig{
			MaxHands:               det.MaxHands,
			MinDetectionConfidence: det.MinConfidence,
			MinTrackingConfidence:  det.MinTrackingConf,
			ModelComplexity:        det.ModelComplexity,
		},
		Radii: RadiiConfig{
			Finger:    radii.Finger,
			Thumb:     radii.Thumb,
			FingerMin: limits.Finger.Min,
			FingerMax: limits.Finger.Max,
			ThumbMin:  limits.Thumb.Min,
			ThumbMax:  limits.Thumb.Max,
			Step:      limits.Step,
		},
		Cooldown: CooldownConfig{
			Finger: cooldowns.Finger,
			Thumbs: cooldowns.Thumbs,
		},
		Audio: AudioConfig{
			Dir:        "audio",
			Backend:    "speaker",
			SampleRate: 44100,
		},
		Window: WindowConfig{
			Enabled: true,
			Title:   "Harder Better Faster Stronger",
		},
		Server: ServerConfig{
			Enabled: true,
			Addr:    "127.0.0.1:8080",
		},
		Tray: TrayConfig{
			Enabled: false,
		},
		Log: LogConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// Load reads configuration from path, or from config.yaml in the data
// directory or working directory when path is empty. A missing default
// config file is not an error. Environment variables override both.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	setDefaults(v, cfg)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(cfg.DataDir)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so environment overrides apply even
// when the config file omits them.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("data_dir", cfg.DataDir)

	v.SetDefault("camera.device", cfg.Camera.Device)
	v.SetDefault("camera.width", cfg.Camera.Width)
	v.SetDefault("camera.height", cfg.Camera.Height)
	v.SetDefault("camera.fps", cfg.Camera.FPS)
	v.SetDefault("camera.mirror", cfg.Camera.Mirror)

	v.SetDefault("detector.max_hands", cfg.Detector.MaxHands)
	v.SetDefault("detector.min_detection_confidence", cfg.Detector.MinDetectionConfidence)
	v.SetDefault("detector.min_tracking_confidence", cfg.Detector.MinTrackingConfidence)
	v.SetDefault("detector.model_complexity", cfg.Detector.ModelComplexity)
	v.SetDefault("detector.script_path", cfg.Detector.ScriptPath)

	v.SetDefault("radii.finger", cfg.Radii.Finger)
	v.SetDefault("radii.thumb", cfg.Radii.Thumb)
	v.SetDefault("radii.finger_min", cfg.Radii.FingerMin)
	v.SetDefault("radii.finger_max", cfg.Radii.FingerMax)
	v.SetDefault("radii.thumb_min", cfg.Radii.ThumbMin)
	v.SetDefault("radii.thumb_max", cfg.Radii.ThumbMax)
	v.SetDefault("radii.step", cfg.Radii.Step)

	v.SetDefault("cooldown.finger", cfg.Cooldown.Finger)
	v.SetDefault("cooldown.thumbs", cfg.Cooldown.Thumbs)

	v.SetDefault("audio.dir", cfg.Audio.Dir)
	v.SetDefault("audio.backend", cfg.Audio.Backend)
	v.SetDefault("audio.sample_rate", cfg.Audio.SampleRate)
	v.SetDefault("audio.command", cfg.Audio.Command)

	v.SetDefault("window.enabled", cfg.Window.Enabled)
	v.SetDefault("window.title", cfg.Window.Title)
	v.SetDefault("window.skeleton", cfg.Window.Skeleton)

	v.SetDefault("server.enabled", cfg.Server.Enabled)
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.static_dir", cfg.Server.StaticDir)

	v.SetDefault("tray.enabled", cfg.Tray.Enabled)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.console", cfg.Log.Console)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return fmt.Errorf("camera size must be positive, got %dx%d", c.Camera.Width, c.Camera.Height)
	}
	if c.Camera.FPS <= 0 {
		return fmt.Errorf("camera fps must be positive, got %d", c.Camera.FPS)
	}
	if c.Detector.MaxHands < 2 {
		return fmt.Errorf("detector max_hands must be at least 2, got %d", c.Detector.MaxHands)
	}
	if c.Radii.FingerMin <= 0 || c.Radii.FingerMin > c.Radii.FingerMax {
		return fmt.Errorf("invalid finger radius bounds [%d, %d]", c.Radii.FingerMin, c.Radii.FingerMax)
	}
	if c.Radii.ThumbMin <= 0 || c.Radii.ThumbMin > c.Radii.ThumbMax {
		return fmt.Errorf("invalid thumb radius bounds [%d, %d]", c.Radii.ThumbMin, c.Radii.ThumbMax)
	}
	if c.Radii.Step <= 0 {
		return fmt.Errorf("radius step must be positive, got %d", c.Radii.Step)
	}
	if c.Cooldown.Finger < 0 || c.Cooldown.Thumbs < 0 {
		return errors.New("cooldowns must not be negative")
	}
	switch c.Audio.Backend {
	case "speaker", "command":
	default:
		return fmt.Errorf("unknown audio backend %q", c.Audio.Backend)
	}
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio sample_rate must be positive, got %d", c.Audio.SampleRate)
	}
	return nil
}

// TriggerRadii returns the starting radii.
func (c *Config) TriggerRadii() trigger.Radii {
	return trigger.Radii{Finger: c.Radii.Finger, Thumb: c.Radii.Thumb}
}

// TriggerLimits returns the runtime radius bounds.
func (c *Config) TriggerLimits() trigger.Limits {
	return trigger.Limits{
		Finger: trigger.Bounds{Min: c.Radii.FingerMin, Max: c.Radii.FingerMax},
		Thumb:  trigger.Bounds{Min: c.Radii.ThumbMin, Max: c.Radii.ThumbMax},
		Step:   c.Radii.Step,
	}
}

// TriggerCooldowns returns the per-key refire intervals.
func (c *Config) TriggerCooldowns() trigger.Cooldowns {
	return trigger.Cooldowns{Finger: c.Cooldown.Finger, Thumbs: c.Cooldown.Thumbs}
}

// DetectorConfig returns the landmark service settings.
func (c *Config) DetectorConfig() detector.Config {
	return detector.Config{
		MaxHands:        c.Detector.MaxHands,
		MinConfidence:   c.Detector.MinDetectionConfidence,
		MinTrackingConf: c.Detector.MinTrackingConfidence,
		ModelComplexity: c.Detector.ModelComplexity,
		ScriptPath:      c.Detector.ScriptPath,
	}
}

// LoggingConfig returns the logger settings.
func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{
		Level:   c.Log.Level,
		File:    c.Log.File,
		Console: c.Log.Console,
	}
}

// DatabasePath returns the sample bank database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "hbfs.db")
}
