// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/h264play/pkg/colorconv"
	"github.com/user/h264play/pkg/orchestrator"
	"github.com/user/h264play/pkg/playback"
	"github.com/user/h264play/pkg/ports"
)

// ErrInvalid is wrapped by every Validate error.
var ErrInvalid = errors.New("config: invalid value")

// Config represents the full configuration for h264play.
type Config struct {
	Playback PlaybackConfig `yaml:"playback"`
	Color    ColorConfig    `yaml:"color"`
	Snapshot SnapshotConfig `yaml:"snapshot"`

	LogLevel string `yaml:"log_level"`
	// Summary is the path of the Markdown run summary; empty disables it.
	Summary string `yaml:"summary"`
}

// PlaybackConfig controls pacing and stop conditions.
type PlaybackConfig struct {
	Mode        string  `yaml:"mode"`
	FPS         float64 `yaml:"fps"`
	FrameTimeMs int     `yaml:"frame_time_ms"`
	TickRate    float64 `yaml:"tick_rate"`
	Repeat      bool    `yaml:"repeat"`
	Restarts    int     `yaml:"restarts"`
	Buffer      int     `yaml:"buffer"`
	MaxFrames   int     `yaml:"max_frames"`
	DurationMs  int     `yaml:"duration_ms"`
}

// ColorConfig selects the YUV to BGRA conversion behaviour.
type ColorConfig struct {
	Clamp bool `yaml:"clamp"`
}

// SnapshotConfig controls writing displayed frames to disk.
type SnapshotConfig struct {
	Dir      string `yaml:"dir"`
	Every    int    `yaml:"every"`
	Width    int    `yaml:"width"`
	Format   string `yaml:"format"`
	Annotate bool   `yaml:"annotate"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Playback: PlaybackConfig{
			Mode:     "fixed",
			FPS:      30,
			TickRate: 120,
		},
		Snapshot: SnapshotConfig{
			Every:  1,
			Format: "png",
		},
		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a YAML file. Keys missing from the
// file keep their default values.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if _, ok := playback.ParsePacingMode(c.Playback.Mode); !ok {
		return fmt.Errorf("%w: playback.mode %q (want fixed or realtime)", ErrInvalid, c.Playback.Mode)
	}
	if c.Playback.FPS <= 0 {
		return fmt.Errorf("%w: playback.fps must be positive", ErrInvalid)
	}
	if c.Playback.TickRate <= 0 {
		return fmt.Errorf("%w: playback.tick_rate must be positive", ErrInvalid)
	}

	checks := []struct {
		name  string
		value int
	}{
		{"playback.frame_time_ms", c.Playback.FrameTimeMs},
		{"playback.restarts", c.Playback.Restarts},
		{"playback.buffer", c.Playback.Buffer},
		{"playback.max_frames", c.Playback.MaxFrames},
		{"playback.duration_ms", c.Playback.DurationMs},
		{"snapshot.width", c.Snapshot.Width},
	}
	for _, ch := range checks {
		if ch.value < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalid, ch.name)
		}
	}

	if c.Snapshot.Every < 1 {
		return fmt.Errorf("%w: snapshot.every must be at least 1", ErrInvalid)
	}
	if _, err := ParseImageFormat(c.Snapshot.Format); err != nil {
		return err
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error", "quiet":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	return nil
}

// ParseImageFormat maps "png", "jpg" and "jpeg" to an image format.
func ParseImageFormat(s string) (ports.ImageFormat, error) {
	switch s {
	case "png", "":
		return ports.FormatPNG, nil
	case "jpg", "jpeg":
		return ports.FormatJPEG, nil
	default:
		return ports.FormatPNG, fmt.Errorf("%w: snapshot.format %q (want png or jpeg)", ErrInvalid, s)
	}
}

// ColorMode returns the conversion mode selected by color.clamp.
func (c Config) ColorMode() colorconv.Mode {
	if c.Color.Clamp {
		return colorconv.ModeClamp
	}
	return colorconv.ModeWrap
}

// Level returns the configured log level.
func (c Config) Level() ports.LogLevel {
	return ports.ParseLogLevel(c.LogLevel)
}

// ToOrchestratorConfig converts Config to orchestrator.Config for the given
// videos. Call Validate first; an unknown mode falls back to fixed-step.
func (c Config) ToOrchestratorConfig(videos []string) orchestrator.Config {
	mode, _ := playback.ParsePacingMode(c.Playback.Mode)
	return orchestrator.Config{
		Videos: videos,

		Pacing:    mode,
		FPS:       c.Playback.FPS,
		FrameTime: time.Duration(c.Playback.FrameTimeMs) * time.Millisecond,
		TickRate:  c.Playback.TickRate,

		Repeat:   c.Playback.Repeat,
		Restarts: c.Playback.Restarts,
		Buffer:   c.Playback.Buffer,

		ColorMode: c.ColorMode(),

		MaxFrames: c.Playback.MaxFrames,
		Duration:  time.Duration(c.Playback.DurationMs) * time.Millisecond,

		SnapshotEvery: c.Snapshot.Every,
	}
}
