// Package config loads the billboard runtime configuration from YAML.
// Values may be overridden by command-line flags after loading.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/phanxgames/billboard"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for the compositor and its hosts.
type Config struct {
	Media    MediaConfig           `yaml:"media"`
	Ads      []billboard.AdSpec    `yaml:"ads"`
	Display  DisplayConfig         `yaml:"display"`
	Scoring  billboard.ScoreConfig `yaml:"scoring"`
	Rotation RotationConfig        `yaml:"rotation"`
	Detector DetectorConfig        `yaml:"detector"`
	Debug    DebugConfig           `yaml:"debug"`
}

// MediaConfig selects the frame source.
type MediaConfig struct {
	FramesDir string  `yaml:"frames_dir"`
	FPS       float64 `yaml:"fps"`
	Loop      bool    `yaml:"loop"`
}

// DisplayConfig sizes the drawing surface.
type DisplayConfig struct {
	ContainerWidth float64 `yaml:"container_width"` // 0 = media width
	PixelDensity   float64 `yaml:"pixel_density"`   // 0 = ask the host
	WindowTitle    string  `yaml:"window_title"`
	EditMode       bool    `yaml:"edit_mode"`
}

// RotationConfig controls ad switching.
type RotationConfig struct {
	Mode       string `yaml:"mode"` // interval, frame, manual
	MinDelayMS int    `yaml:"min_delay_ms"`
	MaxDelayMS int    `yaml:"max_delay_ms"`
	FadeMS     int    `yaml:"fade_ms"`
	Seed       uint64 `yaml:"seed"` // 0 = time-based
}

// DetectorConfig controls automatic detection.
type DetectorConfig struct {
	Enabled   bool `yaml:"enabled"`
	TimeoutMS int  `yaml:"timeout_ms"`
}

// DebugConfig holds diagnostics settings.
type DebugConfig struct {
	Overlay       bool   `yaml:"overlay"`
	Stats         bool   `yaml:"stats"`
	LogLevel      string `yaml:"log_level"`
	TelemetryAddr string `yaml:"telemetry_addr"` // empty disables the HTTP server
	ScreenshotDir string `yaml:"screenshot_dir"`
	TestScript    string `yaml:"test_script"`
}

// Default returns a Config populated with standard defaults.
func Default() *Config {
	return &Config{
		Media: MediaConfig{
			FramesDir: "frames",
			FPS:       30,
			Loop:      true,
		},
		Ads: []billboard.AdSpec{
			{Path: "assets/ad1.png", Label: "Ad 1", Accent: "#2dd4bf"},
			{Path: "assets/ad2.png", Label: "Ad 2", Accent: "#f97316"},
		},
		Display: DisplayConfig{
			ContainerWidth: 960,
			WindowTitle:    "billboard",
			EditMode:       true,
		},
		Scoring: billboard.DefaultScoreConfig(),
		Rotation: RotationConfig{
			Mode:       "interval",
			MinDelayMS: int(billboard.DefaultMinSwitchDelay / time.Millisecond),
			MaxDelayMS: int(billboard.DefaultMaxSwitchDelay / time.Millisecond),
			FadeMS:     int(billboard.DefaultFadeDuration / time.Millisecond),
		},
		Detector: DetectorConfig{
			Enabled:   true,
			TimeoutMS: int(billboard.DefaultDetectorTimeout / time.Millisecond),
		},
		Debug: DebugConfig{
			Overlay:       true,
			LogLevel:      "info",
			ScreenshotDir: "screenshots",
		},
	}
}

// Validate clamps and normalizes values to safe ranges. It returns an error
// only for values that cannot be repaired.
func (c *Config) Validate() error {
	if c.Media.FPS <= 0 {
		c.Media.FPS = 30
	}
	if c.Display.ContainerWidth < 0 {
		c.Display.ContainerWidth = 0
	}
	if c.Display.PixelDensity < 0 {
		c.Display.PixelDensity = 0
	}
	if c.Scoring == (billboard.ScoreConfig{}) {
		c.Scoring = billboard.DefaultScoreConfig()
	}
	if _, ok := billboard.ParseRotationMode(c.Rotation.Mode); !ok {
		return fmt.Errorf("rotation mode %q: want interval, frame or manual", c.Rotation.Mode)
	}
	if c.Rotation.MinDelayMS <= 0 {
		c.Rotation.MinDelayMS = int(billboard.DefaultMinSwitchDelay / time.Millisecond)
	}
	if c.Rotation.MaxDelayMS < c.Rotation.MinDelayMS {
		c.Rotation.MaxDelayMS = c.Rotation.MinDelayMS
	}
	if c.Rotation.FadeMS < 0 {
		c.Rotation.FadeMS = 0
	}
	if c.Detector.TimeoutMS <= 0 {
		c.Detector.TimeoutMS = int(billboard.DefaultDetectorTimeout / time.Millisecond)
	}
	if c.Debug.LogLevel == "" {
		c.Debug.LogLevel = "info"
	}
	if _, err := logrus.ParseLevel(c.Debug.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	for i, ad := range c.Ads {
		if ad.Accent == "" {
			continue
		}
		if _, err := billboard.ParseHexColor(ad.Accent); err != nil {
			return fmt.Errorf("ads[%d]: %w", i, err)
		}
	}
	return nil
}

// Load reads configuration from the YAML file at path. A missing file
// yields Default(). Fields absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path in YAML format.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// RotationMode returns the parsed rotation mode.
func (c *Config) RotationMode() billboard.RotationMode {
	m, _ := billboard.ParseRotationMode(c.Rotation.Mode)
	return m
}

// LogLevel returns the parsed log level, defaulting to info.
func (c *Config) LogLevel() logrus.Level {
	lvl, err := logrus.ParseLevel(c.Debug.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// SessionOptions converts the configuration into session options. Ads and
// the detector are supplied by the caller because loading them has side
// effects.
func (c *Config) SessionOptions(ads []billboard.AdSlot, det billboard.Detector) billboard.Options {
	seed := c.Rotation.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	fade := time.Duration(c.Rotation.FadeMS) * time.Millisecond
	if fade == 0 {
		fade = -1 // zero in Options means default
	}
	if !c.Detector.Enabled {
		det = nil
	}
	return billboard.Options{
		Ads:             ads,
		Detector:        det,
		DetectorTimeout: time.Duration(c.Detector.TimeoutMS) * time.Millisecond,
		ContainerWidth:  c.Display.ContainerWidth,
		PixelDensity:    c.Display.PixelDensity,
		Scoring:         c.Scoring,
		Rotation:        c.RotationMode(),
		MinDelay:        time.Duration(c.Rotation.MinDelayMS) * time.Millisecond,
		MaxDelay:        time.Duration(c.Rotation.MaxDelayMS) * time.Millisecond,
		FadeDuration:    fade,
		Seed:            seed,
		EditMode:        c.Display.EditMode,
		HideOverlay:     !c.Debug.Overlay,
		ScreenshotDir:   c.Debug.ScreenshotDir,
	}
}
