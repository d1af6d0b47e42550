// Package config handles terrain and viewer configuration loading.
package config

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// ErrInvalid is wrapped by every error returned from Validate.
var ErrInvalid = errors.New("invalid config")

// Config holds all settings.
type Config struct {
	Terrain  TerrainConfig  `yaml:"terrain"`
	Graphics GraphicsConfig `yaml:"graphics"`
	Camera   CameraConfig   `yaml:"camera"`
	Logging  LoggingConfig  `yaml:"logging"`

	// Source is the file the config was read from, empty for defaults.
	Source string `yaml:"-"`
}

// TerrainConfig describes how the terrain field is built.
type TerrainConfig struct {
	TileCount     int     `yaml:"tile_count"`     // Tiles per side
	Scale         float32 `yaml:"scale"`          // Uniform tile scale
	MinElevation  float32 `yaml:"min_elevation"`  // Height of a black pixel
	MaxElevation  float32 `yaml:"max_elevation"`  // Height of a white pixel
	Heightmap     string  `yaml:"heightmap"`      // Heightmap image path
	Texture       string  `yaml:"texture"`        // Ground texture path
	TextureRepeat int     `yaml:"texture_repeat"` // Texture repetitions across one tile
	Watch         bool    `yaml:"watch"`          // Rebuild when the heightmap changes on disk
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Fullscreen bool    `yaml:"fullscreen"`
	VSync      bool    `yaml:"vsync"`
	FOV        float32 `yaml:"fov"` // Vertical field of view in degrees
	Wireframe  bool    `yaml:"wireframe"`

	ShowTileGrid  bool   `yaml:"show_tile_grid"` // Outline tile borders and walker paths
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// CameraConfig holds ground-following camera settings.
type CameraConfig struct {
	EyeHeight   float32 `yaml:"eye_height"`  // Distance kept above the ground
	MoveSpeed   float32 `yaml:"move_speed"`  // World units per second
	Sensitivity float32 `yaml:"sensitivity"` // Radians per pixel of mouse motion
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Terrain: TerrainConfig{
			TileCount:     3,
			Scale:         10,
			MinElevation:  -0.1,
			MaxElevation:  0.1,
			Heightmap:     "assets/heightmap.png",
			Texture:       "assets/terrain.png",
			TextureRepeat: 40,
			Watch:         false,
		},
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FOV:        60,

			ScreenshotDir: "screenshots",
		},
		Camera: CameraConfig{
			EyeHeight:   0.5,
			MoveSpeed:   4,
			Sensitivity: 0.003,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports every setting that would make the terrain or viewer
// unusable. All problems are returned together.
func (c *Config) Validate() error {
	var err error
	t := c.Terrain

	if t.TileCount <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: terrain.tile_count must be positive, got %d", ErrInvalid, t.TileCount))
	}
	if t.Scale <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: terrain.scale must be positive, got %g", ErrInvalid, t.Scale))
	}
	if t.MinElevation > t.MaxElevation {
		err = multierr.Append(err, fmt.Errorf("%w: terrain.min_elevation %g exceeds max_elevation %g",
			ErrInvalid, t.MinElevation, t.MaxElevation))
	}
	if t.TextureRepeat <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: terrain.texture_repeat must be positive, got %d", ErrInvalid, t.TextureRepeat))
	}
	if t.Heightmap == "" {
		err = multierr.Append(err, fmt.Errorf("%w: terrain.heightmap is empty", ErrInvalid))
	}
	if t.Texture == "" {
		err = multierr.Append(err, fmt.Errorf("%w: terrain.texture is empty", ErrInvalid))
	}
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: graphics size %dx%d", ErrInvalid, c.Graphics.Width, c.Graphics.Height))
	}

	return err
}
