package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagHeightmap  = flag.String("heightmap", "", "Heightmap image path")
	flagTexture    = flag.String("texture", "", "Ground texture path")
	flagTiles      = flag.Int("tiles", 0, "Terrain tiles per side")
	flagScale      = flag.Float64("scale", 0, "Terrain tile scale")
	flagWatch      = flag.Bool("watch", false, "Rebuild terrain when the heightmap changes")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagHeightmap != "" {
		cfg.Terrain.Heightmap = *flagHeightmap
	}
	if *flagTexture != "" {
		cfg.Terrain.Texture = *flagTexture
	}
	if *flagTiles > 0 {
		cfg.Terrain.TileCount = *flagTiles
	}
	if *flagScale > 0 {
		cfg.Terrain.Scale = float32(*flagScale)
	}
	if *flagWatch {
		cfg.Terrain.Watch = true
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
}
