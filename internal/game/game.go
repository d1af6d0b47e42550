// Package game runs the interactive terrain viewer.
package game

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-terrain/internal/assets"
	"github.com/Faultbox/midgard-terrain/internal/config"
	"github.com/Faultbox/midgard-terrain/internal/engine/camera"
	"github.com/Faultbox/midgard-terrain/internal/engine/debug"
	"github.com/Faultbox/midgard-terrain/internal/engine/input"
	"github.com/Faultbox/midgard-terrain/internal/engine/picking"
	"github.com/Faultbox/midgard-terrain/internal/engine/renderer"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/internal/engine/window"
	"github.com/Faultbox/midgard-terrain/internal/game/world"
	"github.com/Faultbox/midgard-terrain/internal/logger"
)

const title = "Midgard Terrain"

// Game is the viewer instance.
type Game struct {
	cfg     *config.Config
	opts    terrain.Options
	running bool
	log     *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input

	field  *terrain.Field
	walk   *camera.WalkCamera
	orbit  *camera.OrbitCamera
	mode   cameraMode
	world  *world.World
	picker picking.Picker

	nav    *world.PathFinder
	movers map[uint32]*world.MovementController
	seams  []debug.LineVertex // Tile outlines of the current field
	shots  *debug.Screenshots

	captureNext bool

	watcher *assets.Watcher
	cancel  context.CancelFunc

	pendingMu sync.Mutex
	pending   *terrain.Field
}

// New builds the terrain, opens the window and uploads the terrain to the GPU.
func New(cfg *config.Config) (*Game, error) {
	g := &Game{
		cfg:    cfg,
		log:    logger.Named("game"),
		picker: picking.NewPicker(),
	}

	resolver := assets.NewResolver(".")
	if cfg.Source != "" {
		resolver.AddRoot(filepath.Dir(cfg.Source))
	}

	var err error
	g.opts, err = resolver.TerrainOptions(cfg.Terrain)
	if err != nil {
		return nil, err
	}

	// CPU side first so a bad heightmap fails before any window appears
	g.field, err = terrain.Load(g.opts)
	if err != nil {
		return nil, fmt.Errorf("building terrain: %w", err)
	}

	g.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer needs the GL context created by the window
	dw, dh := g.window.DrawableSize()
	g.renderer, err = renderer.New(renderer.Config{
		Width:     int(dw),
		Height:    int(dh),
		FOV:       cfg.Graphics.FOV,
		Wireframe: cfg.Graphics.Wireframe,
	})
	if err != nil {
		g.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	if err := g.renderer.LoadTerrain(g.field); err != nil {
		g.Close()
		return nil, fmt.Errorf("uploading terrain: %w", err)
	}

	g.input = input.New()

	g.walk = camera.NewWalkCamera(g.field, cfg.Camera.EyeHeight, cfg.Camera.MoveSpeed, cfg.Camera.Sensitivity)
	center := g.field.Bounds().Center()
	g.walk.Place(center.X, center.Y)

	g.orbit = camera.NewOrbitCamera(g.field)
	g.orbit.FitToBounds(g.field.Bounds(), g.walk.Position.Y)

	g.world = world.New(g.field, 0)
	g.rebuildNavigation(g.field)
	g.seams = debug.TileOutlines(g.field)
	g.shots = debug.NewScreenshots(cfg.Graphics.ScreenshotDir, "terrain")

	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel
	if cfg.Terrain.Watch {
		if err := g.startWatching(ctx); err != nil {
			g.log.Warn("hot reload disabled", zap.Error(err))
		}
	}

	g.log.Info("viewer initialized",
		zap.String("heightmap", g.opts.Heightmap),
		zap.Int("tiles", g.field.TileCount()),
		zap.Bool("watch", g.watcher != nil),
	)
	return g, nil
}

// Run starts the main loop.
func (g *Game) Run() error {
	g.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	g.log.Info("starting viewer loop")

	for g.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if g.input.Update() {
			g.running = false
			break
		}
		g.handleEvents()

		g.swapPendingField()
		if err := g.update(dt); err != nil {
			return fmt.Errorf("update error: %w", err)
		}

		g.render()
		if g.captureNext {
			g.screenshot()
		}
		g.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			g.window.SetTitle(g.status(frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (g *Game) update(dt float32) error {
	g.updateCamera(dt)
	g.updateMovers()

	if _, err := g.world.Update(context.Background(), dt); err != nil {
		return err
	}
	return nil
}

func (g *Game) render() {
	view, eye := g.view()
	g.renderer.Begin()
	g.renderer.DrawTerrain(g.field, view, eye)
	if g.cfg.Graphics.ShowTileGrid {
		g.renderer.DrawLines(g.overlay(), view)
	}
	g.renderer.End()
}

func (g *Game) status(fps int) string {
	p := g.walk.Position
	ground := "void"
	if y, ok := g.field.HeightAt(p.X, p.Z); ok {
		ground = fmt.Sprintf("%.3f", y)
	}
	return fmt.Sprintf("%s | %d fps | %s camera | x %.2f z %.2f ground %s | walkers %d",
		title, fps, g.mode, p.X, p.Z, ground, g.world.Len())
}

// Close releases everything New acquired.
func (g *Game) Close() {
	g.log.Info("closing viewer")

	if g.cancel != nil {
		g.cancel()
	}
	if g.watcher != nil {
		if err := g.watcher.Close(); err != nil {
			g.log.Warn("closing watcher", zap.Error(err))
		}
	}
	if g.renderer != nil {
		if err := g.renderer.Close(); err != nil {
			g.log.Warn("releasing GPU resources", zap.Error(err))
		}
	}
	if g.window != nil {
		g.window.Close()
	}
}
