package game

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-terrain/internal/assets"
	"github.com/Faultbox/midgard-terrain/internal/engine/debug"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
)

// startWatching rebuilds the terrain off the main thread whenever the
// heightmap or texture changes. The GL upload happens in swapPendingField.
func (g *Game) startWatching(ctx context.Context) error {
	w, err := assets.NewWatcher(assets.DefaultDebounce, g.opts.Heightmap, g.opts.Texture)
	if err != nil {
		return fmt.Errorf("watching terrain assets: %w", err)
	}
	g.watcher = w

	go func() {
		err := w.Run(ctx, func(path string) {
			g.log.Info("terrain asset changed, rebuilding", zap.String("path", path))
			field, err := terrain.Load(g.opts)
			if err != nil {
				g.log.Warn("rebuild failed, keeping current terrain", zap.Error(err))
				return
			}
			g.pendingMu.Lock()
			g.pending = field
			g.pendingMu.Unlock()
		})
		if err != nil {
			g.log.Warn("watcher stopped", zap.Error(err))
		}
	}()

	return nil
}

// swapPendingField installs a rebuilt terrain, if one is waiting.
func (g *Game) swapPendingField() {
	g.pendingMu.Lock()
	field := g.pending
	g.pending = nil
	g.pendingMu.Unlock()

	if field == nil {
		return
	}

	if err := g.renderer.LoadTerrain(field); err != nil {
		g.log.Warn("uploading rebuilt terrain", zap.Error(err))
		if err := g.renderer.LoadTerrain(g.field); err != nil {
			g.log.Error("restoring previous terrain", zap.Error(err))
		}
		return
	}

	g.field = field
	g.walk.SetGround(field)
	g.orbit.SetGround(field)
	if err := g.world.SetGround(context.Background(), field); err != nil {
		g.log.Warn("re-clamping walkers", zap.Error(err))
	}
	g.rebuildNavigation(field)
	g.seams = debug.TileOutlines(field)
	g.log.Info("terrain reloaded", zap.Int("tiles", field.TileCount()))
}
