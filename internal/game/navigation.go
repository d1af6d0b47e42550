package game

import (
	"context"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-terrain/internal/engine/debug"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/internal/game/world"
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

const (
	// maxNavCells caps the navigation grid on either axis.
	maxNavCells = 256
	// navMaxClimb is the steepest step a walker takes, as a fraction of the
	// cell size.
	navMaxClimb = 0.75
)

// navCellSize picks one heightmap cell per navigation cell, coarsened when
// the terrain would need more than maxNavCells per side.
func navCellSize(field *terrain.Field) float32 {
	b := field.Bounds()
	size := field.Tiles()[0].Bounds.Width / float32(field.HeightField().VerticesPerCol())
	if minSize := b.Width / maxNavCells; size < minSize {
		size = minSize
	}
	return size
}

// rebuildNavigation samples field into a fresh navigation grid. Paths in
// progress are dropped since their cells belong to the old terrain.
func (g *Game) rebuildNavigation(field *terrain.Field) {
	g.movers = make(map[uint32]*world.MovementController)

	size := navCellSize(field)
	grid, err := world.BuildNavGrid(context.Background(), field, size, size*navMaxClimb, 0)
	if err != nil {
		g.log.Warn("navigation disabled", zap.Error(err))
		g.nav = nil
		return
	}
	g.nav = world.NewPathFinder(grid)
	g.log.Debug("navigation grid built",
		zap.Int("width", grid.Width),
		zap.Int("height", grid.Height),
		zap.Float32("cellSize", size),
	)
}

// sendWalkers routes every walker to (x, z). Walkers with no route walk
// straight there.
func (g *Game) sendWalkers(x, z float32) {
	for _, walker := range g.world.Walkers() {
		mc, ok := g.movers[walker.ID]
		if !ok {
			mc = world.NewMovementController(g.nav, walker)
			g.movers[walker.ID] = mc
		}
		if path := mc.MoveToWorld(x, z); path == nil {
			walker.SetDestination(x, z)
		}
	}
}

// updateMovers advances path following and forgets walkers that are gone.
func (g *Game) updateMovers() {
	for id, mc := range g.movers {
		if _, ok := g.world.Get(id); !ok {
			delete(g.movers, id)
			continue
		}
		mc.Update()
	}
}

// overlay collects the debug lines for the current frame.
func (g *Game) overlay() []debug.LineVertex {
	lines := append([]debug.LineVertex(nil), g.seams...)

	for _, walker := range g.world.Walkers() {
		lines = append(lines, debug.Marker(walker.Position, debug.DefaultMarkerSize)...)

		mc, ok := g.movers[walker.ID]
		if !ok || !mc.IsFollowingPath {
			continue
		}
		points := []math.Vec3{walker.Position}
		for _, cell := range mc.Path()[max(mc.PathIndex()-1, 0):] {
			c := g.nav.Grid().CellCenter(cell[0], cell[1])
			y, _ := g.nav.Grid().HeightAt(cell[0], cell[1])
			points = append(points, math.Vec3{X: c.X, Y: y, Z: c.Y})
		}
		lines = append(lines, debug.PathLines(points)...)
	}
	return lines
}

// screenshot saves the frame just rendered, before it is swapped out.
func (g *Game) screenshot() {
	g.captureNext = false
	pixels, w, h := g.renderer.ReadPixels()
	path, err := g.shots.SaveFrame(pixels, w, h)
	if err != nil {
		g.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	g.log.Info("screenshot saved", zap.String("path", path))
}
