package world

import (
	"context"
	"errors"
	"fmt"
	gomath "math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// ErrInvalidGrid is returned for a navigation grid that cannot be sampled.
var ErrInvalidGrid = errors.New("invalid navigation grid")

// NavGrid is a regular sampling of the terrain used for pathfinding.
//
// Cell (cx, cy) covers [Origin.X + cx*CellSize, +CellSize) on X and the same
// on Z; its height is the terrain elevation at the cell centre. A cell is
// walkable when that elevation exists.
type NavGrid struct {
	Origin   math.Vec2
	CellSize float32
	Width    int
	Height   int
	MaxClimb float32 // Largest height change allowed between neighbours

	heights  []float32
	walkable []bool
}

// BuildNavGrid samples ground over its bounds. Rows are sampled in parallel
// with at most workers goroutines (<= 0 means GOMAXPROCS).
func BuildNavGrid(ctx context.Context, ground Ground, cellSize, maxClimb float32, workers int) (*NavGrid, error) {
	if cellSize <= 0 || maxClimb < 0 {
		return nil, fmt.Errorf("%w: cell size %g, max climb %g", ErrInvalidGrid, cellSize, maxClimb)
	}

	bounds := ground.Bounds()
	width := int(gomath.Floor(float64(bounds.Width / cellSize)))
	height := int(gomath.Floor(float64(bounds.Height / cellSize)))
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %gx%g area is smaller than one %g cell",
			ErrInvalidGrid, bounds.Width, bounds.Height, cellSize)
	}

	grid := &NavGrid{
		Origin:   math.Vec2{X: bounds.MinX, Y: bounds.MinZ},
		CellSize: cellSize,
		Width:    width,
		Height:   height,
		MaxClimb: maxClimb,
		heights:  make([]float32, width*height),
		walkable: make([]bool, width*height),
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for cy := 0; cy < height; cy++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for cx := 0; cx < width; cx++ {
				c := grid.CellCenter(cx, cy)
				y, err := ground.ElevationAt(c.X, c.Y)
				i := grid.key(cx, cy)
				grid.heights[i] = y
				grid.walkable[i] = err == nil
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return grid, nil
}

// CellAt returns the cell containing world (x, z).
func (g *NavGrid) CellAt(x, z float32) (cx, cy int, ok bool) {
	fx := gomath.Floor(float64((x - g.Origin.X) / g.CellSize))
	fy := gomath.Floor(float64((z - g.Origin.Y) / g.CellSize))
	cx, cy = int(fx), int(fy)
	return cx, cy, g.inBounds(cx, cy)
}

// CellCenter returns the world XZ of a cell's centre.
func (g *NavGrid) CellCenter(cx, cy int) math.Vec2 {
	return math.Vec2{
		X: g.Origin.X + (float32(cx)+0.5)*g.CellSize,
		Y: g.Origin.Y + (float32(cy)+0.5)*g.CellSize,
	}
}

// HeightAt returns the sampled elevation of a cell.
func (g *NavGrid) HeightAt(cx, cy int) (float32, bool) {
	if !g.IsWalkable(cx, cy) {
		return 0, false
	}
	return g.heights[g.key(cx, cy)], true
}

// IsWalkable checks if a cell is on the terrain.
func (g *NavGrid) IsWalkable(cx, cy int) bool {
	return g.inBounds(cx, cy) && g.walkable[g.key(cx, cy)]
}

// CanStep reports whether a walker can move between two cells without
// climbing more than MaxClimb.
func (g *NavGrid) CanStep(fromX, fromY, toX, toY int) bool {
	from, ok := g.HeightAt(fromX, fromY)
	if !ok {
		return false
	}
	to, ok := g.HeightAt(toX, toY)
	if !ok {
		return false
	}
	return gomath.Abs(float64(to-from)) <= float64(g.MaxClimb)
}

func (g *NavGrid) inBounds(cx, cy int) bool {
	return cx >= 0 && cx < g.Width && cy >= 0 && cy < g.Height
}

func (g *NavGrid) key(cx, cy int) int {
	return cy*g.Width + cx
}
