package terrain

import (
	"fmt"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-terrain/internal/logger"
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// ElevationAt returns the ground elevation at world (x, z).
//
// The tile whose footprint contains the point is found first (row-major, the
// first match wins on shared edges). Within it the point is mapped to a grid
// cell, then to one of the cell's two triangles, and the elevation is read
// off that triangle's plane. The result matches the rendered surface exactly.
//
// It returns ErrNotFound outside the terrain and ErrDegeneratePlane if the
// selected triangle is vertical.
func (f *Field) ElevationAt(x, z float32) (float32, error) {
	idx := f.tileIndexAt(x, z)
	if idx < 0 {
		return 0, ErrNotFound
	}
	tile := &f.tiles[idx]

	a, b, c := f.triangleAt(tile, x, z)
	y, ok := math.PlaneFromPoints(a, b, c).SolveY(x, z)
	if !ok || gomath.IsNaN(float64(y)) || gomath.IsInf(float64(y), 0) {
		logger.Named("terrain").Warn("degenerate triangle under query point",
			zap.Int("tile", idx),
			zap.Float32("x", x),
			zap.Float32("z", z),
		)
		return 0, fmt.Errorf("%w: tile %d at (%g, %g)", ErrDegeneratePlane, idx, x, z)
	}
	return y, nil
}

// HeightAt is ElevationAt for callers that only need to know whether there
// is ground under the point.
func (f *Field) HeightAt(x, z float32) (float32, bool) {
	y, err := f.ElevationAt(x, z)
	return y, err == nil
}

// TileAt returns the tile containing world (x, z).
func (f *Field) TileAt(x, z float32) (Tile, bool) {
	idx := f.tileIndexAt(x, z)
	if idx < 0 {
		return Tile{}, false
	}
	return f.tiles[idx], true
}

// tileIndexAt scans the tiles in row-major order. The grid is small (tens of
// tiles per side at most) so a scan beats maintaining an index.
func (f *Field) tileIndexAt(x, z float32) int {
	for i := range f.tiles {
		if f.tiles[i].Bounds.Contains(x, z) {
			return i
		}
	}
	return -1
}

// triangleAt returns the three world-space corners of the mesh triangle
// under (x, z). b and c lie on the cell diagonal from (col, row+1) to
// (col+1, row); a is (col, row) for points below the diagonal and
// (col+1, row+1) otherwise.
func (f *Field) triangleAt(tile *Tile, x, z float32) (a, b, c math.Vec3) {
	hf := f.heightField
	cellsX, cellsZ := hf.VerticesPerCol(), hf.VerticesPerRow()
	box := tile.Bounds

	cellWidth := box.Width / float32(cellsX)
	cellHeight := box.Height / float32(cellsZ)

	col := int(gomath.Floor(float64((x - box.MinX) / cellWidth)))
	row := int(gomath.Floor(float64((z - box.MinZ) / cellHeight)))
	// Rounding can push a point just inside the max edge onto a cell that
	// does not exist.
	col = max(0, min(col, cellsX-1))
	row = max(0, min(row, cellsZ-1))

	cellX := func(i int) float32 { return box.MinX + float32(i)*cellWidth }
	cellZ := func(i int) float32 { return box.MinZ + float32(i)*cellHeight }

	b = math.Vec3{X: cellX(col), Y: f.worldHeight(tile, row+1, col), Z: cellZ(row + 1)}
	c = math.Vec3{X: cellX(col + 1), Y: f.worldHeight(tile, row, col+1), Z: cellZ(row)}

	if z < diagonalZ(b.X, b.Z, c.X, c.Z, x) {
		a = math.Vec3{X: cellX(col), Y: f.worldHeight(tile, row, col), Z: cellZ(row)}
	} else {
		a = math.Vec3{X: cellX(col + 1), Y: f.worldHeight(tile, row+1, col+1), Z: cellZ(row + 1)}
	}
	return a, b, c
}

// diagonalZ returns the z of the line through (x1, z1) and (x2, z2) at x.
func diagonalZ(x1, z1, x2, z2, x float32) float32 {
	return ((z1-z2)/(x1-x2))*(x-x1) + z1
}

// worldHeight applies the tile transform to a raw sample.
func (f *Field) worldHeight(tile *Tile, row, col int) float32 {
	return f.heightField.Height(row, col)*tile.Scale + tile.Position.Y
}
