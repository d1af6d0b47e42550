// Package debug builds line overlays and captures screenshots for the viewer.
package debug

import (
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// LineVertex is one endpoint of a colored line segment.
// Layout matches the renderer's line program: [x, y, z, r, g, b].
type LineVertex struct {
	X, Y, Z float32
	R, G, B float32
}

// Overlay colors.
var (
	SeamColor   = [3]float32{1.0, 0.85, 0.2}
	MarkerColor = [3]float32{0.9, 0.2, 0.2}
	PathColor   = [3]float32{0.2, 0.6, 1.0}
)

// Lift raises overlays above the surface so they are not hidden by it.
const Lift = 0.01

func vertex(p math.Vec3, color [3]float32) LineVertex {
	return LineVertex{p.X, p.Y, p.Z, color[0], color[1], color[2]}
}

// TileOutlines returns line segments tracing the border of every tile along
// the terrain surface. Each border follows the heightmap samples of its edge,
// so seams between tiles show exactly where the shared mesh meets itself.
func TileOutlines(field *terrain.Field) []LineVertex {
	hf := field.HeightField()
	cols := hf.VerticesPerCol()
	rows := hf.VerticesPerRow()
	if cols <= 0 || rows <= 0 {
		return nil
	}

	tiles := field.Tiles()
	vertices := make([]LineVertex, 0, len(tiles)*4*(cols+rows))

	for _, tile := range tiles {
		b := tile.Bounds
		cellW := b.Width / float32(cols)
		cellH := b.Height / float32(rows)

		point := func(row, col int) math.Vec3 {
			return math.Vec3{
				X: b.MinX + float32(col)*cellW,
				Y: hf.Height(row, col)*tile.Scale + tile.Position.Y + Lift,
				Z: b.MinZ + float32(row)*cellH,
			}
		}

		for col := 0; col < cols; col++ {
			vertices = append(vertices,
				vertex(point(0, col), SeamColor), vertex(point(0, col+1), SeamColor),
				vertex(point(rows, col), SeamColor), vertex(point(rows, col+1), SeamColor),
			)
		}
		for row := 0; row < rows; row++ {
			vertices = append(vertices,
				vertex(point(row, 0), SeamColor), vertex(point(row+1, 0), SeamColor),
				vertex(point(row, cols), SeamColor), vertex(point(row+1, cols), SeamColor),
			)
		}
	}

	return vertices
}

// PathLines joins consecutive points with line segments.
func PathLines(points []math.Vec3) []LineVertex {
	if len(points) < 2 {
		return nil
	}

	vertices := make([]LineVertex, 0, 2*(len(points)-1))
	for i := 1; i < len(points); i++ {
		a := points[i-1]
		b := points[i]
		a.Y += Lift
		b.Y += Lift
		vertices = append(vertices, vertex(a, PathColor), vertex(b, PathColor))
	}
	return vertices
}
