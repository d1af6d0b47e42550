package debug

import "github.com/Faultbox/midgard-terrain/pkg/math"

// BoxVertexCount is the number of vertices in a box wireframe (12 edges × 2).
const BoxVertexCount = 24

// DefaultMarkerSize is the edge length of a walker marker.
const DefaultMarkerSize = 0.2

// BoxLines creates the 12 edges of an axis-aligned box.
func BoxLines(min, max math.Vec3, color [3]float32) []LineVertex {
	corner := func(x, y, z float32) LineVertex {
		return LineVertex{x, y, z, color[0], color[1], color[2]}
	}
	return []LineVertex{
		// Bottom face
		corner(min.X, min.Y, min.Z), corner(max.X, min.Y, min.Z),
		corner(max.X, min.Y, min.Z), corner(max.X, min.Y, max.Z),
		corner(max.X, min.Y, max.Z), corner(min.X, min.Y, max.Z),
		corner(min.X, min.Y, max.Z), corner(min.X, min.Y, min.Z),
		// Top face
		corner(min.X, max.Y, min.Z), corner(max.X, max.Y, min.Z),
		corner(max.X, max.Y, min.Z), corner(max.X, max.Y, max.Z),
		corner(max.X, max.Y, max.Z), corner(min.X, max.Y, max.Z),
		corner(min.X, max.Y, max.Z), corner(min.X, max.Y, min.Z),
		// Vertical edges
		corner(min.X, min.Y, min.Z), corner(min.X, max.Y, min.Z),
		corner(max.X, min.Y, min.Z), corner(max.X, max.Y, min.Z),
		corner(max.X, min.Y, max.Z), corner(max.X, max.Y, max.Z),
		corner(min.X, min.Y, max.Z), corner(min.X, max.Y, max.Z),
	}
}

// Marker returns a box of the given edge length standing on feet.
func Marker(feet math.Vec3, size float32) []LineVertex {
	half := size / 2
	return BoxLines(
		math.Vec3{X: feet.X - half, Y: feet.Y, Z: feet.Z - half},
		math.Vec3{X: feet.X + half, Y: feet.Y + size, Z: feet.Z + half},
		MarkerColor,
	)
}
