package math

// Rect is an axis-aligned rectangle on the XZ ground plane.
type Rect struct {
	MinX, MinZ    float32
	Width, Height float32
}

// MaxX returns the exclusive upper X edge.
func (r Rect) MaxX() float32 {
	return r.MinX + r.Width
}

// MaxZ returns the exclusive upper Z edge.
func (r Rect) MaxZ() float32 {
	return r.MinZ + r.Height
}

// Contains reports whether (x, z) lies inside r.
// Min edges are inclusive and max edges exclusive, so rectangles that share
// an edge never both contain a point on it.
func (r Rect) Contains(x, z float32) bool {
	return x >= r.MinX && x < r.MinX+r.Width &&
		z >= r.MinZ && z < r.MinZ+r.Height
}

// Center returns the rectangle midpoint (X, Z).
func (r Rect) Center() Vec2 {
	return Vec2{r.MinX + r.Width/2, r.MinZ + r.Height/2}
}

// Union returns the smallest rectangle covering both r and other.
func (r Rect) Union(other Rect) Rect {
	minX := min(r.MinX, other.MinX)
	minZ := min(r.MinZ, other.MinZ)
	maxX := max(r.MaxX(), other.MaxX())
	maxZ := max(r.MaxZ(), other.MaxZ())
	return Rect{MinX: minX, MinZ: minZ, Width: maxX - minX, Height: maxZ - minZ}
}
