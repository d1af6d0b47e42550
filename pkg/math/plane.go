package math

// Plane holds the coefficients of A*x + B*y + C*z + D = 0.
// Coefficients are kept in float64 so that interpolating across large,
// scaled triangles does not lose the precision of the float32 inputs.
type Plane struct {
	A, B, C, D float64
}

// PlaneFromPoints returns the plane through three points, with the normal
// given by (p1-p0) x (p2-p0).
func PlaneFromPoints(p0, p1, p2 Vec3) Plane {
	ax, ay, az := float64(p0.X), float64(p0.Y), float64(p0.Z)
	bx, by, bz := float64(p1.X), float64(p1.Y), float64(p1.Z)
	cx, cy, cz := float64(p2.X), float64(p2.Y), float64(p2.Z)

	a := (by-ay)*(cz-az) - (cy-ay)*(bz-az)
	b := (bz-az)*(cx-ax) - (cz-az)*(bx-ax)
	c := (bx-ax)*(cy-ay) - (cx-ax)*(by-ay)
	d := -(a*ax + b*ay + c*az)

	return Plane{A: a, B: b, C: c, D: d}
}

// SolveY returns the plane's Y at (x, z).
// ok is false for vertical planes (B == 0), which have no unique Y.
func (p Plane) SolveY(x, z float32) (y float32, ok bool) {
	if p.B == 0 {
		return 0, false
	}
	return float32((-p.D - p.A*float64(x) - p.C*float64(z)) / p.B), true
}
