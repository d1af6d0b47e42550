package picking

import (
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// Surface is a height field that can be picked. *terrain.Field implements it.
type Surface interface {
	ElevationAt(x, z float32) (float32, error)
	Bounds() math.Rect
}

// Picker finds where rays first meet a Surface.
//
// The ray is marched in fixed steps until a sample lies on or below the
// surface, then the crossing is refined by bisection. Features thinner than
// Step can be missed.
type Picker struct {
	Step        float32 // March step in world units
	MaxDistance float32 // Give up after this distance along the ray
	Refinements int     // Bisection iterations
}

// NewPicker returns a picker with defaults suited to unit-scale terrain tiles.
func NewPicker() Picker {
	return Picker{
		Step:        0.05,
		MaxDistance: 500,
		Refinements: 20,
	}
}

// Pick returns the first point where ray meets the surface.
func (p Picker) Pick(ray Ray, surface Surface) (math.Vec3, bool) {
	tmin, tmax, ok := ray.ClipRect(surface.Bounds())
	if !ok || p.Step <= 0 {
		return math.Vec3{}, false
	}
	if tmax > p.MaxDistance {
		tmax = p.MaxDistance
	}

	// below reports whether the ray point at t is on or under the ground.
	below := func(t float32) bool {
		pt := ray.At(t)
		h, err := surface.ElevationAt(pt.X, pt.Z)
		return err == nil && pt.Y <= h
	}

	if below(tmin) {
		return p.hit(ray, surface, tmin)
	}

	prev := tmin
	for t := tmin + p.Step; t <= tmax+p.Step; t += p.Step {
		if t > tmax {
			t = tmax
		}
		if below(t) {
			lo, hi := prev, t
			for i := 0; i < p.Refinements; i++ {
				mid := (lo + hi) / 2
				if below(mid) {
					hi = mid
				} else {
					lo = mid
				}
			}
			return p.hit(ray, surface, hi)
		}
		if t == tmax {
			break
		}
		prev = t
	}

	return math.Vec3{}, false
}

// hit snaps the ray point at t onto the surface.
func (p Picker) hit(ray Ray, surface Surface, t float32) (math.Vec3, bool) {
	pt := ray.At(t)
	h, err := surface.ElevationAt(pt.X, pt.Z)
	if err != nil {
		return math.Vec3{}, false
	}
	return math.Vec3{X: pt.X, Y: h, Z: pt.Z}, true
}
