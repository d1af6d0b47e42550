// Package camera provides camera implementations for 3D rendering.
package camera

import (
	gomath "math"

	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// OrbitCamera looks at a target from a point on a sphere around it. With a
// ground set, the target rides the terrain while panning and Lift is its
// height above the surface.
type OrbitCamera struct {
	Target   math.Vec3
	Lift     float32
	Distance float32
	Yaw      float32 // Radians, 0 looks toward -Z
	Pitch    float32 // Radians above the horizon

	MinDistance, MaxDistance float32
	MinPitch, MaxPitch       float32

	DragSensitivity float32 // Radians per pixel
	ZoomSensitivity float32 // Fraction of Distance per wheel step

	ground Ground
}

// NewOrbitCamera creates an orbit camera over ground, which may be nil.
func NewOrbitCamera(ground Ground) *OrbitCamera {
	return &OrbitCamera{
		Distance:        40,
		Pitch:           0.5,
		MinDistance:     1,
		MaxDistance:     1000,
		MinPitch:        0.1,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		ground:          ground,
	}
}

// SetGround replaces the surface the target follows and re-seats the target.
func (c *OrbitCamera) SetGround(ground Ground) {
	c.ground = ground
	c.settle()
}

// LookAt moves the target to p. Lift becomes p's height above the ground.
func (c *OrbitCamera) LookAt(p math.Vec3) {
	c.Target = p
	c.Lift = 0
	if c.ground == nil {
		return
	}
	if y, err := c.ground.ElevationAt(p.X, p.Z); err == nil {
		c.Lift = p.Y - y
	}
}

// Position returns the eye position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	sinP, cosP := gomath.Sincos(float64(c.Pitch))
	sinY, cosY := gomath.Sincos(float64(c.Yaw))
	offset := math.Vec3{
		X: float32(cosP * sinY),
		Y: float32(sinP),
		Z: float32(cosP * cosY),
	}
	return c.Target.Add(offset.Scale(c.Distance))
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Target, math.Vec3{Y: 1})
}

// Orbit turns the eye around the target by a mouse drag in pixels.
func (c *OrbitCamera) Orbit(dx, dy float32) {
	c.Yaw -= dx * c.DragSensitivity
	c.Pitch = clampf(c.Pitch+dy*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// Zoom moves the eye toward the target by wheel steps.
func (c *OrbitCamera) Zoom(steps float32) {
	c.Distance = clampf(c.Distance*(1-steps*c.ZoomSensitivity), c.MinDistance, c.MaxDistance)
}

// Pan slides the target across the ground in view-relative directions and
// raises it by up. Speed grows with Distance.
func (c *OrbitCamera) Pan(forward, right, up float32) {
	speed := c.Distance * 0.01
	sinY, cosY := gomath.Sincos(float64(c.Yaw))
	fx, fz := -float32(sinY), -float32(cosY)
	rx, rz := float32(cosY), -float32(sinY)

	c.Target.X += (fx*forward + rx*right) * speed
	c.Target.Z += (fz*forward + rz*right) * speed
	c.Lift += up * speed
	if c.ground == nil {
		c.Target.Y += up * speed
		return
	}
	c.settle()
}

// settle puts the target Lift above the ground. Off the terrain the target
// keeps its height.
func (c *OrbitCamera) settle() {
	if c.ground == nil {
		return
	}
	if y, err := c.ground.ElevationAt(c.Target.X, c.Target.Z); err == nil {
		c.Target.Y = y + c.Lift
	}
}

// FitToBounds targets the middle of a terrain rectangle at height y and backs
// off far enough to see all of it.
func (c *OrbitCamera) FitToBounds(bounds math.Rect, y float32) {
	center := bounds.Center()
	c.LookAt(math.Vec3{X: center.X, Y: y, Z: center.Y})
	c.Distance = clampf(max(bounds.Width, bounds.Height)*1.2, c.MinDistance, c.MaxDistance)
	c.Pitch = 0.6
	c.Yaw = 0
}

func clampf(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}
