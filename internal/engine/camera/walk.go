package camera

import (
	gomath "math"

	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// Ground answers terrain elevation queries. *terrain.Field implements it.
type Ground interface {
	ElevationAt(x, z float32) (float32, error)
}

// WalkCamera is a first-person camera that keeps its eye a fixed height
// above the terrain.
//
// Yaw 0 looks down -Z. When the eye leaves the terrain (or the query fails)
// the camera keeps the last ground height it saw.
type WalkCamera struct {
	Position math.Vec3 // Eye position
	Yaw      float32   // Radians, clockwise seen from above
	Pitch    float32   // Radians, positive looks up

	EyeHeight   float32
	Speed       float32 // World units per second
	Sensitivity float32 // Radians per pixel of mouse motion
	MaxPitch    float32

	ground     Ground
	lastGround float32
	grounded   bool
}

// NewWalkCamera creates a walk camera over ground.
func NewWalkCamera(ground Ground, eyeHeight, speed, sensitivity float32) *WalkCamera {
	return &WalkCamera{
		EyeHeight:   eyeHeight,
		Speed:       speed,
		Sensitivity: sensitivity,
		MaxPitch:    1.5,
		ground:      ground,
	}
}

// SetGround swaps the terrain under the camera and re-clamps the eye.
func (c *WalkCamera) SetGround(ground Ground) {
	c.ground = ground
	c.clamp()
}

// Place moves the camera to (x, z) and snaps the eye to the ground.
func (c *WalkCamera) Place(x, z float32) {
	c.Position.X = x
	c.Position.Z = z
	c.clamp()
}

// Grounded reports whether the last clamp found terrain under the eye.
func (c *WalkCamera) Grounded() bool {
	return c.grounded
}

// Look applies mouse motion in pixels.
func (c *WalkCamera) Look(deltaX, deltaY float32) {
	c.Yaw += deltaX * c.Sensitivity
	c.Pitch -= deltaY * c.Sensitivity

	if c.Pitch > c.MaxPitch {
		c.Pitch = c.MaxPitch
	}
	if c.Pitch < -c.MaxPitch {
		c.Pitch = -c.MaxPitch
	}
}

// Move walks along the ground. forward and right are in [-1, 1]; dt is the
// frame time in seconds. Pitch does not affect walking direction.
func (c *WalkCamera) Move(forward, right, dt float32) {
	if forward == 0 && right == 0 {
		return
	}

	fx, fz := c.ForwardDirection()
	rx, rz := c.RightDirection()
	dir := math.Vec2{X: fx*forward + rx*right, Y: fz*forward + rz*right}.Normalize()

	step := c.Speed * dt
	c.Position.X += dir.X * step
	c.Position.Z += dir.Y * step
	c.clamp()
}

// ForwardDirection returns the walking direction on the XZ plane.
func (c *WalkCamera) ForwardDirection() (x, z float32) {
	return float32(gomath.Sin(float64(c.Yaw))), float32(-gomath.Cos(float64(c.Yaw)))
}

// RightDirection returns the strafing direction on the XZ plane.
func (c *WalkCamera) RightDirection() (x, z float32) {
	return float32(gomath.Cos(float64(c.Yaw))), float32(gomath.Sin(float64(c.Yaw)))
}

// LookDirection returns the unit view direction including pitch.
func (c *WalkCamera) LookDirection() math.Vec3 {
	cp := float32(gomath.Cos(float64(c.Pitch)))
	fx, fz := c.ForwardDirection()
	return math.Vec3{
		X: fx * cp,
		Y: float32(gomath.Sin(float64(c.Pitch))),
		Z: fz * cp,
	}
}

// ViewMatrix returns the view matrix for this camera.
func (c *WalkCamera) ViewMatrix() math.Mat4 {
	up := math.Vec3{X: 0, Y: 1, Z: 0}
	return math.LookAt(c.Position, c.Position.Add(c.LookDirection()), up)
}

func (c *WalkCamera) clamp() {
	c.grounded = false
	if c.ground != nil {
		if y, err := c.ground.ElevationAt(c.Position.X, c.Position.Z); err == nil {
			c.lastGround = y
			c.grounded = true
		}
	}
	c.Position.Y = c.lastGround + c.EyeHeight
}
