package world

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// State is what a walker is doing.
type State int

const (
	StateIdle State = iota
	StateWalking
	StateFalling // Left the terrain and dropping into the void
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWalking:
		return "walking"
	case StateFalling:
		return "falling"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

const (
	// ArrivalThreshold is the distance at which a walker is considered to have arrived.
	ArrivalThreshold = 0.01

	// DefaultMoveSpeed is the default movement speed in world units per second.
	DefaultMoveSpeed = 2.0

	// Gravity accelerates falling walkers, in world units per second squared.
	Gravity = 9.8

	// VoidDepth is the height below which a falling walker is gone for good.
	VoidDepth = -100.0
)

// Ground answers terrain elevation queries. *terrain.Field implements it.
type Ground interface {
	ElevationAt(x, z float32) (float32, error)
	Bounds() math.Rect
}

// Walker is an entity that moves across the terrain with its feet on the ground.
type Walker struct {
	ID       uint32
	Position math.Vec3
	Heading  float32 // Yaw of the last movement, radians, 0 = +Z
	State    State

	MoveSpeed float32 // Units per second

	Dest           math.Vec2
	HasDestination bool

	fallSpeed float32
}

// NewWalker creates an idle walker at (x, z). Its height is unset until it is
// clamped to a ground.
func NewWalker(id uint32, x, z float32) *Walker {
	return &Walker{
		ID:        id,
		Position:  math.Vec3{X: x, Z: z},
		MoveSpeed: DefaultMoveSpeed,
	}
}

// SetDestination sets a click-to-move destination. Falling walkers ignore it.
func (w *Walker) SetDestination(x, z float32) {
	if w.State == StateFalling {
		return
	}
	w.Dest = math.Vec2{X: x, Y: z}
	w.HasDestination = true
}

// ClearDestination stops the walker where it is.
func (w *Walker) ClearDestination() {
	w.HasDestination = false
	if w.State == StateWalking {
		w.State = StateIdle
	}
}

// Gone reports whether the walker has fallen past VoidDepth.
func (w *Walker) Gone() bool {
	return w.State == StateFalling && w.Position.Y < VoidDepth
}

// Update advances the walker by dt seconds.
func (w *Walker) Update(dt float32, ground Ground) error {
	if w.State == StateFalling {
		w.fallSpeed += Gravity * dt
		w.Position.Y -= w.fallSpeed * dt
		return nil
	}

	if w.HasDestination {
		w.step(dt)
	}

	return w.Clamp(ground)
}

func (w *Walker) step(dt float32) {
	d := w.Dest.Sub(w.Position.XZ())
	dist := d.Length()

	if dist < ArrivalThreshold {
		w.HasDestination = false
		w.State = StateIdle
		return
	}

	moveAmount := w.MoveSpeed * dt
	if moveAmount > dist {
		moveAmount = dist
	}

	dir := d.Scale(1 / dist)
	w.Position.X += dir.X * moveAmount
	w.Position.Z += dir.Y * moveAmount
	w.Heading = float32(gomath.Atan2(float64(dir.X), float64(dir.Y)))
	w.State = StateWalking

	if moveAmount == dist {
		w.HasDestination = false
		w.State = StateIdle
	}
}

// Clamp puts the walker's feet on the ground at its current (x, z).
//
// A walker outside every tile starts falling. A degenerate surface leaves
// the height unchanged and returns the error.
func (w *Walker) Clamp(ground Ground) error {
	if w.State == StateFalling {
		return nil
	}

	y, err := ground.ElevationAt(w.Position.X, w.Position.Z)
	switch {
	case err == nil:
		w.Position.Y = y
		return nil
	case errors.Is(err, terrain.ErrNotFound):
		w.State = StateFalling
		w.HasDestination = false
		w.fallSpeed = 0
		return nil
	default:
		return fmt.Errorf("walker %d: %w", w.ID, err)
	}
}
