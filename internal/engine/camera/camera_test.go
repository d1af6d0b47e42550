package camera

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/midgard-terrain/pkg/math"
)

var errOff = errors.New("off terrain")

// slope rises 0.5 per unit of x inside [-10, 10) on both axes.
type slope struct{}

func (slope) ElevationAt(x, z float32) (float32, error) {
	if x < -10 || x >= 10 || z < -10 || z >= 10 {
		return 0, errOff
	}
	return 0.5 * x, nil
}

func approx(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-4
}

func TestWalkCameraPlaceClampsToGround(t *testing.T) {
	c := NewWalkCamera(slope{}, 1.5, 4, 0.01)
	c.Place(4, 0)

	if !c.Grounded() {
		t.Fatal("camera should be grounded")
	}
	if !approx(c.Position.Y, 3.5) {
		t.Errorf("Position.Y = %v, want 3.5", c.Position.Y)
	}
}

func TestWalkCameraMoveFollowsGround(t *testing.T) {
	c := NewWalkCamera(slope{}, 1, 2, 0.01)
	c.Place(0, 0)

	// Yaw of +90 degrees faces +X.
	c.Yaw = gomath.Pi / 2
	c.Move(1, 0, 1)

	if !approx(c.Position.X, 2) || !approx(c.Position.Z, 0) {
		t.Errorf("Position = (%v, %v), want (2, 0)", c.Position.X, c.Position.Z)
	}
	if !approx(c.Position.Y, 2) {
		t.Errorf("Position.Y = %v, want 2", c.Position.Y)
	}
}

func TestWalkCameraDiagonalMoveIsNormalized(t *testing.T) {
	c := NewWalkCamera(slope{}, 1, 1, 0.01)
	c.Place(0, 0)
	c.Move(1, 1, 1)

	moved := math.Vec2{X: c.Position.X, Y: c.Position.Z}.Length()
	if !approx(moved, 1) {
		t.Errorf("moved %v, want 1", moved)
	}
}

func TestWalkCameraKeepsLastHeightOffTerrain(t *testing.T) {
	c := NewWalkCamera(slope{}, 1, 10, 0.01)
	c.Place(8, 0)
	c.Yaw = gomath.Pi / 2
	c.Move(1, 0, 1) // x = 18, off terrain

	if c.Grounded() {
		t.Error("camera should not be grounded off terrain")
	}
	if !approx(c.Position.Y, 5) {
		t.Errorf("Position.Y = %v, want last ground 4 + eye 1", c.Position.Y)
	}
}

func TestWalkCameraPitchClamp(t *testing.T) {
	c := NewWalkCamera(nil, 1, 1, 0.01)
	c.Look(0, -1000)
	if c.Pitch != c.MaxPitch {
		t.Errorf("Pitch = %v, want %v", c.Pitch, c.MaxPitch)
	}
	c.Look(0, 1000)
	if c.Pitch != -c.MaxPitch {
		t.Errorf("Pitch = %v, want %v", c.Pitch, -c.MaxPitch)
	}
}

func TestWalkCameraLookDirection(t *testing.T) {
	c := NewWalkCamera(nil, 1, 1, 0.01)
	dir := c.LookDirection()
	if !approx(dir.X, 0) || !approx(dir.Y, 0) || !approx(dir.Z, -1) {
		t.Errorf("LookDirection() = %+v, want (0, 0, -1)", dir)
	}
}

func TestOrbitCameraFitToBounds(t *testing.T) {
	c := NewOrbitCamera(nil)
	c.FitToBounds(math.Rect{MinX: -15, MinZ: -5, Width: 30, Height: 10}, 2)

	if c.Target != (math.Vec3{X: 0, Y: 2, Z: 0}) {
		t.Errorf("Target = %+v, want (0, 2, 0)", c.Target)
	}
	if !approx(c.Distance, 36) {
		t.Errorf("Distance = %v, want 36", c.Distance)
	}
}

func TestOrbitCameraZoomClamp(t *testing.T) {
	c := NewOrbitCamera(nil)
	for i := 0; i < 100; i++ {
		c.Zoom(5)
	}
	if c.Distance != c.MinDistance {
		t.Errorf("Distance = %v, want %v", c.Distance, c.MinDistance)
	}
}

func TestOrbitCameraPanFollowsGround(t *testing.T) {
	c := NewOrbitCamera(slope{})
	c.Distance = 100 // One unit of pan per unit of input.
	c.Yaw = gomath.Pi / 2
	c.LookAt(math.Vec3{X: 0, Y: 1, Z: 0})

	if c.Lift != 1 {
		t.Fatalf("Lift = %v, want 1", c.Lift)
	}

	// Yaw of a quarter turn faces -X; panning right moves toward -Z.
	c.Pan(4, 0, 0)
	if !approx(c.Target.X, -4) || !approx(c.Target.Y, -1) {
		t.Errorf("after forward pan Target = %+v, want x -4, y -1", c.Target)
	}

	// Off the slope the target keeps its last height.
	c.Pan(20, 0, 0)
	if !approx(c.Target.Y, -1) {
		t.Errorf("off terrain Target.Y = %v, want -1", c.Target.Y)
	}
}

func TestOrbitCameraPosition(t *testing.T) {
	c := NewOrbitCamera(nil)
	c.Distance = 10
	c.Pitch = 0
	c.Yaw = 0
	c.LookAt(math.Vec3{X: 1, Y: 2, Z: 3})

	p := c.Position()
	if !approx(p.X, 1) || !approx(p.Y, 2) || !approx(p.Z, 13) {
		t.Errorf("Position() = %+v, want (1, 2, 13)", p)
	}
}
