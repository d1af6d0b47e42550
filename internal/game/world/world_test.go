package world

import (
	"context"
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// fakeGround is a height function over a rectangle, with optional unit-cell holes.
type fakeGround struct {
	bounds math.Rect
	height func(x, z float32) float32
	holes  map[[2]int]bool
}

func (g fakeGround) Bounds() math.Rect { return g.bounds }

func (g fakeGround) ElevationAt(x, z float32) (float32, error) {
	if !g.bounds.Contains(x, z) {
		return 0, terrain.ErrNotFound
	}
	cell := [2]int{int(gomath.Floor(float64(x))), int(gomath.Floor(float64(z)))}
	if g.holes[cell] {
		return 0, terrain.ErrNotFound
	}
	if g.height == nil {
		return 0, nil
	}
	return g.height(x, z), nil
}

// brokenGround reports a degenerate surface everywhere.
type brokenGround struct{ fakeGround }

func (brokenGround) ElevationAt(x, z float32) (float32, error) {
	return 0, terrain.ErrDegeneratePlane
}

func slopeGround() fakeGround {
	return fakeGround{
		bounds: math.Rect{MinX: -10, MinZ: -10, Width: 20, Height: 20},
		height: func(x, z float32) float32 { return 0.5 * x },
	}
}

func TestWalkerMovesAndFollowsGround(t *testing.T) {
	ground := slopeGround()
	w := NewWalker(1, 0, 0)
	w.SetDestination(4, 0)

	if err := w.Update(1, ground); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if w.Position.X != 2 || w.Position.Y != 1 {
		t.Errorf("after 1s: Position = %+v, want x=2 y=1", w.Position)
	}
	if w.State != StateWalking {
		t.Errorf("State = %v, want walking", w.State)
	}
	if gomath.Abs(float64(w.Heading)-gomath.Pi/2) > 1e-6 {
		t.Errorf("Heading = %v, want pi/2", w.Heading)
	}

	if err := w.Update(1, ground); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if w.Position.X != 4 || w.Position.Y != 2 {
		t.Errorf("after 2s: Position = %+v, want x=4 y=2", w.Position)
	}
	if w.State != StateIdle || w.HasDestination {
		t.Errorf("walker should have arrived, State = %v, HasDestination = %v", w.State, w.HasDestination)
	}
}

func TestWalkerFallsOffTheEdge(t *testing.T) {
	ground := slopeGround()
	w := NewWalker(1, 9, 0)
	if err := w.Clamp(ground); err != nil {
		t.Fatal(err)
	}
	w.SetDestination(12, 0)

	if err := w.Update(1, ground); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if w.State != StateFalling {
		t.Fatalf("State = %v, want falling", w.State)
	}
	if w.Position.Y != 4.5 {
		t.Errorf("Position.Y = %v, want 4.5 at the moment it left the ground", w.Position.Y)
	}

	// Falling walkers ignore new orders.
	w.SetDestination(0, 0)
	if w.HasDestination {
		t.Error("falling walker accepted a destination")
	}

	prev := w.Position.Y
	for i := 0; i < 20 && !w.Gone(); i++ {
		if err := w.Update(0.5, ground); err != nil {
			t.Fatal(err)
		}
		if w.Position.Y >= prev {
			t.Fatalf("walker stopped falling at %v", w.Position.Y)
		}
		prev = w.Position.Y
	}
	if !w.Gone() {
		t.Errorf("walker at y=%v should be gone", w.Position.Y)
	}
}

func TestWalkerDegenerateGroundKeepsHeight(t *testing.T) {
	w := NewWalker(7, 1, 1)
	w.Position.Y = 3

	err := w.Clamp(brokenGround{slopeGround()})
	if !errors.Is(err, terrain.ErrDegeneratePlane) {
		t.Fatalf("Clamp() error = %v, want ErrDegeneratePlane", err)
	}
	if w.Position.Y != 3 || w.State == StateFalling {
		t.Errorf("walker changed: y=%v state=%v", w.Position.Y, w.State)
	}
}

func TestClampAll(t *testing.T) {
	ground := slopeGround()

	var walkers []*Walker
	for i := 0; i < 100; i++ {
		x := float32(i%20) - 10
		z := float32(i/20) - 2
		walkers = append(walkers, NewWalker(uint32(i), x, z))
	}

	if err := ClampAll(context.Background(), ground, walkers, 4); err != nil {
		t.Fatalf("ClampAll() error = %v", err)
	}
	for _, w := range walkers {
		if want := 0.5 * w.Position.X; w.Position.Y != want {
			t.Errorf("walker %d: y = %v, want %v", w.ID, w.Position.Y, want)
		}
	}
}

func TestClampAllErrors(t *testing.T) {
	walkers := []*Walker{NewWalker(1, 0, 0), NewWalker(2, 1, 1)}

	err := ClampAll(context.Background(), brokenGround{slopeGround()}, walkers, 0)
	if !errors.Is(err, terrain.ErrDegeneratePlane) {
		t.Errorf("ClampAll() error = %v, want ErrDegeneratePlane", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = ClampAll(ctx, slopeGround(), walkers, 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ClampAll(cancelled) error = %v, want context.Canceled", err)
	}
}

func TestWorldSpawn(t *testing.T) {
	w := New(slopeGround(), 2)

	walker, err := w.Spawn(4, 0)
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	if walker.Position.Y != 2 {
		t.Errorf("Position.Y = %v, want 2", walker.Position.Y)
	}
	if walker.ID != 1 {
		t.Errorf("ID = %d, want 1", walker.ID)
	}

	if _, err := w.Spawn(50, 0); !errors.Is(err, terrain.ErrNotFound) {
		t.Errorf("Spawn(off terrain) error = %v, want ErrNotFound", err)
	}
	if w.Len() != 1 {
		t.Errorf("Len() = %d, want 1", w.Len())
	}

	if _, err := New(nil, 1).Spawn(0, 0); !errors.Is(err, ErrNoGround) {
		t.Errorf("Spawn(no ground) error = %v, want ErrNoGround", err)
	}
}

func TestWorldUpdateRemovesFallenWalkers(t *testing.T) {
	w := New(slopeGround(), 0)
	stayer, _ := w.Spawn(0, 0)
	leaver, _ := w.Spawn(9, 0)
	leaver.SetDestination(30, 0)

	removed := 0
	for i := 0; i < 40; i++ {
		n, err := w.Update(context.Background(), 0.5)
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		removed += n
	}

	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, ok := w.Get(leaver.ID); ok {
		t.Error("leaver should be gone")
	}
	if got := w.Walkers(); len(got) != 1 || got[0] != stayer {
		t.Errorf("Walkers() = %v, want only the stayer", got)
	}
}

func TestWorldUpdateToleratesDegenerateGround(t *testing.T) {
	w := New(slopeGround(), 0)
	walker, _ := w.Spawn(2, 0)

	if err := w.SetGround(context.Background(), slopeGround()); err != nil {
		t.Fatal(err)
	}
	w.ground = brokenGround{slopeGround()}

	if _, err := w.Update(context.Background(), 0.1); err != nil {
		t.Errorf("Update() error = %v, want nil", err)
	}
	if walker.Position.Y != 1 {
		t.Errorf("Position.Y = %v, want unchanged 1", walker.Position.Y)
	}
}

func TestWorldSetGroundReclamps(t *testing.T) {
	w := New(slopeGround(), 0)
	a, _ := w.Spawn(2, 0)
	b, _ := w.Spawn(-4, 3)

	flat := fakeGround{
		bounds: math.Rect{MinX: -10, MinZ: -10, Width: 20, Height: 20},
		height: func(x, z float32) float32 { return 3 },
	}
	if err := w.SetGround(context.Background(), flat); err != nil {
		t.Fatalf("SetGround() error = %v", err)
	}
	if a.Position.Y != 3 || b.Position.Y != 3 {
		t.Errorf("heights = %v, %v; want 3, 3", a.Position.Y, b.Position.Y)
	}
	if err := w.SetGround(context.Background(), nil); !errors.Is(err, ErrNoGround) {
		t.Errorf("SetGround(nil) error = %v, want ErrNoGround", err)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{StateIdle, "idle"},
		{StateWalking, "walking"},
		{StateFalling, "falling"},
		{State(9), "State(9)"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
