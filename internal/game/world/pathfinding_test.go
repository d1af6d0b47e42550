package world

import (
	"context"
	"errors"
	"testing"

	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// mockGrid samples a flat width x height area with unit cells; blocked cells
// are holes in the terrain.
func mockGrid(t *testing.T, width, height int, blocked [][2]int) *NavGrid {
	t.Helper()

	holes := make(map[[2]int]bool)
	for _, b := range blocked {
		holes[b] = true
	}
	ground := fakeGround{
		bounds: math.Rect{Width: float32(width), Height: float32(height)},
		holes:  holes,
	}

	grid, err := BuildNavGrid(context.Background(), ground, 1, 0.5, 2)
	if err != nil {
		t.Fatalf("BuildNavGrid() error = %v", err)
	}
	return grid
}

func TestPathFinder_FindPath_Simple(t *testing.T) {
	// 5x5 grid, no obstacles
	grid := mockGrid(t, 5, 5, nil)
	pf := NewPathFinder(grid)

	path := pf.FindPath(0, 0, 4, 4)
	if path == nil {
		t.Fatal("expected path, got nil")
	}

	// Path should start at (0,0) and end at (4,4)
	if path[0][0] != 0 || path[0][1] != 0 {
		t.Errorf("path should start at (0,0), got (%d,%d)", path[0][0], path[0][1])
	}

	lastIdx := len(path) - 1
	if path[lastIdx][0] != 4 || path[lastIdx][1] != 4 {
		t.Errorf("path should end at (4,4), got (%d,%d)", path[lastIdx][0], path[lastIdx][1])
	}
}

func TestPathFinder_FindPath_WithObstacle(t *testing.T) {
	// 5x5 grid with wall in the middle
	blocked := [][2]int{
		{2, 0}, {2, 1}, {2, 2}, {2, 3},
	}
	grid := mockGrid(t, 5, 5, blocked)
	pf := NewPathFinder(grid)

	path := pf.FindPath(0, 2, 4, 2)
	if path == nil {
		t.Fatal("expected path around obstacle, got nil")
	}

	// Verify path doesn't go through blocked cells
	for _, p := range path {
		if p[0] == 2 && p[1] < 4 {
			t.Errorf("path went through blocked cell at (%d,%d)", p[0], p[1])
		}
	}
}

func TestPathFinder_FindPath_NoPath(t *testing.T) {
	// 5x5 grid with complete wall
	blocked := [][2]int{
		{2, 0}, {2, 1}, {2, 2}, {2, 3}, {2, 4},
	}
	grid := mockGrid(t, 5, 5, blocked)
	pf := NewPathFinder(grid)

	path := pf.FindPath(0, 2, 4, 2)
	if path != nil {
		t.Errorf("expected no path, got %v", path)
	}
}

func TestPathFinder_FindPath_SameStartGoal(t *testing.T) {
	grid := mockGrid(t, 5, 5, nil)
	pf := NewPathFinder(grid)

	path := pf.FindPath(2, 2, 2, 2)
	if path == nil || len(path) == 0 {
		t.Fatal("expected path with single node")
	}

	if len(path) != 1 {
		t.Errorf("expected path length 1, got %d", len(path))
	}
}

func TestPathFinder_FindPath_OutOfBounds(t *testing.T) {
	grid := mockGrid(t, 5, 5, nil)
	pf := NewPathFinder(grid)

	// Start out of bounds
	path := pf.FindPath(-1, 0, 4, 4)
	if path != nil {
		t.Error("expected nil for out of bounds start")
	}

	// Goal out of bounds
	path = pf.FindPath(0, 0, 10, 10)
	if path != nil {
		t.Error("expected nil for out of bounds goal")
	}
}

func TestPathFinder_FindPath_BlockedGoal(t *testing.T) {
	blocked := [][2]int{{4, 4}}
	grid := mockGrid(t, 5, 5, blocked)
	pf := NewPathFinder(grid)

	path := pf.FindPath(0, 0, 4, 4)
	if path != nil {
		t.Error("expected nil for blocked goal")
	}
}

func TestPathFinder_IsWalkable(t *testing.T) {
	blocked := [][2]int{{2, 2}}
	grid := mockGrid(t, 5, 5, blocked)
	pf := NewPathFinder(grid)

	if pf.IsWalkable(2, 2) {
		t.Error("expected (2,2) to be blocked")
	}

	if !pf.IsWalkable(0, 0) {
		t.Error("expected (0,0) to be walkable")
	}

	if pf.IsWalkable(-1, 0) {
		t.Error("expected out of bounds to be not walkable")
	}
}

func TestPathFinder_FindPath_ClimbsAroundRidge(t *testing.T) {
	// A ridge at x in [2, 3) for z < 4 is too steep to cross.
	ground := fakeGround{
		bounds: math.Rect{Width: 5, Height: 5},
		height: func(x, z float32) float32 {
			if x >= 2 && x < 3 && z < 4 {
				return 5
			}
			return 0
		},
	}
	grid, err := BuildNavGrid(context.Background(), ground, 1, 0.5, 0)
	if err != nil {
		t.Fatal(err)
	}

	if !grid.IsWalkable(2, 0) {
		t.Error("ridge cells are terrain and should be walkable")
	}
	if grid.CanStep(1, 0, 2, 0) {
		t.Error("stepping onto the ridge should exceed MaxClimb")
	}

	path := NewPathFinder(grid).FindPath(0, 0, 4, 0)
	if path == nil {
		t.Fatal("expected path around the ridge")
	}
	for _, p := range path {
		if p[0] == 2 && p[1] < 4 {
			t.Errorf("path crossed the ridge at (%d,%d)", p[0], p[1])
		}
	}
}

func TestNavGrid(t *testing.T) {
	ground := slopeGround()
	grid, err := BuildNavGrid(context.Background(), ground, 2, 1, 0)
	if err != nil {
		t.Fatalf("BuildNavGrid() error = %v", err)
	}

	if grid.Width != 10 || grid.Height != 10 {
		t.Errorf("size = %dx%d, want 10x10", grid.Width, grid.Height)
	}
	if c := grid.CellCenter(0, 0); c != (math.Vec2{X: -9, Y: -9}) {
		t.Errorf("CellCenter(0, 0) = %+v, want (-9, -9)", c)
	}
	if cx, cy, ok := grid.CellAt(0.5, -0.5); !ok || cx != 5 || cy != 4 {
		t.Errorf("CellAt(0.5, -0.5) = (%d, %d, %v), want (5, 4, true)", cx, cy, ok)
	}
	if _, _, ok := grid.CellAt(-11, 0); ok {
		t.Error("CellAt outside the grid should fail")
	}
	if h, ok := grid.HeightAt(9, 0); !ok || h != 4.5 {
		t.Errorf("HeightAt(9, 0) = %v, %v; want 4.5, true", h, ok)
	}
	// Neighbouring cells differ by exactly 1 on the slope.
	if !grid.CanStep(0, 0, 1, 0) {
		t.Error("CanStep between neighbours should allow a climb equal to MaxClimb")
	}
}

func TestBuildNavGridInvalid(t *testing.T) {
	tests := []struct {
		name     string
		cellSize float32
		maxClimb float32
	}{
		{"zero cell", 0, 1},
		{"negative climb", 1, -1},
		{"cell larger than terrain", 50, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildNavGrid(context.Background(), slopeGround(), tt.cellSize, tt.maxClimb, 1)
			if !errors.Is(err, ErrInvalidGrid) {
				t.Errorf("BuildNavGrid() error = %v, want ErrInvalidGrid", err)
			}
		})
	}
}

func TestMovementControllerFollowsPath(t *testing.T) {
	grid := mockGrid(t, 5, 5, [][2]int{{2, 0}, {2, 1}, {2, 2}})
	ground := fakeGround{
		bounds: math.Rect{Width: 5, Height: 5},
		holes:  map[[2]int]bool{{2, 0}: true, {2, 1}: true, {2, 2}: true},
	}

	walker := NewWalker(1, 0.5, 0.5)
	mc := NewMovementController(NewPathFinder(grid), walker)

	if path := mc.MoveToWorld(4.5, 0.5); path == nil {
		t.Fatal("MoveToWorld() found no path")
	}

	for i := 0; i < 1000 && mc.IsFollowingPath; i++ {
		mc.Update()
		if err := walker.Update(0.1, ground); err != nil {
			t.Fatal(err)
		}
		if walker.State == StateFalling {
			t.Fatalf("walker fell at %+v", walker.Position)
		}
	}

	if mc.IsFollowingPath {
		t.Fatal("walker never finished the path")
	}
	if got := walker.Position.XZ(); got.Distance(math.Vec2{X: 4.5, Y: 0.5}) > ArrivalThreshold {
		t.Errorf("walker ended at %+v, want (4.5, 0.5)", got)
	}
}
