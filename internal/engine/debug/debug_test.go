package debug

import (
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Faultbox/midgard-terrain/internal/engine/heightfield"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

func raisedField(t *testing.T, tiles int) *terrain.Field {
	t.Helper()
	build := func(string, float32, float32, string, int) (terrain.HeightField, error) {
		hf, err := heightfield.FromSamples([][]float32{
			{0, 0, 0},
			{0, 10, 0},
			{0, 0, 0},
		}, 1)
		if err != nil {
			return nil, err
		}
		return hf, nil
	}
	f, err := terrain.New(terrain.Options{TileCount: tiles, Scale: 2, TextureRepeat: 1}, build)
	if err != nil {
		t.Fatalf("terrain.New() error = %v", err)
	}
	return f
}

func TestTileOutlines(t *testing.T) {
	f := raisedField(t, 2)
	lines := TileOutlines(f)

	// 2 cells per edge, 4 edges, 2 vertices per segment, 4 tiles.
	if want := 2 * 4 * 2 * 4; len(lines) != want {
		t.Fatalf("len(TileOutlines()) = %d, want %d", len(lines), want)
	}

	b := f.Bounds()
	for i, v := range lines {
		// The raised sample sits in the middle of each tile, never on a border.
		if v.Y != Lift {
			t.Errorf("vertex %d Y = %v, want %v", i, v.Y, Lift)
		}
		if v.X < b.MinX || v.X > b.MaxX() || v.Z < b.MinZ || v.Z > b.MaxZ() {
			t.Errorf("vertex %d (%v, %v) outside %+v", i, v.X, v.Z, b)
		}
		if [3]float32{v.R, v.G, v.B} != SeamColor {
			t.Errorf("vertex %d color = %v, want %v", i, [3]float32{v.R, v.G, v.B}, SeamColor)
		}
	}
}

func TestPathLines(t *testing.T) {
	if got := PathLines([]math.Vec3{{X: 1}}); got != nil {
		t.Errorf("PathLines(one point) = %v, want nil", got)
	}

	points := []math.Vec3{{X: 0}, {X: 1, Y: 1}, {X: 2}}
	lines := PathLines(points)
	if len(lines) != 4 {
		t.Fatalf("len(PathLines()) = %d, want 4", len(lines))
	}
	if lines[1].X != 1 || lines[2].X != 1 {
		t.Errorf("segments do not share the middle point: %v, %v", lines[1], lines[2])
	}
	if lines[1].Y != 1+Lift {
		t.Errorf("middle Y = %v, want %v", lines[1].Y, 1+Lift)
	}
	if points[1].Y != 1 {
		t.Errorf("PathLines modified its input: %v", points[1])
	}
}

func TestMarker(t *testing.T) {
	lines := Marker(math.Vec3{X: 1, Y: 2, Z: 3}, 2)
	if len(lines) != BoxVertexCount {
		t.Fatalf("len(Marker()) = %d, want %d", len(lines), BoxVertexCount)
	}
	for i, v := range lines {
		if v.X < 0 || v.X > 2 || v.Y < 2 || v.Y > 4 || v.Z < 2 || v.Z > 4 {
			t.Errorf("vertex %d = %v outside the marker box", i, v)
		}
	}
}

func TestSaveFrameFlipsRows(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	s := NewScreenshots(dir, "terrain")
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	// Bottom row red, top row blue, as glReadPixels returns them.
	pixels := []byte{
		255, 0, 0, 255, 255, 0, 0, 255,
		0, 0, 255, 255, 0, 0, 255, 255,
	}
	path, err := s.SaveFrame(pixels, 2, 2)
	if err != nil {
		t.Fatalf("SaveFrame() error = %v", err)
	}
	if want := filepath.Join(dir, "terrain_2024-05-01_12-00-00.000.png"); path != want {
		t.Errorf("SaveFrame() path = %q, want %q", path, want)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open screenshot: %v", err)
	}
	defer file.Close()
	img, err := png.Decode(file)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}

	if r, _, b, _ := img.At(0, 0).RGBA(); r != 0 || b != 0xffff {
		t.Errorf("top-left = (r %d, b %d), want blue", r, b)
	}
	if r, _, b, _ := img.At(0, 1).RGBA(); r != 0xffff || b != 0 {
		t.Errorf("bottom-left = (r %d, b %d), want red", r, b)
	}
}

func TestSaveFrameSizeMismatch(t *testing.T) {
	s := NewScreenshots(t.TempDir(), "x")
	if _, err := s.SaveFrame(make([]byte, 7), 1, 2); !errors.Is(err, ErrPixelSize) {
		t.Errorf("SaveFrame() error = %v, want ErrPixelSize", err)
	}
}
