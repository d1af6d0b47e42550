package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	gomath "math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/midgard-terrain/internal/config"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
)

// writeFixtures writes a 3x3 heightmap with a white centre and a texture.
func writeFixtures(t *testing.T) (heightmap, tex string) {
	t.Helper()
	dir := t.TempDir()

	hm := image.NewGray(image.Rect(0, 0, 3, 3))
	hm.SetGray(1, 1, color.Gray{Y: 255})
	heightmap = filepath.Join(dir, "hm.png")
	writePNG(t, heightmap, hm)

	tex = filepath.Join(dir, "tex.png")
	writePNG(t, tex, image.NewRGBA(image.Rect(0, 0, 2, 2)))
	return heightmap, tex
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func loadFromArgs(t *testing.T, args ...string) (*terrain.Field, error) {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	tf := newTerrainFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	return tf.load()
}

func TestLoadAndDescribe(t *testing.T) {
	hm, tex := writeFixtures(t)

	field, err := loadFromArgs(t, "-heightmap", hm, "-texture", tex, "-tiles", "1", "-scale", "1", "-min", "0", "-max", "10")
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}

	tests := []struct {
		x, z float32
		want string
	}{
		{0, 0, "0\t0\t(0.00, 0.00)\t10.0000\t"},
		{5, 5, "5\t5\t-\toutside\t"},
	}
	for _, tt := range tests {
		if got := describe(field, tt.x, tt.z); got != tt.want {
			t.Errorf("describe(%v, %v) = %q, want %q", tt.x, tt.z, got, tt.want)
		}
	}
}

func TestLoadFlagsOverrideConfigFile(t *testing.T) {
	hm, tex := writeFixtures(t)

	cfgPath := filepath.Join(t.TempDir(), "terrain.yaml")
	yaml := fmt.Sprintf("terrain:\n  heightmap: %q\n  texture: %q\n  tile_count: 4\n  scale: 2\n", hm, tex)
	if err := os.WriteFile(cfgPath, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	field, err := loadFromArgs(t, "-config", cfgPath, "-tiles", "2")
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if field.TileCount() != 2 || field.Scale() != 2 {
		t.Errorf("field = %d tiles, scale %g; want 2 tiles, scale 2", field.TileCount(), field.Scale())
	}
}

func TestLoadErrors(t *testing.T) {
	hm, tex := writeFixtures(t)

	_, err := loadFromArgs(t, "-heightmap", hm, "-texture", tex, "-min", "5", "-max", "1")
	if !errors.Is(err, config.ErrInvalid) {
		t.Errorf("inverted range error = %v, want config.ErrInvalid", err)
	}
	if exitCode(err) != 2 {
		t.Errorf("exitCode() = %d, want 2", exitCode(err))
	}

	_, err = loadFromArgs(t, "-heightmap", filepath.Join(t.TempDir(), "none.png"), "-texture", tex)
	if !errors.Is(err, terrain.ErrResource) {
		t.Errorf("missing heightmap error = %v, want ErrResource", err)
	}
	if exitCode(err) != 3 {
		t.Errorf("exitCode() = %d, want 3", exitCode(err))
	}
}

func TestParsePoints(t *testing.T) {
	got, err := parsePoints([]string{"1", "-2.5", "0", "3"})
	if err != nil {
		t.Fatalf("parsePoints() error = %v", err)
	}
	want := [][2]float32{{1, -2.5}, {0, 3}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("parsePoints() = %v, want %v", got, want)
	}

	for _, bad := range [][]string{nil, {"1"}, {"a", "1"}, {"1", "b"}} {
		if _, err := parsePoints(bad); err == nil {
			t.Errorf("parsePoints(%v) should fail", bad)
		}
	}
}

func TestSampleGrid(t *testing.T) {
	hm, tex := writeFixtures(t)
	field, err := loadFromArgs(t, "-heightmap", hm, "-texture", tex, "-tiles", "1", "-scale", "1", "-min", "0", "-max", "10")
	if err != nil {
		t.Fatal(err)
	}

	rows := sampleGrid(field, 3)
	if len(rows) != 3 || len(rows[0]) != 3 {
		t.Fatalf("sampleGrid() = %dx%d, want 3x3", len(rows), len(rows[0]))
	}
	// The centre sample sits on the raised vertex.
	if rows[1][1] != "10.000" {
		t.Errorf("centre = %s, want 10.000", rows[1][1])
	}
	for _, row := range rows {
		for _, s := range row {
			if strings.Contains(s, "--") {
				t.Errorf("sample %q is outside the terrain", s)
			}
		}
	}
}

func TestFindRoute(t *testing.T) {
	hm, tex := writeFixtures(t)
	field, err := loadFromArgs(t, "-heightmap", hm, "-texture", tex, "-tiles", "1", "-scale", "1", "-min", "0", "-max", "10")
	if err != nil {
		t.Fatal(err)
	}

	// A 4x4 grid of 0.25 cells over [-0.5, 0.5).
	route, err := findRoute(context.Background(), field, 0.25, 100, [2]float32{-0.4, -0.4}, [2]float32{0.4, 0.4})
	if err != nil {
		t.Fatalf("findRoute() error = %v", err)
	}
	if len(route) < 2 {
		t.Fatalf("findRoute() = %v, want at least 2 points", route)
	}

	first, last := route[0], route[len(route)-1]
	if first.X != -0.375 || first.Z != -0.375 {
		t.Errorf("route starts at (%v, %v), want (-0.375, -0.375)", first.X, first.Z)
	}
	if last.X != 0.375 || last.Z != 0.375 {
		t.Errorf("route ends at (%v, %v), want (0.375, 0.375)", last.X, last.Z)
	}
	for i, p := range route {
		want, err := field.ElevationAt(p.X, p.Z)
		if err != nil {
			t.Fatalf("ElevationAt(step %d) error = %v", i, err)
		}
		if gomath.Abs(float64(p.Y-want)) > 1e-4 {
			t.Errorf("step %d Y = %v, want %v", i, p.Y, want)
		}
	}

	_, err = findRoute(context.Background(), field, 0.25, 100, [2]float32{-3, 0}, [2]float32{0.4, 0.4})
	if !errors.Is(err, terrain.ErrNotFound) {
		t.Errorf("findRoute(outside) error = %v, want ErrNotFound", err)
	}
}

func TestParseCommandNegativeCoordinates(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		tiles int
		min   float64
		want  [][2]float32
	}{
		{"negative first", []string{"-tiles", "3", "-1.2", "0"}, 3, gomath.NaN(), [][2]float32{{-1.2, 0}}},
		{"negative flag value", []string{"-min", "-5", "-tiles=2", "-4", "-4", "4", "4"}, 2, -5, [][2]float32{{-4, -4}, {4, 4}}},
		{"separator", []string{"-tiles", "1", "--", "-0.5", "0.25"}, 1, gomath.NaN(), [][2]float32{{-0.5, 0.25}}},
		{"no flags", []string{"-3", "7"}, 0, gomath.NaN(), [][2]float32{{-3, 7}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("at", flag.ContinueOnError)
			tf := newTerrainFlags(fs)

			got, err := parsePoints(parseCommand(fs, tt.args))
			if err != nil {
				t.Fatalf("parsePoints() error = %v", err)
			}
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("points = %v, want %v", got, tt.want)
			}
			if *tf.tiles != tt.tiles {
				t.Errorf("-tiles = %d, want %d", *tf.tiles, tt.tiles)
			}
			if gomath.IsNaN(tt.min) != gomath.IsNaN(*tf.min) || (!gomath.IsNaN(tt.min) && *tf.min != tt.min) {
				t.Errorf("-min = %v, want %v", *tf.min, tt.min)
			}
		})
	}
}

func TestFindRouteNegativeCoordinates(t *testing.T) {
	hm, tex := writeFixtures(t)

	fs := flag.NewFlagSet("path", flag.ContinueOnError)
	tf := newTerrainFlags(fs)
	cell := fs.Float64("cell", 1, "")
	climb := fs.Float64("climb", 0.5, "")
	args := []string{"-heightmap", hm, "-texture", tex, "-tiles", "9", "-scale", "1",
		"-cell", "0.5", "-climb", "100", "-4", "-4", "4", "4"}

	points, err := parsePoints(parseCommand(fs, args))
	if err != nil {
		t.Fatalf("parsePoints() error = %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("points = %v, want 2", points)
	}
	field, err := tf.load()
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}

	route, err := findRoute(context.Background(), field, float32(*cell), float32(*climb), points[0], points[1])
	if err != nil {
		t.Fatalf("findRoute() error = %v", err)
	}
	// 9 unit tiles span [-4.5, 4.5); -4 falls in the cell [-4, -3.5) and 4 in
	// [4, 4.5).
	first, last := route[0], route[len(route)-1]
	if first.X != -3.75 || first.Z != -3.75 || last.X != 4.25 || last.Z != 4.25 {
		t.Errorf("route runs (%v, %v) .. (%v, %v), want (-3.75, -3.75) .. (4.25, 4.25)",
			first.X, first.Z, last.X, last.Z)
	}
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.yaml")

	if err := cmdInitConfig([]string{path}); err != nil {
		t.Fatalf("cmdInitConfig() error = %v", err)
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Terrain != config.Default().Terrain {
		t.Errorf("terrain = %+v, want defaults", cfg.Terrain)
	}

	if err := cmdInitConfig([]string{path}); err == nil {
		t.Error("second cmdInitConfig() should refuse to overwrite")
	}
	if err := cmdInitConfig([]string{"-f", path}); err != nil {
		t.Errorf("cmdInitConfig(-f) error = %v", err)
	}
}
