// Package terrain lays out a square grid of terrain tiles that all instance
// one shared height field, and answers ground elevation queries over it.
package terrain

import (
	"errors"
	"fmt"
	gomath "math"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-terrain/internal/engine/heightfield"
	"github.com/Faultbox/midgard-terrain/internal/engine/mesh"
	"github.com/Faultbox/midgard-terrain/internal/logger"
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

var (
	// ErrNotFound is returned when a query point lies outside every tile.
	ErrNotFound = errors.New("point outside terrain")

	// ErrDegeneratePlane is returned when the triangle under a query point
	// is vertical. A valid heightmap never produces one, so it signals
	// corrupted height data rather than an out-of-bounds query.
	ErrDegeneratePlane = errors.New("degenerate terrain triangle")

	// ErrInvalidOptions is wrapped by option validation failures.
	ErrInvalidOptions = errors.New("invalid terrain options")

	// ErrResource is wrapped when the heightmap or texture cannot be loaded.
	ErrResource = heightfield.ErrResource
)

// HeightField is the height data and geometry shared by every tile.
type HeightField interface {
	// Height returns the raw elevation at row in [0, VerticesPerRow] and
	// col in [0, VerticesPerCol].
	Height(row, col int) float32
	VerticesPerCol() int
	VerticesPerRow() int
	// Extents returns the local-space minimum corner; the tile spans
	// [startX, -startX] x [startZ, -startZ].
	Extents() (startX, startZ float32)
	Mesh() *mesh.Mesh
}

// Builder constructs the shared height field from image resources.
type Builder func(heightmapPath string, minY, maxY float32, texturePath string, textureRepeat int) (HeightField, error)

// BuildHeightField is the Builder backed by heightfield.Build.
func BuildHeightField(heightmapPath string, minY, maxY float32, texturePath string, textureRepeat int) (HeightField, error) {
	hf, err := heightfield.Build(heightmapPath, minY, maxY, texturePath, textureRepeat)
	if err != nil {
		return nil, err
	}
	return hf, nil
}

// Options describes a terrain field.
type Options struct {
	TileCount     int     // Tiles per side
	Scale         float32 // Uniform scale applied to every tile
	MinElevation  float32
	MaxElevation  float32
	Heightmap     string
	Texture       string
	TextureRepeat int
}

// Validate checks the numeric constraints New relies on.
func (o Options) Validate() error {
	switch {
	case o.TileCount <= 0:
		return fmt.Errorf("%w: tile count %d", ErrInvalidOptions, o.TileCount)
	case !(o.Scale > 0) || gomath.IsInf(float64(o.Scale), 0):
		return fmt.Errorf("%w: scale %g", ErrInvalidOptions, o.Scale)
	case o.MinElevation > o.MaxElevation:
		return fmt.Errorf("%w: min elevation %g above max %g", ErrInvalidOptions, o.MinElevation, o.MaxElevation)
	}
	return nil
}

// Tile is one placed instance of the shared mesh.
type Tile struct {
	Mesh     mesh.Handle
	Scale    float32
	Position math.Vec3
	Bounds   math.Rect // World-space XZ footprint
}

// Model returns the tile's world matrix.
func (t Tile) Model() math.Mat4 {
	return math.Model(t.Position, t.Scale)
}

// Field is an immutable grid of terrain tiles. All methods are safe for
// concurrent use.
type Field struct {
	tileCount   int
	scale       float32
	heightField HeightField
	arena       *mesh.Arena
	tiles       []Tile // row*tileCount + col
	bounds      math.Rect
}

// Load builds a field from the heightmap and texture named in opts.
func Load(opts Options) (*Field, error) {
	return New(opts, BuildHeightField)
}

// New builds a field using build to create the shared height field.
// Construction is all-or-nothing: on error no field is returned.
func New(opts Options, build Builder) (*Field, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	hf, err := build(opts.Heightmap, opts.MinElevation, opts.MaxElevation, opts.Texture, opts.TextureRepeat)
	if err != nil {
		return nil, fmt.Errorf("building height field: %w", err)
	}
	if hf.VerticesPerCol() < 1 || hf.VerticesPerRow() < 1 {
		return nil, fmt.Errorf("%w: height field has %dx%d cells",
			ErrInvalidOptions, hf.VerticesPerCol(), hf.VerticesPerRow())
	}

	f := newField(opts.TileCount, opts.Scale, hf)

	logger.Named("terrain").Info("terrain built",
		zap.Int("tilesPerSide", f.tileCount),
		zap.Float32("scale", f.scale),
		zap.Int("cellsX", hf.VerticesPerCol()),
		zap.Int("cellsZ", hf.VerticesPerRow()),
		zap.Float32("minX", f.bounds.MinX),
		zap.Float32("minZ", f.bounds.MinZ),
		zap.Float32("width", f.bounds.Width),
	)

	return f, nil
}

func newField(tileCount int, scale float32, hf HeightField) *Field {
	f := &Field{
		tileCount:   tileCount,
		scale:       scale,
		heightField: hf,
		arena:       mesh.NewArena(),
		tiles:       make([]Tile, 0, tileCount*tileCount),
	}

	handle := f.arena.Add(hf.Mesh())
	startX, startZ := hf.Extents()
	lengthX := abs32(startX) * 2
	lengthZ := abs32(startZ) * 2
	center := float32(tileCount-1) / 2

	for row := range tileCount {
		for col := range tileCount {
			xOffset := (float32(col) - center) * scale * lengthX
			zOffset := (float32(row) - center) * scale * lengthZ

			tile := Tile{
				Mesh:     handle,
				Scale:    scale,
				Position: math.Vec3{X: xOffset, Y: 0, Z: zOffset},
			}
			tile.Bounds = tileBounds(startX, startZ, tile)
			f.tiles = append(f.tiles, tile)

			if len(f.tiles) == 1 {
				f.bounds = tile.Bounds
			} else {
				f.bounds = f.bounds.Union(tile.Bounds)
			}
		}
	}

	return f
}

// tileBounds returns the world footprint of a tile. Tiles are square: both
// sides use the X extent.
func tileBounds(startX, startZ float32, t Tile) math.Rect {
	side := abs32(startX) * 2 * t.Scale
	return math.Rect{
		MinX:   startX*t.Scale + t.Position.X,
		MinZ:   startZ*t.Scale + t.Position.Z,
		Width:  side,
		Height: side,
	}
}

// Tiles returns the placed tiles in row-major order.
func (f *Field) Tiles() []Tile {
	return slices.Clone(f.tiles)
}

// TileCount returns the number of tiles per side.
func (f *Field) TileCount() int {
	return f.tileCount
}

// Scale returns the uniform tile scale.
func (f *Field) Scale() float32 {
	return f.scale
}

// Bounds returns the footprint covered by all tiles.
func (f *Field) Bounds() math.Rect {
	return f.bounds
}

// HeightField returns the shared height field.
func (f *Field) HeightField() HeightField {
	return f.heightField
}

// Arena returns the arena holding the shared mesh referenced by every tile.
func (f *Field) Arena() *mesh.Arena {
	return f.arena
}

func abs32(v float32) float32 {
	return float32(gomath.Abs(float64(v)))
}
