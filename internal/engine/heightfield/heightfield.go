// Package heightfield turns a heightmap image into elevation samples and the
// renderable grid mesh for one terrain tile.
//
// A height field spans [StartX, -StartX] x [StartZ, -StartZ] in its own local
// space. Sample (row, col) sits at
//
//	x = StartX + col * XLength / VerticesPerCol
//	z = StartZ + row * ZLength / VerticesPerRow
//
// so rows follow +Z and columns follow +X.
package heightfield

import (
	"errors"
	"fmt"
	"image"
	gomath "math"

	"github.com/Faultbox/midgard-terrain/internal/engine/mesh"
	"github.com/Faultbox/midgard-terrain/internal/engine/texture"
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// Local-space extents of one tile. The tile is centred on its origin.
const (
	StartX float32 = -0.5
	StartZ float32 = -0.5
)

var (
	// ErrResource is wrapped by every failure to read or decode an input image.
	ErrResource = errors.New("terrain resource unavailable")

	// ErrTooSmall is returned for heightmaps with fewer than 2x2 samples.
	ErrTooSmall = errors.New("heightmap needs at least 2x2 samples")
)

// XLength returns the local-space width of a tile along X.
func XLength() float32 {
	return float32(gomath.Abs(float64(StartX))) * 2
}

// ZLength returns the local-space depth of a tile along Z.
func ZLength() float32 {
	return float32(gomath.Abs(float64(StartZ))) * 2
}

// HeightField holds elevation samples, the tile mesh built from them and the
// decoded ground texture. It is immutable once built.
type HeightField struct {
	heights       [][]float32 // [row][col]
	rows, cols    int         // sample counts
	mesh          *mesh.Mesh
	texture       *image.RGBA
	textureRepeat int
}

// Build loads the heightmap and ground texture and constructs the field.
// Samples are mapped linearly into [minY, maxY]. Any read or decode failure
// wraps ErrResource.
func Build(heightmapPath string, minY, maxY float32, texturePath string, textureRepeat int) (*HeightField, error) {
	hm, err := texture.Load(heightmapPath)
	if err != nil {
		return nil, fmt.Errorf("%w: heightmap: %w", ErrResource, err)
	}

	tex, err := texture.Load(texturePath)
	if err != nil {
		return nil, fmt.Errorf("%w: texture: %w", ErrResource, err)
	}

	hf, err := FromImage(hm, minY, maxY, textureRepeat)
	if err != nil {
		return nil, fmt.Errorf("%w: heightmap %s: %w", ErrResource, heightmapPath, err)
	}
	hf.texture = texture.ImageToRGBA(tex)

	return hf, nil
}

// FromImage builds a field from an already decoded heightmap. The field has
// no ground texture.
func FromImage(img image.Image, minY, maxY float32, textureRepeat int) (*HeightField, error) {
	b := img.Bounds()
	rows, cols := b.Dy(), b.Dx()
	if rows < 2 || cols < 2 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrTooSmall, cols, rows)
	}

	span := float32(gomath.Abs(float64(maxY - minY)))
	heights := make([][]float32, rows)
	for row := range rows {
		heights[row] = make([]float32, cols)
		for col := range cols {
			heights[row][col] = minY + span*texture.Sample(img, col, row)
		}
	}

	return newField(heights, textureRepeat), nil
}

// FromSamples builds a field from elevations already in world units.
// heights is indexed [row][col] and must be rectangular.
func FromSamples(heights [][]float32, textureRepeat int) (*HeightField, error) {
	if len(heights) < 2 || len(heights[0]) < 2 {
		return nil, ErrTooSmall
	}
	cols := len(heights[0])
	copied := make([][]float32, len(heights))
	for row, line := range heights {
		if len(line) != cols {
			return nil, fmt.Errorf("heightmap row %d has %d samples, want %d", row, len(line), cols)
		}
		copied[row] = append([]float32(nil), line...)
	}
	return newField(copied, textureRepeat), nil
}

func newField(heights [][]float32, textureRepeat int) *HeightField {
	hf := &HeightField{
		heights:       heights,
		rows:          len(heights),
		cols:          len(heights[0]),
		textureRepeat: textureRepeat,
	}
	hf.mesh = hf.buildMesh()
	return hf
}

// Height returns the elevation sample at (row, col) for
// row in [0, VerticesPerRow] and col in [0, VerticesPerCol].
// Indices outside that range are clamped to the nearest edge sample.
func (hf *HeightField) Height(row, col int) float32 {
	row = max(0, min(row, hf.rows-1))
	col = max(0, min(col, hf.cols-1))
	return hf.heights[row][col]
}

// VerticesPerCol returns the number of grid cells along X
// (one less than the number of samples per row).
func (hf *HeightField) VerticesPerCol() int {
	return hf.cols - 1
}

// VerticesPerRow returns the number of grid cells along Z.
func (hf *HeightField) VerticesPerRow() int {
	return hf.rows - 1
}

// Extents returns the local-space minimum corner of the tile.
func (hf *HeightField) Extents() (startX, startZ float32) {
	return StartX, StartZ
}

// Mesh returns the tile geometry.
func (hf *HeightField) Mesh() *mesh.Mesh {
	return hf.mesh
}

// Texture returns the decoded ground texture, or nil when the field was not
// built from files.
func (hf *HeightField) Texture() *image.RGBA {
	return hf.texture
}

// buildMesh creates one vertex per sample and two triangles per cell. Each
// cell is split along the diagonal from (col, row+1) to (col+1, row); height
// queries pick triangles with the same split.
func (hf *HeightField) buildMesh() *mesh.Mesh {
	incX := XLength() / float32(hf.cols-1)
	incZ := ZLength() / float32(hf.rows-1)
	repeat := float32(hf.textureRepeat)

	vertices := make([]mesh.Vertex, 0, hf.rows*hf.cols)
	for row := range hf.rows {
		for col := range hf.cols {
			vertices = append(vertices, mesh.Vertex{
				Position: [3]float32{
					StartX + float32(col)*incX,
					hf.heights[row][col],
					StartZ + float32(row)*incZ,
				},
				Normal: hf.normalAt(row, col, incX, incZ).Array(),
				TexCoord: [2]float32{
					repeat * float32(col) / float32(hf.cols),
					repeat * float32(row) / float32(hf.rows),
				},
			})
		}
	}

	indices := make([]uint32, 0, (hf.rows-1)*(hf.cols-1)*6)
	for row := 0; row < hf.rows-1; row++ {
		for col := 0; col < hf.cols-1; col++ {
			leftTop := uint32(row*hf.cols + col)
			leftBottom := uint32((row+1)*hf.cols + col)
			rightBottom := uint32((row+1)*hf.cols + col + 1)
			rightTop := uint32(row*hf.cols + col + 1)

			indices = append(indices,
				rightTop, leftBottom, leftTop,
				rightBottom, rightTop, leftBottom,
			)
		}
	}

	m := &mesh.Mesh{Vertices: vertices, Indices: indices}
	m.ComputeBounds()
	return m
}

// normalAt estimates the surface normal from neighbouring samples, falling
// back to one-sided differences on the border.
func (hf *HeightField) normalAt(row, col int, incX, incZ float32) math.Vec3 {
	left, right := max(col-1, 0), min(col+1, hf.cols-1)
	up, down := max(row-1, 0), min(row+1, hf.rows-1)

	dydx := (hf.heights[row][right] - hf.heights[row][left]) / (float32(right-left) * incX)
	dydz := (hf.heights[down][col] - hf.heights[up][col]) / (float32(down-up) * incZ)

	return math.Vec3{X: -dydx, Y: 1, Z: -dydz}.Normalize()
}
