// Package renderer draws terrain fields with OpenGL.
package renderer

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-terrain/internal/engine/debug"
	"github.com/Faultbox/midgard-terrain/internal/engine/mesh"
	"github.com/Faultbox/midgard-terrain/internal/engine/renderer/shaders"
	"github.com/Faultbox/midgard-terrain/internal/engine/shader"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/internal/logger"
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width     int
	Height    int
	FOV       float32 // Vertical field of view, degrees
	Near      float32
	Far       float32
	Wireframe bool
}

// gpuMesh is one mesh uploaded to the GPU.
type gpuMesh struct {
	vao, vbo, ebo uint32
	indexCount    int32
}

// textured is implemented by height fields that carry a ground texture.
type textured interface {
	Texture() *image.RGBA
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config  Config
	program *shader.Program
	lines   *lineBatch
	log     *zap.Logger

	// Uploaded meshes keyed by arena handle. Tiles that share a handle share
	// the buffers.
	meshes  map[mesh.Handle]gpuMesh
	texture uint32

	LightDir  math.Vec3
	Ambient   math.Vec3
	Diffuse   math.Vec3
	FogColor  math.Vec3
	ClearSky  math.Vec3
	DrawCalls int // Draw calls issued by the last DrawTerrain
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	if cfg.Near <= 0 {
		cfg.Near = 0.05
	}
	if cfg.Far <= cfg.Near {
		cfg.Far = 1000
	}

	r := &Renderer{
		config:   cfg,
		log:      logger.Named("renderer"),
		meshes:   make(map[mesh.Handle]gpuMesh),
		LightDir: math.Vec3{X: -0.4, Y: -1, Z: -0.3}.Normalize(),
		Ambient:  math.Vec3{X: 0.35, Y: 0.35, Z: 0.4},
		Diffuse:  math.Vec3{X: 0.75, Y: 0.72, Z: 0.65},
		FogColor: math.Vec3{X: 0.55, Y: 0.7, Z: 0.85},
		ClearSky: math.Vec3{X: 0.55, Y: 0.7, Z: 0.85},
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	program, err := shader.NewProgram(shaders.TerrainVertexShader, shaders.TerrainFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("terrain shader: %w", err)
	}
	r.program = program

	r.lines, err = newLineBatch()
	if err != nil {
		program.Delete()
		return nil, err
	}

	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// SetWireframe toggles line rendering.
func (r *Renderer) SetWireframe(on bool) {
	r.config.Wireframe = on
}

// Projection returns the current perspective projection.
func (r *Renderer) Projection() math.Mat4 {
	aspect := float32(1)
	if r.config.Height > 0 {
		aspect = float32(r.config.Width) / float32(r.config.Height)
	}
	return math.Perspective(radians(r.config.FOV), aspect, r.config.Near, r.config.Far)
}

// LoadTerrain uploads the meshes and ground texture of a field, replacing
// whatever was loaded before. Every distinct mesh handle is uploaded once.
func (r *Renderer) LoadTerrain(field *terrain.Field) error {
	if err := r.clearTerrain(); err != nil {
		r.log.Warn("releasing previous terrain", zap.Error(err))
	}

	for _, tile := range field.Tiles() {
		if _, ok := r.meshes[tile.Mesh]; ok {
			continue
		}
		m, err := field.Arena().Get(tile.Mesh)
		if err != nil {
			return fmt.Errorf("tile mesh: %w", err)
		}
		if len(m.Vertices) == 0 || len(m.Indices) == 0 {
			return fmt.Errorf("tile mesh %d is empty", tile.Mesh)
		}
		r.meshes[tile.Mesh] = uploadMesh(m)
	}

	var img *image.RGBA
	if t, ok := field.HeightField().(textured); ok {
		img = t.Texture()
	}
	r.texture = uploadTexture(img)

	r.log.Info("terrain uploaded",
		zap.Int("tiles", len(field.Tiles())),
		zap.Int("meshes", len(r.meshes)),
		zap.Bool("textured", img != nil),
	)
	return nil
}

func uploadMesh(m *mesh.Mesh) gpuMesh {
	var g gpuMesh
	g.indexCount = int32(len(m.Indices))

	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	vertexSize := int(unsafe.Sizeof(mesh.Vertex{}))
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices)*vertexSize, unsafe.Pointer(&m.Vertices[0]), gl.STATIC_DRAW)

	// Position (location 0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(vertexSize), 0)
	gl.EnableVertexAttribArray(0)

	// Normal (location 1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, int32(vertexSize), 3*4)
	gl.EnableVertexAttribArray(1)

	// TexCoord (location 2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, int32(vertexSize), 6*4)
	gl.EnableVertexAttribArray(2)

	gl.GenBuffers(1, &g.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, unsafe.Pointer(&m.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	return g
}

// uploadTexture uploads img, or a 1x1 white texture when img is nil.
func uploadTexture(img *image.RGBA) uint32 {
	if img == nil || len(img.Pix) == 0 {
		img = image.NewRGBA(image.Rect(0, 0, 1, 1))
		copy(img.Pix, []uint8{255, 255, 255, 255})
	}

	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)

	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
		int32(img.Bounds().Dx()), int32(img.Bounds().Dy()),
		0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))

	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)

	return texID
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.ClearColor(r.ClearSky.X, r.ClearSky.Y, r.ClearSky.Z, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// DrawTerrain draws every tile of field from the given eye.
func (r *Renderer) DrawTerrain(field *terrain.Field, view math.Mat4, eye math.Vec3) {
	r.DrawCalls = 0
	if len(r.meshes) == 0 {
		return
	}

	if r.config.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		defer gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	r.program.Use()
	r.program.SetMat4("uViewProj", r.Projection().Mul(view))
	r.program.SetVec3("uLightDir", r.LightDir)
	r.program.SetVec3("uAmbient", r.Ambient)
	r.program.SetVec3("uDiffuse", r.Diffuse)
	r.program.SetVec3("uCameraPos", eye)
	r.program.SetVec3("uFogColor", r.FogColor)
	gl.Uniform1f(r.program.Uniform("uFogFar"), r.config.Far*0.5)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.texture)
	r.program.SetInt("uTexture", 0)

	for _, tile := range field.Tiles() {
		g, ok := r.meshes[tile.Mesh]
		if !ok {
			continue
		}
		r.program.SetMat4("uModel", tile.Model())
		gl.BindVertexArray(g.vao)
		gl.DrawElementsWithOffset(gl.TRIANGLES, g.indexCount, gl.UNSIGNED_INT, 0)
		r.DrawCalls++
	}
	gl.BindVertexArray(0)
}

// DrawLines draws debug line segments over the terrain.
func (r *Renderer) DrawLines(vertices []debug.LineVertex, view math.Mat4) {
	r.lines.draw(vertices, r.Projection().Mul(view))
}

// ReadPixels reads the back buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() (pixels []byte, width, height int) {
	width, height = r.config.Width, r.config.Height
	if width <= 0 || height <= 0 {
		return nil, 0, 0
	}
	pixels = make([]byte, width*height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, width, height
}

// End finishes the current frame.
func (r *Renderer) End() {}

func (r *Renderer) clearTerrain() error {
	var err error
	for h, g := range r.meshes {
		gl.DeleteVertexArrays(1, &g.vao)
		gl.DeleteBuffers(1, &g.vbo)
		gl.DeleteBuffers(1, &g.ebo)
		err = multierr.Append(err, glError(fmt.Sprintf("mesh %d", h)))
		delete(r.meshes, h)
	}
	if r.texture != 0 {
		gl.DeleteTextures(1, &r.texture)
		r.texture = 0
		err = multierr.Append(err, glError("texture"))
	}
	return err
}

// Close releases every GPU resource and reports all GL errors raised while
// doing so.
func (r *Renderer) Close() error {
	r.log.Info("closing renderer")

	err := r.clearTerrain()
	if r.lines != nil {
		r.lines.delete()
		err = multierr.Append(err, glError("lines"))
	}
	if r.program != nil {
		r.program.Delete()
		err = multierr.Append(err, glError("program"))
	}
	return err
}

// glError drains the GL error queue.
func glError(stage string) error {
	var err error
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		err = multierr.Append(err, fmt.Errorf("%s: GL error 0x%04x", stage, code))
	}
	return err
}

func radians(deg float32) float32 {
	return deg * 3.14159265 / 180
}
