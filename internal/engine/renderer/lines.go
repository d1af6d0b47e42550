package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/midgard-terrain/internal/engine/debug"
	"github.com/Faultbox/midgard-terrain/internal/engine/renderer/shaders"
	"github.com/Faultbox/midgard-terrain/internal/engine/shader"
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// lineBatch streams debug line vertices into one dynamic buffer.
type lineBatch struct {
	program  *shader.Program
	vao, vbo uint32
	capacity int // Vertices the buffer can hold
}

func newLineBatch() (*lineBatch, error) {
	program, err := shader.NewProgram(shaders.LinesVertexShader, shaders.LinesFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("line shader: %w", err)
	}

	b := &lineBatch{program: program}
	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)
	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)

	stride := int32(unsafe.Sizeof(debug.LineVertex{}))
	// Position (location 0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	// Color (location 1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)
	return b, nil
}

func (b *lineBatch) draw(vertices []debug.LineVertex, viewProj math.Mat4) {
	if len(vertices) == 0 {
		return
	}

	vertexSize := int(unsafe.Sizeof(debug.LineVertex{}))
	gl.BindVertexArray(b.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	if len(vertices) > b.capacity {
		b.capacity = len(vertices)
		gl.BufferData(gl.ARRAY_BUFFER, b.capacity*vertexSize, unsafe.Pointer(&vertices[0]), gl.DYNAMIC_DRAW)
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*vertexSize, unsafe.Pointer(&vertices[0]))
	}

	b.program.Use()
	b.program.SetMat4("uViewProj", viewProj)
	gl.DrawArrays(gl.LINES, 0, int32(len(vertices)))
	gl.BindVertexArray(0)
}

func (b *lineBatch) delete() {
	gl.DeleteVertexArrays(1, &b.vao)
	gl.DeleteBuffers(1, &b.vbo)
	b.program.Delete()
}
