// Package mesh holds CPU-side geometry and the arena that lets many placed
// instances share one mesh through a small handle.
package mesh

import (
	"fmt"
	"sync"
)

// Vertex is one mesh vertex with all attributes the terrain shader reads.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// Bounds holds an axis-aligned bounding box in mesh-local space.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Mesh is indexed triangle geometry ready for GPU upload.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds
}

// TriangleCount returns the number of indexed triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// ComputeBounds recalculates Bounds from the vertex positions.
func (m *Mesh) ComputeBounds() {
	if len(m.Vertices) == 0 {
		m.Bounds = Bounds{}
		return
	}
	b := Bounds{Min: m.Vertices[0].Position, Max: m.Vertices[0].Position}
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			b.Min[i] = min(b.Min[i], v.Position[i])
			b.Max[i] = max(b.Max[i], v.Position[i])
		}
	}
	m.Bounds = b
}

// Handle identifies a mesh stored in an Arena.
type Handle uint32

// Arena owns meshes and hands out handles to them. Instances store a Handle
// rather than a copy of the geometry.
type Arena struct {
	mu     sync.RWMutex
	meshes []*Mesh
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Add stores m and returns its handle.
func (a *Arena) Add(m *Mesh) Handle {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.meshes = append(a.meshes, m)
	return Handle(len(a.meshes) - 1)
}

// Get returns the mesh for h.
func (a *Arena) Get(h Handle) (*Mesh, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if int(h) >= len(a.meshes) {
		return nil, fmt.Errorf("mesh handle %d out of range (%d meshes)", h, len(a.meshes))
	}
	return a.meshes[h], nil
}

// Len returns the number of stored meshes.
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.meshes)
}
