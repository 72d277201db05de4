package model

import (
	"encoding/binary"

	"github.com/verdant-labs/groveview/common"
)

// Mesh is a single drawable unit within a Model: one vertex/index pair plus an
// optional base color texture. Imported models may contain several meshes, each
// with its own texture; generated primitives contain exactly one.
type Mesh struct {
	// Name is the mesh identifier (for debugging and log output).
	Name string

	// Vertices are the mesh vertices in model space.
	Vertices []GPUVertex

	// Indices are the triangle indices (CCW winding, front face).
	Indices []uint32

	// Texture is the decoded base color texture for this mesh, or nil when the
	// mesh is shaded by vertex color alone.
	Texture *common.TextureStagingData
}

// VertexBytes serializes the mesh vertices into a single contiguous byte buffer
// suitable for GPU vertex buffer upload.
//
// Returns:
//   - []byte: the packed vertex data (48 bytes per vertex)
func (m *Mesh) VertexBytes() []byte {
	buf := make([]byte, 0, len(m.Vertices)*48)
	for i := range m.Vertices {
		buf = append(buf, m.Vertices[i].Marshal()...)
	}
	return buf
}

// IndexBytes serializes the mesh indices into a byte buffer suitable for GPU
// index buffer upload (uint32, little-endian).
//
// Returns:
//   - []byte: the packed index data (4 bytes per index)
func (m *Mesh) IndexBytes() []byte {
	buf := make([]byte, len(m.Indices)*4)
	for i, idx := range m.Indices {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], idx)
	}
	return buf
}

// Clone returns a deep copy of the mesh. Vertex, index and texture storage are
// all duplicated so the copy can be mutated without affecting the original.
//
// Returns:
//   - *Mesh: an independent copy of the mesh
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:     m.Name,
		Vertices: make([]GPUVertex, len(m.Vertices)),
		Indices:  make([]uint32, len(m.Indices)),
	}
	copy(clone.Vertices, m.Vertices)
	copy(clone.Indices, m.Indices)
	if m.Texture != nil {
		clone.Texture = m.Texture.Clone()
	}
	return clone
}
