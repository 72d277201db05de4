package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdant-labs/groveview/common"
)

func float32At(buf []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset : offset+4]))
}

// TestGPUVertex_MarshalLayout verifies the 48-byte vertex layout field by field
func TestGPUVertex_MarshalLayout(t *testing.T) {
	v := GPUVertex{
		Position: [3]float32{1, 2, 3},
		Normal:   [3]float32{0, 1, 0},
		TexCoord: [2]float32{0.25, 0.75},
		Color:    [4]float32{0.1, 0.2, 0.3, 0.4},
	}

	buf := v.Marshal()
	require.Len(t, buf, 48)
	assert.Equal(t, 48, v.Size())

	assert.Equal(t, float32(1), float32At(buf, 0))
	assert.Equal(t, float32(2), float32At(buf, 4))
	assert.Equal(t, float32(3), float32At(buf, 8))
	assert.Equal(t, float32(1), float32At(buf, 16))
	assert.Equal(t, float32(0.25), float32At(buf, 24))
	assert.Equal(t, float32(0.75), float32At(buf, 28))
	assert.Equal(t, float32(0.4), float32At(buf, 44))
}

// TestGPUModelData_Marshal verifies the 64-byte matrix payload round-trips
func TestGPUModelData_Marshal(t *testing.T) {
	var d GPUModelData
	for i := range d.Model {
		d.Model[i] = float32(i) * 0.5
	}

	buf := d.Marshal()
	require.Len(t, buf, 64)
	for i := 0; i < 16; i++ {
		assert.Equal(t, float32(i)*0.5, float32At(buf, i*4))
	}
}

// TestComputeBoundingRadius picks the farthest vertex from the origin
func TestComputeBoundingRadius(t *testing.T) {
	vertices := []GPUVertex{
		{Position: [3]float32{1, 0, 0}},
		{Position: [3]float32{0, 3, 4}}, // distance 5
		{Position: [3]float32{-2, 0, 0}},
	}

	assert.InDelta(t, 5.0, ComputeBoundingRadius(vertices), 1e-6)
	assert.Zero(t, ComputeBoundingRadius(nil))
}

// TestMesh_VertexBytes packs every vertex contiguously
func TestMesh_VertexBytes(t *testing.T) {
	m := &Mesh{
		Vertices: []GPUVertex{
			{Position: [3]float32{1, 2, 3}},
			{Position: [3]float32{4, 5, 6}},
		},
	}

	buf := m.VertexBytes()
	require.Len(t, buf, 96)
	assert.Equal(t, float32(1), float32At(buf, 0))
	assert.Equal(t, float32(4), float32At(buf, 48))
}

// TestMesh_IndexBytes packs indices as little-endian uint32
func TestMesh_IndexBytes(t *testing.T) {
	m := &Mesh{Indices: []uint32{0, 1, 0x01020304}}

	buf := m.IndexBytes()
	require.Len(t, buf, 12)
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[0:4]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[4:8]))
	assert.Equal(t, uint32(0x01020304), binary.LittleEndian.Uint32(buf[8:12]))
}

// TestMesh_CloneIsDeep verifies clones share no vertex, index or texture storage
func TestMesh_CloneIsDeep(t *testing.T) {
	original := &Mesh{
		Name:     "trunk",
		Vertices: []GPUVertex{{Position: [3]float32{1, 1, 1}}},
		Indices:  []uint32{0},
		Texture: &common.TextureStagingData{
			Pixels: []byte{10, 20, 30, 40},
			Width:  1,
			Height: 1,
		},
	}

	clone := original.Clone()
	clone.Vertices[0].Position[0] = 99
	clone.Indices[0] = 7
	clone.Texture.Pixels[0] = 0

	assert.Equal(t, float32(1), original.Vertices[0].Position[0])
	assert.Equal(t, uint32(0), original.Indices[0])
	assert.Equal(t, byte(10), original.Texture.Pixels[0])
	assert.Equal(t, "trunk", clone.Name)
}

// TestMesh_CloneWithoutTexture keeps nil textures nil
func TestMesh_CloneWithoutTexture(t *testing.T) {
	m := &Mesh{Name: "flat"}
	assert.Nil(t, m.Clone().Texture)
}

// TestModel_CloneIsIndependent verifies per-instance mutation never aliases
func TestModel_CloneIsIndependent(t *testing.T) {
	source := NewBox([3]float32{2, 2, 2}, [4]float32{1, 0, 0, 1})

	clone := source.Clone()
	clone.Meshes()[0].Vertices[0].Color = [4]float32{0, 0, 1, 1}

	assert.Equal(t, [4]float32{1, 0, 0, 1}, source.Meshes()[0].Vertices[0].Color)
	assert.Equal(t, source.Name(), clone.Name())
	assert.Equal(t, source.BoundingRadius(), clone.BoundingRadius())
	require.Len(t, clone.Meshes(), len(source.Meshes()))
}

// TestNewBox_Geometry checks counts, extents and axis-aligned unit normals
func TestNewBox_Geometry(t *testing.T) {
	size := [3]float32{2, 4, 6}
	box := NewBox(size, [4]float32{0.5, 0.5, 0.5, 1})

	require.Len(t, box.Meshes(), 1)
	mesh := box.Meshes()[0]
	assert.Len(t, mesh.Vertices, 24)
	assert.Len(t, mesh.Indices, 36)

	for _, v := range mesh.Vertices {
		assert.LessOrEqual(t, float64(abs32(v.Position[0])), 1.0)
		assert.LessOrEqual(t, float64(abs32(v.Position[1])), 2.0)
		assert.LessOrEqual(t, float64(abs32(v.Position[2])), 3.0)

		lenSq := v.Normal[0]*v.Normal[0] + v.Normal[1]*v.Normal[1] + v.Normal[2]*v.Normal[2]
		assert.InDelta(t, 1.0, float64(lenSq), 1e-6)
	}

	want := float32(math.Sqrt(1*1 + 2*2 + 3*3))
	assert.InDelta(t, float64(want), float64(box.BoundingRadius()), 1e-5)
}

// TestNewLabelQuad carries the texture and faces +Z
func TestNewLabelQuad(t *testing.T) {
	tex := &common.TextureStagingData{Pixels: make([]byte, 4), Width: 1, Height: 1}
	label := NewLabelQuad(3, 1, tex)

	require.Len(t, label.Meshes(), 1)
	mesh := label.Meshes()[0]
	assert.Len(t, mesh.Vertices, 4)
	assert.Len(t, mesh.Indices, 6)
	assert.Same(t, tex, mesh.Texture)
	for _, v := range mesh.Vertices {
		assert.Equal(t, [3]float32{0, 0, 1}, v.Normal)
		assert.Zero(t, v.Position[2])
	}
}

// TestNewGroundPlane lies flat at y=0 facing up
func TestNewGroundPlane(t *testing.T) {
	ground := NewGroundPlane(50, [4]float32{0.2, 0.3, 0.2, 1})

	require.Len(t, ground.Meshes(), 1)
	mesh := ground.Meshes()[0]
	assert.Len(t, mesh.Vertices, 4)
	assert.Len(t, mesh.Indices, 6)
	for _, v := range mesh.Vertices {
		assert.Zero(t, v.Position[1])
		assert.Equal(t, [3]float32{0, 1, 0}, v.Normal)
	}
	assert.InDelta(t, 50*math.Sqrt2, float64(ground.BoundingRadius()), 1e-3)
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
