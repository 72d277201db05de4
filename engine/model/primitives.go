package model

import (
	"github.com/verdant-labs/groveview/common"
)

// NewBox builds a box primitive centered at the origin with per-face normals.
// Each face carries its own four vertices so lighting stays flat across the face.
//
// Parameters:
//   - size: full extents along X, Y and Z
//   - color: per-vertex RGBA color applied to every vertex
//
// Returns:
//   - Model: a single-mesh box model
func NewBox(size [3]float32, color [4]float32) Model {
	hx := size[0] / 2
	hy := size[1] / 2
	hz := size[2] / 2

	// Helper to make a vertex
	v := func(px, py, pz, nx, ny, nz, u, vt float32) GPUVertex {
		return GPUVertex{
			Position: [3]float32{px, py, pz},
			Normal:   [3]float32{nx, ny, nz},
			TexCoord: [2]float32{u, vt},
			Color:    color,
		}
	}

	vertices := []GPUVertex{
		// Top face (+Y)
		v(-hx, hy, -hz, 0, 1, 0, 0, 0), // 0
		v(hx, hy, -hz, 0, 1, 0, 1, 0),  // 1
		v(hx, hy, hz, 0, 1, 0, 1, 1),   // 2
		v(-hx, hy, hz, 0, 1, 0, 0, 1),  // 3

		// Bottom face (-Y)
		v(-hx, -hy, hz, 0, -1, 0, 0, 0),  // 4
		v(hx, -hy, hz, 0, -1, 0, 1, 0),   // 5
		v(hx, -hy, -hz, 0, -1, 0, 1, 1),  // 6
		v(-hx, -hy, -hz, 0, -1, 0, 0, 1), // 7

		// Front face (+Z)
		v(-hx, -hy, hz, 0, 0, 1, 0, 0), // 8
		v(hx, -hy, hz, 0, 0, 1, 1, 0),  // 9
		v(hx, hy, hz, 0, 0, 1, 1, 1),   // 10
		v(-hx, hy, hz, 0, 0, 1, 0, 1),  // 11

		// Back face (-Z)
		v(hx, -hy, -hz, 0, 0, -1, 0, 0),  // 12
		v(-hx, -hy, -hz, 0, 0, -1, 1, 0), // 13
		v(-hx, hy, -hz, 0, 0, -1, 1, 1),  // 14
		v(hx, hy, -hz, 0, 0, -1, 0, 1),   // 15

		// Right face (+X)
		v(hx, -hy, hz, 1, 0, 0, 0, 0),  // 16
		v(hx, -hy, -hz, 1, 0, 0, 1, 0), // 17
		v(hx, hy, -hz, 1, 0, 0, 1, 1),  // 18
		v(hx, hy, hz, 1, 0, 0, 0, 1),   // 19

		// Left face (-X)
		v(-hx, -hy, -hz, -1, 0, 0, 0, 0), // 20
		v(-hx, -hy, hz, -1, 0, 0, 1, 0),  // 21
		v(-hx, hy, hz, -1, 0, 0, 1, 1),   // 22
		v(-hx, hy, -hz, -1, 0, 0, 0, 1),  // 23
	}

	// CCW winding for each face when viewed from outside the box
	indices := make([]uint32, 0, 36)
	for face := uint32(0); face < 6; face++ {
		base := face * 4
		indices = append(indices, base, base+2, base+1, base, base+3, base+2)
	}

	return NewModel(
		WithName("box"),
		WithMeshes(&Mesh{Name: "box", Vertices: vertices, Indices: indices}),
		WithBoundingRadius(ComputeBoundingRadius(vertices)),
	)
}

// NewLabelQuad builds a camera-facing quad carrying a rasterized text texture.
// The quad lies in the XY plane facing +Z, centered at the origin, with white
// vertex color so the texture shows unmodified. The label pipeline renders it
// unlit with alpha blending.
//
// Parameters:
//   - width: quad extent along X
//   - height: quad extent along Y
//   - texture: the rasterized text texture to show
//
// Returns:
//   - Model: a single-mesh label model
func NewLabelQuad(width, height float32, texture *common.TextureStagingData) Model {
	hw := width / 2
	hh := height / 2
	white := [4]float32{1, 1, 1, 1}

	vertices := []GPUVertex{
		{Position: [3]float32{-hw, -hh, 0}, Normal: [3]float32{0, 0, 1}, TexCoord: [2]float32{0, 1}, Color: white},
		{Position: [3]float32{hw, -hh, 0}, Normal: [3]float32{0, 0, 1}, TexCoord: [2]float32{1, 1}, Color: white},
		{Position: [3]float32{hw, hh, 0}, Normal: [3]float32{0, 0, 1}, TexCoord: [2]float32{1, 0}, Color: white},
		{Position: [3]float32{-hw, hh, 0}, Normal: [3]float32{0, 0, 1}, TexCoord: [2]float32{0, 0}, Color: white},
	}
	indices := []uint32{0, 2, 1, 0, 3, 2}

	return NewModel(
		WithName("label"),
		WithMeshes(&Mesh{Name: "label", Vertices: vertices, Indices: indices, Texture: texture}),
		WithBoundingRadius(ComputeBoundingRadius(vertices)),
	)
}

// NewGroundPlane builds a flat single-sided plane in the XZ plane at y=0,
// facing +Y, centered at the origin.
//
// Parameters:
//   - halfExtent: half-extent along X and Z
//   - color: per-vertex RGBA color applied to every vertex
//
// Returns:
//   - Model: a single-mesh ground plane model
func NewGroundPlane(halfExtent float32, color [4]float32) Model {
	h := halfExtent

	vertices := []GPUVertex{
		{Position: [3]float32{-h, 0, -h}, Normal: [3]float32{0, 1, 0}, TexCoord: [2]float32{0, 0}, Color: color},
		{Position: [3]float32{h, 0, -h}, Normal: [3]float32{0, 1, 0}, TexCoord: [2]float32{1, 0}, Color: color},
		{Position: [3]float32{h, 0, h}, Normal: [3]float32{0, 1, 0}, TexCoord: [2]float32{1, 1}, Color: color},
		{Position: [3]float32{-h, 0, h}, Normal: [3]float32{0, 1, 0}, TexCoord: [2]float32{0, 1}, Color: color},
	}
	indices := []uint32{0, 2, 1, 0, 3, 2}

	return NewModel(
		WithName("ground"),
		WithMeshes(&Mesh{Name: "ground", Vertices: vertices, Indices: indices}),
		WithBoundingRadius(ComputeBoundingRadius(vertices)),
	)
}
