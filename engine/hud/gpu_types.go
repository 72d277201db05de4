package hud

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUQuadVertex is the GPU-aligned representation of a single overlay quad vertex.
// Matches the WGSL VertexInput struct layout used by the hud pipeline (see
// shaders/hud.wgsl). Position is in pixel coordinates with the origin at the
// top-left corner of the surface.
// Size: 32 bytes (std430 aligned, no padding required).
type GPUQuadVertex struct {
	Position [2]float32 // offset  0: vertex position in pixels (8 bytes)
	UV       [2]float32 // offset  8: UV texture coordinate (8 bytes)
	Color    [4]float32 // offset 16: RGBA tint multiplied with the texture (16 bytes)
}

// Size returns the size of the GPUQuadVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUQuadVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUQuadVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (g *GPUQuadVertex) Marshal() []byte {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.UV[0]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.UV[1]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Color[0]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Color[1]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.Color[2]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.Color[3]))
	return buf
}

// GPUScreenData is the GPU-aligned representation of the hud pipeline's frame
// uniform. It carries the surface size in pixels for the pixel-to-NDC mapping
// in the vertex shader.
// Size: 8 bytes.
type GPUScreenData struct {
	ScreenSize [2]float32 // offset 0: surface width and height in pixels (8 bytes)
}

// Size returns the size of the GPUScreenData struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUScreenData) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUScreenData struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 8-byte buffer ready for GPU upload.
func (g *GPUScreenData) Marshal() []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.ScreenSize[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.ScreenSize[1]))
	return buf
}
