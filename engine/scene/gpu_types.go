package scene

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUModelData is the GPU-aligned representation of the per-node uniform buffer
// bound at group 1 of the lit, label and shadow pipelines. Matches the WGSL
// ModelData struct layout exactly. Size: 80 bytes.
type GPUModelData struct {
	Model  [16]float32 // offset  0: world transform (mat4x4<f32>)
	Params [4]float32  // offset 64: x = receive shadows flag, yzw unused (vec4<f32>)
}

// Size returns the size of the GPUModelData struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (80)
func (g *GPUModelData) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUModelData struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUModelData) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Model[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.Params[i]))
	}
	return buf
}

// GPUFrameData is the GPU-aligned representation of the per-frame uniform buffer
// shared by the lit and label pipelines. Matches the WGSL FrameData struct layout
// exactly (see shaders/lit.wgsl). Size: 128 bytes (WGSL aligned).
type GPUFrameData struct {
	ViewProj       [16]float32 // offset   0: combined view-projection matrix (mat4x4<f32>)
	CameraPosition [3]float32  // offset  64: world-space camera position (vec3<f32>)
	_pad0          float32     // offset  76: padding for vec3 alignment
	LightDirection [3]float32  // offset  80: normalized key light direction (vec3<f32>)
	_pad1          float32     // offset  92: padding for vec3 alignment
	LightColor     [3]float32  // offset  96: key light RGB color (vec3<f32>)
	LightIntensity float32     // offset 108: key light scalar intensity (f32)
	AmbientColor   [3]float32  // offset 112: accumulated ambient RGB (vec3<f32>)
	_pad2          float32     // offset 124: padding to 128 bytes
}

// Size returns the size of the GPUFrameData struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (128)
func (g *GPUFrameData) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUFrameData struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUFrameData) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.ViewProj[i]))
	}
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.CameraPosition[i]))
	}
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[80+i*4:], math.Float32bits(g.LightDirection[i]))
	}
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[96+i*4:], math.Float32bits(g.LightColor[i]))
	}
	binary.LittleEndian.PutUint32(buf[108:], math.Float32bits(g.LightIntensity))
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[112+i*4:], math.Float32bits(g.AmbientColor[i]))
	}
	return buf
}
