package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdant-labs/groveview/engine/renderer/shaders"
)

// Parsing the lit vertex stage extracts the entry point and the mesh vertex layout.
func TestNewShader_LitVertexEntryAndLayout(t *testing.T) {
	s := NewShader("lit_vertex", ShaderTypeVertex, shaders.Lit)

	assert.Equal(t, "vs_main", s.EntryPoint())
	assert.Equal(t, ShaderTypeVertex, s.ShaderType())

	layouts := s.VertexLayouts()
	require.Len(t, layouts, 1)
	require.Len(t, layouts[0], 1)

	layout := layouts[0][0]
	assert.Equal(t, uint64(48), layout.ArrayStride)
	require.Len(t, layout.Attributes, 4)
	assert.Equal(t, wgpu.VertexFormatFloat32x3, layout.Attributes[0].Format)
	assert.Equal(t, uint64(0), layout.Attributes[0].Offset)
	assert.Equal(t, wgpu.VertexFormatFloat32x3, layout.Attributes[1].Format)
	assert.Equal(t, uint64(12), layout.Attributes[1].Offset)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, layout.Attributes[2].Format)
	assert.Equal(t, uint64(24), layout.Attributes[2].Offset)
	assert.Equal(t, wgpu.VertexFormatFloat32x4, layout.Attributes[3].Format)
	assert.Equal(t, uint64(32), layout.Attributes[3].Offset)
}

// The lit fragment stage resolves its own entry point from the shared source.
func TestNewShader_LitFragmentEntryPoint(t *testing.T) {
	s := NewShader("lit_fragment", ShaderTypeFragment, shaders.Lit)

	assert.Equal(t, "fs_main", s.EntryPoint())
	assert.Empty(t, s.VertexLayouts())
}

// Bind group descriptors parsed from the lit source carry the uniform sizes the
// renderer allocates buffers with.
func TestNewShader_LitBindGroupLayouts(t *testing.T) {
	s := NewShader("lit_vertex", ShaderTypeVertex, shaders.Lit)

	descriptors := s.BindGroupLayoutDescriptors()
	require.Len(t, descriptors, 3)

	group0 := s.BindGroupLayoutDescriptor(0)
	require.Len(t, group0.Entries, 4)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, group0.Entries[0].Buffer.Type)
	assert.Equal(t, uint64(128), group0.Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, group0.Entries[1].Buffer.Type)
	assert.Equal(t, uint64(80), group0.Entries[1].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.TextureSampleTypeDepth, group0.Entries[2].Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimension2D, group0.Entries[2].Texture.ViewDimension)
	assert.Equal(t, wgpu.SamplerBindingTypeComparison, group0.Entries[3].Sampler.Type)

	group1 := s.BindGroupLayoutDescriptor(1)
	require.Len(t, group1.Entries, 1)
	assert.Equal(t, uint64(64), group1.Entries[0].Buffer.MinBindingSize)

	group2 := s.BindGroupLayoutDescriptor(2)
	require.Len(t, group2.Entries, 2)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, group2.Entries[0].Texture.SampleType)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, group2.Entries[1].Sampler.Type)
}

// Entries inherit the visibility of the stage that parsed them.
func TestNewShader_VisibilityFollowsShaderType(t *testing.T) {
	vs := NewShader("lit_vertex", ShaderTypeVertex, shaders.Lit)
	fs := NewShader("lit_fragment", ShaderTypeFragment, shaders.Lit)

	for _, entry := range vs.BindGroupLayoutDescriptor(0).Entries {
		assert.Equal(t, wgpu.ShaderStageVertex, entry.Visibility)
	}
	for _, entry := range fs.BindGroupLayoutDescriptor(0).Entries {
		assert.Equal(t, wgpu.ShaderStageFragment, entry.Visibility)
	}
}

// Variable names map back to group and binding indices for resource wiring.
func TestNewShader_BindGroupVarNames(t *testing.T) {
	s := NewShader("lit_vertex", ShaderTypeVertex, shaders.Lit)

	assert.Equal(t, "frame", s.BindGroupVarName(0, 0))
	assert.Equal(t, "shadow_map", s.BindGroupVarName(0, 2))
	assert.Equal(t, "base_texture", s.BindGroupVarName(2, 0))
	assert.Empty(t, s.BindGroupVarName(5, 0))

	binding, ok := s.BindGroupFromVarName(0, "shadow_data")
	require.True(t, ok)
	assert.Equal(t, 1, binding)

	_, ok = s.BindGroupFromVarName(0, "missing")
	assert.False(t, ok)
}

// The shadow pass shares the mesh vertex layout so stage buffers bind unchanged.
func TestNewShader_ShadowVertexMatchesLitStride(t *testing.T) {
	s := NewShader("shadow_vertex", ShaderTypeVertex, shaders.Shadow)

	assert.Equal(t, "vs_shadow", s.EntryPoint())

	layouts := s.VertexLayouts()
	require.Len(t, layouts, 1)
	assert.Equal(t, uint64(48), layouts[0][0].ArrayStride)

	group0 := s.BindGroupLayoutDescriptor(0)
	require.Len(t, group0.Entries, 1)
	assert.Equal(t, uint64(64), group0.Entries[0].Buffer.MinBindingSize)
}

// The overlay shader uses a compact pixel-space vertex and a vec2 screen uniform.
func TestNewShader_HUDLayouts(t *testing.T) {
	s := NewShader("hud_vertex", ShaderTypeVertex, shaders.HUD)

	layouts := s.VertexLayouts()
	require.Len(t, layouts, 1)
	assert.Equal(t, uint64(32), layouts[0][0].ArrayStride)

	group0 := s.BindGroupLayoutDescriptor(0)
	require.Len(t, group0.Entries, 1)
	assert.Equal(t, uint64(8), group0.Entries[0].Buffer.MinBindingSize)

	group1 := s.BindGroupLayoutDescriptor(1)
	require.Len(t, group1.Entries, 2)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, group1.Entries[0].Texture.SampleType)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, group1.Entries[1].Sampler.Type)
}

// Empty sources are an authoring error and fail loudly.
func TestNewShader_PanicsOnEmptySource(t *testing.T) {
	assert.Panics(t, func() {
		NewShader("empty", ShaderTypeVertex, "")
	})
}

// Requesting a stage the source does not define fails loudly as well.
func TestNewShader_PanicsWithoutEntryPoint(t *testing.T) {
	assert.Panics(t, func() {
		NewShader("shadow_fragment", ShaderTypeFragment, shaders.Shadow)
	})
}

// Nested block comments strip cleanly so commented-out declarations do not parse.
func TestStripComments_NestedBlocks(t *testing.T) {
	source := "/* outer /* inner */ still outer */ struct A { x: f32, }"

	cleaned := stripComments(source)

	assert.NotContains(t, cleaned, "outer")
	assert.Contains(t, cleaned, "struct A")
}

// Commas inside angle brackets do not split struct fields.
func TestSplitAtTopLevelCommas_KeepsTypeParams(t *testing.T) {
	parts := splitAtTopLevelCommas("a: vec3<f32>, b: f32")

	require.Len(t, parts, 2)
	assert.Equal(t, "a: vec3<f32>", parts[0])
	assert.Equal(t, " b: f32", parts[1])
}
