package scene

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdant-labs/groveview/engine/renderer/shader"
	"github.com/verdant-labs/groveview/engine/renderer/shaders"
	"github.com/verdant-labs/groveview/level"
)

// TestGPUModelData_Marshal verifies the 80-byte per-node uniform layout
func TestGPUModelData_Marshal(t *testing.T) {
	var m GPUModelData
	for i := range m.Model {
		m.Model[i] = float32(i)
	}
	m.Params[0] = 1

	buf := m.Marshal()
	require.Len(t, buf, 80)
	assert.Equal(t, 80, m.Size())

	at := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off : off+4]))
	}
	assert.Equal(t, float32(0), at(0))
	assert.Equal(t, float32(15), at(60))
	assert.Equal(t, float32(1), at(64))
	assert.Equal(t, float32(0), at(68))
}

// TestGPUFrameData_Marshal verifies the 128-byte per-frame uniform layout
func TestGPUFrameData_Marshal(t *testing.T) {
	f := GPUFrameData{
		CameraPosition: [3]float32{1, 2, 3},
		LightDirection: [3]float32{0, -1, 0},
		LightColor:     [3]float32{1, 0.9, 0.8},
		LightIntensity: 1.4,
		AmbientColor:   [3]float32{0.2, 0.25, 0.3},
	}
	for i := range f.ViewProj {
		f.ViewProj[i] = float32(i)
	}

	buf := f.Marshal()
	require.Len(t, buf, 128)
	assert.Equal(t, 128, f.Size())

	at := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off : off+4]))
	}
	assert.Equal(t, float32(15), at(60))
	assert.Equal(t, float32(1), at(64))
	assert.Equal(t, float32(3), at(72))
	assert.Equal(t, float32(-1), at(84))
	assert.InDelta(t, 0.9, float64(at(100)), 1e-6)
	assert.InDelta(t, 1.4, float64(at(108)), 1e-6)
	assert.InDelta(t, 0.25, float64(at(116)), 1e-6)
}

// TestMergedGroupDescriptor_WidensVisibility checks that every entry of the
// merged layout is visible to both render stages, matching what the backend
// builds when it merges the vertex and fragment shader declarations
func TestMergedGroupDescriptor_WidensVisibility(t *testing.T) {
	vs := shader.NewShader("lit_vs_test", shader.ShaderTypeVertex, shaders.Lit)
	fs := shader.NewShader("lit_fs_test", shader.ShaderTypeFragment, shaders.Lit)

	frame := mergedGroupDescriptor(vs, fs, 0)
	require.Len(t, frame.Entries, 4)
	both := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	for _, entry := range frame.Entries {
		assert.Equal(t, both, entry.Visibility&both, "binding %d", entry.Binding)
	}

	model := mergedGroupDescriptor(vs, fs, 1)
	require.Len(t, model.Entries, 1)
	assert.Equal(t, uint32(0), model.Entries[0].Binding)
	assert.Equal(t, both, model.Entries[0].Visibility&both)
}

// TestMergedGroupDescriptor_LeavesShaderUntouched ensures merging copies the
// entry slice instead of widening the shader's own descriptor in place
func TestMergedGroupDescriptor_LeavesShaderUntouched(t *testing.T) {
	vs := shader.NewShader("lit_vs_alias", shader.ShaderTypeVertex, shaders.Lit)
	fs := shader.NewShader("lit_fs_alias", shader.ShaderTypeFragment, shaders.Lit)

	before := vs.BindGroupLayoutDescriptor(1).Entries[0].Visibility
	_ = mergedGroupDescriptor(vs, fs, 1)
	after := vs.BindGroupLayoutDescriptor(1).Entries[0].Visibility

	assert.Equal(t, before, after)
	assert.Equal(t, wgpu.ShaderStage(0), after&wgpu.ShaderStageFragment)
}

// TestVariantBuilders_CoverAllVariants guards the builder dispatch map against
// a variant tag with no registered scene construction path
func TestVariantBuilders_CoverAllVariants(t *testing.T) {
	for _, tag := range []level.VariantTag{level.VariantPlaceholder, level.VariantExternalAsset} {
		build, ok := variantBuilders[tag]
		require.True(t, ok, "no builder for %v", tag)
		require.NotNil(t, build, "nil builder for %v", tag)
	}
}

// TestSceneBuilderOptions applies each option to a bare scene and checks the
// resulting fields, including the clamps on worker count and map resolution
func TestSceneBuilderOptions(t *testing.T) {
	s := &scene{active: true}

	WithActive(false)(s)
	assert.False(t, s.active)

	WithTransitionDuration(0.25)(s)
	assert.Equal(t, float32(0.25), s.transitionDuration)

	WithFetchWorkers(0)(s)
	assert.Equal(t, 1, s.fetchWorkers)
	WithFetchWorkers(8)(s)
	assert.Equal(t, 8, s.fetchWorkers)

	WithShadowHalfExtent(25)(s)
	assert.Equal(t, float32(25), s.shadowHalfExtent)

	WithShadowNearFar(1, 50)(s)
	assert.Equal(t, float32(1), s.shadowNear)
	assert.Equal(t, float32(50), s.shadowFar)

	WithShadowBias(0.002)(s)
	assert.Equal(t, float32(0.002), s.shadowBias)

	WithShadowNormalBiasScale(2)(s)
	assert.Equal(t, float32(2), s.shadowNormalBiasScale)

	WithShadowMapResolution(4)(s)
	assert.Equal(t, 16, s.shadowMapResolution)
	WithShadowMapResolution(1024)(s)
	assert.Equal(t, 1024, s.shadowMapResolution)
}

// TestClampSampler keeps the shared texture sampler clamp-addressed on every
// axis so label and HUD textures cannot bleed at their borders
func TestClampSampler(t *testing.T) {
	staging := clampSampler()
	assert.Equal(t, wgpu.AddressModeClampToEdge, staging.AddressModeU)
	assert.Equal(t, wgpu.AddressModeClampToEdge, staging.AddressModeV)
	assert.Equal(t, wgpu.AddressModeClampToEdge, staging.AddressModeW)
}
