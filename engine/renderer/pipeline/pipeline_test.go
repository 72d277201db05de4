package pipeline

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdant-labs/groveview/engine/renderer/shader"
	"github.com/verdant-labs/groveview/engine/renderer/shaders"
)

// A bare pipeline starts depth-tested and opaque with triangle list topology.
func TestNewPipeline_Defaults(t *testing.T) {
	p := NewPipeline("lit")

	assert.Equal(t, "lit", p.PipelineKey())
	assert.True(t, p.DepthTestEnabled())
	assert.True(t, p.DepthWriteEnabled())
	assert.False(t, p.BlendEnabled())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.Equal(t, wgpu.ColorWriteMaskAll, p.WriteMask())
	assert.Nil(t, p.Pipeline())

	blend := p.BlendState()
	require.NotNil(t, blend)
	assert.Equal(t, wgpu.BlendFactorSrcAlpha, blend.Color.SrcFactor)
	assert.Equal(t, wgpu.BlendFactorOneMinusSrcAlpha, blend.Color.DstFactor)
}

// Builder options override the defaults a shadow pipeline needs.
func TestNewPipeline_ShadowConfiguration(t *testing.T) {
	vs := shader.NewShader("shadow_vertex", shader.ShaderTypeVertex, shaders.Shadow)

	p := NewPipeline("shadow_depth",
		WithVertexShader(vs),
		WithCullMode(wgpu.CullModeFront),
		WithDepthBias(2, 1.5),
	)

	assert.Equal(t, vs, p.Shader(shader.ShaderTypeVertex))
	assert.Nil(t, p.Shader(shader.ShaderTypeFragment))
	assert.Equal(t, wgpu.CullModeFront, p.CullMode())
	assert.Equal(t, int32(2), p.DepthBias())
	assert.InDelta(t, 1.5, p.DepthBiasSlopeScale(), 1e-6)
}

// Overlay pipelines disable depth entirely and turn on blending.
func TestNewPipeline_OverlayConfiguration(t *testing.T) {
	p := NewPipeline("hud",
		WithDepthTestEnabled(false),
		WithDepthWriteEnabled(false),
		WithBlendEnabled(true),
	)

	assert.False(t, p.DepthTestEnabled())
	assert.False(t, p.DepthWriteEnabled())
	assert.True(t, p.BlendEnabled())
}
