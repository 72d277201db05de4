package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewLight_Defaults checks the constructor baseline before options apply
func TestNewLight_Defaults(t *testing.T) {
	l := NewLight(LightTypeDirectional)

	assert.Equal(t, LightTypeDirectional, l.Type())
	assert.Equal(t, [3]float32{0, -1, 0}, l.Direction())
	assert.Equal(t, [3]float32{1, 1, 1}, l.Color())
	assert.Equal(t, float32(1), l.Intensity())
	assert.True(t, l.Enabled())
	assert.False(t, l.CastsShadows())
}

// TestLight_DirectionIsNormalized covers both the option and the setter
func TestLight_DirectionIsNormalized(t *testing.T) {
	l := NewLight(LightTypeDirectional, WithDirection(3, 0, 4))
	d := l.Direction()
	assert.InDelta(t, 0.6, float64(d[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(d[2]), 1e-6)

	l.SetDirection(0, -10, 0)
	assert.Equal(t, [3]float32{0, -1, 0}, l.Direction())

	l.SetDirection(0, 0, 0)
	assert.Equal(t, [3]float32{0, 0, 0}, l.Direction())
}

// TestLight_BuilderOptions applies every option together
func TestLight_BuilderOptions(t *testing.T) {
	l := NewLight(LightTypeDirectional,
		WithColor(1, 0.9, 0.8),
		WithIntensity(2.5),
		WithEnabled(false),
		WithCastsShadows(true),
	)

	assert.Equal(t, [3]float32{1, 0.9, 0.8}, l.Color())
	assert.Equal(t, float32(2.5), l.Intensity())
	assert.False(t, l.Enabled())
	assert.True(t, l.CastsShadows())
}

// TestSelectKeyLight_PrefersShadowCaster picks the shadow caster over earlier
// non-casting directional lights
func TestSelectKeyLight_PrefersShadowCaster(t *testing.T) {
	plain := NewLight(LightTypeDirectional)
	caster := NewLight(LightTypeDirectional, WithCastsShadows(true))

	key := SelectKeyLight([]Light{plain, caster})
	assert.Same(t, caster, key)
}

// TestSelectKeyLight_FallsBackToPlainDirectional uses the first enabled
// directional light when no shadow caster exists
func TestSelectKeyLight_FallsBackToPlainDirectional(t *testing.T) {
	first := NewLight(LightTypeDirectional)
	second := NewLight(LightTypeDirectional)

	key := SelectKeyLight([]Light{first, second})
	assert.Same(t, first, key)
}

// TestSelectKeyLight_SkipsDisabledAndAmbient returns nil when nothing qualifies
func TestSelectKeyLight_SkipsDisabledAndAmbient(t *testing.T) {
	disabled := NewLight(LightTypeDirectional, WithEnabled(false), WithCastsShadows(true))
	fill := NewLight(LightTypeAmbient)

	assert.Nil(t, SelectKeyLight([]Light{disabled, fill}))
	assert.Nil(t, SelectKeyLight(nil))
}

// TestAccumulateAmbient sums only enabled ambient lights, scaled by intensity
func TestAccumulateAmbient(t *testing.T) {
	lights := []Light{
		NewLight(LightTypeAmbient, WithColor(0.2, 0.4, 0.6), WithIntensity(0.5)),
		NewLight(LightTypeAmbient, WithColor(0.1, 0.1, 0.1)),
		NewLight(LightTypeAmbient, WithColor(1, 1, 1), WithEnabled(false)),
		NewLight(LightTypeDirectional, WithColor(1, 1, 1)),
	}

	ambient := AccumulateAmbient(lights)
	assert.InDelta(t, 0.2, float64(ambient[0]), 1e-6)
	assert.InDelta(t, 0.3, float64(ambient[1]), 1e-6)
	assert.InDelta(t, 0.4, float64(ambient[2]), 1e-6)
}

// TestGPUShadowData_Marshal verifies the 80-byte uniform layout
func TestGPUShadowData_Marshal(t *testing.T) {
	s := GPUShadowData{
		TexelSize:  [2]float32{1.0 / 2048, 1.0 / 2048},
		Bias:       0.001,
		NormalBias: 0.06,
	}
	for i := range s.LightVP {
		s.LightVP[i] = float32(i)
	}

	buf := s.Marshal()
	require.Len(t, buf, 80)
	assert.Equal(t, 80, s.Size())

	at := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off : off+4]))
	}
	assert.Equal(t, float32(15), at(60))
	assert.InDelta(t, 1.0/2048, float64(at(64)), 1e-9)
	assert.InDelta(t, 0.001, float64(at(72)), 1e-9)
	assert.InDelta(t, 0.06, float64(at(76)), 1e-9)
}

// TestGPUShadowUniform_Marshal verifies the 64-byte matrix payload
func TestGPUShadowUniform_Marshal(t *testing.T) {
	var u GPUShadowUniform
	u.LightVP[0] = 2
	u.LightVP[15] = 1

	buf := u.Marshal()
	require.Len(t, buf, 64)
	assert.Equal(t, float32(2), math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[60:64])))
}

// TestComputeDirectionalLightVP_CentersFrustum projects the frustum center to
// clip-space origin and the frustum edge to the clip boundary
func TestComputeDirectionalLightVP_CentersFrustum(t *testing.T) {
	var s GPUShadowData
	// Straight-down light exercises the X-up fallback.
	s.ComputeDirectionalLightVP([3]float32{0, -1, 0}, 0, 0, 0, 40, 0.1, 200)

	project := func(x, y, z float32) (float32, float32) {
		m := s.LightVP
		cx := m[0]*x + m[4]*y + m[8]*z + m[12]
		cy := m[1]*x + m[5]*y + m[9]*z + m[13]
		return cx, cy
	}

	cx, cy := project(0, 0, 0)
	assert.InDelta(t, 0, float64(cx), 1e-4)
	assert.InDelta(t, 0, float64(cy), 1e-4)

	// A point 40 units from center lands on a clip-space edge.
	ex, ey := project(40, 0, 0)
	edge := float32(math.Max(math.Abs(float64(ex)), math.Abs(float64(ey))))
	assert.InDelta(t, 1.0, float64(edge), 1e-4)
}

// TestComputeNormalBias scales the shadow texel world size
func TestComputeNormalBias(t *testing.T) {
	var s GPUShadowData
	s.ComputeNormalBias(40, 3.0, 2048)
	assert.InDelta(t, 2.0*40.0/2048.0*3.0, float64(s.NormalBias), 1e-6)
}
