package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const epsilon = 1e-5

func matricesEqual(t *testing.T, expected, actual []float32) {
	t.Helper()
	assert.Len(t, actual, 16)
	for i := range expected {
		assert.InDelta(t, expected[i], actual[i], epsilon, "element %d", i)
	}
}

func TestIdentity(t *testing.T) {
	m := make([]float32, 16)
	for i := range m {
		m[i] = 7
	}
	Identity(m)

	expected := []float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	matricesEqual(t, expected, m)
}

func TestMul4IdentityIsNeutral(t *testing.T) {
	id := make([]float32, 16)
	Identity(id)

	m := []float32{
		2, 0, 0, 0,
		0, 3, 0, 0,
		0, 0, 4, 0,
		5, 6, 7, 1,
	}

	out := make([]float32, 16)
	Mul4(out, id, m)
	matricesEqual(t, m, out)

	Mul4(out, m, id)
	matricesEqual(t, m, out)
}

func TestMul4AllowsAliasedOutput(t *testing.T) {
	a := []float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		10, 20, 30, 1,
	}
	b := []float32{
		2, 0, 0, 0,
		0, 2, 0, 0,
		0, 0, 2, 0,
		0, 0, 0, 1,
	}

	// Writing the product back into one of the operands must be safe.
	Mul4(a, a, b)

	expected := []float32{
		2, 0, 0, 0,
		0, 2, 0, 0,
		0, 0, 2, 0,
		10, 20, 30, 1,
	}
	matricesEqual(t, expected, a)
}

func TestPerspectiveClipSpace(t *testing.T) {
	out := make([]float32, 16)
	Perspective(out, float32(math.Pi/2), 1.0, 1.0, 10.0)

	// fovY of 90 degrees with aspect 1 puts focal scale at 1 on both axes.
	assert.InDelta(t, 1.0, out[0], epsilon)
	assert.InDelta(t, 1.0, out[5], epsilon)
	assert.InDelta(t, -1.0, out[11], epsilon)
	assert.InDelta(t, 0.0, out[15], epsilon)

	// A point on the near plane maps to depth 0 after perspective divide.
	nearZ := out[10]*-1.0 + out[14]
	nearW := out[11] * -1.0
	assert.InDelta(t, 0.0, nearZ/nearW, epsilon)

	// A point on the far plane maps to depth 1.
	farZ := out[10]*-10.0 + out[14]
	farW := out[11] * -10.0
	assert.InDelta(t, 1.0, farZ/farW, epsilon)
}

func TestOrthoClipSpace(t *testing.T) {
	out := make([]float32, 16)
	Ortho(out, -5, 5, -5, 5, 0, 10)

	transform := func(x, y, z float32) (float32, float32, float32) {
		cx := out[0]*x + out[12]
		cy := out[5]*y + out[13]
		cz := out[10]*z + out[14]
		return cx, cy, cz
	}

	// Volume corners land on the clip space boundaries.
	x, y, z := transform(-5, -5, 0)
	assert.InDelta(t, -1.0, x, epsilon)
	assert.InDelta(t, -1.0, y, epsilon)
	assert.InDelta(t, 0.0, z, epsilon)

	x, y, z = transform(5, 5, -10)
	assert.InDelta(t, 1.0, x, epsilon)
	assert.InDelta(t, 1.0, y, epsilon)
	assert.InDelta(t, 1.0, z, epsilon)
}

func TestOrthoPixelSpaceYDown(t *testing.T) {
	out := make([]float32, 16)
	// Screen-space convention: origin top-left, y grows downward.
	Ortho(out, 0, 800, 600, 0, -1, 1)

	// Top-left pixel maps to clip (-1, +1).
	cx := out[0]*0 + out[12]
	cy := out[5]*0 + out[13]
	assert.InDelta(t, -1.0, cx, epsilon)
	assert.InDelta(t, 1.0, cy, epsilon)

	// Bottom-right pixel maps to clip (+1, -1).
	cx = out[0]*800 + out[12]
	cy = out[5]*600 + out[13]
	assert.InDelta(t, 1.0, cx, epsilon)
	assert.InDelta(t, -1.0, cy, epsilon)
}

func TestLookAtTransformsTargetOntoViewAxis(t *testing.T) {
	view := make([]float32, 16)
	LookAt(view, 0, 0, 10, 0, 0, 0, 0, 1, 0)

	// The look target ends up on the negative z axis at camera distance.
	x := view[0]*0 + view[4]*0 + view[8]*0 + view[12]
	y := view[1]*0 + view[5]*0 + view[9]*0 + view[13]
	z := view[2]*0 + view[6]*0 + view[10]*0 + view[14]
	assert.InDelta(t, 0.0, x, epsilon)
	assert.InDelta(t, 0.0, y, epsilon)
	assert.InDelta(t, -10.0, z, epsilon)

	// The eye position maps to the view space origin.
	x = view[0]*0 + view[4]*0 + view[8]*10 + view[12]
	y = view[1]*0 + view[5]*0 + view[9]*10 + view[13]
	z = view[2]*0 + view[6]*0 + view[10]*10 + view[14]
	assert.InDelta(t, 0.0, x, epsilon)
	assert.InDelta(t, 0.0, y, epsilon)
	assert.InDelta(t, 0.0, z, epsilon)
}

func TestBuildModelMatrixTranslationAndScale(t *testing.T) {
	out := make([]float32, 16)
	BuildModelMatrix(out, 1, 2, 3, 0, 0, 0, 2, 2, 2)

	expected := []float32{
		2, 0, 0, 0,
		0, 2, 0, 0,
		0, 0, 2, 0,
		1, 2, 3, 1,
	}
	matricesEqual(t, expected, out)
}

func TestBuildModelMatrixYawRotatesAroundY(t *testing.T) {
	out := make([]float32, 16)
	BuildModelMatrix(out, 0, 0, 0, 0, float32(math.Pi/2), 0, 1, 1, 1)

	// +X rotates onto -Z under a 90 degree yaw.
	x := out[0]*1 + out[4]*0 + out[8]*0 + out[12]
	y := out[1]*1 + out[5]*0 + out[9]*0 + out[13]
	z := out[2]*1 + out[6]*0 + out[10]*0 + out[14]
	assert.InDelta(t, 0.0, x, epsilon)
	assert.InDelta(t, 0.0, y, epsilon)
	assert.InDelta(t, -1.0, z, epsilon)
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 5, Coalesce(0, 5, 9))
	assert.Equal(t, "fallback", Coalesce("", "fallback"))
	assert.Equal(t, 0, Coalesce(0, 0))
	assert.Equal(t, float32(2.5), Coalesce[float32](0, 2.5))
}

func TestSliceToBytesLength(t *testing.T) {
	data := []float32{1, 2, 3, 4}
	raw := SliceToBytes(data)
	assert.Len(t, raw, 16)

	assert.Nil(t, SliceToBytes[float32](nil))
}
