package hud

import (
	"encoding/binary"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// float32At decodes the little-endian float32 at the given byte offset.
func float32At(t *testing.T, buf []byte, offset int) float32 {
	t.Helper()
	require.LessOrEqual(t, offset+4, len(buf))
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset : offset+4]))
}

// findElement returns the snapshot element with the given key.
func findElement(t *testing.T, elements []Element, key string) Element {
	t.Helper()
	for _, element := range elements {
		if element.Key == key {
			return element
		}
	}
	t.Fatalf("element %q not found in snapshot", key)
	return Element{}
}

// Constructing a HUD with a zero surface dimension must panic.
func TestNewHud_PanicsOnZeroSize(t *testing.T) {
	assert.Panics(t, func() { NewHud(0, 600) })
	assert.Panics(t, func() { NewHud(800, 0) })
}

// The buttons sit in the bottom-left corner, the panel in the top-left and
// the loading indicator in the bottom-right, all inset by the margin.
func TestHud_LayoutCorners(t *testing.T) {
	h := NewHud(800, 600)
	elements, _ := h.Snapshot()
	require.Len(t, elements, 4)

	// "PREV" is 4 glyphs at 7px plus 10px padding on each side.
	prev := findElement(t, elements, ElementButtonPrev)
	assert.True(t, prev.Visible)
	assert.Equal(t, ActionPrev, prev.Action)
	assert.Equal(t, float32(48), prev.Width)
	assert.Equal(t, float32(33), prev.Height)
	assert.Equal(t, float32(16), prev.X)
	assert.Equal(t, float32(551), prev.Y)

	next := findElement(t, elements, ElementButtonNext)
	assert.True(t, next.Visible)
	assert.Equal(t, ActionNext, next.Action)
	assert.Equal(t, float32(72), next.X)
	assert.Equal(t, prev.Y, next.Y)

	panel := findElement(t, elements, ElementPanel)
	assert.False(t, panel.Visible)
	assert.Equal(t, float32(16), panel.X)
	assert.Equal(t, float32(16), panel.Y)

	// "Loading assets..." is 17 glyphs wide.
	loading := findElement(t, elements, ElementLoading)
	assert.False(t, loading.Visible)
	assert.Equal(t, float32(139), loading.Width)
	assert.Equal(t, float32(645), loading.X)
	assert.Equal(t, float32(551), loading.Y)
}

// The UI scale multiplies both the rasterized texture sizes and the layout
// metrics.
func TestHud_ScaleMultipliesLayout(t *testing.T) {
	h := NewHud(800, 600, WithScale(2))
	elements, _ := h.Snapshot()

	prev := findElement(t, elements, ElementButtonPrev)
	assert.Equal(t, float32(96), prev.Width)
	assert.Equal(t, float32(66), prev.Height)
	assert.Equal(t, float32(32), prev.X)
	assert.Equal(t, float32(502), prev.Y)

	next := findElement(t, elements, ElementButtonNext)
	assert.Equal(t, float32(144), next.X)
}

// Cursor positions over the buttons map to their actions; everything else,
// including the non-interactive panel area, misses.
func TestHud_HitTest(t *testing.T) {
	h := NewHud(800, 600)
	h.SetStageInfo("Raw Land", "Bare site before planting begins.")

	assert.Equal(t, ActionPrev, h.HitTest(40, 567))
	assert.Equal(t, ActionNext, h.HitTest(96, 567))

	// Rect minimum is inclusive, maximum exclusive.
	assert.Equal(t, ActionPrev, h.HitTest(16, 551))
	assert.Equal(t, ActionNone, h.HitTest(64, 551))

	assert.Equal(t, ActionNone, h.HitTest(0, 0))
	assert.Equal(t, ActionNone, h.HitTest(20, 20))
	assert.Equal(t, ActionNone, h.HitTest(700, 567))
}

// The revision counter increments only on effective changes, so unchanged
// frames can skip GPU uploads.
func TestHud_RevisionTracksChanges(t *testing.T) {
	h := NewHud(800, 600)
	_, rev := h.Snapshot()

	h.SetStageInfo("Reforestation", "Saplings planted across the plot.")
	_, next := h.Snapshot()
	assert.Equal(t, rev+1, next)
	rev = next

	// Identical content is a no-op.
	h.SetStageInfo("Reforestation", "Saplings planted across the plot.")
	_, next = h.Snapshot()
	assert.Equal(t, rev, next)

	h.SetLoading(true)
	_, next = h.Snapshot()
	assert.Equal(t, rev+1, next)
	rev = next

	h.SetLoading(true)
	_, next = h.Snapshot()
	assert.Equal(t, rev, next)

	h.Resize(800, 600)
	_, next = h.Snapshot()
	assert.Equal(t, rev, next)

	h.Resize(1024, 768)
	_, next = h.Snapshot()
	assert.Equal(t, rev+1, next)
	rev = next

	h.Resize(0, 768)
	_, next = h.Snapshot()
	assert.Equal(t, rev, next)
}

// Setting stage info shows the panel and sizes its raster to the wrapped
// text block.
func TestHud_SetStageInfoPanel(t *testing.T) {
	h := NewHud(800, 600)
	h.SetStageInfo("Raw Land", "Bare site")

	elements, _ := h.Snapshot()
	panel := findElement(t, elements, ElementPanel)
	assert.True(t, panel.Visible)

	// Three lines: title, blank spacer, description. The longest is the
	// nine-glyph description.
	assert.Equal(t, float32(9*7+2*10), panel.Width)
	assert.Equal(t, float32(3*13+2*10), panel.Height)

	h.SetStageInfo("", "")
	elements, _ = h.Snapshot()
	assert.False(t, findElement(t, elements, ElementPanel).Visible)
}

// Resizing anchors the corner elements to the new surface bounds.
func TestHud_ResizeRelayout(t *testing.T) {
	h := NewHud(800, 600)
	h.Resize(1280, 720)

	elements, _ := h.Snapshot()
	prev := findElement(t, elements, ElementButtonPrev)
	assert.Equal(t, float32(16), prev.X)
	assert.Equal(t, float32(720-16-33), prev.Y)

	loading := findElement(t, elements, ElementLoading)
	assert.Equal(t, float32(1280-16-139), loading.X)

	assert.Equal(t, ActionPrev, h.HitTest(40, 687))
}

// Snapshot returns value copies; mutating them must not leak back into the
// HUD's state.
func TestHud_SnapshotIsolation(t *testing.T) {
	h := NewHud(800, 600)

	elements, _ := h.Snapshot()
	elements[0].X = 9999

	again, _ := h.Snapshot()
	assert.NotEqual(t, float32(9999), again[0].X)
}

// The element quad marshals four vertices with the UV origin at the
// top-left and a two-triangle index list.
func TestElement_QuadBytes(t *testing.T) {
	element := Element{X: 10, Y: 20, Width: 30, Height: 40}

	vertices := element.VertexBytes()
	require.Len(t, vertices, 128)

	// Top-left vertex.
	assert.Equal(t, float32(10), float32At(t, vertices, 0))
	assert.Equal(t, float32(20), float32At(t, vertices, 4))
	assert.Equal(t, float32(0), float32At(t, vertices, 8))
	assert.Equal(t, float32(0), float32At(t, vertices, 12))
	assert.Equal(t, float32(1), float32At(t, vertices, 16))

	// Bottom-left vertex.
	assert.Equal(t, float32(10), float32At(t, vertices, 32))
	assert.Equal(t, float32(60), float32At(t, vertices, 36))
	assert.Equal(t, float32(1), float32At(t, vertices, 44))

	// Bottom-right vertex.
	assert.Equal(t, float32(40), float32At(t, vertices, 64))
	assert.Equal(t, float32(60), float32At(t, vertices, 68))

	// Top-right vertex.
	assert.Equal(t, float32(40), float32At(t, vertices, 96))
	assert.Equal(t, float32(20), float32At(t, vertices, 100))
	assert.Equal(t, float32(0), float32At(t, vertices, 108))

	indices := element.IndexBytes()
	require.Len(t, indices, 24)
	expected := []uint32{0, 1, 2, 0, 2, 3}
	for i, want := range expected {
		assert.Equal(t, want, binary.LittleEndian.Uint32(indices[i*4:i*4+4]))
	}
}

// ScreenData marshals the surface size as two float32 values.
func TestHud_ScreenData(t *testing.T) {
	h := NewHud(800, 600)

	data := h.ScreenData()
	require.Len(t, data, 8)
	assert.Equal(t, float32(800), float32At(t, data, 0))
	assert.Equal(t, float32(600), float32At(t, data, 4))

	h.Resize(1024, 768)
	data = h.ScreenData()
	assert.Equal(t, float32(1024), float32At(t, data, 0))
	assert.Equal(t, float32(768), float32At(t, data, 4))
}

// Rasterized text is sized by the longest line plus padding and carries the
// background fill in the corners.
func TestRasterizeText_Dimensions(t *testing.T) {
	fg := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	bg := color.RGBA{R: 10, G: 20, B: 30, A: 255}

	tex := RasterizeText([]string{"ab", "c"}, 1, fg, bg, 2)
	assert.Equal(t, uint32(18), tex.Width)
	assert.Equal(t, uint32(30), tex.Height)
	require.Len(t, tex.Pixels, 18*30*4)

	// Corner pixel holds the background fill.
	assert.Equal(t, []byte{10, 20, 30, 255}, tex.Pixels[:4])

	// At least one glyph pixel renders in the foreground color.
	found := false
	for i := 0; i+4 <= len(tex.Pixels); i += 4 {
		if tex.Pixels[i] == 0xFF && tex.Pixels[i+1] == 0xFF && tex.Pixels[i+2] == 0xFF {
			found = true
			break
		}
	}
	assert.True(t, found, "expected at least one foreground pixel")
}

// Integer upscaling multiplies the raster dimensions without resampling
// artifacts.
func TestRasterizeText_Scale(t *testing.T) {
	fg := color.RGBA{A: 0xFF}
	bg := color.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0xFF}

	tex := RasterizeText([]string{"x"}, 3, fg, bg, 0)
	assert.Equal(t, uint32(21), tex.Width)
	assert.Equal(t, uint32(39), tex.Height)
	require.Len(t, tex.Pixels, 21*39*4)
	assert.Equal(t, []byte{0x11, 0x22, 0x33, 0xFF}, tex.Pixels[:4])
}

// Nil or empty input still produces a minimal raster.
func TestRasterizeText_EmptyInput(t *testing.T) {
	fg := color.RGBA{A: 0xFF}
	bg := color.RGBA{A: 0xFF}

	tex := RasterizeText(nil, 1, fg, bg, 4)
	assert.Equal(t, uint32(15), tex.Width)
	assert.Equal(t, uint32(21), tex.Height)
}

// wrapText breaks at word boundaries and splits words longer than the limit.
func TestWrapText(t *testing.T) {
	assert.Equal(t, []string{"the quick", "brown fox"}, wrapText("the quick brown fox", 10))
	assert.Equal(t, []string{"alpha", "beta"}, wrapText("alpha beta", 5))
	assert.Equal(t, []string{"ab", "supercal", "ifragili", "stic"}, wrapText("ab supercalifragilistic", 8))
	assert.Equal(t, []string{""}, wrapText("", 10))
	assert.Equal(t, []string{"one"}, wrapText("one", 10))
}
