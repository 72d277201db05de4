package hud

import (
	"encoding/binary"
	"image/color"
	"sync"

	"github.com/verdant-labs/groveview/common"
)

// Action identifies the navigation command an interactive HUD element
// triggers when clicked.
type Action int

const (
	// ActionNone marks a non-interactive element or a miss.
	ActionNone Action = iota
	// ActionPrev steps the viewer back to the previous stage.
	ActionPrev
	// ActionNext steps the viewer forward to the next stage.
	ActionNext
)

// Stable element keys exposed through Snapshot. Callers use them to track
// per-element GPU resources across frames.
const (
	ElementButtonPrev = "hud_button_prev"
	ElementButtonNext = "hud_button_next"
	ElementPanel      = "hud_panel"
	ElementLoading    = "hud_loading"
)

// Pixel layout constants, applied after multiplication by the UI scale.
const (
	hudMargin     = 16
	hudButtonGap  = 8
	hudButtonPad  = 10
	hudPanelPad   = 10
	hudPanelWidth = 300
)

var (
	hudTextColor   = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	hudButtonColor = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xFF}
	hudPanelColor  = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xC8}
)

// Element is one rectangular overlay item: a rect in surface pixel space
// (origin top-left) plus the raster drawn onto it. Elements are value
// snapshots; the texture pointer is shared with the HUD and must be treated
// as read-only.
type Element struct {
	Key     string
	Action  Action
	X       float32
	Y       float32
	Width   float32
	Height  float32
	Texture *common.TextureStagingData
	Visible bool
}

// VertexBytes marshals the element's screen-space quad for the hud pipeline.
// Vertices run top-left, bottom-left, bottom-right, top-right with the UV
// origin at the top-left, so the raster appears upright.
//
// Returns:
//   - []byte: four marshaled GPUQuadVertex entries
func (e *Element) VertexBytes() []byte {
	white := [4]float32{1, 1, 1, 1}
	quad := [4]GPUQuadVertex{
		{Position: [2]float32{e.X, e.Y}, UV: [2]float32{0, 0}, Color: white},
		{Position: [2]float32{e.X, e.Y + e.Height}, UV: [2]float32{0, 1}, Color: white},
		{Position: [2]float32{e.X + e.Width, e.Y + e.Height}, UV: [2]float32{1, 1}, Color: white},
		{Position: [2]float32{e.X + e.Width, e.Y}, UV: [2]float32{1, 0}, Color: white},
	}

	buf := make([]byte, 0, len(quad)*int(quad[0].Size()))
	for i := range quad {
		buf = append(buf, quad[i].Marshal()...)
	}
	return buf
}

// IndexBytes returns the two-triangle index payload for the element quad.
//
// Returns:
//   - []byte: six little-endian uint32 indices
func (e *Element) IndexBytes() []byte {
	indices := [6]uint32{0, 1, 2, 0, 2, 3}
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], idx)
	}
	return buf
}

// Contains reports whether the point (x, y) in surface pixels falls inside
// the element's rect.
func (e *Element) Contains(x, y float64) bool {
	return x >= float64(e.X) && x < float64(e.X+e.Width) &&
		y >= float64(e.Y) && y < float64(e.Y+e.Height)
}

// Hud is the interface for the screen-space overlay: stage navigation
// buttons, the stage info panel, and the asset loading indicator. All methods
// are safe for concurrent use.
type Hud interface {
	// Resize re-lays-out every element for a new surface size.
	//
	// Parameters:
	//   - width: new surface width in pixels
	//   - height: new surface height in pixels
	Resize(width, height uint32)

	// SetStageInfo updates the info panel with the current stage's name and
	// description, re-rasterizing the panel texture. The description is
	// word-wrapped to the panel width.
	//
	// Parameters:
	//   - name: stage display name shown as the panel title
	//   - description: stage description, empty for a title-only panel
	SetStageInfo(name, description string)

	// SetLoading toggles the loading indicator shown while stage assets are
	// still being fetched.
	//
	// Parameters:
	//   - visible: whether the indicator should be drawn
	SetLoading(visible bool)

	// Snapshot returns the current elements in draw order together with a
	// revision counter. The revision increments whenever layout or content
	// changes, letting callers skip GPU re-uploads on unchanged frames.
	//
	// Returns:
	//   - []Element: copies of the elements in back-to-front draw order
	//   - uint64: the current revision
	Snapshot() ([]Element, uint64)

	// HitTest maps a cursor position in surface pixels to the action of the
	// interactive element under it.
	//
	// Parameters:
	//   - x: cursor x in pixels from the left edge
	//   - y: cursor y in pixels from the top edge
	//
	// Returns:
	//   - Action: the hit element's action, or ActionNone on a miss
	HitTest(x, y float64) Action

	// ScreenData returns the marshaled surface-size uniform consumed by the
	// hud pipeline's vertex shader.
	//
	// Returns:
	//   - []byte: the marshaled GPUScreenData payload
	ScreenData() []byte
}

// hud is the implementation of the Hud interface.
type hud struct {
	mu sync.RWMutex

	width  uint32
	height uint32
	scale  int

	stageName        string
	stageDescription string
	loadingVisible   bool

	elements map[string]*Element
	revision uint64
}

var _ Hud = &hud{}

// NewHud creates the overlay for a surface of the given size and rasterizes
// the static button and loading textures. The info panel stays hidden until
// the first SetStageInfo call. Panics when the surface size is zero.
//
// Parameters:
//   - width: surface width in pixels
//   - height: surface height in pixels
//   - options: optional configuration such as WithScale
//
// Returns:
//   - Hud: the configured overlay
func NewHud(width, height uint32, options ...HudBuilderOption) Hud {
	if width == 0 || height == 0 {
		panic("hud requires a non-zero surface size")
	}

	h := &hud{
		width:    width,
		height:   height,
		scale:    1,
		elements: make(map[string]*Element),
	}
	for _, option := range options {
		option(h)
	}

	h.elements[ElementButtonPrev] = &Element{
		Key:     ElementButtonPrev,
		Action:  ActionPrev,
		Texture: RasterizeLine("PREV", h.scale, hudTextColor, hudButtonColor, hudButtonPad),
		Visible: true,
	}
	h.elements[ElementButtonNext] = &Element{
		Key:     ElementButtonNext,
		Action:  ActionNext,
		Texture: RasterizeLine("NEXT", h.scale, hudTextColor, hudButtonColor, hudButtonPad),
		Visible: true,
	}
	h.elements[ElementLoading] = &Element{
		Key:     ElementLoading,
		Action:  ActionNone,
		Texture: RasterizeLine("Loading assets...", h.scale, hudTextColor, hudPanelColor, hudPanelPad),
		Visible: false,
	}
	h.elements[ElementPanel] = &Element{
		Key:     ElementPanel,
		Action:  ActionNone,
		Texture: RasterizeLine("", h.scale, hudTextColor, hudPanelColor, hudPanelPad),
		Visible: false,
	}
	h.layout()

	return h
}

func (h *hud) Resize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if width == h.width && height == h.height {
		return
	}
	h.width = width
	h.height = height
	h.layout()
	h.revision++
}

func (h *hud) SetStageInfo(name, description string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if name == h.stageName && description == h.stageDescription {
		return
	}
	h.stageName = name
	h.stageDescription = description

	lines := []string{name}
	if description != "" {
		maxChars := (hudPanelWidth - 2*hudPanelPad) / fontCharWidth
		lines = append(lines, "")
		lines = append(lines, wrapText(description, maxChars)...)
	}

	panel := h.elements[ElementPanel]
	panel.Texture = RasterizeText(lines, h.scale, hudTextColor, hudPanelColor, hudPanelPad)
	panel.Visible = name != ""
	h.layout()
	h.revision++
}

func (h *hud) SetLoading(visible bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if visible == h.loadingVisible {
		return
	}
	h.loadingVisible = visible
	h.elements[ElementLoading].Visible = visible
	h.revision++
}

func (h *hud) Snapshot() ([]Element, uint64) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	keys := [4]string{ElementPanel, ElementButtonPrev, ElementButtonNext, ElementLoading}
	elements := make([]Element, 0, len(keys))
	for _, key := range keys {
		elements = append(elements, *h.elements[key])
	}
	return elements, h.revision
}

func (h *hud) HitTest(x, y float64) Action {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, key := range [2]string{ElementButtonPrev, ElementButtonNext} {
		element := h.elements[key]
		if element.Visible && element.Contains(x, y) {
			return element.Action
		}
	}
	return ActionNone
}

func (h *hud) ScreenData() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data := GPUScreenData{ScreenSize: [2]float32{float32(h.width), float32(h.height)}}
	return data.Marshal()
}

// layout positions every element for the current surface size. Buttons sit in
// the bottom-left corner, the info panel in the top-left, and the loading
// indicator in the bottom-right. Caller must hold the write lock.
func (h *hud) layout() {
	surfaceW := float32(h.width)
	surfaceH := float32(h.height)
	margin := float32(hudMargin * h.scale)
	gap := float32(hudButtonGap * h.scale)

	for _, element := range h.elements {
		element.Width = float32(element.Texture.Width)
		element.Height = float32(element.Texture.Height)
	}

	prev := h.elements[ElementButtonPrev]
	prev.X = margin
	prev.Y = surfaceH - margin - prev.Height

	next := h.elements[ElementButtonNext]
	next.X = prev.X + prev.Width + gap
	next.Y = prev.Y

	panel := h.elements[ElementPanel]
	panel.X = margin
	panel.Y = margin

	loading := h.elements[ElementLoading]
	loading.X = surfaceW - margin - loading.Width
	loading.Y = surfaceH - margin - loading.Height
}
