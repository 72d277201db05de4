package hud

// HudBuilderOption configures a hud during construction.
type HudBuilderOption func(*hud)

// WithScale sets the integer UI scale multiplier applied to rasterized
// textures and layout metrics, for readable text on high-DPI displays.
// Values below 1 are clamped to 1.
//
// Parameters:
//   - scale: the UI scale multiplier
//
// Returns:
//   - HudBuilderOption: the option that applies the scale
func WithScale(scale int) HudBuilderOption {
	return func(h *hud) {
		if scale < 1 {
			scale = 1
		}
		h.scale = scale
	}
}
