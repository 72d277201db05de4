// Package shaders embeds the WGSL sources the viewer renders with. Shipping
// them inside the binary keeps the install a single file and removes any
// working-directory dependence at startup.
package shaders

import _ "embed"

// Lit is the forward pass for stage scenery: one directional key light,
// shadow mapping with PCF, flat ambient.
//
//go:embed lit.wgsl
var Lit string

// Shadow is the depth-only pass rendered from the key light.
//
//go:embed shadow.wgsl
var Shadow string

// Label is the unlit alpha-blended pass for floating stage name labels.
//
//go:embed label.wgsl
var Label string

// HUD is the pixel-space overlay pass for buttons and panels.
//
//go:embed hud.wgsl
var HUD string
