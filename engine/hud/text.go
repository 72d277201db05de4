package hud

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/verdant-labs/groveview/common"
)

// Metrics of basicfont.Face7x13, the bitmap face all viewer text renders with.
const (
	fontCharWidth  = 7
	fontLineHeight = 13
	fontAscent     = 11
)

// RasterizeText renders text lines onto a background-filled RGBA raster and
// returns it as texture staging data. The raster is sized to the longest line
// plus padding, then integer-upscaled so the bitmap font stays crisp at larger
// UI scales. Empty lines produce vertical spacing.
//
// Parameters:
//   - lines: the text lines to render, top to bottom
//   - scale: integer upscale factor (values below 1 are treated as 1)
//   - fg: text color
//   - bg: background fill color (use a zero alpha for transparent rasters)
//   - pad: padding in unscaled pixels around the text block
//
// Returns:
//   - *common.TextureStagingData: the rendered raster ready for GPU upload
func RasterizeText(lines []string, scale int, fg, bg color.RGBA, pad int) *common.TextureStagingData {
	if scale < 1 {
		scale = 1
	}
	if len(lines) == 0 {
		lines = []string{""}
	}

	longest := 1
	for _, line := range lines {
		if len(line) > longest {
			longest = len(line)
		}
	}

	w := longest*fontCharWidth + 2*pad
	h := len(lines)*fontLineHeight + 2*pad

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: basicfont.Face7x13,
	}

	for i, line := range lines {
		if line == "" {
			continue
		}
		drawer.Dot = fixed.Point26_6{
			X: fixed.I(pad),
			Y: fixed.I(pad + i*fontLineHeight + fontAscent),
		}
		drawer.DrawString(line)
	}

	if scale == 1 {
		return &common.TextureStagingData{Pixels: img.Pix, Width: uint32(w), Height: uint32(h)}
	}
	return scalePixels(img.Pix, w, h, scale)
}

// RasterizeLine renders a single line of text. Convenience wrapper around
// RasterizeText used for floating stage labels and the loading indicator.
//
// Parameters:
//   - text: the line to render
//   - scale: integer upscale factor
//   - fg: text color
//   - bg: background fill color
//   - pad: padding in unscaled pixels
//
// Returns:
//   - *common.TextureStagingData: the rendered raster ready for GPU upload
func RasterizeLine(text string, scale int, fg, bg color.RGBA, pad int) *common.TextureStagingData {
	return RasterizeText([]string{text}, scale, fg, bg, pad)
}

// scalePixels performs integer nearest-neighbor upscaling of an RGBA raster.
func scalePixels(src []byte, w, h, factor int) *common.TextureStagingData {
	dw, dh := w*factor, h*factor
	dst := make([]byte, dw*dh*4)
	for y := 0; y < dh; y++ {
		sy := y / factor
		for x := 0; x < dw; x++ {
			sx := x / factor
			copy(dst[(y*dw+x)*4:(y*dw+x)*4+4], src[(sy*w+sx)*4:(sy*w+sx)*4+4])
		}
	}
	return &common.TextureStagingData{Pixels: dst, Width: uint32(dw), Height: uint32(dh)}
}

// wrapText greedily wraps text at word boundaries so no line exceeds maxChars.
// Words longer than maxChars are split mid-word.
func wrapText(text string, maxChars int) []string {
	if maxChars < 1 {
		maxChars = 1
	}

	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		for len(word) > maxChars {
			if line != "" {
				lines = append(lines, line)
				line = ""
			}
			lines = append(lines, word[:maxChars])
			word = word[maxChars:]
		}
		if word == "" {
			continue
		}
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) <= maxChars:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}
