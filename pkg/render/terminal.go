package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw converts the framebuffer to terminal cells and draws them on the
// screen. The framebuffer height should be 2x the area height.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	// Each terminal row represents 2 framebuffer rows
	// We use ▀ (upper half block) with fg=top color and bg=bottom color
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X && col-area.Min.X < fb.Width; col++ {
			x := col - area.Min.X
			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(fb.GetPixel(x, topY)),
					Bg: rgbaToColor(fb.GetPixel(x, botY)),
				},
			})
		}
	}
}

// rgbaToColor converts color.RGBA to Go's color.Color interface.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil // Transparent = no color
	}
	return c
}

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Map colors.
var (
	ColorBackground = RGB(16, 18, 24)
	ColorGrid       = RGB(32, 36, 44)
	ColorCulled     = RGB(70, 70, 78)
	ColorVisible    = RGB(96, 220, 120)
	ColorBatch      = RGB(60, 90, 140)
	ColorFrustum    = RGB(240, 240, 240)
	ColorLight      = RGB(255, 200, 60)
)

// SplitColors tints casters by the nearest cascade they render into.
var SplitColors = [...]Color{
	RGB(230, 90, 80),
	RGB(240, 170, 60),
	RGB(220, 220, 80),
	RGB(110, 210, 110),
	RGB(80, 190, 220),
	RGB(100, 120, 240),
	RGB(170, 100, 230),
	RGB(230, 110, 190),
}

// SplitColor returns the color of the lowest split set in bits, or
// ColorCulled when none is.
func SplitColor(bits uint8) Color {
	for i := range SplitColors {
		if bits&(1<<uint(i)) != 0 {
			return SplitColors[i]
		}
	}
	return ColorCulled
}

// RGB creates a color from RGB values.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}
