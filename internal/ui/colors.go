package ui

import "image/color"

// Theme colors
var (
	colWhite      = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	colGray       = color.NRGBA{R: 100, G: 100, B: 100, A: 255}
	colBackground = color.NRGBA{R: 245, G: 245, B: 245, A: 255}
	colAccent     = color.NRGBA{R: 66, G: 133, B: 244, A: 255}
	colTileHover  = color.NRGBA{R: 232, G: 240, B: 254, A: 255}
	colShadow     = color.NRGBA{R: 0, G: 0, B: 0, A: 60}
	// Config error banner colors
	colErrorBannerBg   = color.NRGBA{R: 220, G: 53, B: 69, A: 255}
	colErrorBannerText = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)
