package ui

import (
	"image"

	"gioui.org/op/paint"
	"golang.org/x/image/draw"

	"github.com/justyntemme/dragexport/internal/debug"
)

// Thumbnail is a reduced copy of an image ready for painting.
type Thumbnail struct {
	Op       paint.ImageOp
	Original image.Point // Original image dimensions
	Size     image.Point // Thumbnail dimensions
}

// NewThumbnail scales img down to fit within maxPixels and uploads it as an
// image op.
func NewThumbnail(img image.Image, maxPixels int) *Thumbnail {
	original := img.Bounds().Size()
	scaled := ScaleToFit(img, maxPixels)
	t := &Thumbnail{
		Op:       paint.NewImageOp(scaled),
		Original: original,
		Size:     scaled.Bounds().Size(),
	}
	debug.Log(debug.UI, "thumbnail: original %dx%d, thumb %dx%d",
		original.X, original.Y, t.Size.X, t.Size.Y)
	return t
}

// ScaleToFit scales src down so neither side exceeds maxPixels. Images that
// already fit are returned unchanged.
func ScaleToFit(src image.Image, maxPixels int) image.Image {
	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if maxPixels <= 0 || (width <= maxPixels && height <= maxPixels) {
		return src
	}

	var scale float64
	if width > height {
		scale = float64(maxPixels) / float64(width)
	} else {
		scale = float64(maxPixels) / float64(height)
	}

	newWidth := max(1, int(float64(width)*scale))
	newHeight := max(1, int(float64(height)*scale))

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}
