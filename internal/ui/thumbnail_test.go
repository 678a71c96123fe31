package ui

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	return img
}

func TestScaleToFit(t *testing.T) {
	tests := []struct {
		name      string
		w, h, max int
		want      image.Point
	}{
		{"landscape", 400, 200, 100, image.Pt(100, 50)},
		{"portrait", 300, 600, 150, image.Pt(75, 150)},
		{"square", 512, 512, 128, image.Pt(128, 128)},
		{"sliver keeps one pixel", 1000, 1, 10, image.Pt(10, 1)},
		{"already fits", 64, 32, 100, image.Pt(64, 32)},
		{"no limit", 640, 480, 0, image.Pt(640, 480)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScaleToFit(solid(tt.w, tt.h), tt.max)
			assert.Equal(t, tt.want, got.Bounds().Size())
		})
	}
}

func TestScaleToFit_ReturnsSourceWhenSmall(t *testing.T) {
	src := solid(10, 10)
	assert.Same(t, src, ScaleToFit(src, 20))
}

func TestScaleToFit_KeepsColor(t *testing.T) {
	got := ScaleToFit(solid(200, 200), 50)
	r, _, _, a := got.At(25, 25).RGBA()
	assert.Equal(t, uint32(0xffff), a)
	assert.InDelta(t, 200*0x101, r, 0x200)
}

func TestNewThumbnail(t *testing.T) {
	th := NewThumbnail(solid(300, 150), 100)
	assert.Equal(t, image.Pt(300, 150), th.Original)
	assert.Equal(t, image.Pt(100, 50), th.Size)
}
