//go:build !linux

package staging

import (
	"image"
	"io"
)

func decodeHEIC(r io.Reader) (image.Image, error) {
	return nil, ErrHEICUnsupported
}

func heicSupported() bool {
	return false
}
