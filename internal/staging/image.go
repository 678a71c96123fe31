package staging

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	// Decoders registered with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeImage decodes any registered image format and returns the format name.
func DecodeImage(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// IsHEIC reports whether path names a HEIC/HEIF image by extension.
func IsHEIC(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".heic", ".heif":
		return true
	}
	return false
}

// HEICSupported reports whether this build can decode HEIC/HEIF images.
func HEICSupported() bool { return heicSupported() }

// CheckImage reports whether path holds a decodable image. Only the header is
// read for formats the image package knows. HEIC files pass unchecked when no
// decoder is built in.
func CheckImage(path string) error {
	if IsHEIC(path) {
		if !heicSupported() {
			return nil
		}
		_, err := LoadImage(path)
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, _, err := image.DecodeConfig(f); err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	return nil
}

// LoadImage opens and decodes an image file.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if IsHEIC(path) {
		if !heicSupported() {
			return nil, fmt.Errorf("decode image: %w", ErrHEICUnsupported)
		}
		img, err := decodeHEIC(f)
		if err != nil {
			return nil, fmt.Errorf("decode heic: %w", err)
		}
		return img, nil
	}

	img, _, err := DecodeImage(f)
	return img, err
}
