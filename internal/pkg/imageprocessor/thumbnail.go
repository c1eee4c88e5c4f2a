package imageprocessor

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// MaxThumbnailSize is the longest edge for generated thumbnails.
const MaxThumbnailSize = 320

// Thumbnail decodes the given image data and returns a JPEG thumbnail fitted
// into MaxThumbnailSize x MaxThumbnailSize, preserving aspect ratio. Images
// that are already smaller than the target are re-encoded unchanged in size.
func Thumbnail(data []byte) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	var thumb image.Image = src
	if bounds.Dx() > MaxThumbnailSize || bounds.Dy() > MaxThumbnailSize {
		thumb = imaging.Fit(src, MaxThumbnailSize, MaxThumbnailSize, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
