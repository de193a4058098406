// Package imgproc normalizes uploaded image bytes before inference and
// storage: bounded downscale, alpha flattening, JPEG re-encoding.
package imgproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

// MaxEdge is the longest edge allowed after normalization. Larger inputs are
// downscaled preserving aspect ratio.
const MaxEdge = 1024

const jpegQuality = 90

// ErrInvalidImage indicates the uploaded bytes could not be decoded as an image.
var ErrInvalidImage = errors.New("invalid image data")

// Image is a normalized in-memory bitmap ready for inference and persistence.
type Image struct {
	Bitmap image.Image
	// Format is the source encoding ("jpeg", "png", ...), kept for logging.
	Format string
	Width  int
	Height int
}

// Normalize decodes data into a bitmap, downscales it so the longest edge is
// at most MaxEdge (Lanczos resampling), and flattens any alpha channel onto a
// white background so the result is plain 3-channel RGB. It has no side
// effects and does not modify data.
func Normalize(data []byte) (*Image, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidImage, err)
	}

	bounds := src.Bounds()
	if bounds.Dx() > MaxEdge || bounds.Dy() > MaxEdge {
		src = imaging.Fit(src, MaxEdge, MaxEdge, imaging.Lanczos)
	}

	flat := flatten(src)
	b := flat.Bounds()

	return &Image{
		Bitmap: flat,
		Format: format,
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

// EncodeJPEG serializes the normalized bitmap for storage. JPEG is always
// 3-channel, matching the normalized color mode.
func (m *Image) EncodeJPEG() ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, m.Bitmap, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// flatten composites img over opaque white, discarding any alpha channel.
func flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}
