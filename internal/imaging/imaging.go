// Package imaging decodes client-supplied images and prepares them for the embedding oracle.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/kozaktomas/face-verifier/internal/constants"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxImageSize is the maximum dimension (width or height) sent to the oracle.
const MaxImageSize = constants.MaxImageSize

// ErrInvalidImage is returned for malformed base64 or undecodable image data.
var ErrInvalidImage = errors.New("invalid image")

// invalid wraps a reason so callers can match ErrInvalidImage and still show the cause.
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidImage, fmt.Sprintf(format, args...))
}

// DecodeBase64 decodes a raw base64 string or a data URL ("data:image/jpeg;base64,...")
// into an RGBA image.
func DecodeBase64(s string) (*image.RGBA, error) {
	if _, payload, ok := strings.Cut(s, ","); ok {
		s = payload
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return nil, invalid("empty image data")
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		var rawErr error
		data, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
		if rawErr != nil {
			return nil, invalid("base64: %v", err)
		}
	}
	return Decode(data)
}

// Decode decodes JPEG, PNG, GIF, BMP, TIFF or WebP bytes into an RGBA image.
func Decode(data []byte) (*image.RGBA, error) {
	if len(data) == 0 {
		return nil, invalid("empty image data")
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, invalid("%v", err)
	}
	return ToRGBA(img), nil
}

// DecodeFile reads and decodes an image file.
func DecodeFile(path string) (*image.RGBA, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator's command line
	if err != nil {
		return nil, fmt.Errorf("reading image %s: %w", path, err)
	}
	return Decode(data)
}

// ToRGBA converts any image to RGBA with its origin moved to (0,0), dropping any alpha
// information the oracle has no use for.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// FitWithin scales img down so neither side exceeds maxSize, keeping the aspect ratio.
// Images already within bounds are returned unchanged.
func FitWithin(img image.Image, maxSize int) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= maxSize && height <= maxSize {
		return img
	}

	var newWidth, newHeight int
	if width > height {
		newWidth = maxSize
		newHeight = max(1, int(float64(height)*float64(maxSize)/float64(width)))
	} else {
		newHeight = maxSize
		newWidth = max(1, int(float64(width)*float64(maxSize)/float64(height)))
	}

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	xdraw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, xdraw.Over, nil)
	return resized
}

// EncodeJPEG encodes an image as JPEG for transport to the oracle.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 92}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
