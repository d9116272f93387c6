package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"math"

	"golang.org/x/image/draw"
)

// DefaultQuality is the JPEG quality used when none is configured.
const DefaultQuality = 90

// ScaledSize returns the dimensions of a w×h frame after scaling, rounded and
// never smaller than 1×1.
func ScaledSize(w, h int, scale float64) (int, int) {
	sw := int(math.Round(float64(w) * scale))
	sh := int(math.Round(float64(h) * scale))
	return max(sw, 1), max(sh, 1)
}

// Resize scales img by scale with bilinear filtering. A scale of 0 or 1 returns
// img unchanged.
func Resize(img image.Image, scale float64) image.Image {
	if scale <= 0 || scale == 1 {
		return img
	}
	b := img.Bounds()
	w, h := ScaledSize(b.Dx(), b.Dy(), scale)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// EncodeJPEG encodes img at quality (1..100; out of range falls back to
// DefaultQuality).
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
