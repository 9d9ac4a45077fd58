// Package imaging holds the raster helpers shared by the face pipeline:
// decoding into a canonical RGB buffer, clamped crops, resampling and
// per-image standardization.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"
	"net/http"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var (
	ErrEmptyImage  = errors.New("image data is empty")
	ErrEmptyRegion = errors.New("crop region is empty after clamping")
)

// Decode reads any registered raster format and returns it as an opaque RGBA
// image with its origin at (0, 0). Transparent pixels are composited onto black.
func Decode(data []byte) (*image.RGBA, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)

	return dst, nil
}

// ClampRect clamps negative offsets to zero and bounds the rectangle by the
// image extents.
func ClampRect(x, y, w, h int, bounds image.Rectangle) image.Rectangle {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return image.Rect(x, y, x+w, y+h).Add(bounds.Min).Intersect(bounds)
}

// Crop copies the clamped rectangle out of img.
func Crop(img *image.RGBA, x, y, w, h int) (*image.RGBA, error) {
	r := ClampRect(x, y, w, h, img.Bounds())
	if r.Empty() {
		return nil, ErrEmptyRegion
	}

	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst, nil
}

// Resize resamples img to a size x size square with a Catmull-Rom kernel.
func Resize(img image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// Standardize flattens img into HWC RGB float32 values, subtracts the mean and
// divides by the standard deviation of this image's own values. The deviation
// is floored at 1/sqrt(N) so a flat image yields zeros instead of NaN.
func Standardize(img *image.RGBA) []float32 {
	b := img.Bounds()
	n := b.Dx() * b.Dy() * 3
	if n == 0 {
		return nil
	}

	values := make([]float64, 0, n)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			off := img.PixOffset(x, y)
			values = append(values,
				float64(img.Pix[off]),
				float64(img.Pix[off+1]),
				float64(img.Pix[off+2]),
			)
		}
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(n))
	if floor := 1 / math.Sqrt(float64(n)); std < floor {
		std = floor
	}

	out := make([]float32, n)
	for i, v := range values {
		out[i] = float32((v - mean) / std)
	}
	return out
}

// RGB returns the tightly packed RGB bytes of img in row-major order.
func RGB(img *image.RGBA) []byte {
	b := img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			off := img.PixOffset(x, y)
			out = append(out, img.Pix[off], img.Pix[off+1], img.Pix[off+2])
		}
	}
	return out
}

func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SniffMIME reports the content type of encoded image bytes, defaulting to
// image/jpeg when the bytes are not recognised as an image.
func SniffMIME(data []byte) string {
	mime := http.DetectContentType(data)
	switch mime {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return mime
	default:
		return "image/jpeg"
	}
}
