package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 64, A: 255})
		}
	}
	return img
}

func TestDecode(t *testing.T) {
	if _, err := Decode(nil); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("Decode(nil) error = %v, want %v", err, ErrEmptyImage)
	}
	if _, err := Decode([]byte("definitely not an image")); err == nil {
		t.Error("Decode(garbage) error = nil")
	}

	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	src.Set(1, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 0})

	img, err := Decode(encodePNG(t, src))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{R: 200, G: 100, B: 50, A: 255}) {
		t.Errorf("opaque pixel = %v", got)
	}
	if got := img.RGBAAt(1, 0); got != (color.RGBA{A: 255}) {
		t.Errorf("transparent pixel = %v, want opaque black", got)
	}
}

func TestClampRect(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 80)

	tests := []struct {
		name       string
		x, y, w, h int
		want       image.Rectangle
	}{
		{name: "inside", x: 10, y: 10, w: 20, h: 20, want: image.Rect(10, 10, 30, 30)},
		{name: "negative origin", x: -4, y: -9, w: 20, h: 20, want: image.Rect(0, 0, 20, 20)},
		{name: "overflow", x: 90, y: 70, w: 30, h: 30, want: image.Rect(90, 70, 100, 80)},
		{name: "negative size", x: 5, y: 5, w: -3, h: 10, want: image.Rectangle{}},
		{name: "outside", x: 200, y: 200, w: 10, h: 10, want: image.Rectangle{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampRect(tt.x, tt.y, tt.w, tt.h, bounds)
			if got.Empty() && tt.want.Empty() {
				return
			}
			if got != tt.want {
				t.Errorf("ClampRect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCrop(t *testing.T) {
	img := gradient(32, 32)

	crop, err := Crop(img, 4, 6, 10, 8)
	if err != nil {
		t.Fatalf("Crop() error = %v", err)
	}
	if crop.Bounds() != image.Rect(0, 0, 10, 8) {
		t.Errorf("bounds = %v", crop.Bounds())
	}
	if got, want := crop.RGBAAt(0, 0), img.RGBAAt(4, 6); got != want {
		t.Errorf("first pixel = %v, want %v", got, want)
	}

	if _, err := Crop(img, 40, 40, 5, 5); !errors.Is(err, ErrEmptyRegion) {
		t.Errorf("Crop(outside) error = %v, want %v", err, ErrEmptyRegion)
	}
}

func TestResize(t *testing.T) {
	got := Resize(gradient(30, 17), 160)
	if got.Bounds() != image.Rect(0, 0, 160, 160) {
		t.Errorf("bounds = %v", got.Bounds())
	}
}

func TestStandardize(t *testing.T) {
	values := Standardize(gradient(16, 16))
	if len(values) != 16*16*3 {
		t.Fatalf("len = %d", len(values))
	}

	var sum, sq float64
	for _, v := range values {
		sum += float64(v)
	}
	mean := sum / float64(len(values))
	for _, v := range values {
		d := float64(v) - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(len(values)))

	if math.Abs(mean) > 1e-4 {
		t.Errorf("mean = %v, want 0", mean)
	}
	if math.Abs(std-1) > 1e-4 {
		t.Errorf("std = %v, want 1", std)
	}
}

func TestStandardizeFlatImage(t *testing.T) {
	flat := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range flat.Pix {
		flat.Pix[i] = 77
	}

	for i, v := range Standardize(flat) {
		if v != 0 {
			t.Fatalf("value %d = %v, want 0", i, v)
		}
	}
}

func TestRGB(t *testing.T) {
	img := gradient(3, 2)
	got := RGB(img)
	if len(got) != 3*2*3 {
		t.Fatalf("len = %d", len(got))
	}
	px := img.RGBAAt(2, 1)
	if got[15] != px.R || got[16] != px.G || got[17] != px.B {
		t.Errorf("last pixel = %v, want %v", got[15:], px)
	}
}

func TestSniffMIME(t *testing.T) {
	if got := SniffMIME(encodePNG(t, gradient(2, 2))); got != "image/png" {
		t.Errorf("png = %q", got)
	}

	jpg, err := EncodeJPEG(gradient(4, 4), 80)
	if err != nil {
		t.Fatalf("EncodeJPEG() error = %v", err)
	}
	if got := SniffMIME(jpg); got != "image/jpeg" {
		t.Errorf("jpeg = %q", got)
	}

	if got := SniffMIME([]byte("plain text")); got != "image/jpeg" {
		t.Errorf("fallback = %q", got)
	}
}
