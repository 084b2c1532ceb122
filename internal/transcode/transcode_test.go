package transcode

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// newTestImage returns a w x h gradient so encoders have real content to compress.
func newTestImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, newTestImage(w, h)); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, newTestImage(w, h), &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestTranscode_PNGRoundTrip(t *testing.T) {
	src := pngBytes(t, 40, 30)

	for _, quality := range []int{0, 1, 50, 70, 100} {
		out, info, err := Transcode(src, ExtPNG, Options{CompressionLevel: 9, Quality: quality})
		if err != nil {
			t.Fatalf("quality %d: Transcode() error = %v", quality, err)
		}
		if info.Width != 40 || info.Height != 30 || info.Format != "png" {
			t.Errorf("quality %d: source info = %+v", quality, info)
		}

		img, err := png.Decode(bytes.NewReader(out))
		if err != nil {
			t.Fatalf("quality %d: output is not a valid PNG: %v", quality, err)
		}
		if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
			t.Errorf("quality %d: output size = %dx%d, want 40x30", quality, b.Dx(), b.Dy())
		}
	}
}

func TestTranscode_JPEGRoundTrip(t *testing.T) {
	src := jpegBytes(t, 64, 48)

	for _, quality := range []int{0, 10, 70, 100} {
		out, _, err := Transcode(src, ExtJPEG, Options{CompressionLevel: 9, Quality: quality})
		if err != nil {
			t.Fatalf("quality %d: Transcode() error = %v", quality, err)
		}

		cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
		if err != nil {
			t.Fatalf("quality %d: output is not decodable: %v", quality, err)
		}
		if format != "jpeg" {
			t.Errorf("quality %d: output format = %q, want jpeg", quality, format)
		}
		if cfg.Width != 64 || cfg.Height != 48 {
			t.Errorf("quality %d: output size = %dx%d, want 64x48", quality, cfg.Width, cfg.Height)
		}
	}
}

func TestTranscode_CrossFormat(t *testing.T) {
	// The target follows the key's extension, not the source bytes.
	out, info, err := Transcode(jpegBytes(t, 20, 10), ExtPNG, Options{CompressionLevel: 6, Quality: 70})
	if err != nil {
		t.Fatalf("Transcode() error = %v", err)
	}
	if info.Format != "jpeg" {
		t.Errorf("source format = %q, want jpeg", info.Format)
	}
	if _, err := png.Decode(bytes.NewReader(out)); err != nil {
		t.Errorf("output is not a valid PNG: %v", err)
	}
}

func TestTranscode_LowerQualityShrinksJPEG(t *testing.T) {
	src := jpegBytes(t, 128, 128)

	high, _, err := Transcode(src, ExtJPEG, Options{Quality: 100})
	if err != nil {
		t.Fatalf("Transcode(q=100) error = %v", err)
	}
	low, _, err := Transcode(src, ExtJPEG, Options{Quality: 5})
	if err != nil {
		t.Fatalf("Transcode(q=5) error = %v", err)
	}
	if len(low) >= len(high) {
		t.Errorf("q=5 output (%d bytes) should be smaller than q=100 output (%d bytes)", len(low), len(high))
	}
}

func TestTranscode_Errors(t *testing.T) {
	validPNG := pngBytes(t, 8, 8)

	tests := []struct {
		name    string
		data    []byte
		ext     string
		opts    Options
		wantErr error
	}{
		{"jpg is not jpeg", validPNG, "jpg", Options{Quality: 70}, ErrUnsupportedExtension},
		{"uppercase", validPNG, "PNG", Options{Quality: 70}, ErrUnsupportedExtension},
		{"webp target", validPNG, "webp", Options{Quality: 70}, ErrUnsupportedExtension},
		{"empty extension", validPNG, "", Options{Quality: 70}, ErrUnsupportedExtension},
		{"quality too high", validPNG, ExtJPEG, Options{Quality: 101}, ErrInvalidOptions},
		{"quality negative", validPNG, ExtPNG, Options{Quality: -1}, ErrInvalidOptions},
		{"compression level too high", validPNG, ExtPNG, Options{CompressionLevel: 10, Quality: 70}, ErrInvalidOptions},
		{"garbage bytes", []byte("definitely not an image"), ExtPNG, Options{Quality: 70}, ErrDecode},
		{"empty input", nil, ExtJPEG, Options{Quality: 70}, ErrDecode},
		{"truncated png", validPNG[:len(validPNG)/2], ExtPNG, Options{Quality: 70}, ErrDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := Transcode(tt.data, tt.ext, tt.opts)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Transcode() error = %v, want %v", err, tt.wantErr)
			}
			if out != nil {
				t.Errorf("Transcode() returned %d bytes on error", len(out))
			}
		})
	}
}

func TestResize_SameSizeIsPassThrough(t *testing.T) {
	img := newTestImage(10, 5)
	got := Resize(img, 10, 5)
	if got != image.Image(img) {
		t.Error("Resize to source dimensions should return the source image unchanged")
	}
}

func TestResize_Scales(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"downscale", 5, 3},
		{"upscale", 40, 20},
		{"non-uniform", 10, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resize(newTestImage(20, 10), tt.width, tt.height)
			if b := got.Bounds(); b.Dx() != tt.width || b.Dy() != tt.height {
				t.Errorf("Resize() = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.width, tt.height)
			}
		})
	}
}

func TestResize_ZeroTargetKeepsSource(t *testing.T) {
	img := newTestImage(4, 4)
	if got := Resize(img, 0, 4); got != image.Image(img) {
		t.Error("Resize with a zero width should return the source image")
	}
}

func TestEncode_UnsupportedExtension(t *testing.T) {
	_, err := Encode(newTestImage(2, 2), "tiff", Options{})
	if !errors.Is(err, ErrUnsupportedExtension) {
		t.Errorf("Encode() error = %v, want ErrUnsupportedExtension", err)
	}
}

func TestPNGCompressionLevel(t *testing.T) {
	tests := []struct {
		level int
		want  png.CompressionLevel
	}{
		{0, png.NoCompression},
		{1, png.BestSpeed},
		{3, png.BestSpeed},
		{4, png.DefaultCompression},
		{6, png.DefaultCompression},
		{7, png.BestCompression},
		{9, png.BestCompression},
	}

	for _, tt := range tests {
		if got := pngCompressionLevel(tt.level); got != tt.want {
			t.Errorf("pngCompressionLevel(%d) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestOptionsValidate(t *testing.T) {
	valid := []Options{
		{CompressionLevel: 0, Quality: 0},
		{CompressionLevel: 9, Quality: 100},
		{CompressionLevel: 9, Quality: 70},
	}
	for _, o := range valid {
		if err := o.Validate(); err != nil {
			t.Errorf("Validate(%+v) error = %v", o, err)
		}
	}

	invalid := []Options{
		{CompressionLevel: -1, Quality: 70},
		{CompressionLevel: 9, Quality: 200},
	}
	for _, o := range invalid {
		if err := o.Validate(); !errors.Is(err, ErrInvalidOptions) {
			t.Errorf("Validate(%+v) error = %v, want ErrInvalidOptions", o, err)
		}
	}
}

func TestSupported(t *testing.T) {
	for ext, want := range map[string]bool{"png": true, "jpeg": true, "jpg": false, "gif": false, "": false} {
		if got := Supported(ext); got != want {
			t.Errorf("Supported(%q) = %v, want %v", ext, got, want)
		}
	}
}
