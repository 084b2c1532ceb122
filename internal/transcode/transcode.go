// Package transcode re-encodes images for the compressor pipeline.
//
// A transcode inspects the source, renders it at its own width and height,
// then encodes it as PNG or JPEG. Sources may be any format registered with
// the image package (PNG, JPEG, GIF, WebP); only the output format is
// restricted by the target extension.
package transcode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Supported target extensions. Matching is exact: "jpg" and "PNG" are rejected.
const (
	ExtPNG  = "png"
	ExtJPEG = "jpeg"
)

var (
	// ErrUnsupportedExtension is returned for any target other than png or jpeg.
	ErrUnsupportedExtension = errors.New("extension not supported")
	// ErrDecode is returned when the source bytes are not a decodable image.
	ErrDecode = errors.New("failed to decode image")
	// ErrInvalidOptions is returned for out-of-range quality or compression level.
	ErrInvalidOptions = errors.New("invalid encode options")
)

// Options controls the encoder. CompressionLevel applies to PNG (zlib
// scale 0-9); Quality applies to JPEG (0-100).
type Options struct {
	CompressionLevel int
	Quality          int
}

// Validate checks both fields are within range.
func (o Options) Validate() error {
	if o.Quality < 0 || o.Quality > 100 {
		return fmt.Errorf("%w: quality %d out of range [0, 100]", ErrInvalidOptions, o.Quality)
	}
	if o.CompressionLevel < 0 || o.CompressionLevel > 9 {
		return fmt.Errorf("%w: compression level %d out of range [0, 9]", ErrInvalidOptions, o.CompressionLevel)
	}
	return nil
}

// Supported reports whether ext is an accepted target extension.
func Supported(ext string) bool {
	return ext == ExtPNG || ext == ExtJPEG
}

// Transcode decodes data, renders it at its intrinsic size and re-encodes it
// for ext. The returned Info describes the source image.
func Transcode(data []byte, ext string, opts Options) ([]byte, Info, error) {
	if !Supported(ext) {
		return nil, Info{}, fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}
	if err := opts.Validate(); err != nil {
		return nil, Info{}, err
	}

	info, err := Inspect(data)
	if err != nil {
		return nil, Info{}, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, info, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	out, err := Encode(Resize(img, info.Width, info.Height), ext, opts)
	if err != nil {
		return nil, info, err
	}
	return out, info, nil
}

// Resize renders img at width x height. When the target matches the source
// bounds the image is returned as is, so no resampling happens.
func Resize(img image.Image, width, height int) image.Image {
	bounds := img.Bounds()
	if width <= 0 || height <= 0 || (bounds.Dx() == width && bounds.Dy() == height) {
		return img
	}

	resized := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
	return resized
}

// Encode writes img in the format named by ext.
func Encode(img image.Image, ext string, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch ext {
	case ExtPNG:
		enc := png.Encoder{CompressionLevel: pngCompressionLevel(opts.CompressionLevel)}
		err = enc.Encode(&buf, img)
	case ExtJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: opts.Quality})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", ext, err)
	}
	return buf.Bytes(), nil
}

// pngCompressionLevel maps a zlib level (0-9) onto the four levels the
// standard encoder exposes.
func pngCompressionLevel(level int) png.CompressionLevel {
	switch {
	case level <= 0:
		return png.NoCompression
	case level <= 3:
		return png.BestSpeed
	case level <= 6:
		return png.DefaultCompression
	default:
		return png.BestCompression
	}
}
