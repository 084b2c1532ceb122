package transcode

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/evanoberholster/imagemeta"
)

// Info describes a source image.
type Info struct {
	Width  int
	Height int
	Format string // as registered with the image package: "png", "jpeg", "gif", "webp"

	// EXIF camera fields, empty when the source carries none.
	CameraMake  string
	CameraModel string
}

// HasCamera reports whether EXIF camera data was found. Re-encoding drops it.
func (i Info) HasCamera() bool {
	return i.CameraMake != "" || i.CameraModel != ""
}

// Inspect reads the image header for its dimensions and format without
// decoding pixel data. EXIF extraction is best effort.
func Inspect(data []byte) (Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	info := Info{
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: format,
	}

	info.CameraMake, info.CameraModel = cameraFromEXIF(data)
	return info, nil
}

// cameraFromEXIF returns the EXIF make and model, or empty strings when the
// source has no readable EXIF block. PNG and GIF sources rarely carry one.
func cameraFromEXIF(data []byte) (cameraMake, cameraModel string) {
	// imagemeta can panic on truncated containers.
	defer func() {
		if r := recover(); r != nil {
			cameraMake, cameraModel = "", ""
		}
	}()

	exifData, err := imagemeta.Decode(bytes.NewReader(data))
	if err != nil {
		return "", ""
	}
	return strings.TrimSpace(exifData.Make), strings.TrimSpace(exifData.Model)
}
