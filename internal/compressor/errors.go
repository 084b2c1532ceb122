package compressor

import (
	"errors"

	"github.com/fpang/image-compressor/internal/event"
	"github.com/fpang/image-compressor/internal/transcode"
)

// Pipeline errors. Stage errors are wrapped with one of these so the handler
// can classify a failure with errors.Is.
var (
	ErrInvalidEvent         = event.ErrInvalidEvent
	ErrMissingInput         = event.ErrMissingInput
	ErrStorageRead          = errors.New("storage read failed")
	ErrUnsupportedExtension = transcode.ErrUnsupportedExtension
	ErrDecode               = transcode.ErrDecode
	ErrInvalidOptions       = transcode.ErrInvalidOptions
	ErrStorageWrite         = errors.New("storage write failed")
)

// ErrorKind names a failure class in logs and metrics.
type ErrorKind string

const (
	KindInvalidEvent         ErrorKind = "InvalidEvent"
	KindMissingInput         ErrorKind = "MissingInput"
	KindStorageRead          ErrorKind = "StorageReadError"
	KindUnsupportedExtension ErrorKind = "UnsupportedExtension"
	KindDecode               ErrorKind = "DecodeError"
	KindInvalidOptions       ErrorKind = "InvalidOptions"
	KindStorageWrite         ErrorKind = "StorageWriteError"
	KindUnknown              ErrorKind = "Unknown"
)

// KindOf classifies err. Errors not produced by the pipeline are Unknown.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrInvalidEvent):
		return KindInvalidEvent
	case errors.Is(err, ErrMissingInput):
		return KindMissingInput
	case errors.Is(err, ErrStorageRead):
		return KindStorageRead
	case errors.Is(err, ErrUnsupportedExtension):
		return KindUnsupportedExtension
	case errors.Is(err, ErrDecode):
		return KindDecode
	case errors.Is(err, ErrInvalidOptions):
		return KindInvalidOptions
	case errors.Is(err, ErrStorageWrite):
		return KindStorageWrite
	default:
		return KindUnknown
	}
}
