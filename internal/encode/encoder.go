package encode

import (
	"fmt"
	"image"
)

// Encoder encodes a composited or decoded frame into file bytes, used
// by the gifdump command's -dump-dir flag to materialize frames to
// disk for inspection.
type Encoder interface {
	// Encode encodes an image to bytes in the target format.
	Encode(img image.Image) ([]byte, error)

	// Format returns the format name (e.g. "png").
	Format() string

	// FileExtension returns the appropriate file extension.
	FileExtension() string
}

// NewEncoder creates an encoder for the given format.
func NewEncoder(format string) (Encoder, error) {
	switch format {
	case "png":
		return &PNGEncoder{}, nil
	default:
		return nil, fmt.Errorf("unsupported dump format: %q (supported: png)", format)
	}
}
