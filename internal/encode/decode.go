package encode

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/gen2brain/webp"
)

// DecodeReference decodes a reference image file so gifdump's
// -compare-webp flag can diff a composited frame against a known-good
// fixture encoded in a format other than GIF. Supported formats:
// "png", "webp".
func DecodeReference(data []byte, format string) (image.Image, error) {
	r := bytes.NewReader(data)
	switch format {
	case "png":
		return png.Decode(r)
	case "webp":
		return webp.Decode(r)
	default:
		return nil, fmt.Errorf("unsupported reference format: %q", format)
	}
}
