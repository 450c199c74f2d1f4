package encode

import (
	"image"
	"io"

	"github.com/gen2brain/webp"
)

// WebPEncoder encodes lossy WebP. gen2brain/webp uses a system libwebp via
// purego when present and an embedded WASM build otherwise.
type WebPEncoder struct {
	Quality int
}

func (e *WebPEncoder) Encode(w io.Writer, img image.Image) error {
	return webp.Encode(w, img, webp.Options{Quality: e.Quality})
}

func (e *WebPEncoder) Format() string { return "webp" }
func (e *WebPEncoder) FileExtension() string { return ".webp" }
