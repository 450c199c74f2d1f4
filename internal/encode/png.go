package encode

import (
	"image"
	"image/png"
	"io"
)

// PNGEncoder encodes lossless PNG.
type PNGEncoder struct{}

func (e *PNGEncoder) Encode(w io.Writer, img image.Image) error {
	enc := &png.Encoder{CompressionLevel: png.BestCompression}
	return enc.Encode(w, img)
}

func (e *PNGEncoder) Format() string { return "png" }
func (e *PNGEncoder) FileExtension() string { return ".png" }
