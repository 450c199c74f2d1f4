package encode

import (
	"image"
	"image/jpeg"
	"io"
)

// JPEGEncoder encodes baseline JPEG.
type JPEGEncoder struct {
	Quality int
}

func (e *JPEGEncoder) Encode(w io.Writer, img image.Image) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: e.Quality})
}

func (e *JPEGEncoder) Format() string { return "jpeg" }
func (e *JPEGEncoder) FileExtension() string { return ".jpg" }
