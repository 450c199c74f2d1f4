// Package encode writes rendered previews as PNG, JPEG or WebP.
package encode

import (
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"
)

// ErrFormat is returned for an unknown image format.
var ErrFormat = errors.New("unsupported image format")

// DefaultQuality is used by lossy encoders when no quality is given.
const DefaultQuality = 85

// Encoder writes an image in one format.
type Encoder interface {
	Encode(w io.Writer, img image.Image) error

	// Format returns the format name (e.g. "jpeg", "png", "webp").
	Format() string

	// FileExtension returns the extension including the dot.
	FileExtension() string
}

// NewEncoder creates an encoder for the given format and quality (1-100,
// ignored by PNG).
func NewEncoder(format string, quality int) (Encoder, error) {
	if quality <= 0 {
		quality = DefaultQuality
	}
	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		return &JPEGEncoder{Quality: quality}, nil
	case "png":
		return &PNGEncoder{}, nil
	case "webp":
		return &WebPEncoder{Quality: quality}, nil
	}
	return nil, fmt.Errorf("%q (supported: png, jpeg, webp): %w", format, ErrFormat)
}

// ForPath picks the encoder matching path's extension.
func ForPath(path string, quality int) (Encoder, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil, fmt.Errorf("%s has no extension: %w", path, ErrFormat)
	}
	return NewEncoder(ext, quality)
}
