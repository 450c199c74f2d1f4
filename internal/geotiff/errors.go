package geotiff

import "errors"

var (
	// ErrNotTIFF is returned when the header is not a TIFF or BigTIFF header.
	ErrNotTIFF = errors.New("not a TIFF file")
	// ErrUnsupported is returned for valid TIFF layouts the reader does not handle.
	ErrUnsupported = errors.New("unsupported TIFF layout")
	// ErrCorrupt is returned when offsets or sizes point outside the file.
	ErrCorrupt = errors.New("corrupt TIFF data")
	// ErrNoGeoreference is returned when neither GeoTIFF tags nor a world file
	// describe the raster's position.
	ErrNoGeoreference = errors.New("raster has no georeferencing")
)
