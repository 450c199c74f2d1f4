package pipeline

import "errors"

var (
	// ErrMissingInput is returned before any work starts when an input
	// directory or its raster files are missing.
	ErrMissingInput = errors.New("missing input")
	// ErrNoFeatures is returned when a job that must produce output has
	// nothing to write.
	ErrNoFeatures = errors.New("no features produced")
)
