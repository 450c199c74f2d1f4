// Package pipeline runs the batch jobs that turn shade rasters into
// GeoJSON: the four-quadrant fused average, the single-area daytime series,
// plain raster conversion and point binning.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pspoerri/geotiff2geojson/internal/grid"
	"github.com/pspoerri/geotiff2geojson/internal/quadrant"
	"github.com/pspoerri/geotiff2geojson/internal/stats"
	"github.com/pspoerri/geotiff2geojson/internal/vector"
)

const (
	// DefaultBlockSize is the block edge in pixels used when none is given.
	DefaultBlockSize = 5
	// DefaultMaxValue is the pixel value of a fully sunlit pixel.
	DefaultMaxValue = 255
	// FusedProperty is the property of the fused pipeline's features.
	FusedProperty = "avg_shade_fraction"
)

// FusedConfig configures RunFused.
type FusedConfig struct {
	// InputDir holds one subdirectory per quadrant, named after it.
	InputDir  string
	OutputDir string
	BlockSize int
	MaxValue  float64
	Property  string
	// Invert emits the shaded fraction 1-G instead of the unshaded G.
	Invert bool
	// SourceEPSG overrides the CRS read from the rasters when non-zero.
	SourceEPSG int
	// Reproject writes WGS84 coordinates instead of the raster CRS.
	Reproject bool
	// Histogram is the PNG path of the combined shade histogram; empty
	// disables it.
	Histogram string
	// Progress receives a progress bar; nil disables it.
	Progress io.Writer
	Logger   logrus.FieldLogger
}

// DefaultFusedConfig returns the settings of the reference shade workflow.
func DefaultFusedConfig() FusedConfig {
	return FusedConfig{
		BlockSize: DefaultBlockSize,
		MaxValue:  DefaultMaxValue,
		Property:  FusedProperty,
		Invert:    true,
	}
}

// Output describes one written (or skipped) feature collection.
type Output struct {
	// Name is the quadrant or area the collection belongs to.
	Name string
	// Path is empty when no cell was emitted and nothing was written.
	Path     string
	Features int
	Skipped  int
}

// Result summarises a pipeline run.
type Result struct {
	Outputs []Output
	// Periods is the number of rasters averaged per quadrant.
	Periods int
	// Distribution of the shaded fraction over all emitted features; nil
	// when nothing was emitted.
	Distribution *stats.Distribution
	Elapsed      time.Duration
}

// OutputName returns the file name of a quadrant's averaged shade grid.
func OutputName(q quadrant.Quadrant) string {
	return q.String() + "_average_shade.json"
}

// RunFused averages each quadrant's shade series into blocks and writes the
// cells not already covered by an earlier quadrant, in quadrant order.
// All inputs are listed before any raster is read; a quadrant without
// rasters fails the run with ErrMissingInput and nothing is written.
func RunFused(ctx context.Context, cfg FusedConfig) (*Result, error) {
	logger := loggerOrDefault(cfg.Logger)
	if cfg.BlockSize <= 0 {
		return nil, fmt.Errorf("block size %d: %w", cfg.BlockSize, grid.ErrBlockSize)
	}
	if cfg.MaxValue <= 0 {
		return nil, fmt.Errorf("max value %g: %w", cfg.MaxValue, grid.ErrMaxValue)
	}
	if cfg.Property == "" {
		cfg.Property = FusedProperty
	}
	start := time.Now()

	inputs := make(map[quadrant.Quadrant][]string, len(quadrant.Order))
	periods := -1
	for _, q := range quadrant.Order {
		files, err := listTIFFs(filepath.Join(cfg.InputDir, q.String()), "")
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("quadrant %s: %w", q, ErrMissingInput)
		}
		inputs[q] = files
		if periods < 0 || len(files) < periods {
			periods = len(files)
		}
	}
	for _, q := range quadrant.Order {
		if n := len(inputs[q]); n != periods {
			logger.WithFields(logrus.Fields{"quadrant": q.String(), "files": n, "used": periods}).
				Warn("Quadrant series lengths differ; using the shortest")
		}
	}
	logger.WithFields(logrus.Fields{"block_size": cfg.BlockSize, "periods": periods}).Info("Processing quadrants")

	var pb *progressBar
	if cfg.Progress != nil {
		pb = newProgressBar(cfg.Progress, "Aggregating", periods*len(quadrant.Order))
	}
	defer pb.Finish()

	res := &Result{Periods: periods}
	cov := quadrant.NewCoverage()
	var shades []float64
	for _, q := range quadrant.Order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		qlog := logger.WithField("quadrant", q.String())
		pb.Stage(q.String())
		s, err := aggregateSeries(ctx, inputs[q][:periods], cfg.BlockSize, cfg.MaxValue, pb, qlog, nil)
		if err != nil {
			return nil, fmt.Errorf("quadrant %s: %w", q, err)
		}
		epsg := resolveEPSG(s.epsg, cfg.SourceEPSG, qlog)

		c, err := vector.Convert(q, s.mean, s.transform, cfg.BlockSize, cov, vector.Options{
			Property: cfg.Property, Invert: cfg.Invert, EPSG: epsg,
		})
		if err != nil {
			return nil, fmt.Errorf("quadrant %s: %w", q, err)
		}
		qr := Output{Name: q.String(), Features: c.Len(), Skipped: c.Skipped}
		if c.Len() == 0 {
			qlog.WithField("skipped", c.Skipped).Info("Quadrant fully covered; no output written")
			res.Outputs = append(res.Outputs, qr)
			continue
		}
		shades = append(shades, shadeValues(c, cfg.Invert)...)

		if cfg.Reproject {
			if c, err = reprojectTo4326(c); err != nil {
				return nil, fmt.Errorf("quadrant %s: %w", q, err)
			}
		}
		qr.Path = filepath.Join(cfg.OutputDir, OutputName(q))
		if err := vector.WriteFile(qr.Path, c); err != nil {
			return nil, fmt.Errorf("quadrant %s: %w", q, err)
		}
		qlog.WithFields(logrus.Fields{"path": qr.Path, "features": qr.Features, "skipped": qr.Skipped}).
			Info("Created GeoJSON with average shade fractions")
		res.Outputs = append(res.Outputs, qr)
	}

	if err := summarise(res, shades, cfg.Histogram, "Shade Fraction Distribution (all quadrants)", logger); err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)
	return res, nil
}

// summarise attaches the distribution of values to res and writes the
// histogram when path is set.
func summarise(res *Result, values []float64, histogram, title string, logger logrus.FieldLogger) error {
	if len(values) == 0 {
		return nil
	}
	d, err := stats.Summarise(values)
	if err != nil {
		return err
	}
	res.Distribution = &d
	d.Log(logger, "Shade fraction distribution")
	if histogram != "" {
		if err := os.MkdirAll(filepath.Dir(histogram), 0o755); err != nil {
			return fmt.Errorf("creating histogram directory: %w", err)
		}
		if err := stats.WriteHistogram(values, title, "Shade Fraction", histogram); err != nil {
			return fmt.Errorf("writing histogram: %w", err)
		}
		logger.WithField("path", histogram).Info("Wrote histogram")
	}
	return nil
}
