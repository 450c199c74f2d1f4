package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pspoerri/geotiff2geojson/internal/geotiff"
	"github.com/pspoerri/geotiff2geojson/internal/grid"
	"github.com/pspoerri/geotiff2geojson/internal/vector"
)

// RasterProperty is the property of converted raster cells.
const RasterProperty = "raster_val"

// ConvertConfig configures RunConvert.
type ConvertConfig struct {
	Input string
	// Output defaults to the input path with a .geojson extension.
	Output string
	// PoolSize is the block edge averaged into one feature; 1 keeps every
	// pixel.
	PoolSize int
	Property string
	// SourceEPSG overrides the CRS read from the raster when non-zero.
	SourceEPSG int
	// KeepCRS writes the raster CRS instead of reprojecting to WGS84.
	KeepCRS bool
	Logger  logrus.FieldLogger
}

// DefaultConvertConfig returns a per-pixel conversion to WGS84.
func DefaultConvertConfig() ConvertConfig {
	return ConvertConfig{PoolSize: 1, Property: RasterProperty}
}

// RunConvert pools one raster into blocks, skipping nodata, and writes a
// feature per block that has at least one valid sample.
func RunConvert(ctx context.Context, cfg ConvertConfig) (*Result, error) {
	logger := loggerOrDefault(cfg.Logger).WithField("input", cfg.Input)
	if cfg.PoolSize <= 0 {
		return nil, fmt.Errorf("pool size %d: %w", cfg.PoolSize, grid.ErrBlockSize)
	}
	if cfg.Property == "" {
		cfg.Property = RasterProperty
	}
	if cfg.Output == "" {
		cfg.Output = strings.TrimSuffix(cfg.Input, filepath.Ext(cfg.Input)) + ".geojson"
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	r, err := geotiff.Read(cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("reading raster: %w", err)
	}
	epsg := r.EPSG
	if cfg.SourceEPSG != 0 {
		epsg = cfg.SourceEPSG
	}
	fields := logrus.Fields{"width": r.Width, "height": r.Height, "epsg": epsg, "format": r.Format}
	if nd, ok := r.NoData(); ok {
		fields["nodata"] = nd
	}
	logger.WithFields(fields).Debug("Read raster")

	g, err := grid.Pool(r, cfg.PoolSize)
	if err != nil {
		return nil, err
	}
	c, err := vector.ConvertGrid(g, r.Transform, cfg.PoolSize, vector.Options{Property: cfg.Property, EPSG: epsg})
	if err != nil {
		return nil, err
	}
	if c.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", cfg.Input, ErrNoFeatures)
	}
	if !cfg.KeepCRS {
		if c, err = reprojectTo4326(c); err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.Input, err)
		}
	}
	if err := vector.WriteFile(cfg.Output, c); err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{"path": cfg.Output, "features": c.Len(), "skipped": c.Skipped}).
		Info("Converted raster")

	return &Result{
		Outputs: []Output{{Name: filepath.Base(cfg.Input), Path: cfg.Output, Features: c.Len(), Skipped: c.Skipped}},
		Periods: 1,
		Elapsed: time.Since(start),
	}, nil
}
