package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pspoerri/geotiff2geojson/internal/hexbin"
	"github.com/pspoerri/geotiff2geojson/internal/vector"
)

// HexbinConfig configures RunHexbin.
type HexbinConfig struct {
	// Input is a CSV of points or a GeoJSON feature collection (.json,
	// .geojson) whose polygons are binned by centroid.
	Input  string
	Output string
	// System is "h3" or "s2".
	System     string
	Resolution int
	// LonColumn, LatColumn and ValueColumn name the CSV columns.
	LonColumn   string
	LatColumn   string
	ValueColumn string
	// Property is read from GeoJSON input and names the output mean,
	// "avg_<Property>".
	Property string
	Logger   logrus.FieldLogger
}

// DefaultHexbinConfig bins point prices into H3 resolution 8 hexagons.
func DefaultHexbinConfig() HexbinConfig {
	return HexbinConfig{
		System:      "h3",
		Resolution:  8,
		LonColumn:   "longitude",
		LatColumn:   "latitude",
		ValueColumn: "price",
		Property:    "price",
	}
}

// RunHexbin bins the input's values into global grid cells and writes one
// polygon per non-empty cell with the mean value and sample size.
func RunHexbin(ctx context.Context, cfg HexbinConfig) (*Result, error) {
	logger := loggerOrDefault(cfg.Logger).WithField("input", cfg.Input)
	binner, err := hexbin.New(cfg.System, cfg.Resolution)
	if err != nil {
		return nil, err
	}
	if cfg.Property == "" {
		cfg.Property = cfg.ValueColumn
	}
	if cfg.Output == "" {
		cfg.Output = strings.TrimSuffix(cfg.Input, filepath.Ext(cfg.Input)) + "_" +
			strings.ReplaceAll(binner.Name(), ":", "-") + ".geojson"
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	var acc *hexbin.Accumulator
	switch strings.ToLower(filepath.Ext(cfg.Input)) {
	case ".json", ".geojson":
		c, err := vector.ReadFile(cfg.Input, cfg.Property)
		if err != nil {
			return nil, err
		}
		if c, err = reprojectTo4326(c); err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.Input, err)
		}
		acc = hexbin.FromFeatures(c, binner)
	default:
		f, err := os.Open(cfg.Input)
		if err != nil {
			return nil, err
		}
		points, err := hexbin.ReadCSV(f, cfg.LonColumn, cfg.LatColumn, cfg.ValueColumn, logger)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.Input, err)
		}
		acc = hexbin.NewAccumulator(binner)
		for _, p := range points {
			acc.Add(p.Lon, p.Lat, p.Value)
		}
	}
	if acc.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", cfg.Input, ErrNoFeatures)
	}

	w, err := vector.NewWriter(cfg.Output)
	if err != nil {
		return nil, err
	}
	if err := w.WriteGeoJSON(acc.Features(cfg.Property)); err != nil {
		w.Abort()
		return nil, err
	}
	if err := w.Finalize(); err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{"path": cfg.Output, "cells": acc.Len(), "grid": binner.Name()}).
		Info("Binned samples")

	return &Result{
		Outputs: []Output{{Name: binner.Name(), Path: cfg.Output, Features: acc.Len()}},
		Periods: 1,
		Elapsed: time.Since(start),
	}, nil
}
