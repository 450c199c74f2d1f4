// Package grid reduces rasters to coarse grids of per-block aggregates.
package grid

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrBlockSize     = errors.New("block size must be positive")
	ErrMaxValue      = errors.New("max pixel value must be positive")
	ErrShapeMismatch = errors.New("grid shapes differ")
	ErrEmptySeries   = errors.New("no grids to average")
)

// Source is a single band of samples addressed by (col, row).
type Source interface {
	Rows() int
	Cols() int
	At(col, row int) float64
}

// noDataSource is implemented by sources that declare a nodata value.
type noDataSource interface {
	IsNoData(v float64) bool
}

// Grid is an immutable rows x cols matrix of block aggregates.
type Grid struct {
	rows, cols int
	values     []float64
}

// New wraps values (row-major, rows*cols long) as a Grid.
func New(rows, cols int, values []float64) (*Grid, error) {
	if rows < 0 || cols < 0 || len(values) != rows*cols {
		return nil, fmt.Errorf("grid %dx%d with %d values: %w", rows, cols, len(values), ErrShapeMismatch)
	}
	return &Grid{rows: rows, cols: cols, values: values}, nil
}

func (g *Grid) Rows() int { return g.rows }
func (g *Grid) Cols() int { return g.cols }

// Cell returns the aggregate of block (row, col).
func (g *Grid) Cell(row, col int) float64 {
	return g.values[row*g.cols+col]
}

// Empty reports whether the grid has no cells.
func (g *Grid) Empty() bool { return g.rows == 0 || g.cols == 0 }

// Invert returns a grid holding 1-v for every cell v.
func (g *Grid) Invert() *Grid {
	out := make([]float64, len(g.values))
	for i, v := range g.values {
		out[i] = 1 - v
	}
	return &Grid{rows: g.rows, cols: g.cols, values: out}
}

// Values returns the cells in row-major order, skipping NaN cells.
func (g *Grid) Values() []float64 {
	out := make([]float64, 0, len(g.values))
	for _, v := range g.values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Aggregate sums every blockSize x blockSize block of src and divides by
// maxValue*blockSize². Trailing rows and columns that do not fill a whole
// block are dropped. For 8-bit shade masks (maxValue 255) each cell is the
// unshaded fraction of its block.
func Aggregate(src Source, blockSize int, maxValue float64) (*Grid, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("block size %d: %w", blockSize, ErrBlockSize)
	}
	if !(maxValue > 0) {
		return nil, fmt.Errorf("max value %v: %w", maxValue, ErrMaxValue)
	}

	rows, cols := src.Rows()/blockSize, src.Cols()/blockSize
	norm := maxValue * float64(blockSize) * float64(blockSize)
	values := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			var sum float64
			for y := i * blockSize; y < (i+1)*blockSize; y++ {
				for x := j * blockSize; x < (j+1)*blockSize; x++ {
					sum += src.At(x, y)
				}
			}
			values[i*cols+j] = sum / norm
		}
	}
	return &Grid{rows: rows, cols: cols, values: values}, nil
}

// Pool averages the valid samples of every blockSize x blockSize block.
// NaN and infinite samples are never valid; if src declares a nodata value
// those samples are skipped too. A block without valid samples is NaN.
func Pool(src Source, blockSize int) (*Grid, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("block size %d: %w", blockSize, ErrBlockSize)
	}
	invalid := func(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }
	if nd, ok := src.(noDataSource); ok {
		invalid = nd.IsNoData
	}

	rows, cols := src.Rows()/blockSize, src.Cols()/blockSize
	values := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			var sum float64
			var n int
			for y := i * blockSize; y < (i+1)*blockSize; y++ {
				for x := j * blockSize; x < (j+1)*blockSize; x++ {
					v := src.At(x, y)
					if invalid(v) {
						continue
					}
					sum += v
					n++
				}
			}
			if n == 0 {
				values[i*cols+j] = math.NaN()
			} else {
				values[i*cols+j] = sum / float64(n)
			}
		}
	}
	return &Grid{rows: rows, cols: cols, values: values}, nil
}

// Mean averages a time series of grids cell by cell.
func Mean(series ...*Grid) (*Grid, error) {
	if len(series) == 0 {
		return nil, ErrEmptySeries
	}
	first := series[0]
	sum := make([]float64, len(first.values))
	for k, g := range series {
		if g.rows != first.rows || g.cols != first.cols {
			return nil, fmt.Errorf("grid %d is %dx%d, grid 0 is %dx%d: %w",
				k, g.rows, g.cols, first.rows, first.cols, ErrShapeMismatch)
		}
		for i, v := range g.values {
			sum[i] += v
		}
	}
	n := float64(len(series))
	for i := range sum {
		sum[i] /= n
	}
	return &Grid{rows: first.rows, cols: first.cols, values: sum}, nil
}
