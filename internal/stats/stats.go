// Package stats summarises cell values: percentile tables and histograms.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// ErrNoValues is returned when summarising an empty sample.
var ErrNoValues = errors.New("no values to summarise")

// Levels are the reported percentiles.
var Levels = []float64{0, 10, 25, 50, 75, 90, 100}

// Distribution describes a sample of cell values.
type Distribution struct {
	Count       int
	Percentiles []Percentile
	Mean        float64
	StdDev      float64 // population standard deviation
}

// Percentile pairs a level in [0,100] with the sample value at that level.
type Percentile struct {
	Level float64
	Value float64
}

// Summarise computes the distribution of values. NaN values are ignored.
// Percentiles interpolate linearly between the two nearest order
// statistics, so the integers 0..100 return each level exactly.
func Summarise(values []float64) (Distribution, error) {
	x := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			x = append(x, v)
		}
	}
	if len(x) == 0 {
		return Distribution{}, ErrNoValues
	}
	sort.Float64s(x)

	d := Distribution{Count: len(x)}
	for _, level := range Levels {
		d.Percentiles = append(d.Percentiles, Percentile{
			Level: level,
			Value: quantile(x, level),
		})
	}
	d.Mean, d.StdDev = stat.PopMeanStdDev(x, nil)
	return d, nil
}

// quantile returns the level-th percentile of the sorted sample x.
func quantile(x []float64, level float64) float64 {
	pos := level * float64(len(x)-1) / 100
	lo := int(math.Floor(pos))
	if lo >= len(x)-1 {
		return x[len(x)-1]
	}
	if lo < 0 {
		return x[0]
	}
	return x[lo] + (pos-float64(lo))*(x[lo+1]-x[lo])
}

// At returns the value at a reported level.
func (d Distribution) At(level float64) (float64, bool) {
	for _, p := range d.Percentiles {
		if p.Level == level {
			return p.Value, true
		}
	}
	return 0, false
}

func (d Distribution) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "n=%d mean=%.4f std=%.4f", d.Count, d.Mean, d.StdDev)
	for _, p := range d.Percentiles {
		fmt.Fprintf(&b, " p%g=%.4f", p.Level, p.Value)
	}
	return b.String()
}

// Log writes the distribution as structured fields.
func (d Distribution) Log(logger logrus.FieldLogger, msg string) {
	fields := logrus.Fields{
		"count": d.Count,
		"mean":  d.Mean,
		"std":   d.StdDev,
	}
	for _, p := range d.Percentiles {
		fields[fmt.Sprintf("p%g", p.Level)] = p.Value
	}
	logger.WithFields(fields).Info(msg)
}
